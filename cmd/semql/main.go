// Package main provides the semql command-line tool.
package main

import (
	"os"

	"github.com/halcyondb/semql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

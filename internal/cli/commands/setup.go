// Package commands implements the semql CLI subcommands.
package commands

import (
	"fmt"
	"strings"

	"github.com/halcyondb/semql/internal/cli/config"
	"github.com/halcyondb/semql/internal/sqlitecat"
	"github.com/halcyondb/semql/pkg/catalog"
	"github.com/halcyondb/semql/pkg/dialect"
)

// openDialect resolves the configured dialect name.
func openDialect(cfg *config.Config) (*dialect.Dialect, error) {
	d, ok := dialect.Get(cfg.Dialect)
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (available: %s)",
			cfg.Dialect, strings.Join(dialect.List(), ", "))
	}
	return d, nil
}

// openCatalog builds the catalog the analyzer resolves against. The cleanup
// function must be called when the command is done with it.
func openCatalog(cfg *config.Config) (catalog.Catalog, func() error, error) {
	switch {
	case cfg.Database != "":
		cat, err := sqlitecat.Open(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return cat, cat.Close, nil
	case cfg.Schema != "":
		cat, err := config.LoadSchema(cfg.Schema)
		if err != nil {
			return nil, nil, err
		}
		return cat, noCleanup, nil
	default:
		// No schema: analysis still runs, every table is unknown.
		return catalog.NewMemory("public"), noCleanup, nil
	}
}

func noCleanup() error { return nil }

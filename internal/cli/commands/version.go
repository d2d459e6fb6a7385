package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command. Commit and date are empty
// for builds without release metadata.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display semql version information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "semql v%s\n", version)
			if commit != "" {
				_, _ = fmt.Fprintf(out, "commit: %s\n", commit)
			}
			if date != "" {
				_, _ = fmt.Fprintf(out, "built:  %s\n", date)
			}
		},
	}
}

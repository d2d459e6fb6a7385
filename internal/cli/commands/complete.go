package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halcyondb/semql/internal/cli/config"
	"github.com/halcyondb/semql/pkg/sem/completion"
)

// CompleteOptions holds options for the complete command.
type CompleteOptions struct {
	SQL    string // Inline SQL instead of a file
	Offset int    // Cursor byte offset; -1 means end of input
	Format string // Output format override
}

// NewCompleteCommand creates the complete command.
func NewCompleteCommand() *cobra.Command {
	opts := &CompleteOptions{}
	cmd := &cobra.Command{
		Use:   "complete [file]",
		Short: "Propose completions at a cursor position",
		Long: `Compute completion proposals for a SQL text and cursor offset.

The cursor position is a byte offset into the text. Without --offset the
cursor sits at the end of the input. A "|" marker in inline SQL also
marks the cursor.`,
		Example: `  # Complete at the end of an inline query
  semql complete --schema schema.yaml -e "SELECT id, na"

  # Mark the cursor inline
  semql complete --schema schema.yaml -e "SELECT | FROM employees"

  # Complete inside a file at byte offset 27
  semql complete --database app.db --offset 27 query.sql`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SQL, "sql", "e", "", "Complete the given SQL instead of a file")
	cmd.Flags().IntVar(&opts.Offset, "offset", -1, "Cursor byte offset (default: end of input)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, plain")

	return cmd
}

func runComplete(cmd *cobra.Command, args []string, opts *CompleteOptions) error {
	cfg := config.FromContext(cmd.Context())
	log := config.GetLogger(cmd.Context())

	text, offset, err := completionInput(args, opts)
	if err != nil {
		return err
	}

	d, err := openDialect(cfg)
	if err != nil {
		return err
	}
	cat, cleanup, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	engine := &completion.Engine{
		Dialect:           d,
		Catalog:           cat,
		Logger:            log,
		SearchInsideWords: cfg.SearchInsideWords,
	}
	sets, err := engine.Propose(cmd.Context(), text, offset)
	if err != nil {
		return err
	}

	format := cfg.Output
	if opts.Format != "" {
		format = opts.Format
	}
	return renderProposals(cmd.OutOrStdout(), sets, format)
}

// completionInput resolves the text and cursor offset from flags and args.
// Inline SQL may carry a "|" cursor marker.
func completionInput(args []string, opts *CompleteOptions) (string, int, error) {
	var text string
	switch {
	case opts.SQL != "" && len(args) > 0:
		return "", 0, fmt.Errorf("give a file or --sql, not both")
	case opts.SQL != "":
		text = opts.SQL
		if i := strings.IndexByte(text, '|'); i >= 0 && opts.Offset < 0 {
			return strings.Replace(text, "|", "", 1), i, nil
		}
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", 0, fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		text = string(data)
	default:
		return "", 0, fmt.Errorf("nothing to complete: give a file or --sql")
	}

	offset := opts.Offset
	if offset < 0 {
		offset = len(text)
	}
	if offset > len(text) {
		return "", 0, fmt.Errorf("offset %d is past the end of the input (%d bytes)", offset, len(text))
	}
	return text, offset, nil
}

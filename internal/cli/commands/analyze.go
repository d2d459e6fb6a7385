package commands

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/halcyondb/semql/internal/cli/config"
	"github.com/halcyondb/semql/internal/parser"
	"github.com/halcyondb/semql/pkg/sem"
	"github.com/halcyondb/semql/pkg/token"
)

// AnalyzeOptions holds options for the analyze command.
type AnalyzeOptions struct {
	SQL    string // Inline SQL instead of files
	Format string // Output format override
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Analyze SQL against the configured schema",
		Long: `Parse and semantically analyze SQL files.

Every identifier is resolved against the catalog and problems are
reported with their position. The command exits non-zero when any
error-level diagnostic is found.`,
		Example: `  # Analyze files against a SQLite database
  semql analyze --database app.db queries/*.sql

  # Analyze inline SQL against a YAML schema
  semql analyze --schema schema.yaml -e "SELECT id FROM employees"

  # Machine-readable output
  semql analyze -o json report.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SQL, "sql", "e", "", "Analyze the given SQL instead of files")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, plain")

	return cmd
}

// fileReport holds the diagnostics for one input.
type fileReport struct {
	Name        string
	Diagnostics []sem.Diagnostic
}

type analyzeInput struct {
	name string
	sql  string
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	cfg := config.FromContext(cmd.Context())
	log := config.GetLogger(cmd.Context())

	inputs, err := collectInputs(args, opts.SQL)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("nothing to analyze: give files or --sql")
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

	analyzer := &sem.Analyzer{Dialect: d, Catalog: cat, Logger: log}

	reports := make([]fileReport, len(inputs))
	eg, ctx := errgroup.WithContext(cmd.Context())
	eg.SetLimit(runtime.NumCPU())
	for i, in := range inputs {
		eg.Go(func() error {
			res, err := parser.Parse(in.sql, d)
			if err != nil {
				return err
			}
			report := fileReport{Name: in.name}
			for _, perr := range res.Errors {
				report.Diagnostics = append(report.Diagnostics, parseDiagnostic(perr))
			}
			for _, stmt := range res.Script.Statements {
				model, err := analyzer.Analyze(ctx, stmt)
				if err != nil {
					return fmt.Errorf("%s: %w", in.name, err)
				}
				report.Diagnostics = append(report.Diagnostics, model.Diagnostics()...)
			}
			reports[i] = report
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	format := cfg.Output
	if opts.Format != "" {
		format = opts.Format
	}
	errorCount, warningCount := countDiagnostics(reports)
	if err := renderReports(cmd.OutOrStdout(), reports, format); err != nil {
		return err
	}

	if errorCount > 0 {
		return fmt.Errorf("analysis found %d errors, %d warnings", errorCount, warningCount)
	}
	return nil
}

// collectInputs reads the SQL to analyze from files or the --sql flag.
func collectInputs(args []string, inline string) ([]analyzeInput, error) {
	if inline != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("give files or --sql, not both")
		}
		return []analyzeInput{{name: "<sql>", sql: inline}}, nil
	}
	inputs := make([]analyzeInput, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		inputs = append(inputs, analyzeInput{name: path, sql: string(data)})
	}
	return inputs, nil
}

// parseDiagnostic converts a parser error into a diagnostic so both kinds
// render the same way.
func parseDiagnostic(err error) sem.Diagnostic {
	var perr *parser.ParseError
	if errors.As(err, &perr) {
		return sem.Diagnostic{
			Span:     token.Span{Start: perr.Pos, End: perr.Pos},
			Severity: sem.SeverityError,
			Message:  perr.Message,
		}
	}
	return sem.Diagnostic{Severity: sem.SeverityError, Message: err.Error()}
}

func countDiagnostics(reports []fileReport) (errs, warns int) {
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			if d.Severity == sem.SeverityError {
				errs++
			} else {
				warns++
			}
		}
	}
	return errs, warns
}

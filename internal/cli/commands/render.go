package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/halcyondb/semql/pkg/sem"
	"github.com/halcyondb/semql/pkg/sem/completion"
)

// diagnosticJSON is the machine-readable shape of one diagnostic.
type diagnosticJSON struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

func renderReports(w io.Writer, reports []fileReport, format string) error {
	switch format {
	case "json":
		return renderReportsJSON(w, reports)
	case "plain":
		return renderReportsPlain(w, reports)
	default:
		return renderReportsTable(w, reports)
	}
}

func renderReportsTable(w io.Writer, reports []fileReport) error {
	total := 0
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Pos", "Severity", "Message"})

	for _, r := range reports {
		for _, d := range r.Diagnostics {
			t.AppendRow(table.Row{r.Name, formatPos(d), d.Severity.String(), d.Message})
			total++
		}
	}

	if total == 0 {
		_, _ = fmt.Fprintf(w, "No problems found in %d inputs\n", len(reports))
		return nil
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d problems in %d inputs)\n", total, len(reports))
	return nil
}

func renderReportsPlain(w io.Writer, reports []fileReport) error {
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			_, _ = fmt.Fprintf(w, "%s:%s: %s: %s\n", r.Name, formatPos(d), d.Severity, d.Message)
		}
	}
	return nil
}

func renderReportsJSON(w io.Writer, reports []fileReport) error {
	out := make([]diagnosticJSON, 0)
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			out = append(out, diagnosticJSON{
				File:     r.Name,
				Line:     d.Span.Start.Line,
				Column:   d.Span.Start.Column,
				Severity: d.Severity.String(),
				Message:  d.Message,
			})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func formatPos(d sem.Diagnostic) string {
	if d.Span.Start.Line == 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%d", d.Span.Start.Line, d.Span.Start.Column)
}

// proposalJSON is the machine-readable shape of one completion proposal.
type proposalJSON struct {
	Text        string `json:"text"`
	Kind        string `json:"kind"`
	Score       int    `json:"score"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Description string `json:"description,omitempty"`
}

func renderProposals(w io.Writer, sets []completion.ProposalSet, format string) error {
	switch format {
	case "json":
		return renderProposalsJSON(w, sets)
	case "plain":
		for _, s := range sets {
			for _, p := range s.Proposals {
				_, _ = fmt.Fprintln(w, p.Text)
			}
		}
		return nil
	default:
		return renderProposalsTable(w, sets)
	}
}

func renderProposalsTable(w io.Writer, sets []completion.ProposalSet) error {
	total := 0
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Text", "Kind", "Score", "Description"})

	for _, s := range sets {
		for _, p := range s.Proposals {
			t.AppendRow(table.Row{p.Text, p.Kind.String(), p.Score, p.Description})
			total++
		}
	}

	if total == 0 {
		_, _ = fmt.Fprintln(w, "No proposals")
		return nil
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d proposals)\n", total)
	return nil
}

func renderProposalsJSON(w io.Writer, sets []completion.ProposalSet) error {
	out := make([]proposalJSON, 0)
	for _, s := range sets {
		for _, p := range s.Proposals {
			out = append(out, proposalJSON{
				Text:        p.Text,
				Kind:        p.Kind.String(),
				Score:       p.Score,
				Start:       p.Replacement.Start.Offset,
				End:         p.Replacement.End.Offset,
				Description: p.Description,
			})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

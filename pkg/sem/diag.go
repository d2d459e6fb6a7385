package sem

import (
	"fmt"

	"github.com/halcyondb/semql/pkg/token"
)

// Severity grades a diagnostic.
type Severity int

// Severities.
const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the severity name.
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one problem found during analysis. Diagnostics never abort
// the analysis; the model stays usable around them.
type Diagnostic struct {
	Span     token.Span
	Severity Severity
	Message  string
}

// String formats the diagnostic with its position.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at line %d, column %d: %s",
		d.Severity, d.Span.Start.Line, d.Span.Start.Column, d.Message)
}

package parser

import (
	"fmt"

	"github.com/halcyondb/semql/pkg/token"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	ErrUnexpectedToken  = "unexpected token %s, expected %s"
	ErrExpectedIdent    = "expected identifier, got %s"
	ErrExpectedExpr     = "expected expression, got %s"
	ErrExpectedTableRef = "expected table reference, got %s"
)

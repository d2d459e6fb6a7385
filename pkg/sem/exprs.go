package sem

import "github.com/halcyondb/semql/pkg/ast"

// valueNode carries the common state of value expression models.
type valueNode struct {
	node
	typ *ValueType
}

// ValueType implements ValueExpr.
func (v *valueNode) ValueType() *ValueType {
	if v.typ == nil {
		return UnknownType
	}
	return v.typ
}

// ColumnRefModel is a resolved (or failed) column reference.
type ColumnRefModel struct {
	valueNode
	Name    *ast.ObjectName
	Entries []*SymbolEntry
	Column  *ResultColumn // nil when unresolved
}

// TupleRefModel is a qualified asterisk expanding a source's full tuple.
type TupleRefModel struct {
	valueNode
	Table      *ast.ObjectName
	Entries    []*SymbolEntry
	Resolution *SourceResolution // nil when unresolved
	Columns    []*ResultColumn   // the expanded tuple
}

// StarModel is a bare asterisk select item.
type StarModel struct {
	valueNode
	Columns []*ResultColumn
}

// MemberAccessModel reads a named member out of a composite value.
type MemberAccessModel struct {
	valueNode
	Owner       ValueExpr
	MemberEntry *SymbolEntry
}

// LiteralModel is a constant with a known type.
type LiteralModel struct {
	valueNode
}

// SubqueryValueModel is a scalar subquery. Its type is the type of the
// subquery's first result column.
type SubqueryValueModel struct {
	valueNode
	Source RowsSource
}

// OperatorModel is a flattened expression over child values: operators,
// function calls, CASE, predicates. Only the children carry resolution
// state; the operator itself just types the result.
type OperatorModel struct {
	valueNode
	Op       string
	Operands []ValueExpr
}

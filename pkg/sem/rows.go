package sem

import (
	"github.com/halcyondb/semql/pkg/ast"
	"github.com/halcyondb/semql/pkg/catalog"
)

// TableModel is a direct reference to a catalog table or view.
type TableModel struct {
	node
	Name    *ast.ObjectName
	Entries []*SymbolEntry // one per name part
	Table   catalog.Entity // nil when unresolved
}

func (*TableModel) rowsSource() {}

// AliasedSourceModel wraps a rows source under a correlation alias.
type AliasedSourceModel struct {
	node
	Inner      RowsSource
	Alias      *Symbol
	AliasEntry *SymbolEntry
}

func (*AliasedSourceModel) rowsSource() {}

// JoinModel is one binary join of two rows sources.
type JoinModel struct {
	node
	Type      ast.JoinType
	Natural   bool
	Left      RowsSource
	Right     RowsSource
	Condition ValueExpr      // ON condition, nil if absent
	Using     []*SymbolEntry // USING column entries
}

func (*JoinModel) rowsSource() {}

// SetOpModel combines two rows sources with UNION, INTERSECT, or EXCEPT.
// The left side's result tuple wins.
type SetOpModel struct {
	node
	Op    ast.SetOpType
	Left  RowsSource
	Right RowsSource
}

func (*SetOpModel) rowsSource() {}

// CTEDeclModel is one WITH-clause declaration.
type CTEDeclModel struct {
	node
	Name      *Symbol
	NameEntry *SymbolEntry
	Source    RowsSource
	Columns   []*ResultColumn // result tuple, possibly renamed by the alias list
}

func (*CTEDeclModel) rowsSource() {}

// CTEModel wraps a statement body with its WITH declarations.
type CTEModel struct {
	node
	Decls []*CTEDeclModel
	Body  RowsSource
}

func (*CTEModel) rowsSource() {}

// ProjectionModel is one SELECT ... FROM ... block with its filters.
type ProjectionModel struct {
	node
	From       RowsSource
	Items      []ValueExpr
	ResultCols []*ResultColumn
	Into       []*IntoTargetModel
	Where      ValueExpr
	GroupBy    []ValueExpr
	Having     ValueExpr
	OrderBy    []ValueExpr
	Limit      ValueExpr
}

func (*ProjectionModel) rowsSource() {}

// IntoTargetModel is one SELECT INTO target: either a rows source the
// projection writes into, or a value target.
type IntoTargetModel struct {
	node
	Name    *ast.ObjectName
	Entries []*SymbolEntry
	Table   catalog.Entity // set for rowset targets
	Value   ValueExpr      // set for value targets
}

// EmptyRowsModel stands in for a rows source the grammar did not provide.
// It exposes no columns and produces no diagnostics.
type EmptyRowsModel struct {
	node
}

func (*EmptyRowsModel) rowsSource() {}

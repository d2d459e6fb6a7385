package sem

// SetClauseModel is one SET target = value assignment of an UPDATE.
// Targets resolve against the update target's context only; values see the
// combined target and source context.
type SetClauseModel struct {
	node
	Target ValueExpr
	Value  ValueExpr
}

// UpdateModel is an UPDATE statement.
type UpdateModel struct {
	node
	Target  RowsSource
	Sets    []*SetClauseModel
	Sources RowsSource // FROM clause sources, nil if absent
	Where   ValueExpr
	OrderBy []ValueExpr
	Limit   ValueExpr
}

// InsertModel is an INSERT statement.
type InsertModel struct {
	node
	Target  *TableModel
	Columns []*SymbolEntry
	Rows    [][]ValueExpr // VALUES rows
	Source  RowsSource    // INSERT ... SELECT source
}

// DeleteModel is a DELETE statement.
type DeleteModel struct {
	node
	Target RowsSource
	Where  ValueExpr
}

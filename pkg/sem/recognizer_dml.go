package sem

import (
	"github.com/halcyondb/semql/pkg/ast"
)

// recognizeUpdate builds the UPDATE model. SET targets resolve against the
// target table alone; values and the WHERE clause see the target combined
// with any FROM sources.
func (rc *recognition) recognizeUpdate(u *ast.UpdateStmt, dc DataContext) ModelNode {
	m := &UpdateModel{}
	m.span = u.Span
	m.given = dc
	m.result = dc

	targetScope, closeTarget := rc.openScope()
	targetScope.From = u.Span.Start.Offset
	targetScope.To = u.SetKw.Start.Offset
	targetScope.origin = &RowsSourceRefOrigin{Context: dc}
	targetScope.context = dc
	m.Target = rc.recognizeTableRef(u.Target, dc)
	closeTarget()
	m.addChild(m.Target)
	targetCtx := m.Target.ResultContext()

	combined := targetCtx
	if u.From != nil {
		m.Sources = rc.recognizeFromClause(u.From, dc)
		rc.sealPendingJoinScopes()
		m.addChild(m.Sources)
		combined = Combine(targetCtx, m.Sources.ResultContext())
	}

	tail := ScopeTail
	if u.Limit != nil {
		tail = u.Limit.Span.Start.Offset
	}
	setEnd := tail
	switch {
	case u.From != nil:
		setEnd = u.From.Keyword.Start.Offset
	case u.Where != nil:
		setEnd = u.Where.Span.Start.Offset
	case u.OrderBy != nil:
		setEnd = u.OrderBy.Span.Start.Offset
	}

	setScope, closeSet := rc.openScope()
	setScope.From = u.SetKw.End.Offset
	setScope.To = setEnd
	setScope.origin = &ColumnNameOrigin{Context: targetCtx}
	setScope.context = combined
	for _, sa := range u.Sets {
		if sa.Target == nil {
			continue
		}
		sc := &SetClauseModel{}
		sc.span = sa.Span
		sc.given = combined
		sc.result = combined

		cr := &ast.ColumnRef{NodeInfo: ast.NodeInfo{Span: sa.Target.Span}, Name: sa.Target}
		sc.Target = rc.resolveColumnRef(cr, targetCtx, &ColumnNameOrigin{Context: targetCtx})
		sc.addChild(sc.Target)
		if sa.Value != nil {
			sc.Value = rc.recognizeValue(sa.Value, combined)
			sc.addChild(sc.Value)
		}
		m.Sets = append(m.Sets, sc)
		m.addChild(sc)
	}
	closeSet()

	if u.Where != nil {
		whereEnd := tail
		if u.OrderBy != nil {
			whereEnd = u.OrderBy.Span.Start.Offset
		}
		scope, closeScope := rc.openScope()
		scope.From = u.Where.Span.Start.Offset
		scope.To = whereEnd
		scope.origin = &ValueRefOrigin{Context: combined}
		scope.context = combined
		m.Where = rc.recognizeValue(u.Where.Expr, combined)
		m.addChild(m.Where)
		closeScope()
	}

	if u.OrderBy != nil {
		scope, closeScope := rc.openScope()
		scope.From = u.OrderBy.Span.Start.Offset
		scope.To = tail
		scope.origin = &ValueRefOrigin{Context: combined}
		scope.context = combined
		for _, item := range u.OrderBy.Items {
			v := rc.recognizeValue(item.Expr, combined)
			if v != nil {
				m.OrderBy = append(m.OrderBy, v)
				m.addChild(v)
			}
		}
		closeScope()
	}

	if u.Limit != nil && u.Limit.Count != nil {
		m.Limit = rc.recognizeValue(u.Limit.Count, dc)
		m.addChild(m.Limit)
	}
	return m
}

// recognizeInsert builds the INSERT model. Column list entries resolve
// against the target table; VALUES rows see no columns, a SELECT source
// sees the enclosing context.
func (rc *recognition) recognizeInsert(u *ast.InsertStmt, dc DataContext) ModelNode {
	m := &InsertModel{}
	m.span = u.Span
	m.given = dc
	m.result = dc

	targetScope, closeTarget := rc.openScope()
	targetScope.From = u.Span.Start.Offset
	targetScope.origin = &RowsSourceRefOrigin{Context: dc}
	targetScope.context = dc
	var targetCtx DataContext = dc
	if u.Target != nil {
		m.Target = rc.recognizeTableName(u.Target.Name, dc)
		m.addChild(m.Target)
		targetCtx = m.Target.ResultContext()
		targetScope.To = u.Target.Span.End.Offset
	} else {
		targetScope.To = u.Span.End.Offset
	}
	closeTarget()

	if len(u.Columns) > 0 {
		scope, closeScope := rc.openScope()
		scope.From = u.Columns[0].Span.Start.Offset
		scope.To = u.Columns[len(u.Columns)-1].Span.End.Offset
		scope.origin = &ColumnNameOrigin{Context: targetCtx}
		scope.context = targetCtx
		for _, c := range u.Columns {
			e := rc.makeEntry(c)
			e.SetOrigin(&ColumnNameOrigin{Context: targetCtx})
			if col := ResolveColumn(targetCtx, e.Name()); col != nil {
				e.SetDefinition(&ColumnDefinition{Column: col})
			} else if m.Target != nil && m.Target.Table != nil {
				e.Symbol().SetClass(ClassError)
				rc.appendError(e.Span(), "column %s not found", e.Raw())
			}
			m.Columns = append(m.Columns, e)
		}
		closeScope()
	}

	for _, row := range u.Values {
		var vals []ValueExpr
		for _, e := range row {
			v := rc.recognizeValue(e, dc)
			if v != nil {
				vals = append(vals, v)
				m.addChild(v)
			}
		}
		m.Rows = append(m.Rows, vals)
	}
	if u.Select != nil {
		m.Source = rc.recognizeSelect(u.Select, dc)
		m.addChild(m.Source)
	}
	return m
}

// recognizeDelete builds the DELETE model. The WHERE clause sees the target
// table's columns.
func (rc *recognition) recognizeDelete(u *ast.DeleteStmt, dc DataContext) ModelNode {
	m := &DeleteModel{}
	m.span = u.Span
	m.given = dc
	m.result = dc

	tail := ScopeTail
	if u.Where != nil {
		tail = u.Where.Span.Start.Offset
	}
	targetScope, closeTarget := rc.openScope()
	targetScope.From = u.Span.Start.Offset
	targetScope.To = tail
	targetScope.origin = &RowsSourceRefOrigin{Context: dc}
	targetScope.context = dc
	m.Target = rc.recognizeTableRef(u.Target, dc)
	closeTarget()
	m.addChild(m.Target)

	if u.Where != nil {
		targetCtx := m.Target.ResultContext()
		scope, closeScope := rc.openScope()
		scope.From = u.Where.Span.Start.Offset
		scope.origin = &ValueRefOrigin{Context: targetCtx}
		scope.context = targetCtx
		m.Where = rc.recognizeValue(u.Where.Expr, targetCtx)
		m.addChild(m.Where)
		closeScope()
	}
	return m
}

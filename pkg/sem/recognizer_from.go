package sem

import (
	"strings"

	"github.com/halcyondb/semql/pkg/ast"
	"github.com/halcyondb/semql/pkg/catalog"
	"github.com/halcyondb/semql/pkg/token"
)

// recognizeFromClause resolves the FROM sources against the enclosing
// context and folds comma-separated sources into cross joins.
func (rc *recognition) recognizeFromClause(fc *ast.FromClause, dc DataContext) RowsSource {
	var combined RowsSource
	for i, t := range fc.Tables {
		if i > 0 {
			rc.sealPendingJoinScopes()
		}
		src := rc.recognizeTableRef(t, dc)
		if combined == nil {
			combined = src
			continue
		}
		jm := &JoinModel{Type: ast.JoinCross, Left: combined, Right: src}
		jm.span = combined.Span().Union(src.Span())
		jm.given = dc
		jm.result = Combine(combined.ResultContext(), src.ResultContext())
		jm.addChild(combined)
		jm.addChild(src)
		combined = jm
	}
	if combined == nil {
		return rc.emptyRows(fc.Span, dc)
	}
	return combined
}

func (rc *recognition) recognizeTableRef(t ast.TableRef, dc DataContext) RowsSource {
	switch t := t.(type) {
	case *ast.TableName:
		tm := rc.recognizeTableName(t.Name, dc)
		tm.span = t.Span
		if t.Alias == nil {
			return tm
		}
		return rc.aliasSource(t.Span, tm, tm.Table, t.Alias, nil, dc)
	case *ast.DerivedTable:
		inner := rc.recognizeSelect(t.Select, dc)
		if t.Alias == nil {
			return inner
		}
		return rc.aliasSource(t.Span, inner, nil, t.Alias, t.Columns, dc)
	case *ast.Join:
		return rc.recognizeJoin(t, dc)
	case *ast.SelectStmt:
		return rc.recognizeSelect(t, dc)
	case *ast.Unexpected:
		rc.log.Debug("table reference not recognized, degrading to empty source")
		return rc.emptyRows(t.Span, dc)
	default:
		return rc.emptyRows(t.GetSpan(), dc)
	}
}

// recognizeTableName resolves a dotted table name, first against the query
// structure (CTEs and already visible sources), then against the catalog.
func (rc *recognition) recognizeTableName(name *ast.ObjectName, dc DataContext) *TableModel {
	tm := &TableModel{Name: name}
	tm.span = name.Span
	tm.given = dc
	for _, part := range name.Parts {
		tm.Entries = append(tm.Entries, rc.makeEntry(part))
	}
	if len(tm.Entries) > 0 {
		tm.Entries[0].SetOrigin(&RowsSourceRefOrigin{Context: dc})
	}

	parts := rc.normalizeParts(name.Parts)
	if len(parts) == 0 || name.TrailingDot {
		// mid-typing, nothing to resolve yet
		tm.result = OverrideResultTuple(dc, tm, nil)
		return tm
	}

	if res := dc.ResolveSource(parts); res != nil && (res.IsCTE || res.Table != nil) {
		last := tm.Entries[len(tm.Entries)-1]
		if res.Table != nil {
			rc.classifyEntityParts(tm.Entries, res.Table, dc)
			tm.Table = res.Table
		} else if res.Alias != nil && res.Alias.Definition() != nil {
			last.SetDefinition(res.Alias.Definition())
		} else {
			last.Symbol().SetClass(ClassTable)
		}
		cols := reownColumns(sourceColumns(res.Source), tm)
		base := ExtendWithAlias(dc, &SourceResolution{
			Source: tm,
			Alias:  rc.symbolFor(parts[len(parts)-1]),
			Table:  res.Table,
			IsCTE:  res.IsCTE,
		})
		tm.result = OverrideResultTuple(base, tm, cols)
		return tm
	}

	table, err := rc.cat.FindTable(rc.ctx, parts)
	if err != nil {
		rc.downgrade(name.Span, err)
		tm.result = OverrideResultTuple(dc, tm, nil)
		return tm
	}
	if table == nil {
		for _, e := range tm.Entries {
			e.Symbol().SetClass(ClassError)
		}
		rc.appendError(name.Span, "unknown table %s", rawDotted(tm.Entries))
		tm.result = OverrideResultTuple(dc, tm, nil)
		return tm
	}

	tm.Table = table
	rc.classifyEntityParts(tm.Entries, table, dc)

	attrs, err := table.Attributes(rc.ctx)
	if err != nil {
		rc.downgrade(name.Span, err)
		tm.result = OverrideResultTuple(ExtendWithTable(dc, table, tm), tm, nil)
		return tm
	}
	cols := make([]*ResultColumn, 0, len(attrs))
	for _, attr := range attrs {
		cols = append(cols, rc.columnOfAttr(table, attr, tm))
	}
	tm.result = OverrideResultTuple(ExtendWithTable(dc, table, tm), tm, cols)
	return tm
}

// columnOfAttr builds the result column a table source exposes for one
// catalog attribute.
func (rc *recognition) columnOfAttr(table catalog.Entity, attr *catalog.Attribute, source RowsSource) *ResultColumn {
	sym := NewSymbol(rc.d.NormalizeName(attr.Name))
	sym.SetClass(ClassColumn)
	col := &ResultColumn{
		Symbol:     sym,
		Source:     source,
		RealEntity: table,
		RealAttr:   attr,
		Type:       TypeOfAttribute(attr),
	}
	sym.SetDefinition(&ColumnDefinition{Column: col})
	return col
}

// aliasSource wraps a rows source under a correlation alias. The alias
// replaces the underlying table name in the enclosing context.
func (rc *recognition) aliasSource(span token.Span, inner RowsSource, table catalog.Entity, alias *ast.Ident, colAliases []*ast.Ident, dc DataContext) RowsSource {
	am := &AliasedSourceModel{Inner: inner}
	am.span = span
	am.given = dc
	am.addChild(inner)

	ae := rc.makeEntry(alias)
	ae.Symbol().SetClass(ClassTableAlias)
	ae.Symbol().SetDefinition(ae)
	am.Alias = ae.Symbol()
	am.AliasEntry = ae

	cols := sourceColumns(inner)
	if len(colAliases) > 0 {
		renamed := make([]*ResultColumn, 0, len(colAliases))
		for i, ca := range colAliases {
			e := rc.makeEntry(ca)
			e.Symbol().SetClass(ClassColumnAlias)
			e.Symbol().SetDefinition(e)
			col := &ResultColumn{Symbol: e.Symbol(), Source: am, Type: UnknownType}
			if i < len(cols) {
				col.RealEntity = cols[i].RealEntity
				col.RealAttr = cols[i].RealAttr
				col.Type = cols[i].Type
			}
			renamed = append(renamed, col)
		}
		cols = renamed
	} else {
		cols = reownColumns(cols, am)
	}

	res := &SourceResolution{Source: am, Alias: am.Alias, Table: table}
	am.result = OverrideResultTuple(ExtendWithAlias(dc, res), am, cols)
	return am
}

func (rc *recognition) recognizeJoin(j *ast.Join, dc DataContext) RowsSource {
	jm := &JoinModel{Type: j.Type, Natural: j.Natural}
	jm.span = j.Span
	jm.given = dc

	jm.Left = rc.recognizeTableRef(j.Left, dc)
	rc.sealPendingJoinScopes()
	jm.Right = rc.recognizeTableRef(j.Right, dc)
	jm.addChild(jm.Left)
	jm.addChild(jm.Right)

	combined := Combine(jm.Left.ResultContext(), jm.Right.ResultContext())
	jm.result = combined

	for _, u := range j.Using {
		e := rc.makeEntry(u)
		e.SetOrigin(&ColumnNameOrigin{Context: combined})
		if col := ResolveColumn(combined, e.Name()); col != nil {
			e.SetDefinition(&ColumnDefinition{Column: col})
		} else {
			e.Symbol().SetClass(ClassError)
			rc.appendError(e.Span(), "column %s not found in joined sources", e.Raw())
		}
		jm.Using = append(jm.Using, e)
	}

	if j.On != nil || needsCondition(j) {
		scope, closeScope := rc.openScope()
		scope.From = jm.Right.Span().End.Offset
		scope.origin = &ValueRefOrigin{Context: combined}
		scope.context = combined
		rc.pendingJoinScopes = append(rc.pendingJoinScopes, pendingJoinScope{
			scope:    scope,
			fallback: j.Span.End.Offset,
		})
		if j.On != nil {
			jm.Condition = rc.recognizeValue(j.On, combined)
			jm.addChild(jm.Condition)
		}
		closeScope()
	}
	return jm
}

// needsCondition reports whether a join kind takes an ON condition, so the
// condition scope exists even before the user typed one.
func needsCondition(j *ast.Join) bool {
	return !j.Natural && len(j.Using) == 0 && j.Type != ast.JoinCross
}

// classifyEntityParts classifies a resolved dotted name right to left
// against the table's ancestor chain, falling back to positional guesses,
// and attaches chained origins to the trailing parts.
func (rc *recognition) classifyEntityParts(entries []*SymbolEntry, table catalog.Entity, dc DataContext) {
	n := len(entries)
	entries[n-1].SetDefinition(DefineObject(table))

	obj := table.Parent()
	matched := true
	for i := n - 2; i >= 0; i-- {
		if matched && obj != nil && obj.Parent() != nil && rc.d.EqualNames(entries[i].Name(), obj.Name()) {
			entries[i].SetDefinition(DefineObject(obj))
			obj = obj.Parent()
			continue
		}
		matched = false
		switch n - 1 - i {
		case 1:
			entries[i].Symbol().SetClass(ClassSchema)
		case 2:
			entries[i].Symbol().SetClass(ClassCatalog)
		}
	}

	for i := 1; i < n; i++ {
		var parent catalog.Object
		if def := entries[i-1].Definition(); def != nil {
			if od, ok := UnrollDefinition(def).(*ObjectDefinition); ok {
				parent = od.Object
			}
		}
		entries[i].SetOrigin(&ObjectChildOrigin{Parent: parent, Context: dc})
	}
}

// sourceColumns reads the result tuple a rows source exposes.
func sourceColumns(src RowsSource) []*ResultColumn {
	if src == nil || src.ResultContext() == nil {
		return nil
	}
	return src.ResultContext().Columns()
}

// reownColumns copies columns under a new producing source.
func reownColumns(cols []*ResultColumn, source RowsSource) []*ResultColumn {
	out := make([]*ResultColumn, len(cols))
	for i, c := range cols {
		cc := *c
		cc.Source = source
		out[i] = &cc
	}
	return out
}

func rawDotted(entries []*SymbolEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.Raw()
	}
	return strings.Join(parts, ".")
}

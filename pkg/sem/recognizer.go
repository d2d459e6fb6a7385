package sem

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/halcyondb/semql/pkg/ast"
	"github.com/halcyondb/semql/pkg/catalog"
	"github.com/halcyondb/semql/pkg/dialect"
	"github.com/halcyondb/semql/pkg/token"
)

// recognition is the per-statement analysis state: diagnostics, scopes,
// symbol identity, and the collaborators every resolution step needs.
type recognition struct {
	ctx context.Context
	d   *dialect.Dialect
	cat catalog.Catalog
	log *slog.Logger

	diags      []Diagnostic
	scopes     []*LexicalScope
	scopeStack []*LexicalScope
	entries    []*SymbolEntry
	symbols    map[string]*Symbol

	// join condition scopes whose tail is only known once the enclosing
	// clause boundary is found
	pendingJoinScopes []pendingJoinScope
}

// pendingJoinScope is an ON-condition scope waiting for its right boundary.
// The fallback closes it at the end of its own join when a later source
// takes over the interval.
type pendingJoinScope struct {
	scope    *LexicalScope
	fallback int
}

func newRecognition(ctx context.Context, d *dialect.Dialect, cat catalog.Catalog, log *slog.Logger) *recognition {
	if log == nil {
		log = slog.Default()
	}
	return &recognition{
		ctx:     ctx,
		d:       d,
		cat:     cat,
		log:     log,
		symbols: make(map[string]*Symbol),
	}
}

func (rc *recognition) appendError(span token.Span, format string, args ...any) {
	rc.diags = append(rc.diags, Diagnostic{
		Span: span, Severity: SeverityError, Message: fmt.Sprintf(format, args...),
	})
}

func (rc *recognition) appendWarning(span token.Span, format string, args ...any) {
	rc.diags = append(rc.diags, Diagnostic{
		Span: span, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...),
	})
}

// downgrade reports a metadata failure as a diagnostic and logs it. The
// caller proceeds with no data.
func (rc *recognition) downgrade(span token.Span, err error) {
	rc.log.Debug("metadata lookup failed", slog.String("error", err.Error()))
	rc.appendError(span, "metadata unavailable: %v", err)
}

// normalize applies dialect normalization; quoted identifiers keep their
// case.
func (rc *recognition) normalize(id *ast.Ident) string {
	if id.Quoted {
		return id.Name
	}
	return rc.d.NormalizeName(id.Name)
}

// symbolFor returns the statement-wide shared symbol for a normalized name.
func (rc *recognition) symbolFor(name string) *Symbol {
	if s, ok := rc.symbols[name]; ok {
		return s
	}
	s := NewSymbol(name)
	rc.symbols[name] = s
	return s
}

// makeEntry creates a symbol occurrence for an identifier and registers it
// in the innermost open scope.
func (rc *recognition) makeEntry(id *ast.Ident) *SymbolEntry {
	sym := rc.symbolFor(rc.normalize(id))
	e := NewEntry(id.Span, id.Name, sym)
	if id.Quoted {
		sym.SetClass(ClassQuoted)
	}
	rc.entries = append(rc.entries, e)
	if n := len(rc.scopeStack); n > 0 {
		rc.scopeStack[n-1].registerItem(e)
	}
	return e
}

// openScope starts a lexical scope; the returned closer pops it. Interval,
// origin, and context are set by the caller before or after closing.
func (rc *recognition) openScope() (*LexicalScope, func()) {
	s := &LexicalScope{From: 0, To: ScopeTail}
	rc.scopes = append(rc.scopes, s)
	rc.scopeStack = append(rc.scopeStack, s)
	return s, func() {
		rc.scopeStack = rc.scopeStack[:len(rc.scopeStack)-1]
	}
}

// ---------- Statements ----------

func (rc *recognition) recognizeStatement(stmt ast.Statement, dc DataContext) ModelNode {
	switch s := stmt.(type) {
	case *ast.SelectStmt:
		return rc.recognizeSelect(s, dc)
	case *ast.UpdateStmt:
		return rc.recognizeUpdate(s, dc)
	case *ast.InsertStmt:
		return rc.recognizeInsert(s, dc)
	case *ast.DeleteStmt:
		return rc.recognizeDelete(s, dc)
	case *ast.Unexpected:
		rc.log.Debug("statement not recognized, degrading to empty model")
		return rc.emptyRows(s.Span, dc)
	default:
		panic(fmt.Sprintf("unhandled statement node %T", stmt))
	}
}

func (rc *recognition) emptyRows(span token.Span, dc DataContext) *EmptyRowsModel {
	m := &EmptyRowsModel{}
	m.span = span
	m.given = dc
	m.result = dc
	return m
}

// recognizeSelect handles the optional WITH prefix and the select body.
func (rc *recognition) recognizeSelect(s *ast.SelectStmt, dc DataContext) RowsSource {
	if s == nil {
		return rc.emptyRows(token.Span{}, dc)
	}
	if s.With == nil {
		return rc.recognizeBody(s.Body, dc)
	}

	cteModel := &CTEModel{}
	cteModel.span = s.Span
	cteModel.given = dc

	cteCtx := dc
	for _, cte := range s.With.CTEs {
		if cte.Name == nil {
			continue
		}
		decl := &CTEDeclModel{}
		decl.span = cte.Span
		decl.given = cteCtx

		nameEntry := rc.makeEntry(cte.Name)
		nameEntry.Symbol().SetClass(ClassTable)
		nameEntry.Symbol().SetDefinition(nameEntry)
		decl.Name = nameEntry.Symbol()
		decl.NameEntry = nameEntry

		// a recursive CTE sees itself while its body resolves
		bodyCtx := cteCtx
		if s.With.Recursive {
			placeholder := rc.emptyRows(cte.Span, cteCtx)
			bodyCtx = ExtendWithCTE(cteCtx, decl.Name, placeholder)
		}
		decl.Source = rc.recognizeSelect(cte.Select, bodyCtx)
		decl.Columns = rc.renameTuple(decl, decl.Source, cte.Columns)
		decl.result = OverrideResultTuple(cteCtx, decl, decl.Columns)
		decl.addChild(decl.Source)

		cteCtx = ExtendWithCTE(cteCtx, decl.Name, decl)
		cteModel.Decls = append(cteModel.Decls, decl)
		cteModel.addChild(decl)
	}

	cteModel.Body = rc.recognizeBody(s.Body, cteCtx)
	cteModel.addChild(cteModel.Body)
	cteModel.result = cteModel.Body.ResultContext()
	return cteModel
}

// renameTuple applies a CTE column alias list over a source's result tuple.
func (rc *recognition) renameTuple(decl *CTEDeclModel, source RowsSource, aliases []*ast.Ident) []*ResultColumn {
	var cols []*ResultColumn
	if source.ResultContext() != nil {
		cols = source.ResultContext().Columns()
	}
	if len(aliases) == 0 {
		return cols
	}
	if len(aliases) != len(cols) && len(cols) > 0 {
		rc.appendWarning(decl.span, "column alias list names %d columns, query produces %d", len(aliases), len(cols))
	}
	out := make([]*ResultColumn, 0, len(aliases))
	for i, alias := range aliases {
		e := rc.makeEntry(alias)
		e.Symbol().SetClass(ClassColumnAlias)
		e.Symbol().SetDefinition(e)
		col := &ResultColumn{Symbol: e.Symbol(), Source: decl, Type: UnknownType}
		if i < len(cols) {
			col.RealEntity = cols[i].RealEntity
			col.RealAttr = cols[i].RealAttr
			col.Type = cols[i].Type
		}
		out = append(out, col)
	}
	return out
}

func (rc *recognition) recognizeBody(b *ast.SelectBody, dc DataContext) RowsSource {
	if b == nil {
		return rc.emptyRows(token.Span{}, dc)
	}
	left := rc.recognizeCore(b.Left, dc)
	if b.Op == ast.SetOpNone || b.Right == nil {
		return left
	}
	m := &SetOpModel{Op: b.Op, Left: left}
	m.span = b.Span
	m.given = dc
	m.Right = rc.recognizeBody(b.Right, dc)
	m.addChild(m.Left)
	m.addChild(m.Right)
	// the left branch defines the result tuple
	m.result = left.ResultContext()
	return m
}

// filterSpec pairs a present filter clause with its resolution context and
// expressions.
type filterSpec struct {
	kind  dialect.FilterClause
	span  token.Span
	exprs []ast.Expr
}

// recognizeCore builds the projection model for one SELECT block:
// sources first, then the projection tuple, then the filter clauses with
// their alias-visibility contexts and chained lexical scopes.
func (rc *recognition) recognizeCore(c *ast.SelectCore, dc DataContext) RowsSource {
	if c == nil || (len(c.Items) == 0 && c.From == nil) {
		rc.log.Debug("select block incomplete, degrading to empty model")
		span := token.Span{}
		if c != nil {
			span = c.Span
		}
		return rc.emptyRows(span, dc)
	}

	proj := &ProjectionModel{}
	proj.span = c.Span
	proj.given = dc

	fromResult := dc
	var fromScope *LexicalScope
	if c.From != nil {
		scope, closeScope := rc.openScope()
		proj.From = rc.recognizeFromClause(c.From, dc)
		closeScope()
		scope.From = c.From.Keyword.End.Offset
		scope.origin = &RowsSourceRefOrigin{Context: dc}
		scope.context = dc
		fromScope = scope
		proj.addChild(proj.From)
		fromResult = proj.From.ResultContext()
	}

	// projection items resolve against the sources
	itemScope, closeItems := rc.openScope()
	itemScope.origin = &ValueRefOrigin{Context: fromResult}
	itemScope.context = fromResult
	for _, item := range c.Items {
		ve := rc.recognizeProjectionItem(item, proj, fromResult)
		if ve != nil {
			proj.Items = append(proj.Items, ve)
			proj.addChild(ve)
		}
	}
	closeItems()

	proj.result = HideSources(OverrideResultTuple(fromResult, proj, proj.ResultCols))

	if c.Into != nil {
		rc.recognizeIntoTargets(c.Into, proj, fromResult)
	}

	// filter clauses in syntactic order
	var filters []filterSpec
	if c.Where != nil {
		filters = append(filters, filterSpec{dialect.ClauseWhere, c.Where.Span, exprList(c.Where.Expr)})
	}
	if c.GroupBy != nil {
		filters = append(filters, filterSpec{dialect.ClauseGroupBy, c.GroupBy.Span, c.GroupBy.Exprs})
	}
	if c.Having != nil {
		filters = append(filters, filterSpec{dialect.ClauseHaving, c.Having.Span, exprList(c.Having.Expr)})
	}
	if c.OrderBy != nil {
		var exprs []ast.Expr
		for _, it := range c.OrderBy.Items {
			exprs = append(exprs, it.Expr)
		}
		filters = append(filters, filterSpec{dialect.ClauseOrderBy, c.OrderBy.Span, exprs})
	}

	// scope intervals chain each clause to the start of the next; the tail
	// stays open unless LIMIT closes it
	tail := ScopeTail
	if c.Limit != nil {
		tail = c.Limit.Span.Start.Offset
	}

	rc.placeSelectListScope(c, filters, itemScope, tail)
	fromEnd := firstFilterStart(filters, tail)
	if fromScope != nil {
		fromScope.To = fromEnd
	}
	rc.closePendingJoinScopes(fromEnd)

	for i, f := range filters {
		clauseCtx := fromResult
		if rc.d.AliasVisibleIn(f.kind) {
			clauseCtx = Combine(fromResult, OverrideResultTuple(fromResult, proj, proj.ResultCols))
		}
		scope, closeScope := rc.openScope()
		scope.From = f.span.Start.Offset
		if i+1 < len(filters) {
			scope.To = filters[i+1].span.Start.Offset
		} else {
			scope.To = tail
		}
		scope.origin = &ValueRefOrigin{Context: clauseCtx}
		scope.context = clauseCtx

		for _, e := range f.exprs {
			ve := rc.recognizeValue(e, clauseCtx)
			if ve == nil {
				continue
			}
			proj.addChild(ve)
			switch f.kind {
			case dialect.ClauseWhere:
				proj.Where = ve
			case dialect.ClauseGroupBy:
				proj.GroupBy = append(proj.GroupBy, ve)
			case dialect.ClauseHaving:
				proj.Having = ve
			case dialect.ClauseOrderBy:
				proj.OrderBy = append(proj.OrderBy, ve)
			}
		}
		closeScope()
	}

	if c.Limit != nil && c.Limit.Count != nil {
		proj.Limit = rc.recognizeValue(c.Limit.Count, dc)
		proj.addChild(proj.Limit)
	}

	return proj
}

func exprList(e ast.Expr) []ast.Expr {
	if e == nil {
		return nil
	}
	return []ast.Expr{e}
}

func firstFilterStart(filters []filterSpec, tail int) int {
	if len(filters) > 0 {
		return filters[0].span.Start.Offset
	}
	return tail
}

// placeSelectListScope anchors the projection item scope right after the
// SELECT keyword and runs it to the FROM clause (or further when FROM is
// absent).
func (rc *recognition) placeSelectListScope(c *ast.SelectCore, filters []filterSpec, scope *LexicalScope, tail int) {
	scope.From = c.SelectKw.End.Offset
	switch {
	case c.Into != nil:
		scope.To = c.Into.Keyword.Start.Offset
	case c.From != nil:
		scope.To = c.From.Keyword.Start.Offset
	case len(filters) > 0:
		scope.To = filters[0].span.Start.Offset
	default:
		scope.To = tail
	}
}

// closePendingJoinScopes extends open ON-condition scopes to the first
// clause boundary after the FROM clause.
func (rc *recognition) closePendingJoinScopes(to int) {
	for _, p := range rc.pendingJoinScopes {
		p.scope.To = to
	}
	rc.pendingJoinScopes = nil
}

// sealPendingJoinScopes closes open ON-condition scopes at their own join's
// end because another source follows them in the FROM list.
func (rc *recognition) sealPendingJoinScopes() {
	for _, p := range rc.pendingJoinScopes {
		p.scope.To = p.fallback
	}
	rc.pendingJoinScopes = nil
}

// recognizeProjectionItem resolves one select item and appends its columns
// to the projection tuple.
func (rc *recognition) recognizeProjectionItem(item *ast.SelectItem, proj *ProjectionModel, dc DataContext) ValueExpr {
	switch e := item.Expr.(type) {
	case *ast.StarExpr:
		m := &StarModel{}
		m.span = item.Span
		m.given = dc
		m.Columns = dc.Columns()
		proj.ResultCols = append(proj.ResultCols, m.Columns...)
		return m
	case *ast.TupleRef:
		m := rc.resolveTupleRef(e, dc)
		proj.ResultCols = append(proj.ResultCols, m.Columns...)
		return m
	default:
		ve := rc.recognizeValue(item.Expr, dc)
		if ve == nil {
			return nil
		}
		col := &ResultColumn{Source: proj, Type: ve.ValueType()}
		if ref, ok := ve.(*ColumnRefModel); ok && ref.Column != nil {
			col.Symbol = ref.Column.Symbol
			col.RealEntity = ref.Column.RealEntity
			col.RealAttr = ref.Column.RealAttr
		}
		if item.Alias != nil {
			aliasEntry := rc.makeEntry(item.Alias)
			aliasEntry.Symbol().SetClass(ClassColumnAlias)
			aliasEntry.Symbol().SetDefinition(aliasEntry)
			col.Symbol = aliasEntry.Symbol()
		}
		if col.Symbol == nil {
			col.Symbol = NewSymbol("")
		}
		proj.ResultCols = append(proj.ResultCols, col)
		return ve
	}
}

// recognizeIntoTargets resolves SELECT INTO targets: rowset targets get a
// tuple-size check, anything else resolves as a value target.
func (rc *recognition) recognizeIntoTargets(into *ast.IntoClause, proj *ProjectionModel, dc DataContext) {
	for _, name := range into.Targets {
		target := &IntoTargetModel{Name: name}
		target.span = name.Span
		target.given = dc
		for _, part := range name.Parts {
			target.Entries = append(target.Entries, rc.makeEntry(part))
		}
		if len(target.Entries) > 0 {
			target.Entries[0].SetOrigin(&RowsSourceRefOrigin{Context: dc})
		}

		if res := dc.ResolveSource(rc.normalizeParts(name.Parts)); res != nil && res.Table != nil {
			target.Table = res.Table
			rc.classifyEntityParts(target.Entries, res.Table, dc)
			rc.checkIntoTupleSize(name.Span, res.Table, len(proj.ResultCols))
		} else if table := rc.findTable(name); table != nil {
			target.Table = table
			rc.classifyEntityParts(target.Entries, table, dc)
			rc.checkIntoTupleSize(name.Span, table, len(proj.ResultCols))
		} else {
			cr := &ast.ColumnRef{NodeInfo: ast.NodeInfo{Span: name.Span}, Name: name}
			target.Value = rc.resolveColumnRefEntries(cr, target.Entries, dc, &ValueRefOrigin{Context: dc})
		}

		proj.Into = append(proj.Into, target)
		proj.addChild(target)
	}
}

func (rc *recognition) checkIntoTupleSize(span token.Span, table catalog.Entity, have int) {
	attrs, err := table.Attributes(rc.ctx)
	if err != nil {
		rc.downgrade(span, err)
		return
	}
	if len(attrs) != have {
		rc.appendWarning(span, "target %s has %d columns, query produces %d", table.Name(), len(attrs), have)
	}
}

// findTable looks a table up by syntax name, downgrading failures.
func (rc *recognition) findTable(name *ast.ObjectName) catalog.Entity {
	parts := rc.normalizeParts(name.Parts)
	if len(parts) == 0 || name.TrailingDot {
		return nil
	}
	table, err := rc.cat.FindTable(rc.ctx, parts)
	if err != nil {
		rc.downgrade(name.Span, err)
		return nil
	}
	return table
}

func (rc *recognition) normalizeParts(ids []*ast.Ident) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = rc.normalize(id)
	}
	return out
}

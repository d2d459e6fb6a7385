package completion

import (
	"context"
	"log/slog"

	"github.com/halcyondb/semql/internal/parser"
	"github.com/halcyondb/semql/pkg/catalog"
	"github.com/halcyondb/semql/pkg/sem"
	"github.com/halcyondb/semql/pkg/token"
)

// proposer turns one symbols origin into raw proposals. Catalog failures
// are logged and skipped; completion never fails on metadata.
type proposer struct {
	ctx     context.Context
	engine  *Engine
	log     *slog.Logger
	context sem.DataContext
	out     []Proposal
}

// VisitDataContext implements sem.OriginVisitor.
func (p *proposer) VisitDataContext(o *sem.DataContextOrigin) {
	p.addColumns(o.Context)
	p.addSources(o.Context)
	p.addCatalogTables()
}

// VisitRowsSourceRef implements sem.OriginVisitor.
func (p *proposer) VisitRowsSourceRef(o *sem.RowsSourceRefOrigin) {
	p.addSources(o.Context)
	p.addCatalogTables()
	p.addSchemas()
}

// VisitValueRef implements sem.OriginVisitor.
func (p *proposer) VisitValueRef(o *sem.ValueRefOrigin) {
	p.addColumns(o.Context)
	p.addSources(o.Context)
}

// VisitColumnName implements sem.OriginVisitor.
func (p *proposer) VisitColumnName(o *sem.ColumnNameOrigin) {
	p.addColumns(o.Context)
}

// VisitObjectChild implements sem.OriginVisitor.
func (p *proposer) VisitObjectChild(o *sem.ObjectChildOrigin) {
	if o.Parent == nil {
		return
	}
	container, ok := o.Parent.(catalog.Container)
	if !ok {
		return
	}
	children, err := container.Children(p.ctx)
	if err != nil {
		p.log.Debug("child listing failed", "object", catalog.PathOf(o.Parent), "error", err.Error())
		return
	}
	for _, child := range children {
		p.addObject(child)
	}
}

// VisitSourceColumns implements sem.OriginVisitor.
func (p *proposer) VisitSourceColumns(o *sem.SourceColumnsOrigin) {
	found := false
	for _, col := range o.Context.Columns() {
		if col.Source == o.Source.Source && col.Symbol != nil {
			p.addColumn(col)
			found = true
		}
	}
	if !found && o.Source.Table != nil {
		p.addTableAttributes(o.Source.Table)
	}
}

// VisitTypeMember implements sem.OriginVisitor.
func (p *proposer) VisitTypeMember(o *sem.TypeMemberOrigin) {
	if o.Type == nil {
		return
	}
	members, err := o.Type.Members(p.ctx)
	if err != nil {
		p.log.Debug("member listing failed", "type", o.Type.Name, "error", err.Error())
		return
	}
	for _, m := range members {
		p.out = append(p.out, Proposal{
			Text:        p.engine.Dialect.QuoteIfNeeded(m.Name),
			Kind:        KindMember,
			Description: m.TypeName,
		})
	}
}

func (p *proposer) addColumns(dc sem.DataContext) {
	if dc == nil {
		return
	}
	for _, col := range dc.Columns() {
		p.addColumn(col)
	}
}

func (p *proposer) addColumn(col *sem.ResultColumn) {
	if col.Symbol == nil || col.Symbol.Name() == "" {
		return
	}
	desc := ""
	if col.RealEntity != nil {
		desc = catalog.PathOf(col.RealEntity)
	}
	p.out = append(p.out, Proposal{
		Text:        p.engine.Dialect.QuoteIfNeeded(col.Symbol.Name()),
		Kind:        KindColumn,
		Description: desc,
	})
}

func (p *proposer) addSources(dc sem.DataContext) {
	if dc == nil {
		return
	}
	info := sem.KnownSources(dc)
	for _, res := range info.Resolutions {
		switch {
		case res.IsCTE && res.Alias != nil:
			p.out = append(p.out, Proposal{Text: res.Alias.Name(), Kind: KindCTE})
		case res.Alias != nil:
			desc := ""
			if res.Table != nil {
				desc = catalog.PathOf(res.Table)
			}
			p.out = append(p.out, Proposal{Text: res.Alias.Name(), Kind: KindAlias, Description: desc})
		case res.Table != nil:
			p.addObject(res.Table)
		}
	}
}

func (p *proposer) addCatalogTables() {
	container, err := p.engine.Catalog.DefaultContainer(p.ctx)
	if err != nil {
		p.log.Debug("default container lookup failed", "error", err.Error())
		return
	}
	if container == nil {
		return
	}
	children, err := container.Children(p.ctx)
	if err != nil {
		p.log.Debug("table listing failed", "error", err.Error())
		return
	}
	for _, child := range children {
		p.addObject(child)
	}
}

func (p *proposer) addSchemas() {
	children, err := p.engine.Catalog.Root().Children(p.ctx)
	if err != nil {
		p.log.Debug("schema listing failed", "error", err.Error())
		return
	}
	for _, child := range children {
		p.addObject(child)
	}
}

func (p *proposer) addObject(obj catalog.Object) {
	var kind Kind
	switch obj.Kind() {
	case catalog.KindCatalog:
		kind = KindCatalog
	case catalog.KindSchema:
		kind = KindSchema
	case catalog.KindTable:
		kind = KindTable
	case catalog.KindView:
		kind = KindView
	case catalog.KindColumn:
		kind = KindColumn
	default:
		return
	}
	p.out = append(p.out, Proposal{
		Text:        p.engine.Dialect.QuoteIfNeeded(obj.Name()),
		Kind:        kind,
		Description: catalog.PathOf(obj),
	})
}

func (p *proposer) addTableAttributes(table catalog.Entity) {
	attrs, err := table.Attributes(p.ctx)
	if err != nil {
		p.log.Debug("attribute listing failed", "table", catalog.PathOf(table), "error", err.Error())
		return
	}
	for _, attr := range attrs {
		p.out = append(p.out, Proposal{
			Text:        p.engine.Dialect.QuoteIfNeeded(attr.Name),
			Kind:        KindColumn,
			Description: catalog.PathOf(table),
		})
	}
}

// proposeDottedParts is the positional fallback: when the model has no
// chained origin for the cursor, the dotted name before it is read straight
// off the token stream and resolved as a source, a composite column, or a
// catalog object path.
func (e *Engine) proposeDottedParts(ctx context.Context, p *proposer, text string, lc *sem.LexicalContext, offset int) {
	parts := dottedPartsBefore(text, offset)
	if len(parts) == 0 || lc.Context == nil {
		return
	}

	if res := lc.Context.ResolveSource(e.normalizeAll(parts)); res != nil {
		origin := &sem.SourceColumnsOrigin{Source: res, Context: lc.Context}
		origin.Apply(p)
		return
	}

	if col := sem.ResolveColumn(lc.Context, e.Dialect.NormalizeName(parts[0])); col != nil {
		typ := col.Type
		for _, part := range parts[1:] {
			if typ == nil {
				return
			}
			attr, err := typ.FindNamedMember(ctx, e.Dialect.NormalizeName(part))
			if err != nil || attr == nil {
				return
			}
			typ = sem.TypeOfAttribute(attr)
		}
		origin := &sem.TypeMemberOrigin{Type: typ}
		origin.Apply(p)
		return
	}

	obj, err := e.Catalog.FindObject(ctx, e.normalizeAll(parts))
	if err != nil || obj == nil {
		return
	}
	origin := &sem.ObjectChildOrigin{Parent: obj, Context: lc.Context}
	origin.Apply(p)
}

func (e *Engine) normalizeAll(parts []string) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = e.Dialect.NormalizeName(p)
	}
	return out
}

// dottedPartsBefore reads the identifier chain ending in a period right
// before the offset (or before the word at the offset).
func dottedPartsBefore(text string, offset int) []string {
	tokens := parser.Tokenize(text)

	// index of the last token ending at or before the cursor, skipping the
	// word being typed
	last := -1
	for i, t := range tokens {
		if t.Span.Start.Offset >= offset {
			break
		}
		if t.Span.Contains(offset) || t.Span.End.Offset == offset {
			if t.Type == token.IDENT || token.IsKeyword(t.Type) {
				break
			}
		}
		last = i
	}
	if last < 0 || tokens[last].Type != token.DOT {
		return nil
	}

	var parts []string
	i := last - 1
	for i >= 0 {
		t := tokens[i]
		if t.Type != token.IDENT && !token.IsKeyword(t.Type) {
			break
		}
		parts = append([]string{t.Literal}, parts...)
		if i-1 < 0 || tokens[i-1].Type != token.DOT {
			break
		}
		i -= 2
	}
	return parts
}

// Package completion proposes identifiers, keywords, and join conditions
// for a cursor position in SQL text, backed by the semantic query model.
package completion

import (
	"context"
	"log/slog"

	"github.com/halcyondb/semql/internal/parser"
	"github.com/halcyondb/semql/pkg/ast"
	"github.com/halcyondb/semql/pkg/catalog"
	"github.com/halcyondb/semql/pkg/dialect"
	"github.com/halcyondb/semql/pkg/sem"
	"github.com/halcyondb/semql/pkg/token"
)

// Kind classifies a proposal for rendering.
type Kind int

// Proposal kinds.
const (
	KindKeyword Kind = iota
	KindCatalog
	KindSchema
	KindTable
	KindView
	KindColumn
	KindAlias
	KindCTE
	KindMember
	KindJoinCondition
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindCatalog:
		return "catalog"
	case KindSchema:
		return "schema"
	case KindTable:
		return "table"
	case KindView:
		return "view"
	case KindColumn:
		return "column"
	case KindAlias:
		return "alias"
	case KindCTE:
		return "cte"
	case KindMember:
		return "member"
	case KindJoinCondition:
		return "join condition"
	}
	return "unknown"
}

// Proposal is one completion item.
type Proposal struct {
	// Text is inserted over the replacement range.
	Text string
	Kind Kind
	// Score orders proposals; higher is better. Zero or below is filtered
	// out before a set is returned.
	Score int
	// Replacement is the text range the proposal replaces. When the cursor
	// touches a word the range covers the whole word, otherwise it is empty
	// at the request offset.
	Replacement token.Span
	// Description names the defining object, when one exists.
	Description string
}

// ProposalSet groups proposals computed from one origin.
type ProposalSet struct {
	Proposals []Proposal
}

// Engine computes completion proposals. Dialect and Catalog are required.
type Engine struct {
	Dialect *dialect.Dialect
	Catalog catalog.Catalog
	Logger  *slog.Logger

	// SearchInsideWords admits substring matches in addition to prefix
	// matches.
	SearchInsideWords bool
}

// Propose computes the proposal sets for one cursor offset. Empty sets are
// dropped, except that a cursor inside a comment or string literal yields
// exactly one empty set. Analysis problems degrade the proposals instead of
// failing the request; the error reports misuse only.
func (e *Engine) Propose(ctx context.Context, text string, offset int) ([]ProposalSet, error) {
	if e.Dialect == nil {
		return nil, dialect.ErrDialectRequired
	}
	if e.Catalog == nil {
		return nil, catalog.ErrCatalogRequired
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	log := e.Logger
	if log == nil {
		log = slog.Default()
	}

	res, err := parser.Parse(text, e.Dialect)
	if err != nil {
		return nil, err
	}
	if insideLiteralOrComment(text, res, offset) {
		return []ProposalSet{{}}, nil
	}

	insp := parser.Inspect(text, offset)
	prefix, replace := cursorWord(text, insp, offset)

	stmt := statementAt(res.Script, offset)
	if stmt == nil || insp.OffQuery {
		set := e.keywordSet(insp.Keywords, prefix, replace)
		return dropEmpty([]ProposalSet{set}), nil
	}

	analyzer := &sem.Analyzer{Dialect: e.Dialect, Catalog: e.Catalog, Logger: log}
	model, err := analyzer.Analyze(ctx, stmt)
	if err != nil {
		return nil, err
	}
	lc := model.LexicalContextAt(offset)

	p := &proposer{ctx: ctx, engine: e, log: log, context: lc.Context}

	switch {
	case lc.Item != nil && lc.Item.Origin() != nil:
		lc.Item.Origin().Apply(p)
	case lc.Origin != nil && (!insp.HasPeriod || lc.Origin.IsChained()):
		lc.Origin.Apply(p)
	case insp.HasPeriod:
		e.proposeDottedParts(ctx, p, text, lc, offset)
	case lc.Origin != nil:
		lc.Origin.Apply(p)
	}

	if insp.ExpectsJoinCondition {
		p.out = append(p.out, e.joinConditions(ctx, model, lc, offset, prefix)...)
	}

	sets := []ProposalSet{e.finishSet(p.out, prefix, replace)}
	if allowKeywords(insp, lc) {
		sets = append(sets, e.keywordSet(insp.Keywords, prefix, replace))
	}
	return dropEmpty(sets), nil
}

// cursorWord extracts the word prefix being typed and the range proposals
// should replace.
func cursorWord(text string, insp parser.Inspection, offset int) (string, token.Span) {
	if !insp.WordFound {
		pos := token.Position{Offset: offset}
		return "", token.Span{Start: pos, End: pos}
	}
	start := insp.Word.Span.Start.Offset
	end := offset
	if end > insp.Word.Span.End.Offset {
		end = insp.Word.Span.End.Offset
	}
	return text[start:end], insp.Word.Span
}

// statementAt picks the statement the offset belongs to. An offset past the
// statement's last token still counts while no later statement started.
func statementAt(script *ast.Script, offset int) ast.Statement {
	if script == nil {
		return nil
	}
	var current ast.Statement
	for _, stmt := range script.Statements {
		span := stmt.GetSpan()
		if span.Start.Offset > offset {
			break
		}
		current = stmt
	}
	return current
}

// insideLiteralOrComment reports whether the offset sits strictly inside a
// string literal or comment, where completion must stay silent.
func insideLiteralOrComment(text string, res *parser.Result, offset int) bool {
	for _, c := range res.Comments {
		if offset > c.Span.Start.Offset && offset <= c.Span.End.Offset {
			return true
		}
	}
	for _, t := range parser.Tokenize(text) {
		if t.Type == token.STRING &&
			offset > t.Span.Start.Offset && offset < t.Span.End.Offset {
			return true
		}
	}
	return false
}

// allowKeywords gates keyword proposals: never after a period, never on a
// chained origin, and only when the word at the cursor is not already
// classified as something meaningful.
func allowKeywords(insp parser.Inspection, lc *sem.LexicalContext) bool {
	if insp.HasPeriod {
		return false
	}
	if lc.Origin != nil && lc.Origin.IsChained() {
		return false
	}
	if lc.Item == nil {
		return true
	}
	switch lc.Item.Symbol().Class() {
	case sem.ClassUnknown, sem.ClassError, sem.ClassReserved:
		return true
	default:
		return false
	}
}

func (e *Engine) keywordSet(words []string, prefix string, replace token.Span) ProposalSet {
	proposals := make([]Proposal, 0, len(words))
	for _, w := range words {
		proposals = append(proposals, Proposal{Text: w, Kind: KindKeyword})
	}
	return e.finishSet(proposals, prefix, replace)
}

// finishSet scores, filters, deduplicates, and orders one proposal set.
// Proposals arriving pre-scored (join conditions matched per side column)
// keep their score.
func (e *Engine) finishSet(proposals []Proposal, prefix string, replace token.Span) ProposalSet {
	seen := make(map[string]struct{}, len(proposals))
	out := make([]Proposal, 0, len(proposals))
	for _, p := range proposals {
		if _, dup := seen[p.Text]; dup {
			continue
		}
		if p.Score == 0 {
			p.Score = matchScore(prefix, p.Text, e.SearchInsideWords)
		}
		if p.Score <= 0 {
			continue
		}
		seen[p.Text] = struct{}{}
		p.Replacement = replace
		out = append(out, p)
	}
	sortProposals(out, prefix)
	return ProposalSet{Proposals: out}
}

func dropEmpty(sets []ProposalSet) []ProposalSet {
	out := sets[:0]
	for _, s := range sets {
		if len(s.Proposals) > 0 {
			out = append(out, s)
		}
	}
	return out
}

package sem

import (
	"math"

	"github.com/halcyondb/semql/pkg/token"
)

// ModelNode is one node of the query model tree built by the recognizer.
// Contexts are assigned exactly once during recognition and read-only
// afterwards.
type ModelNode interface {
	Span() token.Span
	Children() []ModelNode
	// GivenContext is the context the node resolves its identifiers in.
	GivenContext() DataContext
	// ResultContext is the context the node exposes to consumers. For
	// value expressions it equals the given context.
	ResultContext() DataContext
}

// RowsSource is a model node producing rows: tables, projections, joins,
// set operations, CTE consumers.
type RowsSource interface {
	ModelNode
	rowsSource()
}

// ValueExpr is a model node for a value expression with an inferred type.
type ValueExpr interface {
	ModelNode
	ValueType() *ValueType
}

// node carries the common model-node state.
type node struct {
	span     token.Span
	children []ModelNode
	given    DataContext
	result   DataContext
}

func (n *node) Span() token.Span           { return n.span }
func (n *node) Children() []ModelNode      { return n.children }
func (n *node) GivenContext() DataContext  { return n.given }
func (n *node) ResultContext() DataContext { return n.result }

func (n *node) addChild(c ModelNode) {
	if c != nil {
		n.children = append(n.children, c)
	}
}

// ScopeTail marks a lexical scope open to the end of the statement.
const ScopeTail = math.MaxInt

// LexicalScope is a half-open offset interval [From, To) in which one
// origin governs identifier proposals. Scopes of one projection never
// overlap; scopes of nested queries nest inside enclosing intervals.
type LexicalScope struct {
	From, To int
	origin   Origin
	context  DataContext
	items    []*SymbolEntry
}

// Contains reports whether the offset falls inside the scope.
func (s *LexicalScope) Contains(offset int) bool {
	return offset >= s.From && offset < s.To
}

// Origin returns the symbols origin governing the scope, or nil.
func (s *LexicalScope) Origin() Origin { return s.origin }

// Context returns the resolution context of the scope, or nil.
func (s *LexicalScope) Context() DataContext { return s.context }

// Items returns the symbol entries registered in the scope.
func (s *LexicalScope) Items() []*SymbolEntry { return s.items }

func (s *LexicalScope) registerItem(e *SymbolEntry) {
	s.items = append(s.items, e)
}

func (s *LexicalScope) width() int {
	return s.To - s.From
}

// QueryModel is the analyzed form of one statement: the model tree, the
// lexical scopes, every symbol occurrence, and the collected diagnostics.
type QueryModel struct {
	statement ModelNode
	scopes    []*LexicalScope
	entries   []*SymbolEntry
	diags     []Diagnostic
	given     DataContext
	result    DataContext
}

// Statement returns the root model node. Nil for an empty model.
func (m *QueryModel) Statement() ModelNode { return m.statement }

// Diagnostics returns the problems found during analysis.
func (m *QueryModel) Diagnostics() []Diagnostic { return m.diags }

// Scopes returns all lexical scopes of the statement.
func (m *QueryModel) Scopes() []*LexicalScope { return m.scopes }

// Entries returns every symbol occurrence in document order.
func (m *QueryModel) Entries() []*SymbolEntry { return m.entries }

// GivenContext returns the statement-level context.
func (m *QueryModel) GivenContext() DataContext { return m.given }

// ResultContext returns the context of the statement's result tuple.
// Equals the given context for statements that produce no rows.
func (m *QueryModel) ResultContext() DataContext { return m.result }

// ResultColumns returns the statement's result tuple columns.
func (m *QueryModel) ResultColumns() []*ResultColumn {
	if m.result == nil {
		return nil
	}
	return m.result.Columns()
}

// LexicalContext is what completion needs to know about one offset.
type LexicalContext struct {
	Scope   *LexicalScope
	Origin  Origin
	Item    *SymbolEntry
	Node    ModelNode
	Context DataContext
}

// LexicalContextAt locates the innermost scope, symbol occurrence, and
// model node around an offset. The position just typed at the cursor is
// offset-1, so a word ending exactly at the cursor still counts.
func (m *QueryModel) LexicalContextAt(offset int) *LexicalContext {
	lc := &LexicalContext{}

	for _, s := range m.scopes {
		if !s.Contains(offset) {
			continue
		}
		if lc.Scope == nil || s.width() < lc.Scope.width() {
			lc.Scope = s
		}
	}
	if lc.Scope != nil {
		lc.Origin = lc.Scope.Origin()
		lc.Context = lc.Scope.Context()
	}

	probe := offset - 1
	for _, e := range m.entries {
		if e.Span().Contains(probe) || e.Span().Contains(offset) {
			lc.Item = e
			if e.Origin() != nil {
				lc.Origin = e.Origin()
			}
		}
	}

	lc.Node = deepestNodeAt(m.statement, probe)
	if lc.Context == nil && lc.Node != nil {
		if given := lc.Node.GivenContext(); given != nil {
			lc.Context = given
		} else {
			lc.Context = lc.Node.ResultContext()
		}
	}
	if lc.Context == nil {
		lc.Context = m.given
	}
	return lc
}

// deepestNodeAt walks the model tree to the innermost node containing the
// offset.
func deepestNodeAt(n ModelNode, offset int) ModelNode {
	if n == nil || !n.Span().Contains(offset) {
		return nil
	}
	for _, c := range n.Children() {
		if deep := deepestNodeAt(c, offset); deep != nil {
			return deep
		}
	}
	return n
}

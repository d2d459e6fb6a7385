// Package sem implements semantic analysis of SQL statements: identifier
// resolution against catalog metadata, expression typing, diagnostics, and
// the query model consumed by completion.
package sem

import (
	"github.com/halcyondb/semql/pkg/token"
)

// SymbolClass classifies what an identifier denotes.
type SymbolClass int

// Symbol classes.
const (
	ClassUnknown SymbolClass = iota
	ClassQuoted
	ClassError
	ClassReserved
	ClassCatalog
	ClassSchema
	ClassTable
	ClassObject
	ClassColumn
	ClassColumnDerived
	ClassTableAlias
	ClassColumnAlias
	ClassType
)

// String returns a human-readable class name.
func (c SymbolClass) String() string {
	switch c {
	case ClassQuoted:
		return "quoted"
	case ClassError:
		return "error"
	case ClassReserved:
		return "reserved"
	case ClassCatalog:
		return "catalog"
	case ClassSchema:
		return "schema"
	case ClassTable:
		return "table"
	case ClassObject:
		return "object"
	case ClassColumn:
		return "column"
	case ClassColumnDerived:
		return "derived column"
	case ClassTableAlias:
		return "table alias"
	case ClassColumnAlias:
		return "column alias"
	case ClassType:
		return "type"
	default:
		return "unknown"
	}
}

// Symbol is one name within a statement. All occurrences of the same name in
// the same role share a Symbol, so classifying one classifies them all.
type Symbol struct {
	name    string // normalized
	class   SymbolClass
	def     Definition
	entries []*SymbolEntry
}

// NewSymbol creates an unclassified symbol for a normalized name.
func NewSymbol(name string) *Symbol {
	return &Symbol{name: name}
}

// Name returns the normalized name.
func (s *Symbol) Name() string { return s.name }

// Class returns the current classification.
func (s *Symbol) Class() SymbolClass { return s.class }

// SetClass classifies the symbol. A classification never silently falls
// back to unknown.
func (s *Symbol) SetClass(c SymbolClass) {
	if c == ClassUnknown {
		return
	}
	s.class = c
}

// IsNotClassified reports whether resolution may still assign a class.
// Quoted counts as unclassified so quoted identifiers still resolve.
func (s *Symbol) IsNotClassified() bool {
	return s.class == ClassUnknown || s.class == ClassQuoted
}

// Definition returns the defining entity, or nil.
func (s *Symbol) Definition() Definition { return s.def }

// SetDefinition attaches a definition and classifies the symbol from it.
func (s *Symbol) SetDefinition(def Definition) {
	if def == nil {
		return
	}
	s.def = def
	s.SetClass(def.DefinedClass())
}

// Entries returns all occurrences of this symbol.
func (s *Symbol) Entries() []*SymbolEntry { return s.entries }

// SymbolEntry is one occurrence of a symbol in the source text.
// An entry is itself a Definition, so resolved references chain to their
// defining occurrence.
type SymbolEntry struct {
	span   token.Span
	raw    string // text as written, quotes stripped
	symbol *Symbol
	def    Definition
	origin Origin
}

// NewEntry creates an entry and registers it with the symbol.
func NewEntry(span token.Span, raw string, sym *Symbol) *SymbolEntry {
	e := &SymbolEntry{span: span, raw: raw, symbol: sym}
	sym.entries = append(sym.entries, e)
	return e
}

// Span returns the source span of the occurrence.
func (e *SymbolEntry) Span() token.Span { return e.span }

// Raw returns the occurrence text as written.
func (e *SymbolEntry) Raw() string { return e.raw }

// Symbol returns the shared symbol.
func (e *SymbolEntry) Symbol() *Symbol { return e.symbol }

// Name returns the normalized name.
func (e *SymbolEntry) Name() string { return e.symbol.Name() }

// Definition returns this entry's own definition, falling back to the
// symbol's.
func (e *SymbolEntry) Definition() Definition {
	if e.def != nil {
		return e.def
	}
	return e.symbol.Definition()
}

// SetDefinition attaches a definition to this occurrence and classifies the
// symbol from it.
func (e *SymbolEntry) SetDefinition(def Definition) {
	e.def = def
	if def != nil {
		e.symbol.SetClass(def.DefinedClass())
	}
}

// Origin returns the resolution origin attached to this occurrence.
func (e *SymbolEntry) Origin() Origin { return e.origin }

// SetOrigin attaches the resolution origin.
func (e *SymbolEntry) SetOrigin(o Origin) { e.origin = o }

// DefinedClass implements Definition: a reference defines its symbol's
// class.
func (e *SymbolEntry) DefinedClass() SymbolClass {
	return e.symbol.Class()
}

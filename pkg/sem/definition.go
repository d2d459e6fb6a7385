package sem

import "github.com/halcyondb/semql/pkg/catalog"

// Definition describes what an identifier occurrence resolved to. The set
// of implementations is closed: a chained reference (*SymbolEntry), a
// database object, a result column, or a value type.
type Definition interface {
	DefinedClass() SymbolClass
}

// ObjectDefinition defines a symbol as a database object.
type ObjectDefinition struct {
	Object catalog.Object
	Class  SymbolClass
}

// DefinedClass implements Definition.
func (d *ObjectDefinition) DefinedClass() SymbolClass { return d.Class }

// ClassForObject maps a catalog object kind to a symbol class.
func ClassForObject(obj catalog.Object) SymbolClass {
	switch obj.Kind() {
	case catalog.KindCatalog:
		return ClassCatalog
	case catalog.KindSchema:
		return ClassSchema
	case catalog.KindTable, catalog.KindView:
		return ClassTable
	case catalog.KindColumn:
		return ClassColumn
	default:
		return ClassObject
	}
}

// DefineObject builds an ObjectDefinition with the class inferred from the
// object's kind.
func DefineObject(obj catalog.Object) *ObjectDefinition {
	return &ObjectDefinition{Object: obj, Class: ClassForObject(obj)}
}

// ColumnDefinition defines a symbol as a result column of a rows source.
type ColumnDefinition struct {
	Column *ResultColumn
}

// DefinedClass implements Definition.
func (d *ColumnDefinition) DefinedClass() SymbolClass {
	if d.Column != nil && d.Column.RealAttr == nil {
		return ClassColumnDerived
	}
	return ClassColumn
}

// TypeDefinition defines a symbol as a value of some type, such as a
// composite member.
type TypeDefinition struct {
	Type *ValueType
}

// DefinedClass implements Definition.
func (d *TypeDefinition) DefinedClass() SymbolClass { return ClassColumn }

// UnrollDefinition follows entry-to-entry chains to the underlying
// definition. A visited set guards against accidental cycles; on revisit
// the walk stops at the last definition before the cycle closed.
func UnrollDefinition(def Definition) Definition {
	visited := make(map[*SymbolEntry]struct{})
	for {
		entry, ok := def.(*SymbolEntry)
		if !ok {
			return def
		}
		if _, seen := visited[entry]; seen {
			return def
		}
		visited[entry] = struct{}{}
		next := entry.Definition()
		if next == nil || next == Definition(entry) {
			return def
		}
		def = next
	}
}

// Package catalog defines the metadata collaborator the semantic analyzer
// resolves identifiers against.
//
// Implementations may be backed by a live connection; every lookup takes a
// context.Context for cancellation and may fail with *AccessError. The
// analyzer treats lookup failures as "no data" and reports them as
// diagnostics instead of aborting.
package catalog

import (
	"context"
	"errors"
	"fmt"
)

// ObjectKind classifies a database object.
type ObjectKind int

// Object kinds.
const (
	KindUnknown ObjectKind = iota
	KindCatalog
	KindSchema
	KindTable
	KindView
	KindColumn
)

// String returns a human-readable kind name.
func (k ObjectKind) String() string {
	switch k {
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
	default:
		return "unknown"
	}
}

// Object is a node in the metadata hierarchy.
type Object interface {
	Name() string
	Kind() ObjectKind
	Parent() Object // nil at the root
}

// Container is an object holding other objects (catalog, schema).
type Container interface {
	Object
	Children(ctx context.Context) ([]Object, error)
}

// Entity is a rows source object (table or view).
type Entity interface {
	Object
	Attributes(ctx context.Context) ([]*Attribute, error)
	// Associations returns foreign keys declared on this entity.
	Associations(ctx context.Context) ([]*ForeignKey, error)
	// References returns foreign keys on other entities pointing here.
	References(ctx context.Context) ([]*ForeignKey, error)
}

// Attribute describes one column of an entity, or one member of a
// composite type when nested under Members.
type Attribute struct {
	Name     string
	TypeName string
	Ordinal  int
	Members  []*Attribute // non-nil for composite-typed attributes
}

// ForeignKey links columns of one entity to columns of another.
type ForeignKey struct {
	Name        string
	From        Entity
	FromColumns []string
	To          Entity
	ToColumns   []string
}

// Catalog is the entry point for metadata lookups.
type Catalog interface {
	// Root returns the top-level container.
	Root() Container
	// DefaultContainer returns the container unqualified names resolve
	// against (the connection's default schema).
	DefaultContainer(ctx context.Context) (Container, error)
	// FindTable resolves a qualified table name. Missing parts are
	// completed from the default container. Returns nil when the table
	// does not exist.
	FindTable(ctx context.Context, parts []string) (Entity, error)
	// FindObject resolves a qualified name to any object (container or
	// entity). Returns nil when nothing matches.
	FindObject(ctx context.Context, parts []string) (Object, error)
}

// ErrNotFound reports a missing object where an implementation needs a
// sentinel rather than a nil return.
var ErrNotFound = errors.New("object not found")

// ErrCatalogRequired reports analysis attempted without a catalog.
var ErrCatalogRequired = errors.New("catalog is required")

// AccessError wraps a metadata lookup failure.
type AccessError struct {
	Op     string // the lookup that failed, e.g. "attributes"
	Object string // dotted object name, may be empty
	Err    error
}

// Error implements the error interface.
func (e *AccessError) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("catalog %s %s: %v", e.Op, e.Object, e.Err)
	}
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *AccessError) Unwrap() error {
	return e.Err
}

// PathOf returns the dotted path of an object from the root, excluding the
// root container itself.
func PathOf(obj Object) string {
	if obj == nil {
		return ""
	}
	var parts []string
	for o := obj; o != nil && o.Parent() != nil; o = o.Parent() {
		parts = append(parts, o.Name())
	}
	out := ""
	for i := len(parts) - 1; i >= 0; i-- {
		if out != "" {
			out += "."
		}
		out += parts[i]
	}
	return out
}

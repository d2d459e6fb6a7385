package sem

import "github.com/halcyondb/semql/pkg/catalog"

// Origin records where a to-be-resolved identifier takes its candidates
// from. Completion dispatches on the concrete variant via OriginVisitor.
//
// Chained origins follow a period: the candidate set depends entirely on
// the resolved prefix, so keyword proposals are never appropriate there.
type Origin interface {
	// IsChained reports whether this origin continues a dotted name.
	IsChained() bool
	Apply(v OriginVisitor)
}

// OriginVisitor dispatches over the closed set of origin variants.
type OriginVisitor interface {
	VisitDataContext(o *DataContextOrigin)
	VisitRowsSourceRef(o *RowsSourceRefOrigin)
	VisitValueRef(o *ValueRefOrigin)
	VisitColumnName(o *ColumnNameOrigin)
	VisitObjectChild(o *ObjectChildOrigin)
	VisitSourceColumns(o *SourceColumnsOrigin)
	VisitTypeMember(o *TypeMemberOrigin)
}

// DataContextOrigin offers everything visible in a context: columns, rows
// sources, and database objects.
type DataContextOrigin struct {
	Context DataContext
}

// IsChained implements Origin.
func (o *DataContextOrigin) IsChained() bool { return false }

// Apply implements Origin.
func (o *DataContextOrigin) Apply(v OriginVisitor) { v.VisitDataContext(o) }

// RowsSourceRefOrigin offers rows sources: tables, views, CTEs, and the
// containers on the way to them. Used in FROM-like positions.
type RowsSourceRefOrigin struct {
	Context DataContext
}

// IsChained implements Origin.
func (o *RowsSourceRefOrigin) IsChained() bool { return false }

// Apply implements Origin.
func (o *RowsSourceRefOrigin) Apply(v OriginVisitor) { v.VisitRowsSourceRef(o) }

// ValueRefOrigin offers value references: columns first, plus the sources
// usable to qualify them.
type ValueRefOrigin struct {
	Context DataContext
}

// IsChained implements Origin.
func (o *ValueRefOrigin) IsChained() bool { return false }

// Apply implements Origin.
func (o *ValueRefOrigin) Apply(v OriginVisitor) { v.VisitValueRef(o) }

// ColumnNameOrigin offers bare column names of one context, with no source
// qualification. Used for SET targets, INSERT column lists, and USING.
type ColumnNameOrigin struct {
	Context DataContext
}

// IsChained implements Origin.
func (o *ColumnNameOrigin) IsChained() bool { return false }

// Apply implements Origin.
func (o *ColumnNameOrigin) Apply(v OriginVisitor) { v.VisitColumnName(o) }

// ObjectChildOrigin offers children of a resolved database object, after
// "schema." or "catalog.schema." prefixes.
type ObjectChildOrigin struct {
	Parent  catalog.Object
	Context DataContext
}

// IsChained implements Origin.
func (o *ObjectChildOrigin) IsChained() bool { return true }

// Apply implements Origin.
func (o *ObjectChildOrigin) Apply(v OriginVisitor) { v.VisitObjectChild(o) }

// SourceColumnsOrigin offers columns of one resolved rows source, after
// "alias." or "table." prefixes.
type SourceColumnsOrigin struct {
	Source  *SourceResolution
	Context DataContext
}

// IsChained implements Origin.
func (o *SourceColumnsOrigin) IsChained() bool { return true }

// Apply implements Origin.
func (o *SourceColumnsOrigin) Apply(v OriginVisitor) { v.VisitSourceColumns(o) }

// TypeMemberOrigin offers named members of a composite value type.
type TypeMemberOrigin struct {
	Type *ValueType
}

// IsChained implements Origin.
func (o *TypeMemberOrigin) IsChained() bool { return true }

// Apply implements Origin.
func (o *TypeMemberOrigin) Apply(v OriginVisitor) { v.VisitTypeMember(o) }

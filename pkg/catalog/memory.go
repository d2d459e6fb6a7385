package catalog

import (
	"context"
	"strings"
)

// Memory is an in-memory Catalog for tests and fixtures. Name comparison is
// case-insensitive. Lookups can be made to fail on demand to exercise the
// analyzer's degraded paths.
type Memory struct {
	root          *MemContainer
	defaultSchema string

	// Err, when set, makes every lookup fail with an *AccessError.
	Err error
}

// NewMemory creates an empty in-memory catalog whose unqualified names
// resolve against defaultSchema.
func NewMemory(defaultSchema string) *Memory {
	m := &Memory{defaultSchema: defaultSchema}
	m.root = &MemContainer{kind: KindCatalog}
	m.AddSchema(defaultSchema)
	return m
}

// Root implements Catalog.
func (m *Memory) Root() Container {
	return m.root
}

// AddSchema adds (or returns the existing) schema container.
func (m *Memory) AddSchema(name string) *MemContainer {
	if c := m.root.child(name); c != nil {
		if mc, ok := c.(*MemContainer); ok {
			return mc
		}
	}
	c := &MemContainer{name: name, kind: KindSchema, parent: m.root}
	m.root.children = append(m.root.children, c)
	return c
}

// Schema returns a schema by name, or nil.
func (m *Memory) Schema(name string) *MemContainer {
	c, _ := m.root.child(name).(*MemContainer)
	return c
}

// DefaultContainer implements Catalog.
func (m *Memory) DefaultContainer(ctx context.Context) (Container, error) {
	if err := m.access(ctx, "default container", ""); err != nil {
		return nil, err
	}
	if c := m.Schema(m.defaultSchema); c != nil {
		return c, nil
	}
	return nil, nil
}

// FindTable implements Catalog.
func (m *Memory) FindTable(ctx context.Context, parts []string) (Entity, error) {
	obj, err := m.FindObject(ctx, parts)
	if err != nil {
		return nil, err
	}
	if ent, ok := obj.(Entity); ok {
		return ent, nil
	}
	return nil, nil
}

// FindObject implements Catalog.
func (m *Memory) FindObject(ctx context.Context, parts []string) (Object, error) {
	if err := m.access(ctx, "find object", strings.Join(parts, ".")); err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, nil
	}
	if obj := m.root.descend(parts); obj != nil {
		return obj, nil
	}
	// Unqualified names fall back to the default schema.
	if sch := m.Schema(m.defaultSchema); sch != nil {
		if obj := sch.descend(parts); obj != nil {
			return obj, nil
		}
	}
	return nil, nil
}

func (m *Memory) access(ctx context.Context, op, obj string) error {
	if err := ctx.Err(); err != nil {
		return &AccessError{Op: op, Object: obj, Err: err}
	}
	if m.Err != nil {
		return &AccessError{Op: op, Object: obj, Err: m.Err}
	}
	return nil
}

// MemContainer is an in-memory catalog or schema.
type MemContainer struct {
	name     string
	kind     ObjectKind
	parent   Object
	children []Object
}

// Name implements Object.
func (c *MemContainer) Name() string { return c.name }

// Kind implements Object.
func (c *MemContainer) Kind() ObjectKind { return c.kind }

// Parent implements Object.
func (c *MemContainer) Parent() Object { return c.parent }

// Children implements Container.
func (c *MemContainer) Children(ctx context.Context) ([]Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, &AccessError{Op: "children", Object: PathOf(c), Err: err}
	}
	out := make([]Object, len(c.children))
	copy(out, c.children)
	return out, nil
}

// AddTable adds a table with the given columns.
func (c *MemContainer) AddTable(name string, cols ...*Attribute) *MemTable {
	t := &MemTable{name: name, kind: KindTable, parent: c, attrs: cols}
	for i, a := range t.attrs {
		if a.Ordinal == 0 {
			a.Ordinal = i + 1
		}
	}
	c.children = append(c.children, t)
	return t
}

func (c *MemContainer) child(name string) Object {
	for _, ch := range c.children {
		if strings.EqualFold(ch.Name(), name) {
			return ch
		}
	}
	return nil
}

func (c *MemContainer) descend(parts []string) Object {
	var cur Object = c
	for _, p := range parts {
		cont, ok := cur.(*MemContainer)
		if !ok {
			return nil
		}
		cur = cont.child(p)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// MemTable is an in-memory table or view.
type MemTable struct {
	name   string
	kind   ObjectKind
	parent Object
	attrs  []*Attribute
	assocs []*ForeignKey
	refs   []*ForeignKey

	// AttrErr, when set, makes Attributes fail.
	AttrErr error
	// AssocErr, when set, makes Associations and References fail.
	AssocErr error
}

// Name implements Object.
func (t *MemTable) Name() string { return t.name }

// Kind implements Object.
func (t *MemTable) Kind() ObjectKind { return t.kind }

// Parent implements Object.
func (t *MemTable) Parent() Object { return t.parent }

// Attributes implements Entity.
func (t *MemTable) Attributes(ctx context.Context) ([]*Attribute, error) {
	if err := ctx.Err(); err != nil {
		return nil, &AccessError{Op: "attributes", Object: PathOf(t), Err: err}
	}
	if t.AttrErr != nil {
		return nil, &AccessError{Op: "attributes", Object: PathOf(t), Err: t.AttrErr}
	}
	out := make([]*Attribute, len(t.attrs))
	copy(out, t.attrs)
	return out, nil
}

// Associations implements Entity.
func (t *MemTable) Associations(ctx context.Context) ([]*ForeignKey, error) {
	if err := t.assocAccess(ctx); err != nil {
		return nil, err
	}
	out := make([]*ForeignKey, len(t.assocs))
	copy(out, t.assocs)
	return out, nil
}

// References implements Entity.
func (t *MemTable) References(ctx context.Context) ([]*ForeignKey, error) {
	if err := t.assocAccess(ctx); err != nil {
		return nil, err
	}
	out := make([]*ForeignKey, len(t.refs))
	copy(out, t.refs)
	return out, nil
}

func (t *MemTable) assocAccess(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &AccessError{Op: "associations", Object: PathOf(t), Err: err}
	}
	if t.AssocErr != nil {
		return &AccessError{Op: "associations", Object: PathOf(t), Err: t.AssocErr}
	}
	return nil
}

// LinkForeignKey declares a foreign key from t to another table and indexes
// it on both sides.
func (t *MemTable) LinkForeignKey(name string, cols []string, to *MemTable, toCols []string) *ForeignKey {
	fk := &ForeignKey{Name: name, From: t, FromColumns: cols, To: to, ToColumns: toCols}
	t.assocs = append(t.assocs, fk)
	to.refs = append(to.refs, fk)
	return fk
}

// Col builds a column attribute.
func Col(name, typeName string) *Attribute {
	return &Attribute{Name: name, TypeName: typeName}
}

// CompositeCol builds a composite-typed column with named members.
func CompositeCol(name, typeName string, members ...*Attribute) *Attribute {
	return &Attribute{Name: name, TypeName: typeName, Members: members}
}

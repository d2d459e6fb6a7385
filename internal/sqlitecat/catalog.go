// Package sqlitecat implements the catalog over a live SQLite database,
// reading table structure and foreign keys through PRAGMA queries.
package sqlitecat

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/halcyondb/semql/pkg/catalog"
)

const schemaName = "main"

var _ catalog.Catalog = (*Catalog)(nil)

// Catalog reads metadata from a SQLite database. All lookups go through
// the connection; nothing is cached, so the catalog always reflects the
// current schema.
type Catalog struct {
	db     *sql.DB
	owned  bool
	root   *rootContainer
	schema *schemaContainer
}

// Open opens a SQLite database file (or ":memory:") as a catalog.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	c := New(db)
	c.owned = true
	return c, nil
}

// New wraps an existing connection. The caller keeps ownership of db.
func New(db *sql.DB) *Catalog {
	c := &Catalog{db: db}
	c.root = &rootContainer{cat: c}
	c.schema = &schemaContainer{cat: c}
	return c
}

// Close releases the connection when the catalog opened it itself.
func (c *Catalog) Close() error {
	if c.owned {
		return c.db.Close()
	}
	return nil
}

// Root implements catalog.Catalog.
func (c *Catalog) Root() catalog.Container { return c.root }

// DefaultContainer implements catalog.Catalog.
func (c *Catalog) DefaultContainer(ctx context.Context) (catalog.Container, error) {
	if err := ctx.Err(); err != nil {
		return nil, c.accessErr("default container", schemaName, err)
	}
	return c.schema, nil
}

// FindTable implements catalog.Catalog. Accepted forms are "table" and
// "main.table".
func (c *Catalog) FindTable(ctx context.Context, parts []string) (catalog.Entity, error) {
	obj, err := c.FindObject(ctx, parts)
	if err != nil {
		return nil, err
	}
	if ent, ok := obj.(catalog.Entity); ok {
		return ent, nil
	}
	return nil, nil
}

// FindObject implements catalog.Catalog.
func (c *Catalog) FindObject(ctx context.Context, parts []string) (catalog.Object, error) {
	if len(parts) == 0 {
		return nil, nil
	}
	if strings.EqualFold(parts[0], schemaName) {
		if len(parts) == 1 {
			return c.schema, nil
		}
		parts = parts[1:]
	}
	if len(parts) > 1 {
		return nil, nil
	}
	return c.lookupTable(ctx, parts[0])
}

func (c *Catalog) lookupTable(ctx context.Context, name string) (catalog.Object, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT name, type FROM sqlite_master WHERE type IN ('table', 'view') AND name = ? COLLATE NOCASE`,
		name)
	var tblName, tblType string
	if err := row.Scan(&tblName, &tblType); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, c.accessErr("find table", name, err)
	}
	kind := catalog.KindTable
	if tblType == "view" {
		kind = catalog.KindView
	}
	return &table{cat: c, name: tblName, kind: kind}, nil
}

func (c *Catalog) tableNames(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, c.accessErr("list tables", schemaName, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, c.accessErr("list tables", schemaName, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, c.accessErr("list tables", schemaName, err)
	}
	return names, nil
}

func (c *Catalog) accessErr(op, obj string, err error) error {
	return &catalog.AccessError{Op: op, Object: obj, Err: err}
}

// rootContainer is the database itself; its only child is the main schema.
type rootContainer struct {
	cat *Catalog
}

func (r *rootContainer) Name() string             { return "" }
func (r *rootContainer) Kind() catalog.ObjectKind { return catalog.KindCatalog }
func (r *rootContainer) Parent() catalog.Object   { return nil }

func (r *rootContainer) Children(ctx context.Context) ([]catalog.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, r.cat.accessErr("children", "", err)
	}
	return []catalog.Object{r.cat.schema}, nil
}

type schemaContainer struct {
	cat *Catalog
}

func (s *schemaContainer) Name() string             { return schemaName }
func (s *schemaContainer) Kind() catalog.ObjectKind { return catalog.KindSchema }
func (s *schemaContainer) Parent() catalog.Object   { return s.cat.root }

func (s *schemaContainer) Children(ctx context.Context) ([]catalog.Object, error) {
	names, err := s.cat.tableNames(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Object, 0, len(names))
	for _, name := range names {
		out = append(out, &table{cat: s.cat, name: name, kind: catalog.KindTable})
	}
	return out, nil
}

// table is a SQLite table or view.
type table struct {
	cat  *Catalog
	name string
	kind catalog.ObjectKind
}

func (t *table) Name() string             { return t.name }
func (t *table) Kind() catalog.ObjectKind { return t.kind }
func (t *table) Parent() catalog.Object   { return t.cat.schema }

// Attributes implements catalog.Entity via PRAGMA table_info.
func (t *table) Attributes(ctx context.Context) ([]*catalog.Attribute, error) {
	rows, err := t.cat.db.QueryContext(ctx,
		fmt.Sprintf(`PRAGMA table_info(%q)`, t.name))
	if err != nil {
		return nil, t.cat.accessErr("attributes", t.name, err)
	}
	defer rows.Close()

	var attrs []*catalog.Attribute
	for rows.Next() {
		var (
			cid     int
			name    string
			typBy   sql.NullString
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typBy, &notNull, &dflt, &pk); err != nil {
			return nil, t.cat.accessErr("attributes", t.name, err)
		}
		attrs = append(attrs, &catalog.Attribute{
			Name:     name,
			TypeName: typBy.String,
			Ordinal:  cid + 1,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, t.cat.accessErr("attributes", t.name, err)
	}
	return attrs, nil
}

// Associations implements catalog.Entity via PRAGMA foreign_key_list.
func (t *table) Associations(ctx context.Context) ([]*catalog.ForeignKey, error) {
	return t.cat.foreignKeysOf(ctx, t)
}

// References implements catalog.Entity by scanning the other tables'
// foreign keys for ones pointing here.
func (t *table) References(ctx context.Context) ([]*catalog.ForeignKey, error) {
	names, err := t.cat.tableNames(ctx)
	if err != nil {
		return nil, err
	}
	var out []*catalog.ForeignKey
	for _, name := range names {
		if strings.EqualFold(name, t.name) {
			continue
		}
		from := &table{cat: t.cat, name: name, kind: catalog.KindTable}
		fks, err := t.cat.foreignKeysOf(ctx, from)
		if err != nil {
			return nil, err
		}
		for _, fk := range fks {
			if strings.EqualFold(fk.To.Name(), t.name) {
				fk.To = t
				out = append(out, fk)
			}
		}
	}
	return out, nil
}

// foreignKeysOf groups PRAGMA foreign_key_list rows by foreign key id.
func (c *Catalog) foreignKeysOf(ctx context.Context, from *table) ([]*catalog.ForeignKey, error) {
	rows, err := c.db.QueryContext(ctx,
		fmt.Sprintf(`PRAGMA foreign_key_list(%q)`, from.name))
	if err != nil {
		return nil, c.accessErr("associations", from.name, err)
	}
	defer rows.Close()

	byID := make(map[int]*catalog.ForeignKey)
	var order []int
	for rows.Next() {
		var (
			id, seq          int
			refTable         string
			fromCol          string
			toCol            sql.NullString
			onUpdate, onDel  string
			match            string
		)
		if err := rows.Scan(&id, &seq, &refTable, &fromCol, &toCol, &onUpdate, &onDel, &match); err != nil {
			return nil, c.accessErr("associations", from.name, err)
		}
		fk, ok := byID[id]
		if !ok {
			fk = &catalog.ForeignKey{
				Name: fmt.Sprintf("fk_%s_%d", from.name, id),
				From: from,
				To:   &table{cat: c, name: refTable, kind: catalog.KindTable},
			}
			byID[id] = fk
			order = append(order, id)
		}
		fk.FromColumns = append(fk.FromColumns, fromCol)
		fk.ToColumns = append(fk.ToColumns, toCol.String)
	}
	if err := rows.Err(); err != nil {
		return nil, c.accessErr("associations", from.name, err)
	}

	out := make([]*catalog.ForeignKey, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out, nil
}

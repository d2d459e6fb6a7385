package sqlitecat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyondb/semql/pkg/catalog"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	_, err = cat.db.Exec(`
		CREATE TABLE departments (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL
		);
		CREATE TABLE employees (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			dept_id INTEGER REFERENCES departments(id)
		);
		CREATE VIEW staff AS SELECT name FROM employees;
	`)
	require.NoError(t, err)
	return cat
}

func TestFindTable(t *testing.T) {
	cat := testCatalog(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		parts []string
		found bool
	}{
		{"unqualified", []string{"employees"}, true},
		{"schema qualified", []string{"main", "employees"}, true},
		{"case insensitive", []string{"EMPLOYEES"}, true},
		{"view", []string{"staff"}, true},
		{"missing", []string{"nosuchtable"}, false},
		{"wrong schema", []string{"other", "employees"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ent, err := cat.FindTable(ctx, tt.parts)
			require.NoError(t, err)
			if tt.found {
				require.NotNil(t, ent)
			} else {
				assert.Nil(t, ent)
			}
		})
	}
}

func TestAttributes(t *testing.T) {
	cat := testCatalog(t)
	ctx := context.Background()

	ent, err := cat.FindTable(ctx, []string{"employees"})
	require.NoError(t, err)
	require.NotNil(t, ent)

	attrs, err := ent.Attributes(ctx)
	require.NoError(t, err)
	require.Len(t, attrs, 3)
	assert.Equal(t, "id", attrs[0].Name)
	assert.Equal(t, "name", attrs[1].Name)
	assert.Equal(t, "dept_id", attrs[2].Name)
	assert.Equal(t, 1, attrs[0].Ordinal)
	assert.Equal(t, "INTEGER", attrs[0].TypeName)
}

func TestForeignKeys(t *testing.T) {
	cat := testCatalog(t)
	ctx := context.Background()

	emp, err := cat.FindTable(ctx, []string{"employees"})
	require.NoError(t, err)

	assocs, err := emp.Associations(ctx)
	require.NoError(t, err)
	require.Len(t, assocs, 1)
	assert.Equal(t, []string{"dept_id"}, assocs[0].FromColumns)
	assert.Equal(t, []string{"id"}, assocs[0].ToColumns)
	assert.Equal(t, "departments", assocs[0].To.Name())

	dep, err := cat.FindTable(ctx, []string{"departments"})
	require.NoError(t, err)
	refs, err := dep.References(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "employees", refs[0].From.Name())
}

func TestSchemaListing(t *testing.T) {
	cat := testCatalog(t)
	ctx := context.Background()

	def, err := cat.DefaultContainer(ctx)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, "main", def.Name())
	assert.Equal(t, catalog.KindSchema, def.Kind())

	children, err := def.Children(ctx)
	require.NoError(t, err)
	// departments, employees, staff
	assert.Len(t, children, 3)

	roots, err := cat.Root().Children(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "main", roots[0].Name())
}

func TestCanceledContext(t *testing.T) {
	cat := testCatalog(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cat.DefaultContainer(ctx)
	var accessErr *catalog.AccessError
	assert.ErrorAs(t, err, &accessErr)
}

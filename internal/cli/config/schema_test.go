package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureSchema = `
default_schema: public
schemas:
  - name: public
    tables:
      - name: employees
        columns:
          - {name: id, type: integer}
          - {name: name, type: varchar}
          - {name: dept_id, type: integer}
          - name: address
            type: address_t
            members:
              - {name: city, type: varchar}
              - {name: zip, type: varchar}
        foreign_keys:
          - {name: fk_emp_dept, columns: [dept_id], ref_table: departments, ref_columns: [id]}
      - name: departments
        columns:
          - {name: id, type: integer}
          - {name: title, type: varchar}
  - name: audit
    tables:
      - name: changes
        columns:
          - {name: id, type: integer}
        foreign_keys:
          - {name: fk_changes_emp, columns: [id], ref_table: public.employees, ref_columns: [id]}
`

func TestParseSchema(t *testing.T) {
	cat, err := ParseSchema([]byte(fixtureSchema))
	require.NoError(t, err)
	ctx := context.Background()

	def, err := cat.DefaultContainer(ctx)
	require.NoError(t, err)
	assert.Equal(t, "public", def.Name())

	emp, err := cat.FindTable(ctx, []string{"employees"})
	require.NoError(t, err)
	require.NotNil(t, emp)

	attrs, err := emp.Attributes(ctx)
	require.NoError(t, err)
	require.Len(t, attrs, 4)
	assert.Equal(t, "address_t", attrs[3].TypeName)
	require.Len(t, attrs[3].Members, 2)
	assert.Equal(t, "city", attrs[3].Members[0].Name)
}

func TestParseSchemaForeignKeys(t *testing.T) {
	cat, err := ParseSchema([]byte(fixtureSchema))
	require.NoError(t, err)
	ctx := context.Background()

	emp, err := cat.FindTable(ctx, []string{"employees"})
	require.NoError(t, err)

	assocs, err := emp.Associations(ctx)
	require.NoError(t, err)
	require.Len(t, assocs, 1)
	assert.Equal(t, "fk_emp_dept", assocs[0].Name)
	assert.Equal(t, "departments", assocs[0].To.Name())

	// qualified cross-schema reference
	changes, err := cat.FindTable(ctx, []string{"audit", "changes"})
	require.NoError(t, err)
	assocs, err = changes.Associations(ctx)
	require.NoError(t, err)
	require.Len(t, assocs, 1)
	assert.Equal(t, "employees", assocs[0].To.Name())
}

func TestParseSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"invalid yaml", ":\tnope"},
		{"no schemas", "default_schema: public\n"},
		{"dangling foreign key", `
schemas:
  - name: public
    tables:
      - name: a
        columns: [{name: id, type: integer}]
        foreign_keys:
          - {name: fk, columns: [id], ref_table: missing, ref_columns: [id]}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchema([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseSchemaDefaultsToFirstSchema(t *testing.T) {
	cat, err := ParseSchema([]byte(`
schemas:
  - name: sales
    tables:
      - name: orders
        columns: [{name: id, type: integer}]
`))
	require.NoError(t, err)

	def, err := cat.DefaultContainer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sales", def.Name())
}

package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func employeeFixture() (*Memory, *MemTable, *MemTable) {
	m := NewMemory("public")
	sch := m.Schema("public")
	emp := sch.AddTable("employees",
		Col("id", "integer"),
		Col("name", "varchar"),
		Col("dept_id", "integer"),
	)
	dept := sch.AddTable("departments",
		Col("id", "integer"),
		Col("title", "varchar"),
	)
	emp.LinkForeignKey("fk_emp_dept", []string{"dept_id"}, dept, []string{"id"})
	return m, emp, dept
}

func TestFindTable(t *testing.T) {
	m, _, _ := employeeFixture()
	ctx := context.Background()

	tests := []struct {
		name  string
		parts []string
		found bool
	}{
		{"unqualified", []string{"employees"}, true},
		{"schema qualified", []string{"public", "employees"}, true},
		{"case insensitive", []string{"Public", "EMPLOYEES"}, true},
		{"missing", []string{"nosuchtable"}, false},
		{"wrong schema", []string{"other", "employees"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ent, err := m.FindTable(ctx, tt.parts)
			require.NoError(t, err)
			assert.Equal(t, tt.found, ent != nil)
		})
	}
}

func TestFindObjectKinds(t *testing.T) {
	m, _, _ := employeeFixture()
	ctx := context.Background()

	obj, err := m.FindObject(ctx, []string{"public"})
	require.NoError(t, err)
	require.NotNil(t, obj)
	assert.Equal(t, KindSchema, obj.Kind())

	obj, err = m.FindObject(ctx, []string{"public", "employees"})
	require.NoError(t, err)
	require.NotNil(t, obj)
	assert.Equal(t, KindTable, obj.Kind())
}

func TestAttributesAndForeignKeys(t *testing.T) {
	_, emp, dept := employeeFixture()
	ctx := context.Background()

	attrs, err := emp.Attributes(ctx)
	require.NoError(t, err)
	require.Len(t, attrs, 3)
	assert.Equal(t, "id", attrs[0].Name)
	assert.Equal(t, 1, attrs[0].Ordinal)

	assocs, err := emp.Associations(ctx)
	require.NoError(t, err)
	require.Len(t, assocs, 1)
	assert.Equal(t, dept, assocs[0].To.(*MemTable))

	refs, err := dept.References(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, emp, refs[0].From.(*MemTable))
}

func TestAccessFailures(t *testing.T) {
	m, emp, _ := employeeFixture()
	ctx := context.Background()

	boom := errors.New("connection lost")
	m.Err = boom
	_, err := m.FindTable(ctx, []string{"employees"})
	var accessErr *AccessError
	require.ErrorAs(t, err, &accessErr)
	assert.ErrorIs(t, err, boom)
	m.Err = nil

	emp.AttrErr = boom
	_, err = emp.Attributes(ctx)
	require.ErrorAs(t, err, &accessErr)
}

func TestCanceledContext(t *testing.T) {
	m, _, _ := employeeFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.FindTable(ctx, []string{"employees"})
	var accessErr *AccessError
	require.ErrorAs(t, err, &accessErr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPathOf(t *testing.T) {
	m, emp, _ := employeeFixture()
	assert.Equal(t, "public.employees", PathOf(emp))
	assert.Equal(t, "public", PathOf(m.Schema("public")))
	assert.Equal(t, "", PathOf(nil))
}

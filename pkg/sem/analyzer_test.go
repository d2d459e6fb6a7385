package sem_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyondb/semql/internal/parser"
	"github.com/halcyondb/semql/internal/testutil"
	"github.com/halcyondb/semql/pkg/catalog"
	"github.com/halcyondb/semql/pkg/dialect"
	"github.com/halcyondb/semql/pkg/sem"
)

func fixtureCatalog() *catalog.Memory {
	cat := catalog.NewMemory("public")
	sch := cat.Schema("public")
	emp := sch.AddTable("employees",
		catalog.Col("id", "integer"),
		catalog.Col("name", "varchar"),
		catalog.Col("dept_id", "integer"),
		catalog.CompositeCol("address", "address_t",
			catalog.Col("city", "varchar"),
			catalog.Col("zip", "varchar")),
	)
	dep := sch.AddTable("departments",
		catalog.Col("id", "integer"),
		catalog.Col("title", "varchar"),
	)
	emp.LinkForeignKey("fk_emp_dept", []string{"dept_id"}, dep, []string{"id"})
	return cat
}

func analyze(t *testing.T, sql string) *sem.QueryModel {
	t.Helper()
	return analyzeWith(t, sql, fixtureCatalog())
}

func analyzeWith(t *testing.T, sql string, cat catalog.Catalog) *sem.QueryModel {
	t.Helper()
	d, ok := dialect.Get("ansi")
	require.True(t, ok)
	res, err := parser.Parse(sql, d)
	require.NoError(t, err)
	require.NotEmpty(t, res.Script.Statements)

	a := &sem.Analyzer{Dialect: d, Catalog: cat, Logger: testutil.NewTestLogger(t)}
	model, err := a.Analyze(context.Background(), res.Script.Statements[0])
	require.NoError(t, err)
	return model
}

func errorCount(model *sem.QueryModel) int {
	n := 0
	for _, diag := range model.Diagnostics() {
		if diag.Severity == sem.SeverityError {
			n++
		}
	}
	return n
}

func entriesNamed(model *sem.QueryModel, name string) []*sem.SymbolEntry {
	var out []*sem.SymbolEntry
	for _, e := range model.Entries() {
		if e.Name() == name {
			out = append(out, e)
		}
	}
	return out
}

func TestAnalyzeStarExpansion(t *testing.T) {
	model := analyze(t, "SELECT * FROM employees")
	assert.Empty(t, model.Diagnostics())
	assert.Len(t, model.ResultColumns(), 4)
}

func TestAnalyzeTupleRefExpansion(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		cols int
	}{
		{"aliased", "SELECT e.* FROM employees e", 4},
		{"by table name", "SELECT employees.* FROM employees", 4},
		{"one of two sources", "SELECT d.* FROM employees e, departments d", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := analyze(t, tt.sql)
			assert.Empty(t, model.Diagnostics())
			assert.Len(t, model.ResultColumns(), tt.cols)
		})
	}
}

func TestAnalyzeUnresolvedTupleRefIsError(t *testing.T) {
	model := analyze(t, "SELECT x.* FROM employees e")
	require.Equal(t, 1, errorCount(model))
	entries := entriesNamed(model, "x")
	require.Len(t, entries, 1)
	assert.Equal(t, sem.ClassError, entries[0].Symbol().Class())
}

func TestAnalyzeUnknownTable(t *testing.T) {
	model := analyze(t, "SELECT * FROM nosuchtable t")
	assert.Equal(t, 1, errorCount(model))
	assert.Empty(t, model.ResultColumns())
}

func TestAnalyzeUnknownColumn(t *testing.T) {
	model := analyze(t, "SELECT nope FROM employees")
	require.Equal(t, 1, errorCount(model))
	entries := entriesNamed(model, "nope")
	require.Len(t, entries, 1)
	assert.Equal(t, sem.ClassError, entries[0].Symbol().Class())
}

func TestAnalyzeAliasVisibility(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		errors int
	}{
		{"where excludes aliases", "SELECT name AS n FROM employees WHERE n = 'x'", 1},
		{"group by sees aliases", "SELECT name AS n FROM employees GROUP BY n", 0},
		{"having sees aliases", "SELECT name AS n FROM employees GROUP BY n HAVING n = 'x'", 0},
		{"order by sees aliases", "SELECT name AS n FROM employees ORDER BY n", 0},
		{"where sees source columns", "SELECT name AS n FROM employees WHERE name = 'x'", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := analyze(t, tt.sql)
			assert.Equal(t, tt.errors, errorCount(model))
		})
	}
}

func TestAnalyzeAliasRoundTripSharesSymbol(t *testing.T) {
	model := analyze(t, "SELECT name AS n FROM employees ORDER BY n")
	entries := entriesNamed(model, "n")
	require.Len(t, entries, 2)
	assert.Same(t, entries[0].Symbol(), entries[1].Symbol())
	assert.Equal(t, sem.ClassColumnAlias, entries[1].Symbol().Class())

	def := sem.UnrollDefinition(entries[1].Definition())
	assert.Same(t, sem.Definition(entries[0]), def)
}

func TestAnalyzeQualifiedNames(t *testing.T) {
	model := analyze(t, "SELECT public.employees.id FROM public.employees")
	assert.Empty(t, model.Diagnostics())

	want := map[string]sem.SymbolClass{
		"public":    sem.ClassSchema,
		"employees": sem.ClassTable,
		"id":        sem.ClassColumn,
	}
	for name, class := range want {
		entries := entriesNamed(model, name)
		require.NotEmpty(t, entries, name)
		for _, e := range entries {
			assert.Equal(t, class, e.Symbol().Class(), name)
		}
	}
}

func TestAnalyzeClassificationIsMonotonic(t *testing.T) {
	// the same name resolves twice; the second resolution must not reset
	// the classification to unknown
	model := analyze(t, "SELECT employees.id, employees.name FROM employees")
	assert.Empty(t, model.Diagnostics())
	for _, e := range entriesNamed(model, "employees") {
		assert.Equal(t, sem.ClassTable, e.Symbol().Class())
	}
}

func TestAnalyzeJoin(t *testing.T) {
	model := analyze(t, "SELECT e.name, d.title FROM employees e JOIN departments d ON e.dept_id = d.id")
	assert.Empty(t, model.Diagnostics())
	assert.Len(t, model.ResultColumns(), 2)

	entries := entriesNamed(model, "e")
	require.NotEmpty(t, entries)
	assert.Equal(t, sem.ClassTableAlias, entries[0].Symbol().Class())
}

func TestAnalyzeJoinUsing(t *testing.T) {
	model := analyze(t, "SELECT e.name FROM employees e JOIN departments d USING (id)")
	assert.Empty(t, model.Diagnostics())
}

func TestAnalyzeCTE(t *testing.T) {
	model := analyze(t, "WITH top_emps AS (SELECT id, name FROM employees) SELECT name FROM top_emps")
	assert.Empty(t, model.Diagnostics())
	assert.Len(t, model.ResultColumns(), 1)

	entries := entriesNamed(model, "top_emps")
	require.Len(t, entries, 2)
	assert.Same(t, entries[0].Symbol(), entries[1].Symbol())
	assert.Equal(t, sem.ClassTable, entries[0].Symbol().Class())
}

func TestAnalyzeCTEColumnAliases(t *testing.T) {
	model := analyze(t, "WITH t (a, b) AS (SELECT id, name FROM employees) SELECT a, b FROM t")
	assert.Empty(t, model.Diagnostics())
	assert.Len(t, model.ResultColumns(), 2)
}

func TestAnalyzeSubquery(t *testing.T) {
	model := analyze(t, "SELECT name FROM employees WHERE dept_id IN (SELECT id FROM departments)")
	assert.Empty(t, model.Diagnostics())
}

func TestAnalyzeDerivedTable(t *testing.T) {
	model := analyze(t, "SELECT t.name FROM (SELECT id, name FROM employees) t")
	assert.Empty(t, model.Diagnostics())
	assert.Len(t, model.ResultColumns(), 1)
}

func TestAnalyzeSetOperation(t *testing.T) {
	model := analyze(t, "SELECT id FROM employees UNION SELECT id FROM departments")
	assert.Empty(t, model.Diagnostics())
	assert.Len(t, model.ResultColumns(), 1)
}

func TestAnalyzeMemberAccess(t *testing.T) {
	t.Run("known member", func(t *testing.T) {
		model := analyze(t, "SELECT (address).city FROM employees")
		assert.Empty(t, model.Diagnostics())
	})
	t.Run("unknown member", func(t *testing.T) {
		model := analyze(t, "SELECT (address).nope FROM employees")
		require.Equal(t, 1, errorCount(model))
	})
	t.Run("chained column member", func(t *testing.T) {
		model := analyze(t, "SELECT e.address.city FROM employees e")
		assert.Empty(t, model.Diagnostics())
	})
}

func TestAnalyzeMetadataFailureDegrades(t *testing.T) {
	cat := fixtureCatalog()
	cat.Err = context.DeadlineExceeded
	model := analyzeWith(t, "SELECT * FROM employees", cat)
	assert.NotEmpty(t, model.Diagnostics())
	assert.Empty(t, model.ResultColumns())
}

func TestAnalyzeAttributeFailureDegrades(t *testing.T) {
	cat := fixtureCatalog()
	tbl, err := cat.FindTable(context.Background(), []string{"employees"})
	require.NoError(t, err)
	tbl.(*catalog.MemTable).AttrErr = context.DeadlineExceeded

	model := analyzeWith(t, "SELECT * FROM employees", cat)
	assert.NotEmpty(t, model.Diagnostics())
	assert.Empty(t, model.ResultColumns())
}

func TestAnalyzeUpdate(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		errors int
	}{
		{"valid", "UPDATE employees SET name = 'x' WHERE id = 1", 0},
		{"where sees target columns", "UPDATE employees e SET name = 'x' WHERE e.dept_id = 2", 0},
		{"unknown set target", "UPDATE employees SET title = 'x'", 1},
		{"value sees target columns", "UPDATE employees SET name = name", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := analyze(t, tt.sql)
			assert.Equal(t, tt.errors, errorCount(model))
		})
	}
}

func TestAnalyzeInsert(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		errors int
	}{
		{"values", "INSERT INTO employees (id, name) VALUES (1, 'a')", 0},
		{"unknown column", "INSERT INTO employees (id, nope) VALUES (1, 'a')", 1},
		{"from select", "INSERT INTO departments (id, title) SELECT id, name FROM employees", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := analyze(t, tt.sql)
			assert.Equal(t, tt.errors, errorCount(model))
		})
	}
}

func TestAnalyzeDelete(t *testing.T) {
	model := analyze(t, "DELETE FROM employees WHERE id = 1")
	assert.Empty(t, model.Diagnostics())

	model = analyze(t, "DELETE FROM employees WHERE nope = 1")
	assert.Equal(t, 1, errorCount(model))
}

func TestAnalyzeSelectIntoTupleSize(t *testing.T) {
	model := analyze(t, "SELECT id, name, dept_id INTO departments FROM employees")
	require.Len(t, model.Diagnostics(), 1)
	assert.Equal(t, sem.SeverityWarning, model.Diagnostics()[0].Severity)

	model = analyze(t, "SELECT id, name INTO departments FROM employees")
	assert.Empty(t, model.Diagnostics())
}

func TestAnalyzeSelectIntoTargetResolution(t *testing.T) {
	model := analyze(t, "SELECT id, name INTO departments FROM employees")

	entries := entriesNamed(model, "departments")
	require.Len(t, entries, 1)
	target := entries[0]

	require.NotNil(t, target.Definition())
	od, ok := sem.UnrollDefinition(target.Definition()).(*sem.ObjectDefinition)
	require.True(t, ok)
	assert.Equal(t, "departments", od.Object.Name())

	require.NotNil(t, target.Origin())
	_, ok = target.Origin().(*sem.RowsSourceRefOrigin)
	assert.True(t, ok)
}

func TestLexicalScopes(t *testing.T) {
	sql := "SELECT id FROM employees WHERE id = 1 LIMIT 5"
	model := analyze(t, sql)

	whereAt := strings.Index(sql, "id = 1")
	lc := model.LexicalContextAt(whereAt)
	require.NotNil(t, lc.Scope)
	_, ok := lc.Origin.(*sem.ValueRefOrigin)
	assert.True(t, ok, "WHERE region offers value references")

	fromAt := strings.Index(sql, "employees")
	lc = model.LexicalContextAt(fromAt)
	require.NotNil(t, lc.Scope)
	_, ok = lc.Origin.(*sem.RowsSourceRefOrigin)
	assert.True(t, ok, "FROM region offers rows sources")

	selectAt := strings.Index(sql, "id")
	lc = model.LexicalContextAt(selectAt + 1)
	require.NotNil(t, lc.Scope)
	_, ok = lc.Origin.(*sem.ValueRefOrigin)
	assert.True(t, ok, "select list offers value references")

	// LIMIT closes the trailing scope
	limitAt := strings.Index(sql, "LIMIT")
	for _, s := range model.Scopes() {
		assert.False(t, s.Contains(limitAt+len("LIMIT ")), "no scope past LIMIT")
	}
}

func TestLexicalScopesDoNotOverlap(t *testing.T) {
	sql := "SELECT name FROM employees WHERE id = 1 GROUP BY name HAVING name = 'x' ORDER BY name"
	model := analyze(t, sql)

	whereAt := strings.Index(sql, "WHERE")
	groupAt := strings.Index(sql, "GROUP")
	for _, s := range model.Scopes() {
		if s.Contains(whereAt) {
			assert.False(t, s.Contains(groupAt), "clause scopes are exclusive")
		}
	}
}

func TestLexicalScopeJoinCondition(t *testing.T) {
	sql := "SELECT e.name FROM employees e JOIN departments d ON "
	model := analyze(t, sql)

	lc := model.LexicalContextAt(len(sql))
	require.NotNil(t, lc.Scope)
	_, ok := lc.Origin.(*sem.ValueRefOrigin)
	assert.True(t, ok, "ON region offers value references")
	require.NotNil(t, lc.Context)
	assert.NotEmpty(t, lc.Context.Columns(), "both join sides are visible")
}

func TestAnalyzeNilStatement(t *testing.T) {
	d, ok := dialect.Get("ansi")
	require.True(t, ok)
	a := &sem.Analyzer{Dialect: d, Catalog: fixtureCatalog(), Logger: testutil.NewTestLogger(t)}
	model, err := a.Analyze(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, model.Statement())
	assert.Empty(t, model.ResultColumns())
}

func TestAnalyzeRequiresCollaborators(t *testing.T) {
	a := &sem.Analyzer{}
	_, err := a.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, dialect.ErrDialectRequired)

	d, ok := dialect.Get("ansi")
	require.True(t, ok)
	a = &sem.Analyzer{Dialect: d}
	_, err = a.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, catalog.ErrCatalogRequired)
}

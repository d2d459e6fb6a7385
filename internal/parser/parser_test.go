package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyondb/semql/pkg/ast"
	"github.com/halcyondb/semql/pkg/dialect"
	"github.com/halcyondb/semql/pkg/token"
)

func parse(t *testing.T, sql string) *Result {
	t.Helper()
	d, ok := dialect.Get("ansi")
	require.True(t, ok)
	res, err := Parse(sql, d)
	require.NoError(t, err)
	require.NotNil(t, res.Script)
	return res
}

func parseClean(t *testing.T, sql string) *ast.Script {
	t.Helper()
	res := parse(t, sql)
	require.Empty(t, res.Errors, "unexpected parse errors: %v", res.Errors)
	return res.Script
}

func selectCore(t *testing.T, stmt ast.Statement) *ast.SelectCore {
	t.Helper()
	sel, ok := stmt.(*ast.SelectStmt)
	require.True(t, ok, "expected *ast.SelectStmt, got %T", stmt)
	require.NotNil(t, sel.Body)
	require.NotNil(t, sel.Body.Left)
	return sel.Body.Left
}

func TestParseRequiresDialect(t *testing.T) {
	_, err := Parse("SELECT 1", nil)
	assert.ErrorIs(t, err, dialect.ErrDialectRequired)
}

func TestParseSelectList(t *testing.T) {
	script := parseClean(t, "SELECT id, name AS n, price * 2 total, * FROM items")
	require.Len(t, script.Statements, 1)
	core := selectCore(t, script.Statements[0])
	require.Len(t, core.Items, 4)

	ref, ok := core.Items[0].Expr.(*ast.ColumnRef)
	require.True(t, ok)
	assert.Equal(t, []string{"id"}, ref.Name.Strings())
	assert.Nil(t, core.Items[0].Alias)

	require.NotNil(t, core.Items[1].Alias)
	assert.Equal(t, "n", core.Items[1].Alias.Name)

	// alias without AS
	require.NotNil(t, core.Items[2].Alias)
	assert.Equal(t, "total", core.Items[2].Alias.Name)
	_, ok = core.Items[2].Expr.(*ast.BinaryExpr)
	assert.True(t, ok)

	_, ok = core.Items[3].Expr.(*ast.StarExpr)
	assert.True(t, ok)
}

func TestParseDistinct(t *testing.T) {
	script := parseClean(t, "SELECT DISTINCT dept_id FROM employees")
	core := selectCore(t, script.Statements[0])
	assert.True(t, core.Distinct)
}

func TestParseQualifiedNames(t *testing.T) {
	script := parseClean(t, "SELECT cat.sch.tbl.col, t.* FROM cat.sch.tbl t")
	core := selectCore(t, script.Statements[0])
	require.Len(t, core.Items, 2)

	ref := core.Items[0].Expr.(*ast.ColumnRef)
	assert.Equal(t, []string{"cat", "sch", "tbl", "col"}, ref.Name.Strings())

	tup, ok := core.Items[1].Expr.(*ast.TupleRef)
	require.True(t, ok)
	assert.Equal(t, []string{"t"}, tup.Table.Strings())

	tbl := core.From.Tables[0].(*ast.TableName)
	assert.Equal(t, []string{"cat", "sch", "tbl"}, tbl.Name.Strings())
	require.NotNil(t, tbl.Alias)
	assert.Equal(t, "t", tbl.Alias.Name)
}

func TestParseTrailingDot(t *testing.T) {
	res := parse(t, "SELECT e. FROM employees e")
	core := selectCore(t, res.Script.Statements[0])
	require.Len(t, core.Items, 1)

	ref, ok := core.Items[0].Expr.(*ast.ColumnRef)
	require.True(t, ok)
	assert.True(t, ref.Name.TrailingDot)
	assert.Equal(t, []string{"e"}, ref.Name.Strings())
	// the FROM clause survives the broken item
	require.NotNil(t, core.From)
}

func TestParseQuotedIdentifier(t *testing.T) {
	script := parseClean(t, `SELECT "Select" FROM "Order Details"`)
	core := selectCore(t, script.Statements[0])
	ref := core.Items[0].Expr.(*ast.ColumnRef)
	require.Len(t, ref.Name.Parts, 1)
	assert.Equal(t, "Select", ref.Name.Parts[0].Name)
	assert.True(t, ref.Name.Parts[0].Quoted)
}

func TestParseClauses(t *testing.T) {
	script := parseClean(t, `
		SELECT dept_id, count(*) FROM employees
		WHERE salary > 100 GROUP BY dept_id HAVING count(*) > 2
		ORDER BY dept_id DESC LIMIT 10 OFFSET 5`)
	core := selectCore(t, script.Statements[0])

	require.NotNil(t, core.Where)
	_, ok := core.Where.Expr.(*ast.BinaryExpr)
	assert.True(t, ok)

	require.NotNil(t, core.GroupBy)
	require.Len(t, core.GroupBy.Exprs, 1)

	require.NotNil(t, core.Having)
	require.NotNil(t, core.OrderBy)
	require.Len(t, core.OrderBy.Items, 1)
	assert.True(t, core.OrderBy.Items[0].Desc)

	require.NotNil(t, core.Limit)
	assert.NotNil(t, core.Limit.Count)
	assert.NotNil(t, core.Limit.Offset)
}

func TestParseJoins(t *testing.T) {
	script := parseClean(t, `
		SELECT * FROM a
		JOIN b ON a.id = b.a_id
		LEFT JOIN c USING (id)`)
	core := selectCore(t, script.Statements[0])
	require.Len(t, core.From.Tables, 1)

	outer, ok := core.From.Tables[0].(*ast.Join)
	require.True(t, ok)
	assert.Equal(t, ast.JoinLeft, outer.Type)
	require.Len(t, outer.Using, 1)
	assert.Equal(t, "id", outer.Using[0].Name)

	inner, ok := outer.Left.(*ast.Join)
	require.True(t, ok)
	assert.Equal(t, ast.JoinInner, inner.Type)
	require.NotNil(t, inner.On)
}

func TestParseCommaSources(t *testing.T) {
	script := parseClean(t, "SELECT * FROM a, b, c")
	core := selectCore(t, script.Statements[0])
	require.Len(t, core.From.Tables, 3)
}

func TestParseNaturalAndCrossJoins(t *testing.T) {
	script := parseClean(t, "SELECT * FROM a NATURAL JOIN b CROSS JOIN c")
	core := selectCore(t, script.Statements[0])

	outer := core.From.Tables[0].(*ast.Join)
	assert.Equal(t, ast.JoinCross, outer.Type)
	inner := outer.Left.(*ast.Join)
	assert.True(t, inner.Natural)
}

func TestParseDerivedTable(t *testing.T) {
	script := parseClean(t, "SELECT * FROM (SELECT id FROM employees) sub (emp_id)")
	core := selectCore(t, script.Statements[0])

	dt, ok := core.From.Tables[0].(*ast.DerivedTable)
	require.True(t, ok)
	require.NotNil(t, dt.Select)
	require.NotNil(t, dt.Alias)
	assert.Equal(t, "sub", dt.Alias.Name)
	require.Len(t, dt.Columns, 1)
	assert.Equal(t, "emp_id", dt.Columns[0].Name)
}

func TestParseWithClause(t *testing.T) {
	script := parseClean(t, `
		WITH RECURSIVE nums (n) AS (SELECT 1),
		     totals AS (SELECT count(*) FROM employees)
		SELECT * FROM totals`)
	sel := script.Statements[0].(*ast.SelectStmt)

	require.NotNil(t, sel.With)
	assert.True(t, sel.With.Recursive)
	require.Len(t, sel.With.CTEs, 2)
	assert.Equal(t, "nums", sel.With.CTEs[0].Name.Name)
	require.Len(t, sel.With.CTEs[0].Columns, 1)
	assert.Equal(t, "totals", sel.With.CTEs[1].Name.Name)
	require.NotNil(t, sel.With.CTEs[1].Select)
}

func TestParseSetOperations(t *testing.T) {
	script := parseClean(t, "SELECT a FROM x UNION ALL SELECT b FROM y EXCEPT SELECT c FROM z")
	sel := script.Statements[0].(*ast.SelectStmt)

	assert.Equal(t, ast.SetOpUnion, sel.Body.Op)
	assert.True(t, sel.Body.All)
	require.NotNil(t, sel.Body.Right)
	assert.Equal(t, ast.SetOpExcept, sel.Body.Right.Op)
	assert.False(t, sel.Body.Right.All)
}

func TestParseSelectInto(t *testing.T) {
	script := parseClean(t, "SELECT id, name INTO archive FROM employees")
	core := selectCore(t, script.Statements[0])

	require.NotNil(t, core.Into)
	require.Len(t, core.Into.Targets, 1)
	assert.Equal(t, []string{"archive"}, core.Into.Targets[0].Strings())
	require.NotNil(t, core.From)
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want func(t *testing.T, e ast.Expr)
	}{
		{"case", "SELECT CASE WHEN x > 1 THEN 'a' ELSE 'b' END", func(t *testing.T, e ast.Expr) {
			ce, ok := e.(*ast.CaseExpr)
			require.True(t, ok)
			require.Len(t, ce.Whens, 1)
			assert.NotNil(t, ce.Else)
		}},
		{"cast", "SELECT CAST(x AS integer)", func(t *testing.T, e ast.Expr) {
			ce, ok := e.(*ast.CastExpr)
			require.True(t, ok)
			assert.Equal(t, "integer", ce.TypeName.Name)
		}},
		{"in list", "SELECT x IN (1, 2, 3)", func(t *testing.T, e ast.Expr) {
			in, ok := e.(*ast.InExpr)
			require.True(t, ok)
			assert.Len(t, in.Values, 3)
			assert.Nil(t, in.Query)
		}},
		{"not in subquery", "SELECT x NOT IN (SELECT id FROM t)", func(t *testing.T, e ast.Expr) {
			in, ok := e.(*ast.InExpr)
			require.True(t, ok)
			assert.True(t, in.Not)
			assert.NotNil(t, in.Query)
		}},
		{"between", "SELECT x BETWEEN 1 AND 10", func(t *testing.T, e ast.Expr) {
			be, ok := e.(*ast.BetweenExpr)
			require.True(t, ok)
			assert.NotNil(t, be.Low)
			assert.NotNil(t, be.High)
		}},
		{"is not null", "SELECT x IS NOT NULL", func(t *testing.T, e ast.Expr) {
			isn, ok := e.(*ast.IsNullExpr)
			require.True(t, ok)
			assert.True(t, isn.Not)
		}},
		{"like", "SELECT name LIKE 'a%'", func(t *testing.T, e ast.Expr) {
			_, ok := e.(*ast.LikeExpr)
			assert.True(t, ok)
		}},
		{"exists", "SELECT EXISTS (SELECT 1)", func(t *testing.T, e ast.Expr) {
			ex, ok := e.(*ast.ExistsExpr)
			require.True(t, ok)
			assert.NotNil(t, ex.Select)
		}},
		{"scalar subquery", "SELECT (SELECT max(id) FROM t)", func(t *testing.T, e ast.Expr) {
			_, ok := e.(*ast.SubqueryExpr)
			assert.True(t, ok)
		}},
		{"count star", "SELECT count(*)", func(t *testing.T, e ast.Expr) {
			fc, ok := e.(*ast.FuncCall)
			require.True(t, ok)
			assert.True(t, fc.Star)
		}},
		{"distinct arg", "SELECT count(DISTINCT dept_id)", func(t *testing.T, e ast.Expr) {
			fc, ok := e.(*ast.FuncCall)
			require.True(t, ok)
			assert.True(t, fc.Distinct)
			assert.Len(t, fc.Args, 1)
		}},
		{"member access", "SELECT (e.address).city", func(t *testing.T, e ast.Expr) {
			me, ok := e.(*ast.MemberExpr)
			require.True(t, ok)
			assert.Equal(t, "city", me.Member.Name)
			_, ok = me.Owner.(*ast.ParenExpr)
			assert.True(t, ok)
		}},
		{"concat", "SELECT a || b", func(t *testing.T, e ast.Expr) {
			be, ok := e.(*ast.BinaryExpr)
			require.True(t, ok)
			assert.Equal(t, token.DPIPE, be.Op)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := parseClean(t, tt.sql)
			core := selectCore(t, script.Statements[0])
			require.Len(t, core.Items, 1)
			tt.want(t, core.Items[0].Expr)
		})
	}
}

func TestParsePrecedence(t *testing.T) {
	script := parseClean(t, "SELECT a + b * c")
	core := selectCore(t, script.Statements[0])

	add := core.Items[0].Expr.(*ast.BinaryExpr)
	assert.Equal(t, token.PLUS, add.Op)
	mul := add.Right.(*ast.BinaryExpr)
	assert.Equal(t, token.STAR, mul.Op)

	script = parseClean(t, "SELECT a = 1 OR b = 2 AND c = 3")
	core = selectCore(t, script.Statements[0])
	or := core.Items[0].Expr.(*ast.BinaryExpr)
	assert.Equal(t, token.OR, or.Op)
	and := or.Right.(*ast.BinaryExpr)
	assert.Equal(t, token.AND, and.Op)
}

func TestParseUpdate(t *testing.T) {
	script := parseClean(t, `
		UPDATE employees SET name = 'x', dept_id = 2
		FROM departments WHERE employees.dept_id = departments.id`)
	upd := script.Statements[0].(*ast.UpdateStmt)

	tbl := upd.Target.(*ast.TableName)
	assert.Equal(t, []string{"employees"}, tbl.Name.Strings())
	require.Len(t, upd.Sets, 2)
	assert.Equal(t, []string{"name"}, upd.Sets[0].Target.Strings())
	require.NotNil(t, upd.From)
	require.NotNil(t, upd.Where)
}

func TestParseInsert(t *testing.T) {
	script := parseClean(t, "INSERT INTO employees (id, name) VALUES (1, 'a'), (2, 'b')")
	ins := script.Statements[0].(*ast.InsertStmt)

	assert.Equal(t, []string{"employees"}, ins.Target.Name.Strings())
	require.Len(t, ins.Columns, 2)
	require.Len(t, ins.Values, 2)
	assert.Len(t, ins.Values[0], 2)
	assert.Nil(t, ins.Select)
}

func TestParseInsertSelect(t *testing.T) {
	script := parseClean(t, "INSERT INTO archive SELECT * FROM employees")
	ins := script.Statements[0].(*ast.InsertStmt)

	assert.Nil(t, ins.Values)
	require.NotNil(t, ins.Select)
}

func TestParseDelete(t *testing.T) {
	script := parseClean(t, "DELETE FROM employees WHERE id = 1")
	del := script.Statements[0].(*ast.DeleteStmt)

	tbl := del.Target.(*ast.TableName)
	assert.Equal(t, []string{"employees"}, tbl.Name.Strings())
	require.NotNil(t, del.Where)
}

func TestParseMultipleStatements(t *testing.T) {
	script := parseClean(t, "SELECT 1; SELECT 2;; SELECT 3")
	assert.Len(t, script.Statements, 3)
}

func TestParseRecovery(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{"missing from target", "SELECT id FROM"},
		{"garbage statement", "GRANT ALL ON x"},
		{"unclosed paren", "SELECT (1 + 2 FROM t"},
		{"bad expression", "SELECT , FROM t"},
		{"cte without body", "WITH x AS SELECT 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(t, tt.sql)
			assert.NotEmpty(t, res.Errors)
			assert.NotNil(t, res.Script)
		})
	}
}

func TestParseUnexpectedStatement(t *testing.T) {
	res := parse(t, "GRANT ALL; SELECT 1")
	require.Len(t, res.Script.Statements, 2)

	unexpected, ok := res.Script.Statements[0].(*ast.Unexpected)
	require.True(t, ok)
	assert.NotEmpty(t, unexpected.Tokens)

	_, ok = res.Script.Statements[1].(*ast.SelectStmt)
	assert.True(t, ok)
}

func TestParseCollectsComments(t *testing.T) {
	res := parse(t, "SELECT id -- pick the key\nFROM t")
	require.Len(t, res.Comments, 1)
	assert.Equal(t, token.LineComment, res.Comments[0].Kind)
	assert.Empty(t, res.Errors)
}

func TestParseSpans(t *testing.T) {
	sql := "SELECT id FROM employees"
	script := parseClean(t, sql)
	stmt := script.Statements[0]

	assert.Equal(t, 0, stmt.GetSpan().Start.Offset)
	assert.Equal(t, len(sql), stmt.GetSpan().End.Offset)

	core := selectCore(t, stmt)
	assert.Equal(t, 0, core.SelectKw.Start.Offset)
	assert.Equal(t, 6, core.SelectKw.End.Offset)
}

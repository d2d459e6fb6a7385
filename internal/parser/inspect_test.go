package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyondb/semql/pkg/dialect"
)

// inspectAt runs Inspect with the cursor at the "|" marker in marked.
func inspectAt(t *testing.T, marked string) Inspection {
	t.Helper()
	offset := strings.Index(marked, "|")
	require.GreaterOrEqual(t, offset, 0, "marker missing in %q", marked)
	text := strings.Replace(marked, "|", "", 1)
	return Inspect(text, offset)
}

func TestInspectOffQuery(t *testing.T) {
	insp := inspectAt(t, "|")
	assert.True(t, insp.OffQuery)
	assert.Equal(t, dialect.ANSI().StatementStartKeywords(), insp.Keywords)
	assert.False(t, insp.ExpectsColumn)
	assert.False(t, insp.ExpectsTable)
}

func TestInspectOffQueryAfterSemicolon(t *testing.T) {
	insp := inspectAt(t, "SELECT 1; |")
	assert.True(t, insp.OffQuery)
	assert.Contains(t, insp.Keywords, "SELECT")
}

func TestInspectStatementStartWord(t *testing.T) {
	// a lone word being typed still counts as off-query
	insp := inspectAt(t, "SEL|")
	assert.True(t, insp.OffQuery)
	require.True(t, insp.WordFound)
	assert.Equal(t, "SEL", insp.Word.Literal)
}

func TestInspectSelectList(t *testing.T) {
	insp := inspectAt(t, "SELECT |")
	assert.True(t, insp.ExpectsColumn)
	assert.False(t, insp.ExpectsTable)
	assert.Contains(t, insp.Keywords, "DISTINCT")

	insp = inspectAt(t, "SELECT id, na| FROM t")
	assert.True(t, insp.ExpectsColumn)
	require.True(t, insp.WordFound)
	assert.Equal(t, "na", insp.Word.Literal)
	assert.Contains(t, insp.Keywords, "FROM")
}

func TestInspectFromRegion(t *testing.T) {
	// right after FROM a name is expected, not a keyword
	insp := inspectAt(t, "SELECT * FROM |")
	assert.True(t, insp.ExpectsTable)
	assert.False(t, insp.ExpectsColumn)
	assert.Empty(t, insp.Keywords)

	// after a table name the join and clause keywords apply
	insp = inspectAt(t, "SELECT * FROM t |")
	assert.True(t, insp.ExpectsTable)
	assert.Contains(t, insp.Keywords, "JOIN")
	assert.Contains(t, insp.Keywords, "WHERE")
	assert.Contains(t, insp.Keywords, "UNION")
}

func TestInspectJoin(t *testing.T) {
	insp := inspectAt(t, "SELECT * FROM a JOIN |")
	assert.True(t, insp.ExpectsTable)
	assert.False(t, insp.ExpectsJoinCondition)
	assert.Empty(t, insp.Keywords)

	insp = inspectAt(t, "SELECT * FROM a JOIN b ON |")
	assert.True(t, insp.ExpectsJoinCondition)
	assert.True(t, insp.ExpectsColumn)
	assert.Contains(t, insp.Keywords, "NOT")

	insp = inspectAt(t, "SELECT * FROM a JOIN b ON a.id = b.id |")
	assert.Contains(t, insp.Keywords, "AND")
}

func TestInspectWhere(t *testing.T) {
	insp := inspectAt(t, "SELECT * FROM t WHERE |")
	assert.True(t, insp.ExpectsColumn)
	assert.Contains(t, insp.Keywords, "EXISTS")

	insp = inspectAt(t, "SELECT * FROM t WHERE x = 1 |")
	assert.Contains(t, insp.Keywords, "AND")
	assert.Contains(t, insp.Keywords, "OR")
	assert.Contains(t, insp.Keywords, "GROUP")
}

func TestInspectGroupAndOrder(t *testing.T) {
	insp := inspectAt(t, "SELECT * FROM t GROUP |")
	assert.Equal(t, []string{"BY"}, insp.Keywords)

	insp = inspectAt(t, "SELECT * FROM t ORDER |")
	assert.Equal(t, []string{"BY"}, insp.Keywords)

	insp = inspectAt(t, "SELECT * FROM t ORDER BY x |")
	assert.Contains(t, insp.Keywords, "DESC")
}

func TestInspectLimit(t *testing.T) {
	insp := inspectAt(t, "SELECT * FROM t LIMIT 10 |")
	assert.Equal(t, []string{"OFFSET"}, insp.Keywords)
}

func TestInspectUpdate(t *testing.T) {
	insp := inspectAt(t, "UPDATE |")
	assert.True(t, insp.ExpectsTable)
	assert.Empty(t, insp.Keywords)

	insp = inspectAt(t, "UPDATE t SET |")
	assert.True(t, insp.ExpectsColumn)
	assert.Contains(t, insp.Keywords, "WHERE")
}

func TestInspectInsert(t *testing.T) {
	insp := inspectAt(t, "INSERT INTO |")
	assert.True(t, insp.ExpectsTable)
	assert.Empty(t, insp.Keywords)

	insp = inspectAt(t, "INSERT INTO t VALUES (|")
	assert.True(t, insp.ExpectsColumn)
	assert.Contains(t, insp.Keywords, "SELECT")
}

func TestInspectDelete(t *testing.T) {
	insp := inspectAt(t, "DELETE FROM |")
	assert.True(t, insp.ExpectsTable)
	assert.Empty(t, insp.Keywords)
}

func TestInspectSelectInto(t *testing.T) {
	insp := inspectAt(t, "SELECT id INTO |")
	assert.True(t, insp.ExpectsTable)
	assert.Empty(t, insp.Keywords)
}

func TestInspectHasPeriod(t *testing.T) {
	insp := inspectAt(t, "SELECT e.| FROM employees e")
	assert.True(t, insp.HasPeriod)
	assert.True(t, insp.ExpectsColumn)

	insp = inspectAt(t, "SELECT * FROM public.|")
	assert.True(t, insp.HasPeriod)
	assert.True(t, insp.ExpectsTable)
	assert.Empty(t, insp.Keywords)
}

func TestInspectSubqueryDepth(t *testing.T) {
	// the innermost unclosed level wins
	insp := inspectAt(t, "SELECT * FROM (SELECT |")
	assert.True(t, insp.ExpectsColumn)
	assert.Contains(t, insp.Keywords, "DISTINCT")

	// a closed subquery pops back to the outer clause
	insp = inspectAt(t, "SELECT (SELECT id FROM t) |")
	assert.True(t, insp.ExpectsColumn)
	assert.Contains(t, insp.Keywords, "FROM")
}

func TestInspectWordAtCursor(t *testing.T) {
	insp := inspectAt(t, "SELECT nam| FROM t")
	require.True(t, insp.WordFound)
	assert.Equal(t, "nam", insp.Word.Literal)
	assert.Equal(t, 7, insp.Word.Span.Start.Offset)

	// cursor inside a word still finds it
	text := "SELECT name FROM t"
	got := Inspect(text, 9) // between "na" and "me"
	require.True(t, got.WordFound)
	assert.Equal(t, "name", got.Word.Literal)

	// cursor after whitespace has no word
	insp = inspectAt(t, "SELECT name | FROM t")
	assert.False(t, insp.WordFound)
}

func TestInspectOffsetClamping(t *testing.T) {
	insp := Inspect("SELECT id FROM t", 999)
	assert.True(t, insp.ExpectsTable)

	insp = Inspect("SELECT 1", -5)
	assert.True(t, insp.OffQuery)
}

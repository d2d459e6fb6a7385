package dialect

// ansiReserved is the reserved-word list shared by the bundled dialects.
// It is the ANSI core set plus the handful of words every mainstream engine
// reserves in practice.
var ansiReserved = []string{
	"all", "and", "any", "as", "asc", "between", "by", "case", "cast",
	"check", "collate", "column", "constraint", "create", "cross",
	"current_date", "current_time", "current_timestamp", "default",
	"delete", "desc", "distinct", "drop", "else", "end", "except",
	"exists", "false", "for", "foreign", "from", "full", "group",
	"having", "in", "inner", "insert", "intersect", "into", "is",
	"join", "left", "like", "limit", "natural", "not", "null", "offset",
	"on", "or", "order", "outer", "primary", "references", "right",
	"select", "set", "table", "then", "true", "union", "unique",
	"update", "using", "values", "when", "where", "with",
}

// statementStart lists the words that may begin a statement. Used for
// keyword proposals when the cursor sits outside any statement.
var statementStart = []string{
	"SELECT", "INSERT", "UPDATE", "DELETE", "WITH", "VALUES", "TABLE",
}

// StatementStartKeywords returns the words that may begin a statement in
// this dialect.
func (d *Dialect) StatementStartKeywords() []string {
	out := make([]string, len(statementStart))
	copy(out, statementStart)
	return out
}

// ANSI returns the bundled standard dialect.
func ANSI() *Dialect {
	d, _ := Get("ansi")
	return d
}

func init() {
	Register(New(Config{
		Name: "ansi",
		Identifiers: IdentifierConfig{
			Quote:         `"`,
			QuoteEnd:      `"`,
			Escape:        `""`,
			Normalization: NormLowercase,
		},
		DefaultSchema: "public",
		ReservedWords: ansiReserved,
		// WHERE evaluates before the projection, so aliases stay out of it.
		AliasVisible: []FilterClause{ClauseGroupBy, ClauseHaving, ClauseOrderBy},
	}))

	Register(New(Config{
		Name: "sqlite",
		Identifiers: IdentifierConfig{
			Quote:         `"`,
			QuoteEnd:      `"`,
			Escape:        `""`,
			Normalization: NormCaseInsensitive,
		},
		DefaultSchema: "main",
		ReservedWords: ansiReserved,
		AliasVisible:  []FilterClause{ClauseGroupBy, ClauseHaving, ClauseOrderBy},
	}))
}

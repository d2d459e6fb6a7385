package parser

import (
	"github.com/halcyondb/semql/pkg/dialect"
	"github.com/halcyondb/semql/pkg/token"
)

// Inspection describes what the grammar expects at a cursor offset. It is
// computed from the token stream alone, so it works on text the parser
// could not fully place.
type Inspection struct {
	// ExpectsColumn reports that a value or column reference fits here.
	ExpectsColumn bool
	// ExpectsTable reports that a rows-source name fits here.
	ExpectsTable bool
	// ExpectsJoinCondition reports the cursor sits in an ON condition.
	ExpectsJoinCondition bool
	// OffQuery reports the cursor is outside any statement.
	OffQuery bool
	// HasPeriod reports a period immediately precedes the word at the
	// cursor, which rules keyword proposals out.
	HasPeriod bool
	// Keywords lists words that are grammatically sensible at the cursor.
	Keywords []string
	// Word is the identifier being typed at the cursor, if any.
	Word token.Token
	// WordFound reports whether Word is set.
	WordFound bool
}

// region tracks which clause the cursor sits in, per subquery nesting level.
type region int

const (
	regionStart region = iota
	regionSelectList
	regionInto
	regionFrom
	regionJoinTable
	regionJoinOn
	regionUsing
	regionWhere
	regionGroupBy
	regionHaving
	regionOrderBy
	regionLimit
	regionUpdateTarget
	regionSet
	regionInsertTarget
	regionValues
	regionDeleteFrom
)

// Inspect classifies the grammar position at offset within sql.
func Inspect(sql string, offset int) Inspection {
	if offset < 0 {
		offset = 0
	}
	if offset > len(sql) {
		offset = len(sql)
	}
	tokens := Tokenize(sql)

	insp := Inspection{}

	// The word being typed: an identifier-ish token containing the offset
	// or ending exactly at it.
	wordIdx := -1
	for i, t := range tokens {
		if t.Span.Start.Offset >= offset {
			break
		}
		if t.Span.Contains(offset) || t.Span.End.Offset == offset {
			if t.Type == token.IDENT || token.IsKeyword(t.Type) {
				insp.Word = t
				insp.WordFound = true
				wordIdx = i
			}
		}
	}

	// prevIdx is the last token fully before the cursor word.
	prevIdx := -1
	for i, t := range tokens {
		if wordIdx >= 0 && i >= wordIdx {
			break
		}
		if t.Span.End.Offset <= offset {
			prevIdx = i
		}
	}
	if prevIdx >= 0 && tokens[prevIdx].Type == token.DOT {
		insp.HasPeriod = true
	}

	reg := scanRegion(tokens, prevIdx)
	if reg == regionStart {
		insp.OffQuery = true
		insp.Keywords = statementStartWords()
		return insp
	}

	switch reg {
	case regionSelectList, regionWhere, regionGroupBy, regionHaving,
		regionOrderBy, regionSet, regionUsing, regionValues:
		insp.ExpectsColumn = true
	case regionFrom, regionJoinTable, regionInto, regionUpdateTarget,
		regionInsertTarget, regionDeleteFrom:
		insp.ExpectsTable = true
	case regionJoinOn:
		insp.ExpectsColumn = true
		insp.ExpectsJoinCondition = true
	}

	insp.Keywords = regionKeywords(reg, tokens, prevIdx)
	return insp
}

// scanRegion walks the tokens before the cursor, tracking clause keywords
// per parenthesis depth. The innermost unclosed level wins.
func scanRegion(tokens []token.Token, prevIdx int) region {
	type level struct{ reg region }
	stack := []level{{regionStart}}
	cur := func() *level { return &stack[len(stack)-1] }

	for i := 0; i <= prevIdx && i < len(tokens); i++ {
		switch tokens[i].Type {
		case token.LPAREN:
			stack = append(stack, level{cur().reg})
		case token.RPAREN:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case token.SEMI:
			stack = []level{{regionStart}}
		case token.SELECT:
			cur().reg = regionSelectList
		case token.INTO:
			if cur().reg == regionInsertTarget {
				break // INSERT INTO already set the target region
			}
			cur().reg = regionInto
		case token.FROM:
			if cur().reg == regionDeleteFrom {
				break
			}
			cur().reg = regionFrom
		case token.JOIN:
			cur().reg = regionJoinTable
		case token.ON:
			cur().reg = regionJoinOn
		case token.USING:
			cur().reg = regionUsing
		case token.WHERE:
			cur().reg = regionWhere
		case token.GROUP:
			cur().reg = regionGroupBy
		case token.HAVING:
			cur().reg = regionHaving
		case token.ORDER:
			cur().reg = regionOrderBy
		case token.LIMIT, token.OFFSET:
			cur().reg = regionLimit
		case token.UPDATE:
			cur().reg = regionUpdateTarget
		case token.SET:
			cur().reg = regionSet
		case token.INSERT:
			cur().reg = regionInsertTarget
		case token.VALUES:
			cur().reg = regionValues
		case token.DELETE:
			cur().reg = regionDeleteFrom
		}
	}
	return cur().reg
}

// statementStartWords comes from the dialect registry so the prediction list
// stays in one place.
func statementStartWords() []string {
	return dialect.ANSI().StatementStartKeywords()
}

// regionKeywords returns keyword predictions for the clause at the cursor.
func regionKeywords(reg region, tokens []token.Token, prevIdx int) []string {
	prevType := token.EOF
	if prevIdx >= 0 {
		prevType = tokens[prevIdx].Type
	}
	switch reg {
	case regionSelectList:
		if prevType == token.SELECT {
			return []string{"DISTINCT", "ALL", "CASE", "CAST", "EXISTS", "NOT"}
		}
		return []string{"FROM", "AS", "CASE", "CAST"}
	case regionFrom, regionJoinTable, regionDeleteFrom:
		if prevType == token.FROM || prevType == token.JOIN ||
			prevType == token.COMMA || prevType == token.DOT {
			return nil // a name is expected, not a keyword
		}
		return []string{
			"JOIN", "INNER", "LEFT", "RIGHT", "FULL", "CROSS", "NATURAL",
			"ON", "USING", "WHERE", "GROUP", "HAVING", "ORDER", "LIMIT",
			"UNION", "INTERSECT", "EXCEPT", "AS",
		}
	case regionJoinOn, regionWhere, regionHaving:
		if prevType == token.ON || prevType == token.WHERE || prevType == token.HAVING {
			return []string{"NOT", "EXISTS", "CASE", "CAST", "TRUE", "FALSE", "NULL"}
		}
		return []string{
			"AND", "OR", "NOT", "IS", "IN", "BETWEEN", "LIKE",
			"GROUP", "HAVING", "ORDER", "LIMIT", "UNION",
		}
	case regionGroupBy, regionOrderBy:
		if prevType == token.GROUP || prevType == token.ORDER {
			return []string{"BY"}
		}
		return []string{"ASC", "DESC", "HAVING", "ORDER", "LIMIT", "UNION"}
	case regionLimit:
		return []string{"OFFSET"}
	case regionInto, regionUpdateTarget, regionInsertTarget:
		return nil
	case regionSet:
		return []string{"WHERE", "ORDER", "LIMIT", "FROM"}
	case regionUsing:
		return nil
	case regionValues:
		return []string{"SELECT", "CASE", "CAST", "NULL", "TRUE", "FALSE"}
	default:
		return nil
	}
}

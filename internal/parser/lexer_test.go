package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyondb/semql/pkg/token"
)

func tokenTypes(tokens []token.Token) []token.TokenType {
	out := make([]token.TokenType, len(tokens))
	for i, t := range tokens {
		out[i] = t.Type
	}
	return out
}

func TestTokenizeStatement(t *testing.T) {
	tokens := Tokenize("SELECT id, name FROM t WHERE x >= 10")

	assert.Equal(t, []token.TokenType{
		token.SELECT, token.IDENT, token.COMMA, token.IDENT,
		token.FROM, token.IDENT, token.WHERE, token.IDENT,
		token.GE, token.NUMBER,
	}, tokenTypes(tokens))
}

func TestKeywordsAreCaseInsensitive(t *testing.T) {
	tests := []struct {
		input string
		typ   token.TokenType
	}{
		{"select", token.SELECT},
		{"SELECT", token.SELECT},
		{"SeLeCt", token.SELECT},
		{"from", token.FROM},
		{"natural", token.NATURAL},
		{"selection", token.IDENT},
	}
	for _, tt := range tests {
		tokens := Tokenize(tt.input)
		require.Len(t, tokens, 1, tt.input)
		assert.Equal(t, tt.typ, tokens[0].Type, tt.input)
		// the original spelling is preserved
		assert.Equal(t, tt.input, tokens[0].Literal, tt.input)
	}
}

func TestTokenizeOperators(t *testing.T) {
	tokens := Tokenize("= <> != < > <= >= || + - * / % .")

	assert.Equal(t, []token.TokenType{
		token.EQ, token.NE, token.NE, token.LT, token.GT,
		token.LE, token.GE, token.DPIPE, token.PLUS, token.MINUS,
		token.STAR, token.SLASH, token.PERCENT, token.DOT,
	}, tokenTypes(tokens))
}

func TestTokenizeStrings(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		literal string
		raw     string
	}{
		{"plain", "'hello'", "hello", "'hello'"},
		{"escaped quote", "'it''s'", "it's", "'it''s'"},
		{"empty", "''", "", "''"},
		{"unterminated", "'open", "open", "'open"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.input)
			require.Len(t, tokens, 1)
			assert.Equal(t, token.STRING, tokens[0].Type)
			assert.Equal(t, tt.literal, tokens[0].Literal)
			assert.Equal(t, tt.raw, tokens[0].Raw)
		})
	}
}

func TestTokenizeQuotedIdentifiers(t *testing.T) {
	tokens := Tokenize(`"Order Details"`)
	require.Len(t, tokens, 1)
	assert.Equal(t, token.IDENT, tokens[0].Type)
	assert.True(t, tokens[0].Quoted)
	assert.Equal(t, "Order Details", tokens[0].Literal)

	tokens = Tokenize(`"a""b"`)
	require.Len(t, tokens, 1)
	assert.Equal(t, `a"b`, tokens[0].Literal)

	// quoting defeats keyword recognition
	tokens = Tokenize(`"select"`)
	require.Len(t, tokens, 1)
	assert.Equal(t, token.IDENT, tokens[0].Type)
}

func TestTokenizeNumbers(t *testing.T) {
	tests := []string{"0", "42", "3.14", "1e10", "2.5e-3", "7E+2"}
	for _, input := range tests {
		tokens := Tokenize(input)
		require.Len(t, tokens, 1, input)
		assert.Equal(t, token.NUMBER, tokens[0].Type, input)
		assert.Equal(t, input, tokens[0].Literal, input)
	}
}

func TestTokenizeSpans(t *testing.T) {
	tokens := Tokenize("SELECT id")
	require.Len(t, tokens, 2)

	assert.Equal(t, 0, tokens[0].Span.Start.Offset)
	assert.Equal(t, 6, tokens[0].Span.End.Offset)
	assert.Equal(t, 7, tokens[1].Span.Start.Offset)
	assert.Equal(t, 9, tokens[1].Span.End.Offset)

	assert.Equal(t, 1, tokens[0].Span.Start.Line)
	assert.Equal(t, 1, tokens[0].Span.Start.Column)
	assert.Equal(t, 8, tokens[1].Span.Start.Column)
}

func TestTokenizeMultiline(t *testing.T) {
	tokens := Tokenize("SELECT id\nFROM t")
	require.Len(t, tokens, 4)
	assert.Equal(t, 2, tokens[2].Span.Start.Line)
	assert.Equal(t, 1, tokens[2].Span.Start.Column)
}

func TestLexerCollectsComments(t *testing.T) {
	l := NewLexer("SELECT id -- trailing\n/* block\ncomment */ FROM t")
	for {
		if l.NextToken().Type == token.EOF {
			break
		}
	}

	require.Len(t, l.Comments, 2)
	assert.Equal(t, token.LineComment, l.Comments[0].Kind)
	assert.Equal(t, "-- trailing", l.Comments[0].Text)
	assert.Equal(t, " trailing", l.Comments[0].Body())
	assert.Equal(t, token.BlockComment, l.Comments[1].Kind)
	assert.Equal(t, "/* block\ncomment */", l.Comments[1].Text)
	assert.Equal(t, " block\ncomment ", l.Comments[1].Body())
}

func TestCommentsAreNotTokens(t *testing.T) {
	tokens := Tokenize("SELECT /* hi */ id")
	assert.Equal(t, []token.TokenType{token.SELECT, token.IDENT}, tokenTypes(tokens))
}

func TestTokenizeIllegal(t *testing.T) {
	tokens := Tokenize("a ? b")
	require.Len(t, tokens, 3)
	assert.Equal(t, token.ILLEGAL, tokens[1].Type)
}

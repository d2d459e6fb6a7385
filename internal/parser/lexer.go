package parser

import (
	"strings"
	"unicode"

	"github.com/halcyondb/semql/pkg/token"
)

// Lexer tokenizes SQL input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	// Comments collected during lexing
	Comments []*token.Comment
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Span: token.Span{Start: pos, End: pos}}
	case '+':
		return l.newToken(token.PLUS, pos)
	case '-':
		return l.newToken(token.MINUS, pos)
	case '*':
		return l.newToken(token.STAR, pos)
	case '/':
		return l.newToken(token.SLASH, pos)
	case '%':
		return l.newToken(token.PERCENT, pos)
	case '=':
		return l.newToken(token.EQ, pos)
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			return l.newToken(token.LE, pos)
		case '>':
			l.readChar()
			return l.newToken(token.NE, pos)
		default:
			return l.newToken(token.LT, pos)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			return l.newToken(token.GE, pos)
		}
		return l.newToken(token.GT, pos)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			return l.newToken(token.NE, pos)
		}
		return l.newToken(token.ILLEGAL, pos)
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			return l.newToken(token.DPIPE, pos)
		}
		return l.newToken(token.ILLEGAL, pos)
	case '.':
		return l.newToken(token.DOT, pos)
	case ',':
		return l.newToken(token.COMMA, pos)
	case ';':
		return l.newToken(token.SEMI, pos)
	case '(':
		return l.newToken(token.LPAREN, pos)
	case ')':
		return l.newToken(token.RPAREN, pos)
	case '[':
		return l.newToken(token.LBRACKET, pos)
	case ']':
		return l.newToken(token.RBRACKET, pos)
	case '\'':
		return l.readString(pos)
	case '"':
		return l.readQuotedIdentifier(pos)
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_':
			return l.readIdentifier(pos)
		case isDigit(l.ch):
			return l.readNumber(pos)
		default:
			return l.newToken(token.ILLEGAL, pos)
		}
	}
}

// newToken consumes the current char and builds a token spanning from start
// to the new position.
func (l *Lexer) newToken(tokenType token.TokenType, start token.Position) token.Token {
	startOffset := start.Offset
	l.readChar()
	raw := l.input[startOffset:l.pos]
	return token.Token{
		Type:    tokenType,
		Literal: raw,
		Raw:     raw,
		Span:    token.Span{Start: start, End: l.currentPos()},
	}
}

// skipWhitespaceAndComments skips whitespace and collects comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch == '-' && l.peekChar() == '-' {
			l.collectLineComment()
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			l.collectBlockComment()
			continue
		}

		break
	}
}

// collectLineComment collects a line comment.
func (l *Lexer) collectLineComment() {
	startPos := l.currentPos()
	startOffset := l.pos

	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.LineComment,
		Text: l.input[startOffset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// collectBlockComment collects a block comment.
func (l *Lexer) collectBlockComment() {
	startPos := l.currentPos()
	startOffset := l.pos

	l.readChar() // skip '/'
	l.readChar() // skip '*'

	for l.ch != 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // skip '*'
			l.readChar() // skip '/'
			break
		}
		l.readChar()
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.BlockComment,
		Text: l.input[startOffset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// readString reads a single-quoted string literal.
// Handles doubled single quotes as escape: 'it''s' -> it's
func (l *Lexer) readString(start token.Position) token.Token {
	startOffset := l.pos
	l.readChar() // skip opening quote

	var result strings.Builder
	for l.ch != 0 {
		if l.ch == '\'' {
			if l.peekChar() == '\'' {
				result.WriteByte('\'')
				l.readChar()
				l.readChar()
			} else {
				l.readChar() // skip closing quote
				break
			}
		} else {
			result.WriteByte(l.ch)
			l.readChar()
		}
	}
	return token.Token{
		Type:    token.STRING,
		Literal: result.String(),
		Raw:     l.input[startOffset:l.pos],
		Span:    token.Span{Start: start, End: l.currentPos()},
	}
}

// readQuotedIdentifier reads a double-quoted identifier.
// Handles doubled double quotes as escape: "col""name" -> col"name
func (l *Lexer) readQuotedIdentifier(start token.Position) token.Token {
	startOffset := l.pos
	l.readChar() // skip opening quote

	var result strings.Builder
	for l.ch != 0 {
		if l.ch == '"' {
			if l.peekChar() == '"' {
				result.WriteByte('"')
				l.readChar()
				l.readChar()
			} else {
				l.readChar() // skip closing quote
				break
			}
		} else {
			result.WriteByte(l.ch)
			l.readChar()
		}
	}
	return token.Token{
		Type:    token.IDENT,
		Literal: result.String(),
		Raw:     l.input[startOffset:l.pos],
		Quoted:  true,
		Span:    token.Span{Start: start, End: l.currentPos()},
	}
}

// readIdentifier reads an unquoted identifier or keyword.
func (l *Lexer) readIdentifier(start token.Position) token.Token {
	startOffset := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	raw := l.input[startOffset:l.pos]
	return token.Token{
		Type:    token.LookupIdent(strings.ToLower(raw)),
		Literal: raw,
		Raw:     raw,
		Span:    token.Span{Start: start, End: l.currentPos()},
	}
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber(start token.Position) token.Token {
	startOffset := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	raw := l.input[startOffset:l.pos]
	return token.Token{
		Type:    token.NUMBER,
		Literal: raw,
		Raw:     raw,
		Span:    token.Span{Start: start, End: l.currentPos()},
	}
}

// isLetter returns true if ch is a letter.
func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch))
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens from the input, excluding EOF.
func Tokenize(input string) []token.Token {
	l := NewLexer(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Package parser provides an error-tolerant SQL frontend for the semantic
// analyzer: a lexer, a recursive descent parser producing pkg/ast trees with
// stable source spans, and cursor syntax inspection for completion.
//
// The parser never gives up on broken input. Unexpected tokens are collected
// into ast.Unexpected nodes, missing clauses stay nil, and every recorded
// error carries a position. Downstream consumers decide how much of the
// degraded tree is usable.
//
//	statement → select_stmt | update_stmt | insert_stmt | delete_stmt
//	select_stmt → [WITH cte_list] select_body
//	select_body → select_core [(UNION|INTERSECT|EXCEPT) [ALL] select_body]
//	select_core → SELECT [DISTINCT] select_list [INTO targets] [FROM from]
//	              [WHERE expr] [GROUP BY exprs] [HAVING expr]
//	              [ORDER BY items] [LIMIT expr [OFFSET expr]]
package parser

import (
	"fmt"

	"github.com/halcyondb/semql/pkg/ast"
	"github.com/halcyondb/semql/pkg/dialect"
	"github.com/halcyondb/semql/pkg/token"
)

// Parser parses SQL into an AST.
type Parser struct {
	lexer   *Lexer
	token   token.Token // current token
	peek    token.Token // lookahead token
	prevEnd token.Position
	errors  []error
	dialect *dialect.Dialect // required
}

// Result bundles the parsed script with recoverable errors and comments.
type Result struct {
	Script   *ast.Script
	Errors   []error
	Comments []*token.Comment
}

// New creates a new parser for the given SQL input.
func New(sql string, d *dialect.Dialect) *Parser {
	p := &Parser{
		lexer:   NewLexer(sql),
		dialect: d,
	}
	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses the SQL and returns the script together with any recoverable
// errors. The only hard failure is a missing dialect.
func Parse(sql string, d *dialect.Dialect) (*Result, error) {
	if d == nil {
		return nil, dialect.ErrDialectRequired
	}
	p := New(sql, d)
	script := p.parseScript()
	return &Result{
		Script:   script,
		Errors:   p.errors,
		Comments: p.lexer.Comments,
	}, nil
}

// Errors returns the accumulated parse errors.
func (p *Parser) Errors() []error {
	return p.errors
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.prevEnd = p.token.Span.End
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t token.TokenType) bool {
	return p.peek.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token.Type, t))
	return false
}

// addError adds a parse error at the current token.
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{
		Pos:     p.token.Span.Start,
		Message: msg,
	})
}

// spanFrom builds a span from a start position to the end of the last
// consumed token.
func (p *Parser) spanFrom(start token.Position) token.Span {
	return token.Span{Start: start, End: p.prevEnd}
}

// ---------- Identifiers ----------

// identLike reports whether the current token can serve as an identifier.
// Unreserved keywords stay usable as plain names.
func (p *Parser) identLike() bool {
	if p.check(token.IDENT) {
		return true
	}
	return token.IsKeyword(p.token.Type) && !p.dialect.IsReserved(p.token.Literal)
}

// parseIdent parses one identifier. Returns nil and records an error when
// the current token cannot be one.
func (p *Parser) parseIdent() *ast.Ident {
	if !p.identLike() {
		p.addError(fmt.Sprintf(ErrExpectedIdent, p.token.Type))
		return nil
	}
	id := &ast.Ident{
		NodeInfo: ast.NodeInfo{Span: p.token.Span},
		Name:     p.token.Literal,
		Quoted:   p.token.Quoted,
	}
	p.nextToken()
	return id
}

// parseObjectName parses a dotted identifier chain. A dot with nothing
// parseable after it marks the name as trailing-dot incomplete.
func (p *Parser) parseObjectName() *ast.ObjectName {
	start := p.token.Span.Start
	name := &ast.ObjectName{}
	first := p.parseIdent()
	if first == nil {
		return nil
	}
	name.Parts = append(name.Parts, first)
	for p.check(token.DOT) && !p.checkPeek(token.STAR) {
		p.nextToken() // consume dot
		if !p.identLike() {
			name.TrailingDot = true
			break
		}
		name.Parts = append(name.Parts, p.parseIdent())
	}
	name.Span = p.spanFrom(start)
	return name
}

// ---------- Script ----------

// parseScript parses a sequence of statements separated by semicolons.
func (p *Parser) parseScript() *ast.Script {
	start := p.token.Span.Start
	script := &ast.Script{}
	for !p.check(token.EOF) {
		if p.match(token.SEMI) {
			continue
		}
		script.Statements = append(script.Statements, p.parseStatement())
	}
	script.Span = p.spanFrom(start)
	return script
}

// parseStatement dispatches on the statement's first token.
func (p *Parser) parseStatement() ast.Statement {
	switch p.token.Type {
	case token.SELECT, token.WITH:
		return p.parseSelectStmt()
	case token.UPDATE:
		return p.parseUpdateStmt()
	case token.INSERT:
		return p.parseInsertStmt()
	case token.DELETE:
		return p.parseDeleteStmt()
	default:
		p.addError(fmt.Sprintf("unexpected token %s at start of statement", p.token.Type))
		return p.skipUnexpected()
	}
}

// skipUnexpected consumes tokens up to the next statement boundary and
// parks them in an Unexpected node.
func (p *Parser) skipUnexpected(stop ...token.TokenType) *ast.Unexpected {
	start := p.token.Span.Start
	node := &ast.Unexpected{}
	for !p.check(token.EOF) && !p.check(token.SEMI) {
		stopped := false
		for _, t := range stop {
			if p.check(t) {
				stopped = true
				break
			}
		}
		if stopped {
			break
		}
		node.Tokens = append(node.Tokens, p.token)
		p.nextToken()
	}
	if len(node.Tokens) == 0 {
		node.Span = token.Span{Start: start, End: start}
	} else {
		node.Span = p.spanFrom(start)
	}
	return node
}

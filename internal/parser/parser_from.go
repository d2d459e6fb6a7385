package parser

import (
	"fmt"

	"github.com/halcyondb/semql/pkg/ast"
	"github.com/halcyondb/semql/pkg/token"
)

// parseFromClause parses FROM source [, source ...] with joins nested per
// source.
func (p *Parser) parseFromClause() *ast.FromClause {
	start := p.token.Span.Start
	clause := &ast.FromClause{Keyword: p.token.Span}
	p.nextToken() // consume FROM
	for {
		source := p.parseJoinChain()
		if source != nil {
			clause.Tables = append(clause.Tables, source)
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	clause.Span = p.spanFrom(start)
	return clause
}

// parseJoinChain parses a table reference followed by any number of joins,
// nesting to the left.
func (p *Parser) parseJoinChain() ast.TableRef {
	start := p.token.Span.Start
	left := p.parseTableRef()
	if left == nil {
		return nil
	}
	for {
		join := p.parseJoin(left, start)
		if join == nil {
			return left
		}
		left = join
	}
}

// parseJoin parses one [NATURAL] [join type] JOIN right [ON|USING] step.
// Returns nil when the current token does not start a join.
func (p *Parser) parseJoin(left ast.TableRef, start token.Position) *ast.Join {
	join := &ast.Join{Type: ast.JoinInner, Left: left}
	switch p.token.Type {
	case token.NATURAL:
		join.Natural = true
		p.nextToken()
		p.parseJoinType(join)
		if !p.expect(token.JOIN) {
			return nil
		}
	case token.LEFT, token.RIGHT, token.FULL, token.INNER, token.CROSS:
		p.parseJoinType(join)
		if !p.expect(token.JOIN) {
			return nil
		}
	case token.JOIN:
		p.nextToken()
	default:
		return nil
	}

	join.Right = p.parseTableRef()

	if p.match(token.ON) {
		join.On = p.parseExpression()
		if join.On == nil {
			join.On = p.skipUnexpected(clauseBoundary...)
		}
	} else if p.match(token.USING) {
		if p.expect(token.LPAREN) {
			for p.identLike() {
				join.Using = append(join.Using, p.parseIdent())
				if !p.match(token.COMMA) {
					break
				}
			}
			p.expect(token.RPAREN)
		}
	}
	join.Span = p.spanFrom(start)
	return join
}

// parseJoinType consumes the join type keywords before JOIN.
func (p *Parser) parseJoinType(join *ast.Join) {
	switch p.token.Type {
	case token.LEFT:
		join.Type = ast.JoinLeft
		p.nextToken()
		p.match(token.OUTER)
	case token.RIGHT:
		join.Type = ast.JoinRight
		p.nextToken()
		p.match(token.OUTER)
	case token.FULL:
		join.Type = ast.JoinFull
		p.nextToken()
		p.match(token.OUTER)
	case token.INNER:
		join.Type = ast.JoinInner
		p.nextToken()
	case token.CROSS:
		join.Type = ast.JoinCross
		p.nextToken()
	}
}

// parseTableRef parses one rows source: a table name, a derived table, or a
// parenthesized join chain.
func (p *Parser) parseTableRef() ast.TableRef {
	start := p.token.Span.Start
	if p.match(token.LPAREN) {
		if p.check(token.SELECT) || p.check(token.WITH) {
			dt := &ast.DerivedTable{}
			dt.Select = p.parseSelectStmt()
			p.expect(token.RPAREN)
			p.parseDerivedAlias(dt)
			dt.Span = p.spanFrom(start)
			return dt
		}
		inner := p.parseJoinChain()
		p.expect(token.RPAREN)
		return inner
	}

	if !p.identLike() {
		p.addError(fmt.Sprintf(ErrExpectedTableRef, p.token.Type))
		return nil
	}

	tn := &ast.TableName{}
	tn.Name = p.parseObjectName()
	if p.match(token.AS) {
		tn.Alias = p.parseIdent()
	} else if p.identLike() {
		tn.Alias = p.parseIdent()
	}
	tn.Span = p.spanFrom(start)
	return tn
}

// parseDerivedAlias parses [[AS] alias [(columns)]] after a derived table.
func (p *Parser) parseDerivedAlias(dt *ast.DerivedTable) {
	if p.match(token.AS) {
		dt.Alias = p.parseIdent()
	} else if p.identLike() {
		dt.Alias = p.parseIdent()
	}
	if dt.Alias != nil && p.match(token.LPAREN) {
		for p.identLike() {
			dt.Columns = append(dt.Columns, p.parseIdent())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}
}

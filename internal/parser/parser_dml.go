package parser

import (
	"github.com/halcyondb/semql/pkg/ast"
	"github.com/halcyondb/semql/pkg/token"
)

// parseUpdateStmt parses UPDATE target SET assignments [FROM sources]
// [WHERE expr] [ORDER BY items] [LIMIT expr].
func (p *Parser) parseUpdateStmt() ast.Statement {
	start := p.token.Span.Start
	p.nextToken() // consume UPDATE
	stmt := &ast.UpdateStmt{}
	stmt.Target = p.parseTableRef()

	if p.check(token.SET) {
		stmt.SetKw = p.token.Span
		p.nextToken()
		for {
			sa := p.parseSetAssignment()
			if sa == nil {
				break
			}
			stmt.Sets = append(stmt.Sets, sa)
			if !p.match(token.COMMA) {
				break
			}
		}
	} else {
		p.addError("expected SET in UPDATE statement")
	}

	if p.check(token.FROM) {
		stmt.From = p.parseFromClause()
	}
	if p.check(token.WHERE) {
		stmt.Where = p.parseClause()
	}
	if p.check(token.ORDER) {
		stmt.OrderBy = p.parseOrderByClause()
	}
	if p.check(token.LIMIT) {
		stmt.Limit = p.parseLimitClause()
	}
	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseSetAssignment parses target = value. A dangling target without a
// value still comes back, so completion works inside half-typed SET lists.
func (p *Parser) parseSetAssignment() *ast.SetAssignment {
	if !p.identLike() {
		return nil
	}
	start := p.token.Span.Start
	sa := &ast.SetAssignment{}
	sa.Target = p.parseObjectName()
	if p.match(token.EQ) {
		sa.Value = p.parseExpression()
	} else {
		p.addError("expected = in SET assignment")
	}
	sa.Span = p.spanFrom(start)
	return sa
}

// parseInsertStmt parses INSERT INTO target [(columns)] VALUES rows or
// INSERT INTO target [(columns)] select.
func (p *Parser) parseInsertStmt() ast.Statement {
	start := p.token.Span.Start
	p.nextToken() // consume INSERT
	p.expect(token.INTO)
	stmt := &ast.InsertStmt{}

	if p.identLike() {
		tnStart := p.token.Span.Start
		tn := &ast.TableName{}
		tn.Name = p.parseObjectName()
		tn.Span = p.spanFrom(tnStart)
		stmt.Target = tn
	} else {
		p.addError("expected table name after INSERT INTO")
	}

	if p.check(token.LPAREN) && !p.checkPeek(token.SELECT) && !p.checkPeek(token.WITH) {
		p.nextToken()
		for p.identLike() {
			stmt.Columns = append(stmt.Columns, p.parseIdent())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}

	switch {
	case p.match(token.VALUES):
		for p.check(token.LPAREN) {
			p.nextToken()
			var row []ast.Expr
			for {
				expr := p.parseExpression()
				if expr == nil {
					break
				}
				row = append(row, expr)
				if !p.match(token.COMMA) {
					break
				}
			}
			p.expect(token.RPAREN)
			stmt.Values = append(stmt.Values, row)
			if !p.match(token.COMMA) {
				break
			}
		}
	case p.check(token.SELECT) || p.check(token.WITH):
		stmt.Select = p.parseSelectStmt()
	case p.check(token.LPAREN):
		p.nextToken()
		stmt.Select = p.parseSelectStmt()
		p.expect(token.RPAREN)
	default:
		p.addError("expected VALUES or SELECT in INSERT statement")
	}

	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseDeleteStmt parses DELETE FROM target [WHERE expr].
func (p *Parser) parseDeleteStmt() ast.Statement {
	start := p.token.Span.Start
	p.nextToken() // consume DELETE
	p.expect(token.FROM)
	stmt := &ast.DeleteStmt{}
	stmt.Target = p.parseTableRef()
	if p.check(token.WHERE) {
		stmt.Where = p.parseClause()
	}
	stmt.Span = p.spanFrom(start)
	return stmt
}

package parser

import (
	"fmt"

	"github.com/halcyondb/semql/pkg/ast"
	"github.com/halcyondb/semql/pkg/token"
)

// parseExpression parses an expression with standard SQL precedence.
// Returns nil (with an error recorded) when no expression starts here.
func (p *Parser) parseExpression() ast.Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expr {
	start := p.token.Span.Start
	left := p.parseAnd()
	if left == nil {
		return nil
	}
	for p.check(token.OR) {
		p.nextToken()
		right := p.parseAnd()
		if right == nil {
			return left
		}
		left = &ast.BinaryExpr{
			NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
			Left:     left, Op: token.OR, Right: right,
		}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	start := p.token.Span.Start
	left := p.parseNot()
	if left == nil {
		return nil
	}
	for p.check(token.AND) {
		p.nextToken()
		right := p.parseNot()
		if right == nil {
			return left
		}
		left = &ast.BinaryExpr{
			NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
			Left:     left, Op: token.AND, Right: right,
		}
	}
	return left
}

func (p *Parser) parseNot() ast.Expr {
	if p.check(token.NOT) {
		start := p.token.Span.Start
		p.nextToken()
		expr := p.parseNot()
		if expr == nil {
			return nil
		}
		return &ast.UnaryExpr{
			NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
			Op:       token.NOT, Expr: expr,
		}
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() ast.Expr {
	start := p.token.Span.Start
	left := p.parseAdditive()
	if left == nil {
		return nil
	}
	for {
		switch p.token.Type {
		case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE:
			op := p.token.Type
			p.nextToken()
			right := p.parseAdditive()
			if right == nil {
				return left
			}
			left = &ast.BinaryExpr{
				NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
				Left:     left, Op: op, Right: right,
			}
		case token.IS:
			left = p.parseIs(left, start)
		case token.NOT:
			if p.checkPeek(token.IN) || p.checkPeek(token.BETWEEN) || p.checkPeek(token.LIKE) {
				p.nextToken()
				left = p.parsePredicate(left, start, true)
			} else {
				return left
			}
		case token.IN, token.BETWEEN, token.LIKE:
			left = p.parsePredicate(left, start, false)
		default:
			return left
		}
	}
}

// parseIs parses IS [NOT] NULL|TRUE|FALSE.
func (p *Parser) parseIs(left ast.Expr, start token.Position) ast.Expr {
	p.nextToken() // consume IS
	not := p.match(token.NOT)
	switch p.token.Type {
	case token.NULL:
		p.nextToken()
		return &ast.IsNullExpr{
			NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
			Expr:     left, Not: not,
		}
	case token.TRUE, token.FALSE:
		lit := &ast.Literal{
			NodeInfo: ast.NodeInfo{Span: p.token.Span},
			Type:     ast.LiteralBool, Value: p.token.Literal,
		}
		p.nextToken()
		expr := ast.Expr(&ast.BinaryExpr{
			NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
			Left:     left, Op: token.IS, Right: lit,
		})
		if not {
			expr = &ast.UnaryExpr{
				NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
				Op:       token.NOT, Expr: expr,
			}
		}
		return expr
	default:
		p.addError(fmt.Sprintf("unexpected token %s after IS", p.token.Type))
		return left
	}
}

// parsePredicate parses IN, BETWEEN, and LIKE with an optional leading NOT
// already consumed.
func (p *Parser) parsePredicate(left ast.Expr, start token.Position, not bool) ast.Expr {
	switch p.token.Type {
	case token.IN:
		p.nextToken()
		in := &ast.InExpr{Expr: left, Not: not}
		if p.expect(token.LPAREN) {
			if p.check(token.SELECT) || p.check(token.WITH) {
				in.Query = p.parseSelectStmt()
			} else {
				for {
					expr := p.parseExpression()
					if expr == nil {
						break
					}
					in.Values = append(in.Values, expr)
					if !p.match(token.COMMA) {
						break
					}
				}
			}
			p.expect(token.RPAREN)
		}
		in.Span = p.spanFrom(start)
		return in
	case token.BETWEEN:
		p.nextToken()
		be := &ast.BetweenExpr{Expr: left, Not: not}
		be.Low = p.parseAdditive()
		p.expect(token.AND)
		be.High = p.parseAdditive()
		be.Span = p.spanFrom(start)
		return be
	case token.LIKE:
		p.nextToken()
		like := &ast.LikeExpr{Expr: left, Not: not}
		like.Pattern = p.parseAdditive()
		like.Span = p.spanFrom(start)
		return like
	default:
		return left
	}
}

func (p *Parser) parseAdditive() ast.Expr {
	start := p.token.Span.Start
	left := p.parseMultiplicative()
	if left == nil {
		return nil
	}
	for p.check(token.PLUS) || p.check(token.MINUS) || p.check(token.DPIPE) {
		op := p.token.Type
		p.nextToken()
		right := p.parseMultiplicative()
		if right == nil {
			return left
		}
		left = &ast.BinaryExpr{
			NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
			Left:     left, Op: op, Right: right,
		}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	start := p.token.Span.Start
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		op := p.token.Type
		p.nextToken()
		right := p.parseUnary()
		if right == nil {
			return left
		}
		left = &ast.BinaryExpr{
			NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
			Left:     left, Op: op, Right: right,
		}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.check(token.MINUS) || p.check(token.PLUS) {
		start := p.token.Span.Start
		op := p.token.Type
		p.nextToken()
		expr := p.parseUnary()
		if expr == nil {
			return nil
		}
		return &ast.UnaryExpr{
			NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
			Op:       op, Expr: expr,
		}
	}
	return p.parseMember()
}

// parseMember parses trailing .member accesses on composite-valued
// expressions. Dotted column names are consumed whole by parsePrimary.
func (p *Parser) parseMember() ast.Expr {
	start := p.token.Span.Start
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	if _, isName := expr.(*ast.ColumnRef); isName {
		return expr
	}
	for p.check(token.DOT) {
		p.nextToken()
		if !p.identLike() {
			p.addError(fmt.Sprintf(ErrExpectedIdent, p.token.Type))
			return expr
		}
		member := p.parseIdent()
		expr = &ast.MemberExpr{
			NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)},
			Owner:    expr,
			Member:   member,
		}
	}
	return expr
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.token.Span.Start
	switch p.token.Type {
	case token.NUMBER:
		lit := &ast.Literal{NodeInfo: ast.NodeInfo{Span: p.token.Span}, Type: ast.LiteralNumber, Value: p.token.Literal}
		p.nextToken()
		return lit
	case token.STRING:
		lit := &ast.Literal{NodeInfo: ast.NodeInfo{Span: p.token.Span}, Type: ast.LiteralString, Value: p.token.Literal}
		p.nextToken()
		return lit
	case token.TRUE, token.FALSE:
		lit := &ast.Literal{NodeInfo: ast.NodeInfo{Span: p.token.Span}, Type: ast.LiteralBool, Value: p.token.Literal}
		p.nextToken()
		return lit
	case token.NULL:
		lit := &ast.Literal{NodeInfo: ast.NodeInfo{Span: p.token.Span}, Type: ast.LiteralNull, Value: p.token.Literal}
		p.nextToken()
		return lit
	case token.CASE:
		return p.parseCase()
	case token.CAST:
		return p.parseCast()
	case token.EXISTS:
		p.nextToken()
		ex := &ast.ExistsExpr{}
		if p.expect(token.LPAREN) {
			ex.Select = p.parseSelectStmt()
			p.expect(token.RPAREN)
		}
		ex.Span = p.spanFrom(start)
		return ex
	case token.LPAREN:
		p.nextToken()
		if p.check(token.SELECT) || p.check(token.WITH) {
			sub := &ast.SubqueryExpr{Select: p.parseSelectStmt()}
			p.expect(token.RPAREN)
			sub.Span = p.spanFrom(start)
			return sub
		}
		inner := p.parseExpression()
		p.expect(token.RPAREN)
		if inner == nil {
			return nil
		}
		return &ast.ParenExpr{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Expr: inner}
	default:
		if p.identLike() {
			if p.checkPeek(token.LPAREN) {
				return p.parseFuncCall()
			}
			return p.parseNameExpr()
		}
		p.addError(fmt.Sprintf(ErrExpectedExpr, p.token.Type))
		return nil
	}
}

// parseNameExpr parses a dotted name into a column or tuple reference.
func (p *Parser) parseNameExpr() ast.Expr {
	start := p.token.Span.Start
	name := p.parseObjectName()
	if name == nil {
		return nil
	}
	if p.check(token.DOT) && p.checkPeek(token.STAR) {
		p.nextToken()
		p.nextToken()
		return &ast.TupleRef{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Table: name}
	}
	return &ast.ColumnRef{NodeInfo: ast.NodeInfo{Span: p.spanFrom(start)}, Name: name}
}

// parseFuncCall parses name(args), name(*), name(DISTINCT args).
func (p *Parser) parseFuncCall() ast.Expr {
	start := p.token.Span.Start
	fc := &ast.FuncCall{Name: p.parseIdent()}
	p.expect(token.LPAREN)
	if p.check(token.STAR) {
		fc.Star = true
		p.nextToken()
	} else if !p.check(token.RPAREN) {
		fc.Distinct = p.match(token.DISTINCT)
		for {
			expr := p.parseExpression()
			if expr == nil {
				break
			}
			fc.Args = append(fc.Args, expr)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN)
	fc.Span = p.spanFrom(start)
	return fc
}

// parseCase parses CASE [operand] WHEN ... THEN ... [ELSE ...] END.
func (p *Parser) parseCase() ast.Expr {
	start := p.token.Span.Start
	p.nextToken() // consume CASE
	ce := &ast.CaseExpr{}
	if !p.check(token.WHEN) {
		ce.Operand = p.parseExpression()
	}
	for p.match(token.WHEN) {
		wc := &ast.WhenClause{}
		wcStart := p.prevEnd
		wc.Condition = p.parseExpression()
		p.expect(token.THEN)
		wc.Result = p.parseExpression()
		wc.Span = token.Span{Start: wcStart, End: p.prevEnd}
		ce.Whens = append(ce.Whens, wc)
	}
	if p.match(token.ELSE) {
		ce.Else = p.parseExpression()
	}
	p.expect(token.END)
	ce.Span = p.spanFrom(start)
	return ce
}

// parseCast parses CAST(expr AS type).
func (p *Parser) parseCast() ast.Expr {
	start := p.token.Span.Start
	p.nextToken() // consume CAST
	ce := &ast.CastExpr{}
	if p.expect(token.LPAREN) {
		ce.Expr = p.parseExpression()
		p.expect(token.AS)
		ce.TypeName = p.parseIdent()
		p.expect(token.RPAREN)
	}
	ce.Span = p.spanFrom(start)
	return ce
}

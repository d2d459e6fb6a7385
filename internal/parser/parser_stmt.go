package parser

import (
	"github.com/halcyondb/semql/pkg/ast"
	"github.com/halcyondb/semql/pkg/token"
)

// clauseBoundary lists the tokens that end a clause during error recovery.
var clauseBoundary = []token.TokenType{
	token.FROM, token.WHERE, token.GROUP, token.HAVING, token.ORDER,
	token.LIMIT, token.UNION, token.INTERSECT, token.EXCEPT,
	token.RPAREN, token.INTO,
}

// parseSelectStmt parses [WITH ctes] select_body.
func (p *Parser) parseSelectStmt() *ast.SelectStmt {
	start := p.token.Span.Start
	stmt := &ast.SelectStmt{}
	if p.check(token.WITH) {
		stmt.With = p.parseWithClause()
	}
	stmt.Body = p.parseSelectBody()
	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseWithClause parses WITH [RECURSIVE] cte [, cte ...].
func (p *Parser) parseWithClause() *ast.WithClause {
	start := p.token.Span.Start
	p.nextToken() // consume WITH
	wc := &ast.WithClause{}
	wc.Recursive = p.match(token.RECURSIVE)
	for {
		cte := p.parseCTE()
		if cte != nil {
			wc.CTEs = append(wc.CTEs, cte)
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	wc.Span = p.spanFrom(start)
	return wc
}

// parseCTE parses name [(columns)] AS (select).
func (p *Parser) parseCTE() *ast.CTE {
	start := p.token.Span.Start
	cte := &ast.CTE{}
	cte.Name = p.parseIdent()
	if cte.Name == nil {
		p.skipUnexpected(token.SELECT, token.COMMA)
		return nil
	}
	if p.match(token.LPAREN) {
		for p.identLike() {
			cte.Columns = append(cte.Columns, p.parseIdent())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}
	p.expect(token.AS)
	if p.match(token.LPAREN) {
		cte.Select = p.parseSelectStmt()
		p.expect(token.RPAREN)
	} else {
		p.addError("expected ( after AS in common table expression")
	}
	cte.Span = p.spanFrom(start)
	return cte
}

// parseSelectBody parses select_core [(UNION|INTERSECT|EXCEPT) [ALL] body].
func (p *Parser) parseSelectBody() *ast.SelectBody {
	start := p.token.Span.Start
	body := &ast.SelectBody{
		Left: p.parseSelectCore(),
	}
	switch p.token.Type {
	case token.UNION:
		body.Op = ast.SetOpUnion
	case token.INTERSECT:
		body.Op = ast.SetOpIntersect
	case token.EXCEPT:
		body.Op = ast.SetOpExcept
	default:
		body.Span = p.spanFrom(start)
		return body
	}
	p.nextToken()
	body.All = p.match(token.ALL)
	body.Right = p.parseSelectBody()
	body.Span = p.spanFrom(start)
	return body
}

// parseSelectCore parses one SELECT block. Missing pieces stay nil so the
// analyzer can degrade around them.
func (p *Parser) parseSelectCore() *ast.SelectCore {
	start := p.token.Span.Start
	core := &ast.SelectCore{}
	if !p.check(token.SELECT) {
		p.addError("expected SELECT")
		p.skipUnexpected(clauseBoundary...)
		core.Span = p.spanFrom(start)
		return core
	}
	core.SelectKw = p.token.Span
	p.nextToken()
	core.Distinct = p.match(token.DISTINCT)

	core.Items = p.parseSelectList()

	if p.check(token.INTO) {
		core.Into = p.parseIntoClause()
	}
	if p.check(token.FROM) {
		core.From = p.parseFromClause()
	}
	if p.check(token.WHERE) {
		core.Where = p.parseClause()
	}
	if p.check(token.GROUP) {
		core.GroupBy = p.parseGroupByClause()
	}
	if p.check(token.HAVING) {
		core.Having = p.parseClause()
	}
	if p.check(token.ORDER) {
		core.OrderBy = p.parseOrderByClause()
	}
	if p.check(token.LIMIT) {
		core.Limit = p.parseLimitClause()
	}
	core.Span = p.spanFrom(start)
	return core
}

// parseSelectList parses the projection items up to the next clause.
func (p *Parser) parseSelectList() []*ast.SelectItem {
	var items []*ast.SelectItem
	for {
		if p.check(token.EOF) || p.check(token.SEMI) || p.atClauseBoundary() {
			break
		}
		item := p.parseSelectItem()
		if item != nil {
			items = append(items, item)
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	return items
}

func (p *Parser) atClauseBoundary() bool {
	for _, t := range clauseBoundary {
		if p.check(t) {
			return true
		}
	}
	return false
}

// parseSelectItem parses expr [[AS] alias] or a star item.
func (p *Parser) parseSelectItem() *ast.SelectItem {
	start := p.token.Span.Start
	item := &ast.SelectItem{}
	if p.check(token.STAR) {
		item.Expr = &ast.StarExpr{NodeInfo: ast.NodeInfo{Span: p.token.Span}}
		p.nextToken()
		item.Span = p.spanFrom(start)
		return item
	}
	item.Expr = p.parseExpression()
	if item.Expr == nil {
		item.Expr = p.skipUnexpected(append(clauseBoundary, token.COMMA)...)
	}
	if p.match(token.AS) {
		item.Alias = p.parseIdent()
	} else if p.identLike() {
		item.Alias = p.parseIdent()
	}
	item.Span = p.spanFrom(start)
	return item
}

// parseIntoClause parses INTO target [, target ...].
func (p *Parser) parseIntoClause() *ast.IntoClause {
	start := p.token.Span.Start
	clause := &ast.IntoClause{Keyword: p.token.Span}
	p.nextToken() // consume INTO
	for p.identLike() {
		if name := p.parseObjectName(); name != nil {
			clause.Targets = append(clause.Targets, name)
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	clause.Span = p.spanFrom(start)
	return clause
}

// parseClause parses WHERE expr or HAVING expr.
func (p *Parser) parseClause() *ast.Clause {
	start := p.token.Span.Start
	clause := &ast.Clause{Keyword: p.token.Span}
	p.nextToken() // consume keyword
	clause.Expr = p.parseExpression()
	if clause.Expr == nil {
		clause.Expr = p.skipUnexpected(clauseBoundary...)
	}
	clause.Span = p.spanFrom(start)
	return clause
}

// parseGroupByClause parses GROUP BY expr [, expr ...].
func (p *Parser) parseGroupByClause() *ast.GroupByClause {
	start := p.token.Span.Start
	kw := p.token.Span
	p.nextToken() // consume GROUP
	if p.check(token.BY) {
		kw = kw.Union(p.token.Span)
		p.nextToken()
	} else {
		p.addError("expected BY after GROUP")
	}
	clause := &ast.GroupByClause{Keyword: kw}
	for {
		expr := p.parseExpression()
		if expr == nil {
			break
		}
		clause.Exprs = append(clause.Exprs, expr)
		if !p.match(token.COMMA) {
			break
		}
	}
	clause.Span = p.spanFrom(start)
	return clause
}

// parseOrderByClause parses ORDER BY item [, item ...].
func (p *Parser) parseOrderByClause() *ast.OrderByClause {
	start := p.token.Span.Start
	kw := p.token.Span
	p.nextToken() // consume ORDER
	if p.check(token.BY) {
		kw = kw.Union(p.token.Span)
		p.nextToken()
	} else {
		p.addError("expected BY after ORDER")
	}
	clause := &ast.OrderByClause{Keyword: kw}
	for {
		itemStart := p.token.Span.Start
		expr := p.parseExpression()
		if expr == nil {
			break
		}
		item := &ast.OrderByItem{Expr: expr}
		if p.match(token.DESC) {
			item.Desc = true
		} else {
			p.match(token.ASC)
		}
		item.Span = p.spanFrom(itemStart)
		clause.Items = append(clause.Items, item)
		if !p.match(token.COMMA) {
			break
		}
	}
	clause.Span = p.spanFrom(start)
	return clause
}

// parseLimitClause parses LIMIT expr [OFFSET expr].
func (p *Parser) parseLimitClause() *ast.LimitClause {
	start := p.token.Span.Start
	clause := &ast.LimitClause{Keyword: p.token.Span}
	p.nextToken() // consume LIMIT
	clause.Count = p.parseExpression()
	if p.match(token.OFFSET) {
		clause.Offset = p.parseExpression()
	}
	clause.Span = p.spanFrom(start)
	return clause
}

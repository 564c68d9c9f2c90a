package parser

import (
	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
	"github.com/leapstack-labs/sqlrewrite/pkg/token"
)

// Statement parsing.
//
// Grammar:
//
//	statement   → set_expr [ORDER BY order_list] [LIMIT expr [OFFSET expr]]
//	set_expr    → branch {set_op branch}
//	set_op      → (UNION|INTERSECT|EXCEPT) [ALL|DISTINCT]
//	branch      → select_core | ( statement )
//
// A trailing ORDER BY / LIMIT applies to the whole compound statement; for a
// single select it belongs to that select.

// parseStatement parses a statement.
func (p *Parser) parseStatement() ast.Statement {
	first := p.parseBranch()
	if first == nil {
		return nil
	}

	if !p.isSetOp() {
		p.parseTail(&first.OrderBy, &first.Limit, &first.Offset)
		return first
	}

	set := &ast.SetOp{Selects: []*ast.Select{first}}
	for p.isSetOp() && !p.failed() {
		set.Ops = append(set.Ops, p.parseSetOperator())
		branch := p.parseBranch()
		if branch == nil {
			return nil
		}
		set.Selects = append(set.Selects, branch)
	}
	p.parseTail(&set.OrderBy, &set.Limit, &set.Offset)
	return set
}

func (p *Parser) isSetOp() bool {
	switch p.token.Type {
	case token.UNION, token.INTERSECT, token.EXCEPT:
		return true
	}
	return false
}

func (p *Parser) parseSetOperator() ast.SetOperator {
	var op ast.SetOperator
	switch p.token.Type {
	case token.INTERSECT:
		op.Kind = ast.Intersect
	case token.EXCEPT:
		op.Kind = ast.Except
	default:
		op.Kind = ast.Union
	}
	p.nextToken()
	if p.match(token.ALL) {
		op.All = true
	} else {
		p.match(token.DISTINCT)
	}
	return op
}

// parseBranch parses one select of a statement, either bare or wrapped in
// parentheses with its own ORDER BY / LIMIT.
func (p *Parser) parseBranch() *ast.Select {
	if p.match(token.LPAREN) {
		inner := p.parseStatement()
		p.expect(token.RPAREN)
		if inner == nil {
			return nil
		}
		sel, ok := inner.(*ast.Select)
		if !ok {
			p.addError(errNestedSetOp)
			return nil
		}
		return sel
	}
	return p.parseSelectCore()
}

// parseTail parses ORDER BY, LIMIT and OFFSET.
func (p *Parser) parseTail(orderBy *[]*ast.OrderItem, limit, offset *ast.Expr) {
	if p.check(token.ORDER) {
		p.nextToken()
		p.expect(token.BY)
		*orderBy = p.parseOrderList()
	}
	if p.match(token.LIMIT) {
		*limit = p.parseExpression()
		if p.match(token.COMMA) {
			// LIMIT offset, count
			*offset = *limit
			*limit = p.parseExpression()
			return
		}
	}
	if p.match(token.OFFSET) {
		*offset = p.parseExpression()
	}
}

// parseSelectCore parses:
//
//	SELECT [DISTINCT|ALL] select_list [FROM from_clause]
//	[WHERE expr] [GROUP BY expr_list] [HAVING expr]
func (p *Parser) parseSelectCore() *ast.Select {
	if !p.expect(token.SELECT) {
		return nil
	}

	sel := &ast.Select{}
	if p.match(token.DISTINCT) {
		sel.Distinct = true
	} else {
		p.match(token.ALL)
	}

	sel.Items = p.parseSelectList()

	if p.match(token.FROM) {
		sel.From = p.parseFromItem()
		sel.Joins = p.parseJoins()
	}
	if p.match(token.WHERE) {
		sel.Where = p.parseExpression()
	}
	if p.check(token.GROUP) {
		p.nextToken()
		p.expect(token.BY)
		sel.GroupBy = p.parseExpressionList()
	}
	if p.match(token.HAVING) {
		sel.Having = p.parseExpression()
	}
	return sel
}

// parseSelectList parses the projection list.
func (p *Parser) parseSelectList() []*ast.SelectItem {
	var items []*ast.SelectItem
	for {
		items = append(items, p.parseSelectItem())
		if !p.match(token.COMMA) || p.failed() {
			break
		}
	}
	return items
}

func (p *Parser) parseSelectItem() *ast.SelectItem {
	if p.match(token.STAR) {
		return &ast.SelectItem{Expr: &ast.Star{}}
	}
	item := &ast.SelectItem{Expr: p.parseExpression()}
	if _, isStar := item.Expr.(*ast.Star); !isStar {
		item.Alias = p.parseAlias()
	}
	return item
}

// parseOrderList parses: expr [ASC|DESC] {, expr [ASC|DESC]}
func (p *Parser) parseOrderList() []*ast.OrderItem {
	var items []*ast.OrderItem
	for {
		item := &ast.OrderItem{Expr: p.parseExpression()}
		switch {
		case p.match(token.DESC):
			item.Desc = true
			item.Explicit = true
		case p.match(token.ASC):
			item.Explicit = true
		}
		items = append(items, item)
		if !p.match(token.COMMA) || p.failed() {
			break
		}
	}
	return items
}

// parseExpressionList parses: expr {, expr}
func (p *Parser) parseExpressionList() []ast.Expr {
	var list []ast.Expr
	for {
		list = append(list, p.parseExpression())
		if !p.match(token.COMMA) || p.failed() {
			break
		}
	}
	return list
}

package parser

import (
	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
	"github.com/leapstack-labs/sqlrewrite/pkg/token"
)

// FROM clause parsing.
//
// Grammar:
//
//	from_clause → from_item {join}
//	from_item   → table_name [[AS] alias]
//	            | ( statement ) [[AS] alias]
//	            | ( from_item {join} ) [[AS] alias]
//	join        → , from_item
//	            | [INNER | LEFT [OUTER] | RIGHT [OUTER] | FULL [OUTER] | CROSS] JOIN from_item
//	              [ON expr | USING ( ident_list )]

// parseFromItem parses a single FROM item.
func (p *Parser) parseFromItem() ast.FromItem {
	if p.match(token.LPAREN) {
		if p.check(token.SELECT) || p.check(token.LPAREN) {
			sub := &ast.SubSelect{Select: p.parseStatement()}
			p.expect(token.RPAREN)
			sub.Alias = p.parseAlias()
			return sub
		}
		paren := &ast.ParenFrom{From: p.parseFromItem()}
		paren.Joins = p.parseJoins()
		p.expect(token.RPAREN)
		paren.Alias = p.parseAlias()
		return paren
	}

	table := &ast.Table{Name: p.parseIdent()}
	if p.match(token.DOT) {
		table.Schema = table.Name
		table.Name = p.parseIdent()
	}
	table.Alias = p.parseAlias()
	return table
}

// parseJoins parses zero or more joins.
func (p *Parser) parseJoins() []*ast.Join {
	var joins []*ast.Join
	for !p.failed() {
		kind, ok := p.parseJoinKind()
		if !ok {
			break
		}
		join := &ast.Join{Kind: kind, Right: p.parseFromItem()}
		if kind != ast.JoinComma && kind != ast.JoinCross {
			switch {
			case p.match(token.ON):
				join.On = p.parseExpression()
			case p.match(token.USING):
				join.Using = p.parseUsing()
			}
		}
		joins = append(joins, join)
	}
	return joins
}

// parseJoinKind consumes a join introducer and reports its kind.
func (p *Parser) parseJoinKind() (ast.JoinKind, bool) {
	var kind ast.JoinKind
	switch p.token.Type {
	case token.COMMA:
		p.nextToken()
		return ast.JoinComma, true
	case token.JOIN:
		kind = ast.JoinPlain
	case token.INNER:
		kind = ast.JoinInner
		p.nextToken()
	case token.LEFT:
		kind = ast.JoinLeft
		p.nextToken()
		p.match(token.OUTER)
	case token.RIGHT:
		kind = ast.JoinRight
		p.nextToken()
		p.match(token.OUTER)
	case token.FULL:
		kind = ast.JoinFull
		p.nextToken()
		p.match(token.OUTER)
	case token.CROSS:
		kind = ast.JoinCross
		p.nextToken()
	default:
		return 0, false
	}
	p.expect(token.JOIN)
	return kind, true
}

func (p *Parser) parseUsing() []string {
	p.expect(token.LPAREN)
	var cols []string
	for {
		cols = append(cols, p.parseIdent())
		if !p.match(token.COMMA) || p.failed() {
			break
		}
	}
	p.expect(token.RPAREN)
	return cols
}

package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
	"github.com/leapstack-labs/sqlrewrite/pkg/token"
)

// Primary expression parsing.
//
// Grammar:
//
//	primary → NUMBER | STRING | TRUE | FALSE | NULL | *
//	        | name [. name | . *]
//	        | name ( [DISTINCT] [* | expr_list] )
//	        | ( expr ) | ( statement )
//	        | EXISTS ( statement )
//	        | CASE [expr] WHEN expr THEN expr {WHEN ...} [ELSE expr] END
//	        | CAST ( expr AS type )

// parsePrimary parses primary expressions.
func (p *Parser) parsePrimary() ast.Expr {
	switch p.token.Type {
	case token.NUMBER:
		lit := ast.Number(p.token.Literal)
		p.nextToken()
		return lit

	case token.STRING:
		lit := ast.String(p.token.Literal)
		p.nextToken()
		return lit

	case token.TRUE, token.FALSE:
		lit := &ast.Literal{Kind: ast.LiteralBool, Value: strings.ToUpper(p.token.Literal)}
		p.nextToken()
		return lit

	case token.NULL:
		p.nextToken()
		return &ast.Literal{Kind: ast.LiteralNull, Value: "NULL"}

	case token.STAR:
		p.nextToken()
		return &ast.Star{}

	case token.LPAREN:
		p.nextToken()
		if p.check(token.SELECT) {
			sub := &ast.Subquery{Select: p.parseStatement()}
			p.expect(token.RPAREN)
			return sub
		}
		inner := p.parseExpression()
		p.expect(token.RPAREN)
		return &ast.Paren{Expr: inner}

	case token.EXISTS:
		p.nextToken()
		p.expect(token.LPAREN)
		ex := &ast.Exists{Select: p.parseStatement()}
		p.expect(token.RPAREN)
		return ex

	case token.CASE:
		return p.parseCase()

	case token.CAST:
		return p.parseCast()

	case token.IDENT:
		return p.parseName()

	case token.LEFT, token.RIGHT:
		// LEFT(s, n) and RIGHT(s, n) are functions outside of joins
		if p.checkPeek(token.LPAREN) {
			name := p.token.Literal
			p.nextToken()
			return p.parseCall(name)
		}
	}

	p.addError(fmt.Sprintf(errExpectedExpr, p.describe()))
	return nil
}

// parseName parses a column reference, a qualified star or a function call.
func (p *Parser) parseName() ast.Expr {
	quoted := p.token.Quoted != 0
	name := p.token.Literal
	p.nextToken()

	if p.check(token.LPAREN) && !quoted {
		return p.parseCall(name)
	}

	if p.match(token.DOT) {
		if p.match(token.STAR) {
			return &ast.Star{Table: name}
		}
		return &ast.Column{Table: name, Name: p.parseIdent()}
	}
	return &ast.Column{Name: name}
}

// parseCall parses a function call argument list with the current token on
// the opening parenthesis.
func (p *Parser) parseCall(name string) ast.Expr {
	p.expect(token.LPAREN)
	call := &ast.FuncCall{Name: name}
	if p.match(token.RPAREN) {
		return call
	}
	if p.match(token.DISTINCT) {
		call.Distinct = true
	}
	call.Args = p.parseExpressionList()
	p.expect(token.RPAREN)
	return call
}

// parseCase parses a simple or searched CASE expression.
func (p *Parser) parseCase() ast.Expr {
	p.expect(token.CASE)
	c := &ast.Case{}
	if !p.check(token.WHEN) {
		c.Operand = p.parseExpression()
	}
	for p.match(token.WHEN) && !p.failed() {
		w := &ast.When{Cond: p.parseExpression()}
		p.expect(token.THEN)
		w.Result = p.parseExpression()
		c.Whens = append(c.Whens, w)
	}
	if len(c.Whens) == 0 {
		p.addError(fmt.Sprintf(errUnexpectedToken, p.describe(), token.WHEN))
		return nil
	}
	if p.match(token.ELSE) {
		c.Else = p.parseExpression()
	}
	p.expect(token.END)
	return c
}

// parseCast parses CAST(expr AS type). The type is kept as written,
// including an optional parenthesized precision.
func (p *Parser) parseCast() ast.Expr {
	p.expect(token.CAST)
	p.expect(token.LPAREN)
	c := &ast.Cast{Expr: p.parseExpression()}
	p.expect(token.AS)

	var typ strings.Builder
	typ.WriteString(p.parseIdent())
	for p.isIdent() {
		// multi-word types such as DOUBLE PRECISION
		typ.WriteByte(' ')
		typ.WriteString(p.parseIdent())
	}
	if p.match(token.LPAREN) {
		typ.WriteByte('(')
		for !p.check(token.RPAREN) && !p.check(token.EOF) {
			if p.check(token.COMMA) {
				typ.WriteString(", ")
			} else {
				typ.WriteString(p.token.Literal)
			}
			p.nextToken()
		}
		p.expect(token.RPAREN)
		typ.WriteByte(')')
	}
	c.Type = typ.String()
	p.expect(token.RPAREN)
	return c
}

package parser

import (
	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
	"github.com/leapstack-labs/sqlrewrite/pkg/token"
)

// Expression precedence parsing using a Pratt parser.
//
// Precedence levels:
//
//	precedenceOr         = 1
//	precedenceAnd        = 2
//	precedenceNot        = 3
//	precedenceComparison = 4  (=, !=, <, >, <=, >=, IS, IN, BETWEEN, LIKE)
//	precedenceAddition   = 5  (+, -, ||)
//	precedenceMultiply   = 6  (*, /, %)
//	precedenceUnary      = 7  (-, +)
const (
	precedenceNone = iota
	precedenceOr
	precedenceAnd
	precedenceNot
	precedenceComparison
	precedenceAddition
	precedenceMultiply
	precedenceUnary
)

// parseExpression parses an expression using precedence climbing.
func (p *Parser) parseExpression() ast.Expr {
	return p.parseExpressionWithPrecedence(precedenceNone + 1)
}

// parseExpressionWithPrecedence implements Pratt parsing.
func (p *Parser) parseExpressionWithPrecedence(minPrecedence int) ast.Expr {
	left := p.parsePrefixExpr()
	if left == nil {
		return nil
	}

	for !p.failed() {
		prec := p.infixPrecedence()
		if prec < minPrecedence || prec == precedenceNone {
			break
		}
		left = p.parseInfixExpr(left, prec)
		if left == nil {
			break
		}
	}

	return left
}

// parsePrefixExpr parses prefix expressions (unary operators and primary expressions).
func (p *Parser) parsePrefixExpr() ast.Expr {
	switch p.token.Type {
	case token.NOT:
		p.nextToken()
		return &ast.Not{Expr: p.parseExpressionWithPrecedence(precedenceNot)}
	case token.MINUS:
		p.nextToken()
		return &ast.Unary{Op: ast.OpSub, Expr: p.parseExpressionWithPrecedence(precedenceUnary)}
	case token.PLUS:
		p.nextToken()
		return &ast.Unary{Op: ast.OpAdd, Expr: p.parseExpressionWithPrecedence(precedenceUnary)}
	default:
		return p.parsePrimary()
	}
}

// infixPrecedence returns the precedence of the current token as an infix
// operator, or precedenceNone.
func (p *Parser) infixPrecedence() int {
	switch p.token.Type {
	case token.OR:
		return precedenceOr
	case token.AND:
		return precedenceAnd
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE,
		token.IS, token.IN, token.BETWEEN, token.LIKE:
		return precedenceComparison
	case token.NOT:
		// NOT IN, NOT BETWEEN, NOT LIKE
		switch p.peek.Type {
		case token.IN, token.BETWEEN, token.LIKE:
			return precedenceComparison
		}
		return precedenceNone
	case token.PLUS, token.MINUS, token.DPIPE:
		return precedenceAddition
	case token.STAR, token.SLASH, token.PERCENT:
		return precedenceMultiply
	}
	return precedenceNone
}

var compareOps = map[token.TokenType]ast.CompareOp{
	token.EQ: ast.OpEq,
	token.NE: ast.OpNe,
	token.LT: ast.OpLt,
	token.LE: ast.OpLe,
	token.GT: ast.OpGt,
	token.GE: ast.OpGe,
}

var binaryOps = map[token.TokenType]ast.BinaryOp{
	token.PLUS:    ast.OpAdd,
	token.MINUS:   ast.OpSub,
	token.STAR:    ast.OpMul,
	token.SLASH:   ast.OpDiv,
	token.PERCENT: ast.OpMod,
	token.DPIPE:   ast.OpConcat,
}

// parseInfixExpr parses an infix expression given the left operand and current precedence.
func (p *Parser) parseInfixExpr(left ast.Expr, prec int) ast.Expr {
	switch p.token.Type {
	case token.OR:
		p.nextToken()
		return &ast.Or{Left: left, Right: p.parseExpressionWithPrecedence(prec + 1)}
	case token.AND:
		p.nextToken()
		return &ast.And{Left: left, Right: p.parseExpressionWithPrecedence(prec + 1)}
	case token.NOT:
		p.nextToken()
		return p.parsePredicate(left, true)
	case token.IS, token.IN, token.BETWEEN, token.LIKE:
		return p.parsePredicate(left, false)
	}

	if op, ok := compareOps[p.token.Type]; ok {
		p.nextToken()
		return &ast.Comparison{Op: op, Left: left, Right: p.parseExpressionWithPrecedence(prec + 1)}
	}
	if op, ok := binaryOps[p.token.Type]; ok {
		p.nextToken()
		return &ast.Binary{Op: op, Left: left, Right: p.parseExpressionWithPrecedence(prec + 1)}
	}
	return left
}

// parsePredicate parses IS [NOT] NULL, [NOT] IN, [NOT] BETWEEN and
// [NOT] LIKE with the current token on the keyword.
func (p *Parser) parsePredicate(left ast.Expr, not bool) ast.Expr {
	switch p.token.Type {
	case token.IS:
		p.nextToken()
		isNot := p.match(token.NOT)
		p.expect(token.NULL)
		return &ast.IsNull{Expr: left, Not: isNot}

	case token.IN:
		p.nextToken()
		in := &ast.In{Expr: left, Not: not}
		p.expect(token.LPAREN)
		if p.check(token.SELECT) {
			in.Select = p.parseStatement()
		} else {
			in.List = p.parseExpressionList()
		}
		p.expect(token.RPAREN)
		return in

	case token.BETWEEN:
		p.nextToken()
		between := &ast.Between{Expr: left, Not: not}
		between.Low = p.parseExpressionWithPrecedence(precedenceAddition)
		p.expect(token.AND)
		between.High = p.parseExpressionWithPrecedence(precedenceAddition)
		return between

	case token.LIKE:
		p.nextToken()
		return &ast.Like{Expr: left, Not: not, Pattern: p.parseExpressionWithPrecedence(precedenceAddition)}
	}
	p.addError("expected IN, BETWEEN or LIKE after NOT")
	return nil
}

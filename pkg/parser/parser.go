// Package parser turns SQL text into the query tree of package ast.
//
// # Usage
//
//	stmt, err := parser.Parse("SELECT a, b FROM t WHERE c > 1")
//	if err != nil {
//	    // handle error
//	}
//
// # Grammar Overview
//
// The parser implements a recursive descent parser for the query subset the
// rewriter works on:
//
//	statement     → set_expr [ORDER BY order_list] [LIMIT expr [OFFSET expr]] [;]
//	set_expr      → branch {(UNION|INTERSECT|EXCEPT) [ALL|DISTINCT] branch}
//	branch        → select_core | ( statement )
//	select_core   → SELECT [DISTINCT|ALL] select_list [FROM from_clause]
//	                [WHERE expr] [GROUP BY expr_list] [HAVING expr]
//
// Expressions are parsed with a Pratt parser; see parser_expr.go.
package parser

import (
	"fmt"

	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
	"github.com/leapstack-labs/sqlrewrite/pkg/token"
)

// Parser parses SQL into an AST.
type Parser struct {
	lexer  *Lexer
	token  token.Token // current token
	peek   token.Token // lookahead token
	peek2  token.Token // second lookahead token
	errors []error
}

// NewParser creates a new parser for the given SQL input.
func NewParser(sql string) *Parser {
	p := &Parser{lexer: NewLexer(sql)}
	// Read three tokens to initialize current, peek, and peek2
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses a single SELECT or compound set operation.
func Parse(sql string) (ast.Statement, error) {
	p := NewParser(sql)
	if !p.check(token.SELECT) && !p.check(token.LPAREN) {
		if p.check(token.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrNotSelect)
		}
		return nil, fmt.Errorf("%w: starts with %q", ErrNotSelect, p.token.Literal)
	}
	stmt := p.parseStatement()
	p.match(token.SEMICOLON)
	p.expectEOF()
	if err := p.err(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// ParseExpr parses a standalone expression.
func ParseExpr(text string) (ast.Expr, error) {
	p := NewParser(text)
	expr := p.parseExpression()
	p.expectEOF()
	if err := p.err(); err != nil {
		return nil, err
	}
	return expr, nil
}

// ParseCondition parses a boolean condition such as "a >= '2024-01-01'" or
// "(a > 1 AND b < 2)".
func ParseCondition(text string) (ast.Expr, error) {
	expr, err := ParseExpr(text)
	if err != nil {
		return nil, err
	}
	if !isCondition(expr) {
		return nil, fmt.Errorf("%w: %q", ErrNotCondition, text)
	}
	return expr, nil
}

func isCondition(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.Comparison, *ast.In, *ast.Between, *ast.Like, *ast.IsNull, *ast.Exists:
		return true
	case *ast.And:
		return isCondition(x.Left) && isCondition(x.Right)
	case *ast.Or:
		return isCondition(x.Left) && isCondition(x.Right)
	case *ast.Not:
		return isCondition(x.Expr)
	case *ast.Paren:
		return isCondition(x.Expr)
	}
	return false
}

// err returns the first lexical or parse error, lexical errors first since
// they usually cause the parse errors that follow.
func (p *Parser) err() error {
	if errs := p.lexer.Errors(); len(errs) > 0 {
		return errs[0]
	}
	if len(p.errors) > 0 {
		return p.errors[0]
	}
	return nil
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
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
	p.addError(fmt.Sprintf(errUnexpectedToken, p.describe(), t))
	return false
}

func (p *Parser) expectEOF() {
	if !p.check(token.EOF) && len(p.errors) == 0 {
		p.addError(fmt.Sprintf(errUnexpectedTrailing, p.token.Literal))
	}
}

// addError adds a parse error.
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{
		Pos:     p.token.Pos,
		Message: msg,
	})
}

func (p *Parser) failed() bool {
	return len(p.errors) > 0 || len(p.lexer.Errors()) > 0
}

// describe renders the current token for error messages.
func (p *Parser) describe() string {
	switch p.token.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT, token.NUMBER, token.STRING:
		return fmt.Sprintf("%s %q", p.token.Type, p.token.Literal)
	}
	return p.token.Type.String()
}

// isIdent reports whether the current token can be used as a name:
// identifiers and quoted identifiers.
func (p *Parser) isIdent() bool {
	return p.token.Type == token.IDENT
}

// parseIdent consumes an identifier and returns its text.
func (p *Parser) parseIdent() string {
	if !p.isIdent() {
		p.addError(fmt.Sprintf(errUnexpectedToken, p.describe(), "identifier"))
		return ""
	}
	name := p.token.Literal
	p.nextToken()
	return name
}

// parseAlias parses an optional [AS] alias.
func (p *Parser) parseAlias() string {
	if p.match(token.AS) {
		if p.check(token.STRING) {
			alias := p.token.Literal
			p.nextToken()
			return alias
		}
		return p.parseIdent()
	}
	if p.isIdent() {
		return p.parseIdent()
	}
	return ""
}

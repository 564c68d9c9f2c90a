package parser

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/sqlrewrite/pkg/token"
)

// ErrNotSelect is returned by Parse for statements that are neither a plain
// SELECT nor a compound set operation.
var ErrNotSelect = errors.New("statement is not a select")

// ErrNotCondition is returned by ParseCondition when the text parses as an
// expression that is not a boolean condition.
var ErrNotCondition = errors.New("expression is not a condition")

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// LexError represents a lexical analysis error.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	errUnexpectedToken     = "unexpected token %s, expected %s"
	errUnexpectedTrailing  = "unexpected %q after end of statement"
	errUnterminatedString  = "unterminated string literal"
	errUnterminatedIdent   = "unterminated quoted identifier"
	errUnterminatedComment = "unterminated block comment"
	errIllegalChar         = "illegal character %q"
	errExpectedExpr        = "expected expression, got %s"
	errNestedSetOp         = "parenthesized set operation branch must be a plain select"
)

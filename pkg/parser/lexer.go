package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/sqlrewrite/pkg/token"
)

// Lexer tokenizes SQL input. It works on runes so identifiers may use any
// Unicode letters.
type Lexer struct {
	input   string
	pos     int  // byte offset of ch
	readPos int  // byte offset after ch
	ch      rune // current char under examination, 0 at EOF
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	errors []error
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Errors returns the lexical errors seen so far.
func (l *Lexer) Errors() []error {
	return l.errors
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	l.pos = l.readPos
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		r, w := utf8.DecodeRuneInString(l.input[l.readPos:])
		l.ch = r
		l.readPos += w
	}

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	if l.ch == utf8.RuneError && l.readPos-l.pos == 1 {
		l.addError(l.currentPos(), fmt.Sprintf("invalid UTF-8 byte %#x", l.input[l.pos]))
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

func (l *Lexer) addError(pos token.Position, msg string) {
	l.errors = append(l.errors, &LexError{Pos: pos, Message: msg})
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()
	if l.atEOF() {
		return token.Token{Type: token.EOF, Pos: pos}
	}

	single := func(t token.TokenType) token.Token {
		lit := string(l.ch)
		l.readChar()
		return token.Token{Type: t, Literal: lit, Pos: pos}
	}
	double := func(t token.TokenType, lit string) token.Token {
		l.readChar()
		l.readChar()
		return token.Token{Type: t, Literal: lit, Pos: pos}
	}

	switch l.ch {
	case '+':
		return single(token.PLUS)
	case '-':
		return single(token.MINUS)
	case '*':
		return single(token.STAR)
	case '/':
		return single(token.SLASH)
	case '%':
		return single(token.PERCENT)
	case '=':
		if l.peekChar() == '=' {
			return double(token.EQ, "==")
		}
		return single(token.EQ)
	case '<':
		switch l.peekChar() {
		case '=':
			return double(token.LE, "<=")
		case '>':
			return double(token.NE, "<>")
		}
		return single(token.LT)
	case '>':
		if l.peekChar() == '=' {
			return double(token.GE, ">=")
		}
		return single(token.GT)
	case '!':
		if l.peekChar() == '=' {
			return double(token.NE, "!=")
		}
	case '|':
		if l.peekChar() == '|' {
			return double(token.DPIPE, "||")
		}
	case '.':
		if isDigit(l.peekChar()) {
			return token.Token{Type: token.NUMBER, Literal: l.readNumber(), Pos: pos}
		}
		return single(token.DOT)
	case ',':
		return single(token.COMMA)
	case '(':
		return single(token.LPAREN)
	case ')':
		return single(token.RPAREN)
	case ';':
		return single(token.SEMICOLON)
	case '\'':
		return token.Token{Type: token.STRING, Literal: l.readQuoted('\'', errUnterminatedString), Pos: pos}
	case '"', '`':
		q := l.ch
		return token.Token{Type: token.IDENT, Literal: l.readQuoted(q, errUnterminatedIdent), Quoted: q, Pos: pos}
	default:
		switch {
		case token.IsIdentStart(l.ch):
			lit := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(strings.ToLower(lit)), Literal: lit, Pos: pos}
		case isDigit(l.ch):
			return token.Token{Type: token.NUMBER, Literal: l.readNumber(), Pos: pos}
		}
	}

	tok := single(token.ILLEGAL)
	l.addError(pos, fmt.Sprintf(errIllegalChar, tok.Literal))
	return tok
}

// skipWhitespaceAndComments skips whitespace, line and block comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for unicode.IsSpace(l.ch) {
			l.readChar()
		}

		if l.ch == '-' && l.peekChar() == '-' {
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			start := l.currentPos()
			l.readChar() // skip '/'
			l.readChar() // skip '*'
			closed := false
			for !l.atEOF() {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					closed = true
					break
				}
				l.readChar()
			}
			if !closed {
				l.addError(start, errUnterminatedComment)
			}
			continue
		}

		break
	}
}

// readQuoted reads a literal delimited by q. A doubled delimiter is an
// escaped delimiter: 'it''s' -> it's.
func (l *Lexer) readQuoted(q rune, unterminated string) string {
	start := l.currentPos()
	l.readChar() // skip opening quote

	var result strings.Builder
	for !l.atEOF() {
		if l.ch == q {
			if l.peekChar() == q {
				result.WriteRune(q)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			return result.String()
		}
		result.WriteRune(l.ch)
		l.readChar()
	}
	l.addError(start, unterminated)
	return result.String()
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for token.IsIdentPart(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() string {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && (isDigit(l.peekChar()) || l.pos == start) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// Exponent part (e.g., 1e10, 1E-5)
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	return l.input[start:l.pos]
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

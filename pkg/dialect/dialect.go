// Package dialect describes how SQL text is rendered for a target database:
// identifier quoting, reserved words and the set of aggregate functions.
package dialect

import (
	"strings"

	"github.com/leapstack-labs/sqlrewrite/pkg/token"
)

// Dialect holds the rendering rules of one SQL dialect.
type Dialect struct {
	Name string

	quote    string
	quoteEnd string
	escape   string

	reservedWords map[string]struct{}
	aggregates    map[string]struct{}
}

// Builder builds a Dialect.
type Builder struct {
	d *Dialect
}

// NewDialect starts building a dialect with ANSI double-quote identifiers.
func NewDialect(name string) *Builder {
	return &Builder{d: &Dialect{
		Name:          name,
		quote:         `"`,
		quoteEnd:      `"`,
		escape:        `""`,
		reservedWords: make(map[string]struct{}),
		aggregates:    make(map[string]struct{}),
	}}
}

// Identifiers sets the identifier quote characters and the escape sequence
// for a quote end character inside a quoted identifier.
func (b *Builder) Identifiers(quote, quoteEnd, escape string) *Builder {
	b.d.quote = quote
	b.d.quoteEnd = quoteEnd
	b.d.escape = escape
	return b
}

// ReservedWords adds words that must be quoted when used as identifiers.
func (b *Builder) ReservedWords(words ...string) *Builder {
	for _, w := range words {
		b.d.reservedWords[strings.ToLower(w)] = struct{}{}
	}
	return b
}

// Aggregates adds aggregate function names.
func (b *Builder) Aggregates(names ...string) *Builder {
	for _, n := range names {
		b.d.aggregates[strings.ToLower(n)] = struct{}{}
	}
	return b
}

// Build returns the dialect.
func (b *Builder) Build() *Dialect {
	return b.d
}

// IsAggregate returns true if the function is an aggregate function.
// Names are compared case-insensitively.
func (d *Dialect) IsAggregate(name string) bool {
	_, ok := d.aggregates[strings.ToLower(name)]
	return ok
}

// IsReservedWord returns true if the word needs quoting when used as an
// identifier. Parser keywords are always reserved.
func (d *Dialect) IsReservedWord(word string) bool {
	lower := strings.ToLower(word)
	if token.IsReserved(lower) {
		return true
	}
	_, ok := d.reservedWords[lower]
	return ok
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, d.quoteEnd, d.escape)
	return d.quote + escaped + d.quoteEnd
}

// QuoteIdentifierIfNeeded quotes an identifier when it is a reserved word or
// cannot be written bare.
func (d *Dialect) QuoteIdentifierIfNeeded(name string) string {
	if !token.IsIdentifier(name) || d.IsReservedWord(name) {
		return d.QuoteIdentifier(name)
	}
	return name
}

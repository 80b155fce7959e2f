package query

import (
	"regexp"
	"strings"
)

// EscapeStrategy selects how string literals are escaped.
type EscapeStrategy int

const (
	// EscapeStandard doubles single quotes. Correct for servers running with
	// standard_conforming_strings on, the PostgreSQL default.
	EscapeStandard EscapeStrategy = iota

	// EscapeBackslash doubles single quotes and backslashes, for servers that
	// still treat backslash as an escape inside ordinary literals.
	EscapeBackslash
)

func (s EscapeStrategy) String() string {
	if s == EscapeBackslash {
		return "backslash"
	}
	return "standard"
}

var numericLiteral = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?([eE][-+]?[0-9]+)?$`)

// QuoteIdentifier wraps a column name in double quotes, doubling any embedded
// double quote.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral renders s as a single-quoted SQL string literal.
func QuoteLiteral(s string, strategy EscapeStrategy) string {
	if strategy == EscapeBackslash {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// escapeLike escapes the LIKE metacharacters so s matches literally inside a
// pattern using the default backslash escape.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// arrayLiteral renders items as a quoted PostgreSQL array literal such as
// '{"a","b"}'. Element quotes and backslashes are escaped per array syntax
// before the whole literal is quoted.
func arrayLiteral(items []string, strategy EscapeStrategy) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, item := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(item))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return QuoteLiteral(b.String(), strategy)
}

// isNumericLiteral reports whether s can be emitted unquoted as a number.
func isNumericLiteral(s string) bool {
	return numericLiteral.MatchString(s)
}

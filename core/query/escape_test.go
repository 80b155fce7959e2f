package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"name"`, QuoteIdentifier("name"))
	assert.Equal(t, `"a""b"`, QuoteIdentifier(`a"b`))
	assert.Equal(t, `"Mixed Case"`, QuoteIdentifier("Mixed Case"))
}

func TestQuoteLiteral(t *testing.T) {
	tests := []struct {
		input     string
		standard  string
		backslash string
	}{
		{"plain", `'plain'`, `'plain'`},
		{"it's", `'it''s'`, `'it''s'`},
		{"''", `''''''`, `''''''`},
		{`a\b`, `'a\b'`, `'a\\b'`},
		{"'; DROP TABLE users; --", `'''; DROP TABLE users; --'`, `'''; DROP TABLE users; --'`},
		{"naïve 'ünïcödé'", `'naïve ''ünïcödé'''`, `'naïve ''ünïcödé'''`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.standard, QuoteLiteral(tt.input, EscapeStandard))
			assert.Equal(t, tt.backslash, QuoteLiteral(tt.input, EscapeBackslash))
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}

func TestArrayLiteral(t *testing.T) {
	assert.Equal(t, `'{"a","b"}'`, arrayLiteral([]string{"a", "b"}, EscapeStandard))
	assert.Equal(t, `'{"a\"b","c\\d","e''f"}'`, arrayLiteral([]string{`a"b`, `c\d`, "e'f"}, EscapeStandard))
}

func TestIsNumericLiteral(t *testing.T) {
	for _, s := range []string{"0", "-12", "3.14", "1e10", "2.5E-3"} {
		assert.True(t, isNumericLiteral(s), s)
	}
	for _, s := range []string{"", "NaN", "Inf", "1 OR 1=1", "0x10", ".5", "1."} {
		assert.False(t, isNumericLiteral(s), s)
	}
}

// unquote reverses QuoteLiteral under EscapeStandard and reports whether the
// literal was well formed: every quote inside the delimiters is doubled.
func unquote(lit string) (string, bool) {
	if len(lit) < 2 || lit[0] != '\'' || lit[len(lit)-1] != '\'' {
		return "", false
	}
	inner := lit[1 : len(lit)-1]
	if strings.Contains(strings.ReplaceAll(inner, "''", ""), "'") {
		return "", false
	}
	return strings.ReplaceAll(inner, "''", "'"), true
}

func FuzzQuoteLiteral(f *testing.F) {
	for _, seed := range []string{"", "'", "''", "a'b", "\\'", "naïve", "日本'語", "'; --", "\x00'"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		lit := QuoteLiteral(s, EscapeStandard)
		got, ok := unquote(lit)
		require.True(t, ok, "malformed literal %q", lit)
		require.Equal(t, s, got)
		require.Equal(t, strings.Count(s, "'")*2, strings.Count(lit, "'")-2)
	})
}

func FuzzBuildWhereTextEquality(f *testing.F) {
	for _, seed := range []string{"Ann", "O'Reilly", "'''", "ünï'cödé", "x' OR '1'='1"} {
		f.Add(seed)
	}
	compiler := NewCompiler(testCatalog(), nil, nil, nil)
	f.Fuzz(func(t *testing.T, s string) {
		got, err := compiler.BuildWhere([]FilterCondition{{Column: "name", Operator: ComparisonOperatorEq, Value: s}})
		require.NoError(t, err)
		require.Equal(t, `WHERE "name" = '`+strings.ReplaceAll(s, "'", "''")+`'`, got)
	})
}

package query

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-sieve/core"
)

// BetweenHandler renders between and notBetween when the range arrives as a
// "low,high" string on a column whose type class supports ranges.
type BetweenHandler struct{}

func (h *BetweenHandler) Name() string { return "between" }

func (h *BetweenHandler) CanHandle(cond FilterCondition, ctx *Context) bool {
	if cond.Operator != ComparisonOperatorBetween && cond.Operator != ComparisonOperatorNotBetween {
		return false
	}
	if !supportedOperators[ctx.Column.DataType.Class()][cond.Operator] {
		return false
	}
	_, ok := cond.Value.(string)
	return ok
}

func (h *BetweenHandler) Process(cond FilterCondition, ctx *Context) (string, error) {
	s, ok := cond.Value.(string)
	if !ok {
		return "", core.InvalidValueFormat(cond.Column, string(cond.Operator),
			`expected a "low,high" string`)
	}
	lo, hi, ok := splitPair(s)
	if !ok {
		return "", core.InvalidValueFormat(cond.Column, string(cond.Operator),
			fmt.Sprintf("expected exactly two comma-separated values, got %q", s))
	}
	return renderBetween(cond.Operator, lo, hi, ctx)
}

// renderBetween is shared by every handler that emits a range, so a pair and
// the equivalent comma string always produce identical SQL. Numeric columns
// take unquoted endpoints and reject anything that is not a number.
func renderBetween(op ComparisonOperator, lo, hi string, ctx *Context) (string, error) {
	keyword := "BETWEEN"
	if op == ComparisonOperatorNotBetween {
		keyword = "NOT BETWEEN"
	}
	lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)
	if ctx.Column.DataType.IsNumeric() {
		for _, endpoint := range []string{lo, hi} {
			if !isNumericLiteral(endpoint) {
				return "", core.InvalidValueFormat(ctx.Column.Name, string(op),
					fmt.Sprintf("range endpoint %q is not a number", endpoint))
			}
		}
		return fmt.Sprintf("%s %s %s AND %s", ctx.Ident(), keyword, lo, hi), nil
	}
	return fmt.Sprintf("%s %s %s AND %s", ctx.Ident(), keyword, ctx.Literal(lo), ctx.Literal(hi)), nil
}

package query

import (
	"fmt"

	"github.com/asaidimu/go-sieve/core"
)

var arrayOperators = map[ComparisonOperator]string{
	ComparisonOperatorArrayContains:    "@>",
	ComparisonOperatorArrayContainedBy: "<@",
	ComparisonOperatorOverlaps:         "&&",
}

// ArrayHandler renders containment and overlap operators. It applies to any
// column type, so a text column can be compared against an array literal too.
type ArrayHandler struct{}

func (h *ArrayHandler) Name() string { return "array" }

func (h *ArrayHandler) CanHandle(cond FilterCondition, ctx *Context) bool {
	_, ok := arrayOperators[cond.Operator]
	return ok
}

func (h *ArrayHandler) Process(cond FilterCondition, ctx *Context) (string, error) {
	op, ok := arrayOperators[cond.Operator]
	if !ok {
		return "", core.UnsupportedOperator("array operator", cond.Column, string(cond.Operator))
	}
	items, ok := listValue(cond.Value)
	if !ok {
		return "", core.InvalidValueFormat(cond.Column, string(cond.Operator),
			"expected a non-empty list or comma-separated string")
	}
	return fmt.Sprintf("%s %s %s", ctx.Ident(), op, arrayLiteral(items, ctx.Escaping)), nil
}

package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/asaidimu/go-sieve/core"
	"github.com/asaidimu/go-sieve/core/schema"
	"github.com/asaidimu/go-sieve/utils"
)

var comparisonSymbols = map[ComparisonOperator]string{
	ComparisonOperatorEq:  "=",
	ComparisonOperatorNeq: "<>",
	ComparisonOperatorGt:  ">",
	ComparisonOperatorGte: ">=",
	ComparisonOperatorLt:  "<",
	ComparisonOperatorLte: "<=",
}

func operatorSet(ops ...ComparisonOperator) map[ComparisonOperator]bool {
	set := make(map[ComparisonOperator]bool, len(ops))
	for _, op := range ops {
		set[op] = true
	}
	return set
}

var supportedOperators = map[schema.TypeClass]map[ComparisonOperator]bool{
	schema.ClassText: operatorSet(
		ComparisonOperatorEq, ComparisonOperatorNeq, ComparisonOperatorGt, ComparisonOperatorGte,
		ComparisonOperatorLt, ComparisonOperatorLte, ComparisonOperatorLike, ComparisonOperatorILike,
		ComparisonOperatorContains, ComparisonOperatorStartsWith, ComparisonOperatorEndsWith,
		ComparisonOperatorIn, ComparisonOperatorNotIn, ComparisonOperatorIsNull, ComparisonOperatorIsNotNull,
		ComparisonOperatorBetween, ComparisonOperatorNotBetween,
	),
	schema.ClassNumeric: operatorSet(
		ComparisonOperatorEq, ComparisonOperatorNeq, ComparisonOperatorGt, ComparisonOperatorGte,
		ComparisonOperatorLt, ComparisonOperatorLte, ComparisonOperatorIn, ComparisonOperatorNotIn,
		ComparisonOperatorIsNull, ComparisonOperatorIsNotNull,
		ComparisonOperatorBetween, ComparisonOperatorNotBetween,
	),
	schema.ClassBoolean: operatorSet(
		ComparisonOperatorEq, ComparisonOperatorNeq, ComparisonOperatorIsNull, ComparisonOperatorIsNotNull,
	),
	schema.ClassTemporal: operatorSet(
		ComparisonOperatorEq, ComparisonOperatorNeq, ComparisonOperatorGt, ComparisonOperatorGte,
		ComparisonOperatorLt, ComparisonOperatorLte, ComparisonOperatorIsNull, ComparisonOperatorIsNotNull,
		ComparisonOperatorBetween, ComparisonOperatorNotBetween,
	),
	schema.ClassJSON:  operatorSet(ComparisonOperatorIsNull, ComparisonOperatorIsNotNull),
	schema.ClassArray: operatorSet(ComparisonOperatorIsNull, ComparisonOperatorIsNotNull),
}

// DefaultHandler renders the operators every column of a type class supports.
// It is always the last resort in a Registry.
type DefaultHandler struct{}

func (h *DefaultHandler) Name() string { return "default" }

func (h *DefaultHandler) CanHandle(cond FilterCondition, ctx *Context) bool {
	return supportedOperators[ctx.Column.DataType.Class()][cond.Operator]
}

func (h *DefaultHandler) Process(cond FilterCondition, ctx *Context) (string, error) {
	if !h.CanHandle(cond, ctx) {
		return "", core.UnsupportedOperator("", cond.Column, string(cond.Operator))
	}
	ident := ctx.Ident()

	switch cond.Operator {
	case ComparisonOperatorIsNull:
		return ident + " IS NULL", nil
	case ComparisonOperatorIsNotNull:
		return ident + " IS NOT NULL", nil

	case ComparisonOperatorEq, ComparisonOperatorNeq, ComparisonOperatorGt,
		ComparisonOperatorGte, ComparisonOperatorLt, ComparisonOperatorLte:
		if cond.Value == nil {
			switch cond.Operator {
			case ComparisonOperatorEq:
				return ident + " IS NULL", nil
			case ComparisonOperatorNeq:
				return ident + " IS NOT NULL", nil
			}
			return "", core.InvalidValueFormat(cond.Column, string(cond.Operator), "null can only be compared with eq or neq")
		}
		lit, err := h.literal(cond, ctx, cond.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", ident, comparisonSymbols[cond.Operator], lit), nil

	case ComparisonOperatorLike, ComparisonOperatorILike:
		pattern, ok := cond.Value.(string)
		if !ok {
			return "", core.InvalidValueFormat(cond.Column, string(cond.Operator), "pattern must be a string")
		}
		return fmt.Sprintf("%s %s %s", ident, strings.ToUpper(string(cond.Operator)), ctx.Literal(pattern)), nil

	case ComparisonOperatorContains, ComparisonOperatorStartsWith, ComparisonOperatorEndsWith:
		s, ok := utils.ToString(cond.Value)
		if !ok || cond.Value == nil {
			return "", core.InvalidValueFormat(cond.Column, string(cond.Operator), "value must be a string")
		}
		pattern := escapeLike(s)
		switch cond.Operator {
		case ComparisonOperatorContains:
			pattern = "%" + pattern + "%"
		case ComparisonOperatorStartsWith:
			pattern = pattern + "%"
		case ComparisonOperatorEndsWith:
			pattern = "%" + pattern
		}
		return fmt.Sprintf("%s ILIKE %s", ident, ctx.Literal(pattern)), nil

	case ComparisonOperatorIn, ComparisonOperatorNotIn:
		items, ok := listItems(cond.Value)
		if !ok {
			return "", core.InvalidValueFormat(cond.Column, string(cond.Operator),
				"expected a non-empty list or comma-separated string")
		}
		lits := make([]string, 0, len(items))
		for _, item := range items {
			lit, err := h.literal(cond, ctx, item)
			if err != nil {
				return "", err
			}
			lits = append(lits, lit)
		}
		keyword := "IN"
		if cond.Operator == ComparisonOperatorNotIn {
			keyword = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", ident, keyword, strings.Join(lits, ", ")), nil

	case ComparisonOperatorBetween, ComparisonOperatorNotBetween:
		lo, hi, ok := pairValue(cond.Value)
		if !ok {
			if s, isString := cond.Value.(string); isString {
				lo, hi, ok = splitPair(s)
			}
		}
		if !ok {
			return "", core.InvalidValueFormat(cond.Column, string(cond.Operator), "expected two range endpoints")
		}
		return renderBetween(cond.Operator, lo, hi, ctx)
	}

	return "", core.UnsupportedOperator("", cond.Column, string(cond.Operator))
}

// listItems keeps Go values intact so numbers stay numbers, falling back to
// splitting a comma-separated string.
func listItems(v FilterValue) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, len(val) > 0
	case []int:
		out := make([]any, len(val))
		for i, n := range val {
			out[i] = n
		}
		return out, len(out) > 0
	case []float64:
		out := make([]any, len(val))
		for i, n := range val {
			out[i] = n
		}
		return out, len(out) > 0
	}
	items, ok := listValue(v)
	if !ok {
		return nil, false
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out, true
}

// literal renders a single scalar value for the column's type class.
func (h *DefaultHandler) literal(cond FilterCondition, ctx *Context, v any) (string, error) {
	invalid := func(reason string) error {
		return core.InvalidValueFormat(cond.Column, string(cond.Operator), reason)
	}

	switch ctx.Column.DataType.Class() {
	case schema.ClassNumeric:
		if utils.IsNumber(v) {
			s, _ := utils.ToString(v)
			if isNumericLiteral(s) {
				return s, nil
			}
			return "", invalid(fmt.Sprintf("%v is not a finite number", v))
		}
		if s, ok := v.(string); ok && isNumericLiteral(strings.TrimSpace(s)) {
			return strings.TrimSpace(s), nil
		}
		return "", invalid(fmt.Sprintf("expected a number, got %v", v))

	case schema.ClassBoolean:
		switch val := v.(type) {
		case bool:
			return fmt.Sprintf("%t", val), nil
		case string:
			switch strings.ToLower(strings.TrimSpace(val)) {
			case "true":
				return "true", nil
			case "false":
				return "false", nil
			}
		}
		return "", invalid(fmt.Sprintf("expected true or false, got %v", v))

	case schema.ClassTemporal:
		switch val := v.(type) {
		case time.Time:
			return ctx.Literal(val.Format("2006-01-02 15:04:05.999999Z07:00")), nil
		case string:
			return ctx.Literal(val), nil
		}
		return "", invalid(fmt.Sprintf("expected a date or timestamp, got %v", v))
	}

	if t, ok := v.(time.Time); ok {
		return ctx.Literal(t.Format(time.RFC3339Nano)), nil
	}
	s, ok := utils.ToString(v)
	if !ok {
		return "", invalid(fmt.Sprintf("unsupported value type %T", v))
	}
	return ctx.Literal(s), nil
}

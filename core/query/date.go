package query

import (
	"fmt"
	"regexp"
	"time"

	"github.com/asaidimu/go-sieve/core"
)

var bareDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05.999999999-07",
}

// DateHandler widens equality on a bare calendar date to the whole day and
// renders explicit ranges on date and timestamp columns. Anything else is
// left to the default handler.
type DateHandler struct{}

func (h *DateHandler) Name() string { return "date" }

func (h *DateHandler) CanHandle(cond FilterCondition, ctx *Context) bool {
	return ctx.Column.DataType.HasDate()
}

func (h *DateHandler) Process(cond FilterCondition, ctx *Context) (string, error) {
	switch cond.Operator {
	case ComparisonOperatorEq:
		if lo, hi, ok := pairValue(cond.Value); ok {
			return renderBetween(ComparisonOperatorBetween, lo, hi, ctx)
		}
		s, ok := cond.Value.(string)
		if !ok {
			return "", nil
		}
		if bareDate.MatchString(s) {
			if _, err := time.Parse(time.DateOnly, s); err != nil {
				return "", core.InvalidValueFormat(cond.Column, string(cond.Operator),
					fmt.Sprintf("invalid date %q", s))
			}
			return renderBetween(ComparisonOperatorBetween, s+" 00:00:00", s+" 23:59:59.999999", ctx)
		}
		if isTimestamp(s) {
			return "", nil
		}
		return "", core.InvalidValueFormat(cond.Column, string(cond.Operator),
			fmt.Sprintf("expected a date (YYYY-MM-DD) or timestamp, got %q", s))

	case ComparisonOperatorBetween, ComparisonOperatorNotBetween:
		if lo, hi, ok := pairValue(cond.Value); ok {
			return renderBetween(cond.Operator, lo, hi, ctx)
		}
		if s, ok := cond.Value.(string); ok {
			if lo, hi, ok := splitPair(s); ok {
				return renderBetween(cond.Operator, lo, hi, ctx)
			}
		}
		return "", core.InvalidValueFormat(cond.Column, string(cond.Operator),
			"expected two range endpoints")
	}
	return "", nil
}

func isTimestamp(s string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

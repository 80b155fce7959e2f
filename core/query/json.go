package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/asaidimu/go-sieve/core"
)

// JSONHandler renders key and path operators on json and jsonb columns.
type JSONHandler struct{}

func (h *JSONHandler) Name() string { return "json" }

func (h *JSONHandler) CanHandle(cond FilterCondition, ctx *Context) bool {
	if !ctx.Column.DataType.IsJSON() {
		return false
	}
	switch cond.Operator {
	case ComparisonOperatorHasKey, ComparisonOperatorKeyEquals,
		ComparisonOperatorPathExists, ComparisonOperatorContainsText:
		return true
	}
	return false
}

func (h *JSONHandler) Process(cond FilterCondition, ctx *Context) (string, error) {
	value, ok := cond.Value.(string)
	if !ok && isJSONOperator(cond.Operator) {
		return "", core.InvalidValueFormat(cond.Column, string(cond.Operator),
			fmt.Sprintf("%s expects a string value", cond.Operator))
	}

	switch cond.Operator {
	case ComparisonOperatorHasKey:
		if value == "" {
			return "", core.InvalidValueFormat(cond.Column, string(cond.Operator), "key must not be empty")
		}
		return fmt.Sprintf("%s ? %s", ctx.Ident(), ctx.Literal(value)), nil

	case ComparisonOperatorKeyEquals:
		key, val, found := strings.Cut(value, ":")
		if !found || key == "" {
			return "", core.InvalidValueFormat(cond.Column, string(cond.Operator),
				`value must have the form "key:value"`)
		}
		if val == "true" || val == "false" {
			asString, err := jsonObject(key, val)
			if err != nil {
				return "", err
			}
			asBool, err := jsonObject(key, val == "true")
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("(%s @> %s OR %s @> %s)",
				ctx.Ident(), ctx.Literal(asString), ctx.Ident(), ctx.Literal(asBool)), nil
		}
		doc, err := jsonObject(key, val)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s @> %s", ctx.Ident(), ctx.Literal(doc)), nil

	case ComparisonOperatorPathExists:
		path := splitPath(value)
		if len(path) == 0 {
			return "", core.InvalidValueFormat(cond.Column, string(cond.Operator), "path must not be empty")
		}
		return fmt.Sprintf("%s #> %s IS NOT NULL", ctx.Ident(), arrayLiteral(path, ctx.Escaping)), nil

	case ComparisonOperatorContainsText:
		return fmt.Sprintf("%s::text ILIKE %s", ctx.Ident(), ctx.Literal("%"+escapeLike(value)+"%")), nil

	default:
		return "", core.UnsupportedOperator("JSON operator", cond.Column, string(cond.Operator))
	}
}

func isJSONOperator(op ComparisonOperator) bool {
	switch op {
	case ComparisonOperatorHasKey, ComparisonOperatorKeyEquals,
		ComparisonOperatorPathExists, ComparisonOperatorContainsText:
		return true
	}
	return false
}

// jsonObject encodes {key: value} without HTML escaping so the containment
// document matches what the database stores.
func jsonObject(key string, value any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any{key: value}); err != nil {
		return "", fmt.Errorf("failed to encode JSON containment document: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// splitPath splits "a.b.c" or "a,b,c" into trimmed, non-empty segments.
func splitPath(path string) []string {
	fields := strings.FieldsFunc(path, func(r rune) bool { return r == '.' || r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

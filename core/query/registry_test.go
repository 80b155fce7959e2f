package query

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixedHandler(name string, match func(FilterCondition, *Context) bool, out string) HandlerFunc {
	return HandlerFunc{
		HandlerName: name,
		Match:       match,
		Render: func(FilterCondition, *Context) (string, error) {
			return out, nil
		},
	}
}

func onColumn(column string) func(FilterCondition, *Context) bool {
	return func(cond FilterCondition, _ *Context) bool { return cond.Column == column }
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry(nil)
	require.NotNil(t, r)
	assert.NotNil(t, r.logger)

	names := []string{}
	for _, h := range r.Handlers() {
		names = append(names, h.Name())
	}
	assert.Equal(t, []string{"json", "array", "date", "between", "default"}, names)
}

func TestRegistry_CustomHandlersComeFirst(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Register(fixedHandler("first", onColumn("metadata"), "first()"))
	r.Register(fixedHandler("second", onColumn("metadata"), "second()"))

	names := []string{}
	for _, h := range r.Handlers() {
		names = append(names, h.Name())
	}
	assert.Equal(t, []string{"first", "second", "json", "array", "date", "between", "default"}, names)

	compiler := NewCompiler(testCatalog(), r, nil, nil)
	got, err := compiler.Compile(FilterCondition{Column: "metadata", Operator: ComparisonOperatorHasKey, Value: "role"})
	require.NoError(t, err)
	assert.Equal(t, "first()", got, "earliest registered custom handler wins over the JSON handler")
}

func TestRegistry_SpecialisedBeforeDefault(t *testing.T) {
	compiler := NewCompiler(testCatalog(), nil, nil, nil)
	got, err := compiler.Compile(FilterCondition{Column: "created_at", Operator: ComparisonOperatorEq, Value: "2024-01-15"})
	require.NoError(t, err)
	assert.Contains(t, got, "BETWEEN")
}

func TestRegistry_EmptyResultJumpsToDefault(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(fixedHandler("noop", onColumn("created_at"), ""))

	compiler := NewCompiler(testCatalog(), r, nil, nil)
	got, err := compiler.Compile(FilterCondition{Column: "created_at", Operator: ComparisonOperatorEq, Value: "2024-01-15"})
	require.NoError(t, err)
	assert.Equal(t, `"created_at" = '2024-01-15'`, got, "the date handler is skipped once a handler defers")
}

func TestRegistry_HandlerErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry(nil)
	r.Register(HandlerFunc{
		HandlerName: "failing",
		Match:       onColumn("name"),
		Render: func(FilterCondition, *Context) (string, error) {
			return "", boom
		},
	})

	compiler := NewCompiler(testCatalog(), r, nil, nil)
	_, err := compiler.BuildWhere([]FilterCondition{{Column: "name", Operator: ComparisonOperatorEq, Value: "x"}})
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_CustomOperator(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(HandlerFunc{
		HandlerName: "regex",
		Match: func(cond FilterCondition, ctx *Context) bool {
			return cond.Operator == "matches" && ctx.Column.DataType.IsText()
		},
		Render: func(cond FilterCondition, ctx *Context) (string, error) {
			return fmt.Sprintf("%s ~ %s", ctx.Ident(), ctx.Literal(fmt.Sprint(cond.Value))), nil
		},
	})

	compiler := NewCompiler(testCatalog(), r, nil, nil)
	got, err := compiler.BuildWhere([]FilterCondition{{Column: "name", Operator: "matches", Value: "^A.*'"}})
	require.NoError(t, err)
	assert.Equal(t, `WHERE "name" ~ '^A.*'''`, got)

	_, err = compiler.BuildWhere([]FilterCondition{{Column: "age", Operator: "matches", Value: "1"}})
	assert.Error(t, err, "custom operator does not apply to numeric columns")
}

func TestHandlerFunc_NilFuncs(t *testing.T) {
	h := HandlerFunc{HandlerName: "empty"}
	assert.False(t, h.CanHandle(FilterCondition{}, &Context{}))
	out, err := h.Process(FilterCondition{}, &Context{})
	assert.NoError(t, err)
	assert.Empty(t, out)
}

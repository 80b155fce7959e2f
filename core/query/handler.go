package query

import (
	"github.com/asaidimu/go-sieve/core/schema"
)

// Handler renders conditions for a family of operators.
//
// CanHandle must be cheap and side-effect free. Process returns the SQL
// fragment, an error, or the empty string to hand the condition to the
// per-type default handler.
type Handler interface {
	Name() string
	CanHandle(cond FilterCondition, ctx *Context) bool
	Process(cond FilterCondition, ctx *Context) (string, error)
}

// HandlerFunc pairs plain functions into a Handler, for small custom operators.
type HandlerFunc struct {
	HandlerName string
	Match       func(cond FilterCondition, ctx *Context) bool
	Render      func(cond FilterCondition, ctx *Context) (string, error)
}

func (h HandlerFunc) Name() string { return h.HandlerName }

func (h HandlerFunc) CanHandle(cond FilterCondition, ctx *Context) bool {
	return h.Match != nil && h.Match(cond, ctx)
}

func (h HandlerFunc) Process(cond FilterCondition, ctx *Context) (string, error) {
	if h.Render == nil {
		return "", nil
	}
	return h.Render(cond, ctx)
}

// Context is what a handler sees while rendering one condition.
type Context struct {
	Catalog  *schema.Catalog
	Column   schema.ColumnMetadata
	Escaping EscapeStrategy
}

// Ident returns the quoted identifier of the condition's column.
func (c *Context) Ident() string {
	return QuoteIdentifier(c.Column.Name)
}

// Literal quotes s as a string literal using the context's escape strategy.
func (c *Context) Literal(s string) string {
	return QuoteLiteral(s, c.Escaping)
}

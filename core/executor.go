package core

import "context"

// Row represents a single record retrieved from the database, keyed by column name.
type Row map[string]any

// Executor runs SQL text with bound parameters and returns every resulting row.
// It is the only component that performs I/O; implementations usually wrap a
// caller-owned transaction.
type Executor interface {
	Execute(ctx context.Context, query string, params ...any) ([]Row, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, query string, params ...any) ([]Row, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, query string, params ...any) ([]Row, error) {
	return f(ctx, query, params...)
}

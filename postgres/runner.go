// Package postgres provides a core.Executor over pgx, for running compiled
// permission batches against PostgreSQL inside a caller-owned transaction.
package postgres

import (
	"context"
	"fmt"

	"github.com/asaidimu/go-sieve/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Querier is the query method shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Runner executes SQL through a pgx querier.
type Runner struct {
	q      Querier
	logger *zap.Logger
}

// Ensure Runner implements core.Executor.
var _ core.Executor = (*Runner)(nil)

// NewRunner creates a Runner over q.
func NewRunner(q Querier, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{q: q, logger: logger}
}

// NewPool opens a connection pool for dsn and verifies it with a ping.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return pool, nil
}

// Execute runs query with params and returns every row keyed by column name.
func (r *Runner) Execute(ctx context.Context, query string, params ...any) ([]core.Row, error) {
	r.logger.Debug("Executing SQL query", zap.String("sql", query), zap.Any("params", params))

	rows, err := r.q.Query(ctx, query, params...)
	if err != nil {
		r.logger.Error("Failed to execute query", zap.Error(err), zap.String("sql", query))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()
	return readRows(rows)
}

func readRows(rows pgx.Rows) ([]core.Row, error) {
	fields := rows.FieldDescriptions()

	results := make([]core.Row, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row values: %w", err)
		}
		row := make(core.Row, len(fields))
		for i, field := range fields {
			if i >= len(values) {
				break
			}
			if b, ok := values[i].([]byte); ok {
				row[field.Name] = string(b)
				continue
			}
			row[field.Name] = values[i]
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after reading rows: %w", err)
	}
	return results, nil
}

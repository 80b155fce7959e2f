// Package sqlite provides a core.Executor over SQLite databases and a driver
// registration helper that exposes permission predicates as SQL functions, so
// bulk permission queries can run against SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/asaidimu/go-sieve/core"
	"go.uber.org/zap"
)

// dbRunner abstracts the query method shared by *sql.DB and *sql.Tx, so the
// same code runs inside and outside a transaction.
type dbRunner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Runner executes SQL against SQLite. It operates on the connection pool, or
// on a transaction when one is supplied.
type Runner struct {
	db     *sql.DB
	tx     *sql.Tx
	logger *zap.Logger
}

// Ensure Runner implements core.Executor.
var _ core.Executor = (*Runner)(nil)

// NewRunner creates a Runner. A non-nil tx scopes every query to it.
func NewRunner(db *sql.DB, logger *zap.Logger, tx *sql.Tx) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		db:     db,
		tx:     tx,
		logger: logger,
	}
}

func (r *Runner) runner() dbRunner {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Execute runs query with params and returns every row keyed by column name.
func (r *Runner) Execute(ctx context.Context, query string, params ...any) ([]core.Row, error) {
	r.logger.Debug("Executing SQL query", zap.String("sql", query), zap.Any("params", params))

	rows, err := r.runner().QueryContext(ctx, query, params...)
	if err != nil {
		r.logger.Error("Failed to execute query", zap.Error(err), zap.String("sql", query))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()
	return readRows(rows)
}

// readRows scans all rows into maps. TEXT reported as []byte is converted to
// string; every other driver value is kept as is.
func readRows(rows *sql.Rows) ([]core.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	results := make([]core.Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(core.Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		results = append(results, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning rows: %w", err)
	}
	return results, nil
}

// BeginTx starts a transaction and returns a Runner scoped to it.
func (r *Runner) BeginTx(ctx context.Context) (*Runner, error) {
	if r.tx != nil {
		return nil, fmt.Errorf("cannot start a new transaction from an existing transactional runner")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	r.logger.Debug("Transaction initiated, returning new transactional runner")
	return NewRunner(r.db, r.logger, tx), nil
}

// Commit commits the current transaction.
func (r *Runner) Commit() error {
	if r.tx == nil {
		return fmt.Errorf("commit not applicable: not in a transactional context")
	}
	r.logger.Debug("Committing transaction")
	return r.tx.Commit()
}

// Rollback rolls back the current transaction.
func (r *Runner) Rollback() error {
	if r.tx == nil {
		return fmt.Errorf("rollback not applicable: not in a transactional context")
	}
	r.logger.Debug("Rolling back transaction")
	return r.tx.Rollback()
}

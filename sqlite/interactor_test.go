package sqlite

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openMemory(t *testing.T, driver string) *sql.DB {
	t.Helper()
	db, err := sql.Open(driver, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunner_Execute(t *testing.T) {
	db := openMemory(t, "sqlite3")
	_, err := db.Exec(`CREATE TABLE docs (id INTEGER PRIMARY KEY, title TEXT, body BLOB, score REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO docs (title, body, score) VALUES (?, ?, ?), (?, NULL, ?)`,
		"first", []byte("raw"), 1.5, "second", 2.0)
	require.NoError(t, err)

	r := NewRunner(db, zap.NewNop(), nil)
	rows, err := r.Execute(context.Background(), `SELECT id, title, body, score FROM docs WHERE score >= ? ORDER BY id`, 1.0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(1), rows[0]["id"])
	assert.Equal(t, "first", rows[0]["title"])
	assert.Equal(t, "raw", rows[0]["body"])
	assert.Equal(t, 1.5, rows[0]["score"])
	assert.Nil(t, rows[1]["body"])
}

func TestRunner_ExecuteEmptyAndError(t *testing.T) {
	r := NewRunner(openMemory(t, "sqlite3"), nil, nil)

	rows, err := r.Execute(context.Background(), `SELECT 1 AS one WHERE 1 = 0`)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = r.Execute(context.Background(), `SELECT * FROM missing_table`)
	assert.ErrorContains(t, err, "failed to execute query")
}

func TestRunner_Transactions(t *testing.T) {
	db := openMemory(t, "sqlite3")
	_, err := db.Exec(`CREATE TABLE t (v TEXT)`)
	require.NoError(t, err)

	r := NewRunner(db, nil, nil)
	assert.Error(t, r.Commit())
	assert.Error(t, r.Rollback())

	tx, err := r.BeginTx(context.Background())
	require.NoError(t, err)
	_, err = tx.BeginTx(context.Background())
	assert.Error(t, err, "nested transactions are rejected")

	_, err = tx.Execute(context.Background(), `INSERT INTO t (v) VALUES (?) RETURNING v`, "x")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	rows, err := r.Execute(context.Background(), `SELECT COUNT(*) AS n FROM t`)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows[0]["n"])
}

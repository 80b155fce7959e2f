package sqlite

import (
	"database/sql"
	"fmt"
	"slices"
	"sync"

	"github.com/asaidimu/go-sieve/core/permission"
	"github.com/mattn/go-sqlite3"
)

// PermissionFuncs implements the permission predicates in Go. A nil predicate
// denies everything. Custom holds extra SQL functions for CustomCheck, keyed
// by SQL name; each value must be a function go-sqlite3 can register.
type PermissionFuncs struct {
	Admin   func(resource, action string) bool
	Data    func(action, schema, table string, column *string) bool
	Storage func(bucket, action, path string) bool
	Custom  map[string]any
}

var registerMu sync.Mutex

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// RegisterDriver registers a database/sql driver under name whose connections
// expose the permission predicates as SQL functions named by names. Empty
// names fall back to the permission package defaults.
func RegisterDriver(name string, names permission.Functions, funcs PermissionFuncs) error {
	registerMu.Lock()
	defer registerMu.Unlock()

	if slices.Contains(sql.Drivers(), name) {
		return fmt.Errorf("sql driver %q is already registered", name)
	}

	defaults := permission.DefaultOptions().Functions
	if names.Admin == "" {
		names.Admin = defaults.Admin
	}
	if names.Data == "" {
		names.Data = defaults.Data
	}
	if names.Storage == "" {
		names.Storage = defaults.Storage
	}

	admin := func(resource, action string) int64 {
		return boolInt(funcs.Admin != nil && funcs.Admin(resource, action))
	}
	// column is NULL for table-level checks, so it arrives untyped.
	data := func(action, schema, table string, column any) int64 {
		if funcs.Data == nil {
			return 0
		}
		var col *string
		switch v := column.(type) {
		case string:
			col = &v
		case []byte:
			s := string(v)
			col = &s
		}
		return boolInt(funcs.Data(action, schema, table, col))
	}
	storage := func(bucket, action, path string) int64 {
		return boolInt(funcs.Storage != nil && funcs.Storage(bucket, action, path))
	}

	sql.Register(name, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if err := conn.RegisterFunc(names.Admin, admin, false); err != nil {
				return fmt.Errorf("failed to register %s: %w", names.Admin, err)
			}
			if err := conn.RegisterFunc(names.Data, data, false); err != nil {
				return fmt.Errorf("failed to register %s: %w", names.Data, err)
			}
			if err := conn.RegisterFunc(names.Storage, storage, false); err != nil {
				return fmt.Errorf("failed to register %s: %w", names.Storage, err)
			}
			for fn, impl := range funcs.Custom {
				if err := conn.RegisterFunc(fn, impl, false); err != nil {
					return fmt.Errorf("failed to register %s: %w", fn, err)
				}
			}
			return nil
		},
	})
	return nil
}

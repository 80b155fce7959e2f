package sqlite

import (
	"context"
	"strings"
	"testing"

	"github.com/asaidimu/go-sieve/core"
	"github.com/asaidimu/go-sieve/core/authz"
	"github.com/asaidimu/go-sieve/core/permission"
	"github.com/asaidimu/go-sieve/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testFuncs = PermissionFuncs{
	Admin: func(resource, action string) bool {
		return resource == "users" && action == "read"
	},
	Data: func(action, schema, table string, column *string) bool {
		if column != nil && *column == "ssn" {
			return false
		}
		return action == "select" && schema == "public"
	},
	Storage: func(bucket, action, path string) bool {
		return bucket == "public" || strings.HasPrefix(path, "u/1/")
	},
	Custom: map[string]any{
		"remaining_quota": func(user string) int64 {
			if user == "u1" {
				return 7
			}
			return 0
		},
		"display_name": func(user string) string {
			return "User " + strings.ToUpper(user)
		},
	},
}

func registerTestDriver(t *testing.T, names permission.Functions) string {
	t.Helper()
	name := "sqlite3_sieve_" + uuid.New().String()
	require.NoError(t, RegisterDriver(name, names, testFuncs))
	return name
}

func TestRegisterDriver_Duplicate(t *testing.T) {
	name := registerTestDriver(t, permission.Functions{})
	err := RegisterDriver(name, permission.Functions{}, testFuncs)
	assert.ErrorContains(t, err, "already registered")
}

func TestBulkQuery_OnSQLite(t *testing.T) {
	db := openMemory(t, registerTestDriver(t, permission.Functions{}))
	runner := NewRunner(db, zap.NewNop(), nil)

	checks := []permission.Check{
		permission.AdminCheck{Key: "admin.users.read", Resource: "users", Action: "read"},
		permission.AdminCheck{Key: "admin.users.write", Resource: "users", Action: "write"},
		permission.DataCheck{Key: "data.orders", Action: "select", Schema: "public", Table: "orders"},
		permission.DataCheck{Key: "data.people.ssn", Action: "select", Schema: "public", Table: "people", Column: utils.StringPtr("ssn")},
		permission.StorageCheck{Key: "storage.public", Bucket: "public", Action: "read", Path: "logo.png"},
		permission.StorageCheck{Key: "storage.private", Bucket: "private", Action: "read", Path: "u/2/x"},
		permission.StorageCheck{Key: "it's quoted", Bucket: "private", Action: "read", Path: "u/1/x"},
		permission.CustomCheck{Key: "quota", Function: "remaining_quota", Args: []any{"u1"}, Type: permission.TypeNumber},
		permission.CustomCheck{Key: "name", Function: "display_name", Args: []any{"ann"}, Type: permission.TypeString},
	}

	compiler, err := permission.NewCompiler(zap.NewNop(), nil)
	require.NoError(t, err)
	plan, err := compiler.BuildQuery(checks)
	require.NoError(t, err)

	rows, err := runner.Execute(context.Background(), plan.Text, plan.Params...)
	require.NoError(t, err)
	assert.Len(t, rows, len(checks), "one row per check")

	resultRows, err := permission.RowsToResults(rows)
	require.NoError(t, err)
	results, err := permission.ParseResults(resultRows)
	require.NoError(t, err)

	assert.Equal(t, permission.Results{
		"admin.users.read":  true,
		"admin.users.write": false,
		"data.orders":       true,
		"data.people.ssn":   false,
		"storage.public":    true,
		"storage.private":   false,
		"it's quoted":       true,
		"quota":             float64(7),
		"name":              "User ANN",
	}, results)

	keys := make([]string, 0, len(checks))
	for _, c := range checks {
		keys = append(keys, c.CheckKey())
	}
	assert.ElementsMatch(t, keys, results.Keys())
}

func TestBulkQuery_CustomFunctionNames(t *testing.T) {
	names := permission.Functions{Admin: "can_admin", Data: "can_data", Storage: "can_store"}
	db := openMemory(t, registerTestDriver(t, names))

	compiler, err := permission.NewCompiler(nil, &permission.Options{Functions: names})
	require.NoError(t, err)
	plan, err := compiler.BuildQuery([]permission.Check{
		permission.AdminCheck{Key: "a", Resource: "users", Action: "read"},
	})
	require.NoError(t, err)
	assert.Contains(t, plan.Text, "can_admin(")

	rows, err := NewRunner(db, nil, nil).Execute(context.Background(), plan.Text, plan.Params...)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0]["key"])
	assert.Equal(t, "1", rows[0]["result"])
}

func TestAuthorize_OnSQLite(t *testing.T) {
	db := openMemory(t, registerTestDriver(t, permission.Functions{}))
	runner := NewRunner(db, nil, nil)

	service, err := authz.NewService(nil, zap.NewNop())
	require.NoError(t, err)

	decisions := service.Authorize(context.Background(), runner, []permission.Check{
		permission.StorageCheck{Key: "read", Bucket: "public", Action: "read", Path: "a"},
		permission.StorageCheck{Key: "write", Bucket: "private", Action: "write", Path: "a"},
	})
	assert.Equal(t, authz.Decisions{"read": true, "write": false}, decisions)

	// A missing predicate function fails the batch, and every key is denied.
	plain := NewRunner(openMemory(t, "sqlite3"), nil, nil)
	decisions = service.Authorize(context.Background(), plain, []permission.Check{
		permission.StorageCheck{Key: "read", Bucket: "public", Action: "read", Path: "a"},
	})
	assert.Equal(t, authz.Decisions{"read": false}, decisions)

	_, err = service.Execute(context.Background(), plain, []permission.Check{
		permission.AdminCheck{Key: "a", Resource: "users", Action: "read"},
	})
	assert.True(t, core.IsPermissionCheckFailure(err))
}

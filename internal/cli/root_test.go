package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "sievectl", cmd.Use)
	assert.Contains(t, cmd.Long, "UNION ALL")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"where", "validate", "checks"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestChecksCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	checksCmd, _, err := cmd.Find([]string{"checks"})
	require.NoError(t, err)

	placeholder := checksCmd.Flags().Lookup("placeholder")
	require.NotNil(t, placeholder)
	assert.Equal(t, "question", placeholder.DefValue)

	admin := checksCmd.Flags().Lookup("admin-func")
	require.NotNil(t, admin)
	assert.Equal(t, "check_admin_permission", admin.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "", "--format", "xml", "where", "--catalog", "testdata/catalog.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestWhereCommand(t *testing.T) {
	out, err := run(t, "", "where", "--catalog", "testdata/catalog.yaml", "--conditions", "testdata/filter.yaml")
	require.NoError(t, err)
	assert.Equal(t, `WHERE "age" BETWEEN 18 AND 65 AND "name" ILIKE '%o''brien%'`+"\n", out)
}

func TestWhereCommandStdinAndSearch(t *testing.T) {
	stdin := `{"conditions": [{"column": "tags", "operator": "arrayContains", "value": ["go"]}]}`
	out, err := run(t, stdin, "where", "--catalog", "testdata/catalog.yaml", "--conditions", "-", "--search", "ann")
	require.NoError(t, err)
	assert.Equal(t, `WHERE "tags" @> '{"go"}' AND ("name" ILIKE '%ann%')`+"\n", out)
}

func TestWhereCommandSearchOnly(t *testing.T) {
	out, err := run(t, "", "where", "--catalog", "testdata/catalog.yaml", "--search", "50%")
	require.NoError(t, err)
	assert.Equal(t, `WHERE ("name" ILIKE '%50\%%')`+"\n", out)
}

func TestWhereCommandJSON(t *testing.T) {
	out, err := run(t, "", "--format", "json", "where", "--catalog", "testdata/catalog.yaml", "--conditions", "testdata/filter.yaml")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   WhereResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, strings.HasPrefix(resp.Data.Clause, `WHERE "age" BETWEEN`))
}

func TestWhereCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{
			name: "missing catalog file",
			args: []string{"where", "--catalog", "testdata/nope.yaml"},
			code: ExitCommandError,
		},
		{
			name: "bad escape flag",
			args: []string{"where", "--catalog", "testdata/catalog.yaml", "--escape", "c"},
			code: ExitCommandError,
		},
		{
			name: "invalid condition",
			args: []string{"where", "--catalog", "testdata/catalog.yaml", "--conditions", "testdata/invalid.yaml"},
			code: ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, GetExitCode(err))
		})
	}
}

func TestValidateCommand(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		out, err := run(t, "", "validate", "--catalog", "testdata/catalog.yaml", "--conditions", "testdata/filter.yaml")
		require.NoError(t, err)
		assert.Equal(t, "2 condition(s) valid\n", out)
	})

	t.Run("invalid", func(t *testing.T) {
		out, err := run(t, "", "validate", "--catalog", "testdata/catalog.yaml", "--conditions", "testdata/invalid.yaml")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "conditions[0].column: [COLUMN_NOT_FOUND]")
		assert.Contains(t, out, "conditions[1].value: [INVALID_VALUE_FORMAT]")
	})

	t.Run("invalid json", func(t *testing.T) {
		out, err := run(t, "", "--format", "json", "validate", "--catalog", "testdata/catalog.yaml", "--conditions", "testdata/invalid.yaml")
		require.Error(t, err)

		var resp struct {
			Status string `json:"status"`
			Data   struct {
				Valid  bool `json:"valid"`
				Issues []struct {
					Code string `json:"code"`
					Path string `json:"path"`
				} `json:"issues"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.False(t, resp.Data.Valid)
		require.Len(t, resp.Data.Issues, 2)
		assert.Equal(t, "COLUMN_NOT_FOUND", resp.Data.Issues[0].Code)
	})
}

func TestChecksCommand(t *testing.T) {
	t.Run("question placeholders", func(t *testing.T) {
		out, err := run(t, "", "checks", "--checks", "testdata/batch.yaml")
		require.NoError(t, err)
		assert.Contains(t, out, `CAST(? AS TEXT) AS "key"`)
		assert.Contains(t, out, "check_admin_permission(?, ?)")
		assert.Contains(t, out, "\nUNION ALL\n")
		assert.Contains(t, out, `--   1: "canManage"`)
		assert.NotContains(t, out, "-- results:")
	})

	t.Run("dollar placeholders", func(t *testing.T) {
		out, err := run(t, "", "checks", "--checks", "testdata/batch.yaml", "--placeholder", "dollar")
		require.NoError(t, err)
		assert.Contains(t, out, "CAST($1 AS TEXT)")
		assert.NotContains(t, out, "?")
	})

	t.Run("custom function names", func(t *testing.T) {
		out, err := run(t, "", "checks", "--checks", "testdata/batch.yaml", "--admin-func", "auth.is_admin")
		require.NoError(t, err)
		assert.Contains(t, out, "auth.is_admin(?, ?)")
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "", "--format", "json", "checks", "--checks", "testdata/batch.yaml")
		require.NoError(t, err)

		var resp struct {
			Data ChecksResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, []string{"canManage", "canRead"}, resp.Data.Keys)
		assert.NotEmpty(t, resp.Data.Params)
	})

	t.Run("rejected function name", func(t *testing.T) {
		_, err := run(t, "", "checks", "--checks", "testdata/batch.yaml", "--data-func", "x; drop table")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("empty batch", func(t *testing.T) {
		_, err := run(t, "", "checks", "--checks", "-")
		require.NoError(t, err)
	})
}

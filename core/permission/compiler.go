package permission

import (
	"fmt"
	"regexp"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/asaidimu/go-sieve/core"
	"go.uber.org/zap"
)

var functionName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Functions names the SQL predicate functions each check kind calls.
type Functions struct {
	Admin   string `json:"admin" yaml:"admin"`
	Data    string `json:"data" yaml:"data"`
	Storage string `json:"storage" yaml:"storage"`
}

// Options configures a Compiler.
type Options struct {
	Functions Functions

	// Placeholder is the bind-parameter style of the target database:
	// sq.Question for SQLite, sq.Dollar for PostgreSQL.
	Placeholder sq.PlaceholderFormat
}

// DefaultOptions returns the default predicate function names with
// question-mark placeholders.
func DefaultOptions() *Options {
	return &Options{
		Functions: Functions{
			Admin:   "check_admin_permission",
			Data:    "check_data_permission",
			Storage: "check_storage_permission",
		},
		Placeholder: sq.Question,
	}
}

// QueryPlan is a compiled batch: the statement text, its positional
// parameters, and the check keys in row order.
type QueryPlan struct {
	Text   string
	Params []any
	Keys   []string
}

// Empty reports whether the plan has nothing to execute.
func (p QueryPlan) Empty() bool {
	return p.Text == ""
}

// Compiler builds bulk permission queries. It is safe for concurrent use.
type Compiler struct {
	options *Options
	logger  *zap.Logger
}

// NewCompiler validates options and creates a Compiler. Empty function names
// fall back to the defaults.
func NewCompiler(logger *zap.Logger, options *Options) (*Compiler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultOptions()
	resolved := *defaults
	if options != nil {
		resolved = *options
		if resolved.Functions.Admin == "" {
			resolved.Functions.Admin = defaults.Functions.Admin
		}
		if resolved.Functions.Data == "" {
			resolved.Functions.Data = defaults.Functions.Data
		}
		if resolved.Functions.Storage == "" {
			resolved.Functions.Storage = defaults.Functions.Storage
		}
		if resolved.Placeholder == nil {
			resolved.Placeholder = defaults.Placeholder
		}
	}

	for _, name := range []string{resolved.Functions.Admin, resolved.Functions.Data, resolved.Functions.Storage} {
		if !functionName.MatchString(name) {
			return nil, fmt.Errorf("invalid predicate function name %q", name)
		}
	}
	return &Compiler{options: &resolved, logger: logger}, nil
}

// BuildQuery compiles checks into one statement with one SELECT per check,
// joined by UNION ALL in input order. Every value is a bound parameter. Boolean
// predicates are wrapped in COALESCE so a check that matches nothing still
// yields a deny row. Every result is cast to text and read back by its type
// tag. An empty batch yields an empty plan.
func (c *Compiler) BuildQuery(checks []Check) (QueryPlan, error) {
	if len(checks) == 0 {
		return QueryPlan{}, nil
	}

	seen := make(map[string]struct{}, len(checks))
	parts := make([]string, 0, len(checks))
	params := make([]any, 0, len(checks)*4)
	keys := make([]string, 0, len(checks))

	for i, check := range checks {
		if check == nil {
			return QueryPlan{}, core.InvalidValueFormat("", "", fmt.Sprintf("check %d is nil", i))
		}
		key := check.CheckKey()
		if key == "" {
			return QueryPlan{}, core.InvalidValueFormat("", "", fmt.Sprintf("check %d has an empty key", i))
		}
		if _, dup := seen[key]; dup {
			return QueryPlan{}, &core.Error{
				Code:    core.ErrCodeDuplicateKey,
				Message: "check keys must be unique within a batch",
				Key:     key,
			}
		}
		seen[key] = struct{}{}

		if err := c.validate(check); err != nil {
			return QueryPlan{}, err
		}
		text, args, err := c.selectFor(check).ToSql()
		if err != nil {
			return QueryPlan{}, fmt.Errorf("failed to build select for check %q: %w", key, err)
		}
		parts = append(parts, text)
		params = append(params, args...)
		keys = append(keys, key)
	}

	text, err := c.options.Placeholder.ReplacePlaceholders(strings.Join(parts, "\nUNION ALL\n"))
	if err != nil {
		return QueryPlan{}, fmt.Errorf("failed to rewrite placeholders: %w", err)
	}

	c.logger.Debug("Compiled permission query", zap.Int("checks", len(checks)), zap.String("sql", text))
	return QueryPlan{Text: text, Params: params, Keys: keys}, nil
}

func required(key, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &core.Error{
			Code:    core.ErrCodeInvalidValueFormat,
			Message: field + " is required",
			Key:     key,
		}
	}
	return nil
}

func (c *Compiler) validate(check Check) error {
	key := check.CheckKey()
	switch ch := check.(type) {
	case AdminCheck:
		if err := required(key, "resource", ch.Resource); err != nil {
			return err
		}
		return required(key, "action", ch.Action)
	case DataCheck:
		for _, f := range [][2]string{{"action", ch.Action}, {"schema", ch.Schema}, {"table", ch.Table}} {
			if err := required(key, f[0], f[1]); err != nil {
				return err
			}
		}
		if ch.Column != nil {
			return required(key, "column", *ch.Column)
		}
	case StorageCheck:
		if err := required(key, "bucket", ch.Bucket); err != nil {
			return err
		}
		return required(key, "action", ch.Action)
	case CustomCheck:
		if !functionName.MatchString(ch.Function) {
			return &core.Error{
				Code:    core.ErrCodeInvalidValueFormat,
				Message: fmt.Sprintf("invalid function name %q", ch.Function),
				Key:     key,
			}
		}
		if !ch.ResultType().Valid() {
			return &core.Error{
				Code:    core.ErrCodeInvalidValueFormat,
				Message: fmt.Sprintf("unknown result type %q", ch.Type),
				Key:     key,
			}
		}
	}
	return nil
}

// selectFor renders the three-column SELECT for one check with ? placeholders.
func (c *Compiler) selectFor(check Check) sq.SelectBuilder {
	var (
		fn   string
		args []any
	)
	switch ch := check.(type) {
	case AdminCheck:
		fn, args = c.options.Functions.Admin, []any{ch.Resource, ch.Action}
	case DataCheck:
		var column any
		if ch.Column != nil {
			column = *ch.Column
		}
		fn, args = c.options.Functions.Data, []any{ch.Action, ch.Schema, ch.Table, column}
	case StorageCheck:
		fn, args = c.options.Functions.Storage, []any{ch.Bucket, ch.Action, ch.Path}
	case CustomCheck:
		fn, args = ch.Function, ch.Args
	}

	call := fn + "(" + strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ") + ")"
	tag := check.ResultType()
	if tag == TypeBoolean {
		call = "COALESCE(" + call + ", FALSE)"
	}
	// UNION ALL branches must share one column type, so results travel as text.
	call = "CAST(" + call + " AS TEXT)"

	return sq.Select().
		Column(`CAST(? AS TEXT) AS "key"`, check.CheckKey()).
		Column(fmt.Sprintf(`'%s' AS "type"`, tag)).
		Column(call+` AS "result"`, args...)
}

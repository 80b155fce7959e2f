package query

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-sieve/core"
	"github.com/asaidimu/go-sieve/core/schema"
	"go.uber.org/zap"
)

// Options configures a Compiler.
type Options struct {
	// Escaping selects how string literals are escaped.
	Escaping EscapeStrategy
}

// DefaultOptions returns options for a standard-conforming PostgreSQL server.
func DefaultOptions() *Options {
	return &Options{Escaping: EscapeStandard}
}

// Compiler turns filter conditions into WHERE clauses for one catalog.
// It holds no per-call state and is safe for concurrent use.
type Compiler struct {
	catalog  *schema.Catalog
	registry *Registry
	options  *Options
	logger   *zap.Logger
}

// NewCompiler creates a Compiler. A nil registry gets the built-in handlers;
// nil options get DefaultOptions.
func NewCompiler(catalog *schema.Catalog, registry *Registry, logger *zap.Logger, options *Options) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = NewRegistry(logger)
	}
	if options == nil {
		options = DefaultOptions()
	}
	return &Compiler{
		catalog:  catalog,
		registry: registry,
		options:  options,
		logger:   logger,
	}
}

// Registry returns the handler registry used by the compiler.
func (c *Compiler) Registry() *Registry {
	return c.registry
}

// context resolves the column of cond and builds the handler context.
func (c *Compiler) context(cond FilterCondition) (*Context, error) {
	col, ok := c.catalog.Lookup(cond.Column)
	if !ok {
		return nil, core.ColumnNotFound(cond.Column, fmt.Sprintf("column %q does not exist", cond.Column))
	}
	if !col.IsFilterable {
		return nil, core.ColumnNotFound(cond.Column, fmt.Sprintf("column %q is not filterable", cond.Column))
	}
	return &Context{
		Catalog:  c.catalog,
		Column:   col,
		Escaping: c.options.Escaping,
	}, nil
}

// Compile renders a single condition without the WHERE keyword.
func (c *Compiler) Compile(cond FilterCondition) (string, error) {
	ctx, err := c.context(cond)
	if err != nil {
		return "", err
	}
	return c.registry.Resolve(cond, ctx)
}

// BuildWhere renders conditions as a WHERE clause. Each condition after the
// first is joined with its own logical operator, AND by default, in input
// order and without added parentheses, so SQL precedence applies (AND binds
// tighter than OR). An empty list yields the empty string. Any failing
// condition fails the whole call.
func (c *Compiler) BuildWhere(conditions []FilterCondition) (string, error) {
	if len(conditions) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("WHERE ")
	for i, cond := range conditions {
		joiner, err := cond.joiner()
		if err != nil {
			return "", core.UnsupportedOperator("logical operator", cond.Column, string(cond.LogicalOperator))
		}
		fragment, err := c.Compile(cond)
		if err != nil {
			c.logger.Debug("Failed to compile condition",
				zap.Int("index", i),
				zap.String("column", cond.Column),
				zap.String("operator", string(cond.Operator)),
				zap.Error(err))
			return "", err
		}
		if i > 0 {
			b.WriteByte(' ')
			b.WriteString(string(joiner))
			b.WriteByte(' ')
		}
		b.WriteString(fragment)
	}

	clause := b.String()
	c.logger.Debug("Compiled WHERE clause", zap.String("sql", clause), zap.Int("conditions", len(conditions)))
	return clause, nil
}

// ValidateFilter checks a condition the same way BuildWhere would and reports
// every problem as an Issue instead of rendering SQL.
func (c *Compiler) ValidateFilter(cond FilterCondition) core.ValidationResult {
	issues := make([]core.Issue, 0)

	if _, err := cond.joiner(); err != nil {
		issues = append(issues, core.Issue{
			Code:     string(core.ErrCodeUnsupportedOperator),
			Message:  err.Error(),
			Path:     "logicalOperator",
			Severity: "error",
		})
	}

	if strings.TrimSpace(string(cond.Operator)) == "" {
		issues = append(issues, core.Issue{
			Code:     string(core.ErrCodeUnsupportedOperator),
			Message:  "operator is required",
			Path:     "operator",
			Severity: "error",
		})
		return core.ValidationResult{Valid: false, Issues: issues}
	}

	if _, err := c.Compile(cond); err != nil {
		issues = append(issues, core.IssueFromError(err, issuePath(err)))
	}
	return core.ValidationResult{Valid: len(issues) == 0, Issues: issues}
}

func issuePath(err error) string {
	switch {
	case core.IsColumnNotFound(err):
		return "column"
	case core.IsUnsupportedOperator(err):
		return "operator"
	case core.IsInvalidValueFormat(err):
		return "value"
	}
	return ""
}

// BuildSearch renders a free-text search over every searchable column as a
// parenthesised OR group. Non-text columns are cast to text. An empty term
// or a catalog without searchable columns yields the empty string.
func (c *Compiler) BuildSearch(term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return ""
	}
	columns := c.catalog.Searchable()
	if len(columns) == 0 {
		return ""
	}

	pattern := QuoteLiteral("%"+escapeLike(term)+"%", c.options.Escaping)
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		ident := QuoteIdentifier(col.Name)
		if !col.DataType.IsText() {
			ident += "::text"
		}
		parts = append(parts, fmt.Sprintf("%s ILIKE %s", ident, pattern))
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

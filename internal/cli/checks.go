package cli

import (
	"bytes"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/asaidimu/go-sieve/core/authz"
	"github.com/asaidimu/go-sieve/core/permission"
	"github.com/asaidimu/go-sieve/postgres"
	"github.com/spf13/cobra"
)

// ChecksOptions holds flags for the checks command.
type ChecksOptions struct {
	*RootOptions
	Checks      string
	Placeholder string
	DSN         string
	Functions   permission.Functions
}

// ChecksResult is the JSON payload of the checks command.
type ChecksResult struct {
	Query   string             `json:"query"`
	Params  []any              `json:"params"`
	Keys    []string           `json:"keys"`
	Results permission.Results `json:"results,omitempty"`
}

// NewChecksCommand creates the checks command.
func NewChecksCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ChecksOptions{RootOptions: rootOpts}
	defaults := permission.DefaultOptions().Functions

	cmd := &cobra.Command{
		Use:   "checks",
		Short: "Compile a permission batch into one query",
		Long: `Compile a batch of permission checks into a single UNION ALL query.

The checks file is YAML or JSON of the form {checks: [...]}. With --dsn the
query is executed against PostgreSQL and the parsed results are printed.`,
		Example: `  sievectl checks --checks batch.yaml
  sievectl checks --checks batch.yaml --placeholder dollar
  sievectl checks --checks batch.yaml --dsn postgres://localhost/app`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChecks(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Checks, "checks", "", "checks file, or - for stdin (required)")
	cmd.Flags().StringVar(&opts.Placeholder, "placeholder", "question", "bind parameter style (question|dollar)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "PostgreSQL connection string; executes the batch when set")
	cmd.Flags().StringVar(&opts.Functions.Admin, "admin-func", defaults.Admin, "admin permission function")
	cmd.Flags().StringVar(&opts.Functions.Data, "data-func", defaults.Data, "data permission function")
	cmd.Flags().StringVar(&opts.Functions.Storage, "storage-func", defaults.Storage, "storage permission function")
	_ = cmd.MarkFlagRequired("checks")

	return cmd
}

// parsePlaceholder maps the --placeholder flag onto a squirrel format.
func parsePlaceholder(value string) (sq.PlaceholderFormat, error) {
	switch strings.ToLower(value) {
	case "question", "":
		return sq.Question, nil
	case "dollar":
		return sq.Dollar, nil
	default:
		return nil, fmt.Errorf("invalid placeholder %q: must be question or dollar", value)
	}
}

func runChecks(cmd *cobra.Command, opts *ChecksOptions) error {
	placeholder, err := parsePlaceholder(opts.Placeholder)
	if err != nil {
		return WrapExitError(ExitCommandError, "bad flag", err)
	}
	if opts.DSN != "" {
		placeholder = sq.Dollar
	}

	data, err := readInput(opts.Checks, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read checks", err)
	}
	checks, err := permission.LoadChecks(bytes.NewReader(data))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load checks", err)
	}

	logger := opts.logger()
	defer func() { _ = logger.Sync() }()

	compiler, err := permission.NewCompiler(logger, &permission.Options{
		Functions:   opts.Functions,
		Placeholder: placeholder,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "bad function names", err)
	}
	plan, err := compiler.BuildQuery(checks)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to compile checks", err)
	}

	result := ChecksResult{Query: plan.Text, Params: plan.Params, Keys: plan.Keys}
	if result.Params == nil {
		result.Params = []any{}
	}

	if opts.DSN != "" {
		pool, err := postgres.NewPool(cmd.Context(), opts.DSN)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to connect", err)
		}
		defer pool.Close()

		service, err := authz.NewService(compiler, logger)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to start permission service", err)
		}
		results, err := service.Execute(cmd.Context(), postgres.NewRunner(pool, logger), checks)
		if err != nil {
			return WrapExitError(ExitFailure, "permission check failed", err)
		}
		result.Results = results
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(result, formatChecks(result))
}

// formatChecks renders the text form: the query, its parameters and any results.
func formatChecks(r ChecksResult) string {
	var b strings.Builder
	b.WriteString(r.Query)
	b.WriteString("\n-- params:")
	for i, p := range r.Params {
		fmt.Fprintf(&b, "\n--   %d: %#v", i+1, p)
	}
	if r.Results != nil {
		b.WriteString("\n-- results:")
		for _, key := range r.Keys {
			value, ok := r.Results[key]
			if !ok {
				fmt.Fprintf(&b, "\n--   %s: unknown", key)
				continue
			}
			fmt.Fprintf(&b, "\n--   %s: %v", key, value)
		}
	}
	return b.String()
}

package cli

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-sieve/core/query"
	"github.com/asaidimu/go-sieve/core/schema"
	"github.com/spf13/cobra"
)

// WhereOptions holds flags for the where command.
type WhereOptions struct {
	*RootOptions
	Catalog    string
	Conditions string
	Search     string
	Escape     string
}

// WhereResult is the JSON payload of the where command.
type WhereResult struct {
	Clause string `json:"clause"`
	Search string `json:"search,omitempty"`
}

// NewWhereCommand creates the where command.
func NewWhereCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WhereOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "where",
		Short: "Render filter conditions as a WHERE clause",
		Long: `Render a list of filter conditions against a column catalog.

The conditions file is YAML or JSON of the form {conditions: [...]}; pass "-"
to read it from stdin.`,
		Example: `  sievectl where --catalog catalog.yaml --conditions filter.yaml
  sievectl where --catalog catalog.yaml --search "o'brien"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhere(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "column catalog file (required)")
	cmd.Flags().StringVar(&opts.Conditions, "conditions", "", "conditions file, or - for stdin")
	cmd.Flags().StringVar(&opts.Search, "search", "", "free-text term matched against searchable columns")
	cmd.Flags().StringVar(&opts.Escape, "escape", "standard", "literal escaping (standard|backslash)")
	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}

// parseEscape maps the --escape flag onto an escape strategy.
func parseEscape(value string) (query.EscapeStrategy, error) {
	switch strings.ToLower(value) {
	case "standard", "":
		return query.EscapeStandard, nil
	case "backslash":
		return query.EscapeBackslash, nil
	default:
		return 0, fmt.Errorf("invalid escape %q: must be standard or backslash", value)
	}
}

// newFilterCompiler loads the catalog and builds a compiler for it.
func newFilterCompiler(rootOpts *RootOptions, catalogPath, escape string) (*query.Compiler, error) {
	strategy, err := parseEscape(escape)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "bad flag", err)
	}
	catalog, err := schema.LoadCatalogFile(catalogPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
	}
	logger := rootOpts.logger()
	return query.NewCompiler(catalog, query.NewRegistry(logger), logger, &query.Options{Escaping: strategy}), nil
}

func runWhere(cmd *cobra.Command, opts *WhereOptions) error {
	compiler, err := newFilterCompiler(opts.RootOptions, opts.Catalog, opts.Escape)
	if err != nil {
		return err
	}

	var conditions []query.FilterCondition
	if opts.Conditions != "" {
		data, err := readInput(opts.Conditions, cmd.InOrStdin())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read conditions", err)
		}
		if conditions, err = loadConditions(data); err != nil {
			return WrapExitError(ExitCommandError, "failed to load conditions", err)
		}
	}

	clause, err := compiler.BuildWhere(conditions)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build WHERE clause", err)
	}

	result := WhereResult{Clause: clause}
	text := clause
	if opts.Search != "" {
		result.Search = compiler.BuildSearch(opts.Search)
		if result.Search != "" {
			text = combineSearch(clause, result.Search)
		}
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(result, text)
}

// combineSearch appends a search group to a WHERE clause, which may be empty.
func combineSearch(clause, search string) string {
	if clause == "" {
		return "WHERE " + search
	}
	return clause + " AND " + search
}

package cli

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-sieve/core"
	"github.com/spf13/cobra"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Catalog    string
	Conditions string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check filter conditions without rendering them",
		Long: `Validate every condition in a conditions file against a column catalog.

Exits with status 1 when any condition is invalid.`,
		Example:       `  sievectl validate --catalog catalog.yaml --conditions filter.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "column catalog file (required)")
	cmd.Flags().StringVar(&opts.Conditions, "conditions", "", "conditions file, or - for stdin (required)")
	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("conditions")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions) error {
	compiler, err := newFilterCompiler(opts.RootOptions, opts.Catalog, "standard")
	if err != nil {
		return err
	}
	data, err := readInput(opts.Conditions, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read conditions", err)
	}
	conditions, err := loadConditions(data)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load conditions", err)
	}

	result := core.ValidationResult{Valid: true, Issues: []core.Issue{}}
	for i, cond := range conditions {
		r := compiler.ValidateFilter(cond)
		for _, issue := range r.Issues {
			if issue.Path == "" {
				issue.Path = fmt.Sprintf("conditions[%d]", i)
			} else {
				issue.Path = fmt.Sprintf("conditions[%d].%s", i, issue.Path)
			}
			result.Issues = append(result.Issues, issue)
		}
		if !r.Valid {
			result.Valid = false
		}
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if result.Valid {
		if err := formatter.Success(result, fmt.Sprintf("%d condition(s) valid", len(conditions))); err != nil {
			return err
		}
		return nil
	}

	lines := make([]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		lines = append(lines, fmt.Sprintf("%s: [%s] %s", issue.Path, issue.Code, issue.Message))
	}
	if err := formatter.Failure(result, strings.Join(lines, "\n"), "validation failed"); err != nil {
		return err
	}
	return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d issue(s) found", len(result.Issues))}
}

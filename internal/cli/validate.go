package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/blockc/internal/check"
	"github.com/roach88/blockc/internal/normalize"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Spec string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool          `json:"valid"`
	Errors   int           `json:"errors"`
	Warnings int           `json:"warnings"`
	Issues   []check.Issue `json:"issues"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Check a document without generating script",
		Long: `Import a document and report structural issues: unknown kinds, calls
to undefined subroutines or collections, recursive collections, variable
references missing from the table and unnamed rules.

Exit codes:
  0 - No error-level issues (warnings allowed)
  1 - One or more errors
  2 - Command error (missing file, bad config)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Spec, "spec", "", "canonical kind spec (CUE or JSON)")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	s, err := openSession(cmd.Context(), opts.RootOptions, sessionFlags{Spec: opts.Spec}, f)
	if err != nil {
		return err
	}

	// Check the parsed document before hydration so references missing
	// from the declared table are still reported.
	imported, err := s.importDocument(path, f)
	if err != nil {
		return err
	}
	mapped := normalize.FromCanonical(imported.Source, s.pipeline.Spec, s.pipeline.Registry)
	issues := check.Check(mapped, s.pipeline.Registry)

	result := ValidationResult{Valid: !check.HasErrors(issues), Issues: issues}
	if result.Issues == nil {
		result.Issues = []check.Issue{}
	}
	for _, issue := range issues {
		if issue.Level == check.LevelError {
			result.Errors++
		} else {
			result.Warnings++
		}
	}

	if f.JSON() {
		if result.Valid {
			return f.Success(result)
		}
		if err := f.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeValidation,
				Message: fmt.Sprintf("%d error(s)", result.Errors),
			},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d error(s)", result.Errors))
	}

	w := cmd.OutOrStdout()
	for _, issue := range issues {
		fmt.Fprintln(w, issue.String())
	}
	if !result.Valid {
		fmt.Fprintf(w, "✗ %d error(s), %d warning(s)\n", result.Errors, result.Warnings)
		return NewExitError(ExitFailure, fmt.Sprintf("%d error(s)", result.Errors))
	}
	if result.Warnings > 0 {
		fmt.Fprintf(w, "✓ Valid with %d warning(s)\n", result.Warnings)
		return nil
	}
	fmt.Fprintln(w, "✓ No issues found")
	return nil
}

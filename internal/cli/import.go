package cli

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/roach88/blockc/internal/hydrate"
	"github.com/roach88/blockc/internal/ir"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Output string
	Spec   string
}

// ImportResult is the JSON payload of an import run.
type ImportResult struct {
	Output       string          `json:"output,omitempty"`
	Placeholders []string        `json:"placeholders"`
	Hydration    hydrate.Report  `json:"hydration"`
	Variables    int             `json:"variables"`
	Document     json.RawMessage `json:"document,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an interchange file into the internal schema",
		Long: `Accept a document in any interchange form (plain, wrapped under a
container key, a bare block array or nested under an alternate key), map
canonical kinds back onto internal ones and fill the variable table.

Examples:
  blockc import shared.json
  blockc import shared.json -o program.json --spec kinds.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the document to a file instead of stdout")
	cmd.Flags().StringVar(&opts.Spec, "spec", "", "canonical kind spec (CUE or JSON)")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	s, err := openSession(cmd.Context(), opts.RootOptions, sessionFlags{Spec: opts.Spec}, f)
	if err != nil {
		return err
	}
	imported, err := s.importDocument(path, f)
	if err != nil {
		return err
	}

	data, err := ir.Marshal(imported.Document)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, "failed to encode document", err)
	}

	if opts.Output != "" {
		if err := writeOutput(opts.Output, data); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed,
				fmt.Sprintf("failed to write %s", opts.Output), err)
		}
	}

	result := ImportResult{
		Output:       opts.Output,
		Placeholders: placeholderKinds(imported),
		Hydration:    imported.Hydration,
		Variables:    len(imported.Document.Variables),
	}
	f.VerboseLog("Registered %d placeholder(s), %d declared and %d discovered variable(s)",
		len(result.Placeholders), result.Hydration.Declared, result.Hydration.Discovered)

	if f.JSON() {
		if opts.Output == "" {
			result.Document = data
		}
		return f.Success(result)
	}

	w := cmd.OutOrStdout()
	if opts.Output == "" {
		fmt.Fprintln(w, string(data))
		return nil
	}
	fmt.Fprintf(w, "✓ Imported %s -> %s\n", path, opts.Output)
	fmt.Fprintf(w, "  %d variable(s), %d placeholder kind(s)\n", result.Variables, len(result.Placeholders))
	for _, kind := range result.Placeholders {
		fmt.Fprintf(w, "  placeholder: %s\n", kind)
	}
	return nil
}

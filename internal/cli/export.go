package cli

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
	Spec   string
	Key    string
}

// ExportResult is the JSON payload of an export run.
type ExportResult struct {
	Output   string          `json:"output,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <document>",
		Short: "Export a document in the canonical interchange schema",
		Long: `Rename internal kinds to their canonical names, remap inputs and
synthesize structural metadata, then wrap the result under the container key.

Examples:
  blockc export program.json
  blockc export program.json --key mod -o shared.json
  blockc export program.json --spec kinds.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the export to a file instead of stdout")
	cmd.Flags().StringVar(&opts.Spec, "spec", "", "canonical kind spec (CUE or JSON)")
	cmd.Flags().StringVar(&opts.Key, "key", "", "container key (default mod)")

	return cmd
}

func runExport(opts *ExportOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	s, err := openSession(cmd.Context(), opts.RootOptions, sessionFlags{Spec: opts.Spec, Key: opts.Key}, f)
	if err != nil {
		return err
	}
	imported, err := s.importDocument(path, f)
	if err != nil {
		return err
	}

	data, err := s.pipeline.Export(imported.Document)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, "failed to export document", err)
	}

	if opts.Output != "" {
		if err := writeOutput(opts.Output, data); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed,
				fmt.Sprintf("failed to write %s", opts.Output), err)
		}
	}

	if f.JSON() {
		result := ExportResult{Output: opts.Output}
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
	fmt.Fprintf(w, "✓ Exported %s\n", opts.Output)
	return nil
}

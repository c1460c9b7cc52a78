package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/blockc/internal/codegen"
	"github.com/roach88/blockc/internal/pipeline"
	"github.com/roach88/blockc/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Output   string
	Database string
	Spec     string
}

// GenerateResult is the JSON payload of a generate run.
type GenerateResult struct {
	Output       string        `json:"output,omitempty"`
	Script       string        `json:"script,omitempty"`
	Stats        codegen.Stats `json:"stats"`
	Placeholders []string      `json:"placeholders"`
	Build        *store.Build  `json:"build,omitempty"`
	Recorded     bool          `json:"recorded,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <document>",
		Short: "Generate script from a block document",
		Long: `Import a block document in any interchange form and emit its script.

Unknown kinds are registered as placeholders and produce comment markers.
With --db the build is recorded in the SQLite build log.

Examples:
  blockc generate program.json
  blockc generate program.json -o out/program.ts
  blockc generate program.json --db builds.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the script to a file instead of stdout")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the build in this SQLite database")
	cmd.Flags().StringVar(&opts.Spec, "spec", "", "canonical kind spec (CUE or JSON)")

	return cmd
}

func runGenerate(opts *GenerateOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	s, err := openSession(ctx, opts.RootOptions, sessionFlags{Spec: opts.Spec, Database: opts.Database}, f)
	if err != nil {
		return err
	}
	imported, err := s.importDocument(path, f)
	if err != nil {
		return err
	}

	script, stats := s.pipeline.Generate(imported.Document)
	slog.Debug("generated script", "rules", stats.Rules, "subroutines", stats.Subroutines, "markers", stats.Markers)

	result := GenerateResult{
		Output:       opts.Output,
		Stats:        stats,
		Placeholders: placeholderKinds(imported),
	}

	if s.cfg.Database != "" {
		stored, inserted, err := recordBuild(cmd, s.cfg.Database, imported, script, stats)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to record build", err)
		}
		result.Build = &stored
		result.Recorded = inserted
		f.VerboseLog("Build %s (seq %d, new: %v)", stored.ID, stored.Seq, inserted)
	}

	if opts.Output != "" {
		if err := writeOutput(opts.Output, []byte(script)); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed,
				fmt.Sprintf("failed to write %s", opts.Output), err)
		}
	}

	if f.JSON() {
		if opts.Output == "" {
			result.Script = script
		}
		return f.Success(result)
	}

	w := cmd.OutOrStdout()
	if opts.Output == "" {
		fmt.Fprint(w, script)
		return nil
	}
	fmt.Fprintf(w, "✓ Generated %s (%d rules, %d subroutines, %d markers)\n",
		opts.Output, stats.Rules, stats.Subroutines, stats.Markers)
	if result.Build != nil {
		fmt.Fprintf(w, "  build %s seq %d\n", result.Build.ID, result.Build.Seq)
	}
	return nil
}

// recordBuild writes one build row keyed on the document as parsed, so
// re-generating an unchanged file is idempotent.
func recordBuild(cmd *cobra.Command, dbPath string, imported pipeline.Imported, script string, stats codegen.Stats) (store.Build, bool, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return store.Build{}, false, err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	b, err := store.NewBuild(imported.Source, script)
	if err != nil {
		return store.Build{}, false, err
	}
	b.Rules = stats.Rules
	b.Subroutines = stats.Subroutines
	b.Markers = stats.Markers
	b.Placeholders = store.PlaceholdersFrom(imported.Inferred.Definitions)

	return st.WriteBuild(cmd.Context(), b)
}

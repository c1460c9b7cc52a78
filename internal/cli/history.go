package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
}

// HistoryResult is the JSON payload of a history run.
type HistoryResult struct {
	Builds []store.Build `json:"builds"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [document]",
		Short: "List recorded builds",
		Long: `List the builds recorded by "generate --db", oldest first.

With a document argument only the latest build of that document is shown.

Examples:
  blockc history --db builds.db
  blockc history --db builds.db program.json --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			document := ""
			if len(args) == 1 {
				document = args[0]
			}
			return runHistory(opts, document, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite build log")

	return cmd
}

func runHistory(opts *HistoryOptions, document string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	s, err := openSession(ctx, opts.RootOptions, sessionFlags{Database: opts.Database}, f)
	if err != nil {
		return err
	}
	dbPath := s.cfg.Database
	if dbPath == "" {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "no database: pass --db or set database in the config", nil)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return f.Fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("database not found: %s", dbPath), nil)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	var builds []store.Build
	if document == "" {
		builds, err = st.ListBuilds(ctx)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to list builds", err)
		}
	} else {
		b, err := latestBuild(cmd, st, document, f)
		if err != nil {
			return err
		}
		builds = []store.Build{}
		if b != nil {
			builds = append(builds, *b)
		}
	}

	if f.JSON() {
		return f.Success(HistoryResult{Builds: builds})
	}

	w := cmd.OutOrStdout()
	if len(builds) == 0 {
		fmt.Fprintln(w, "No builds recorded.")
		return nil
	}
	fmt.Fprintf(w, "%-5s %-16s %6s %12s %8s  %s\n", "SEQ", "BUILD", "RULES", "SUBROUTINES", "MARKERS", "PLACEHOLDERS")
	for _, b := range builds {
		fmt.Fprintf(w, "%-5d %-16s %6d %12d %8d  %d\n",
			b.Seq, shortID(b.ID), b.Rules, b.Subroutines, b.Markers, len(b.Placeholders))
	}
	return nil
}

// latestBuild returns the most recent build of document, nil if it was
// never built.
func latestBuild(cmd *cobra.Command, st *store.Store, document string, f *OutputFormatter) (*store.Build, error) {
	data, err := os.ReadFile(document)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("failed to read %s", document), err)
	}
	doc, err := ir.ParseInterchange(data)
	if err != nil {
		return nil, f.Fail(ExitFailure, ErrCodeParseFailed, fmt.Sprintf("%s is not a block program", document), err)
	}
	hash, err := ir.DocumentHash(doc)
	if err != nil {
		return nil, f.Fail(ExitFailure, ErrCodeGeneric, "failed to hash document", err)
	}

	b, err := st.LatestForDocument(cmd.Context(), hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeDatabase, "failed to read build", err)
	}
	return &b, nil
}

func shortID(id string) string {
	if len(id) > 16 {
		return id[:16]
	}
	return id
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/blockc/internal/config"
	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/normalize"
	"github.com/roach88/blockc/internal/pipeline"
	"github.com/roach88/blockc/internal/selections"
)

// sessionFlags are per-command overrides of config values. Empty means
// "use the config file".
type sessionFlags struct {
	Spec     string
	Key      string
	Database string
}

// session is one command's configured pipeline.
type session struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
}

// openSession loads the config, applies flag overrides and builds the
// pipeline. Failures are already reported through f.
func openSession(ctx context.Context, opts *RootOptions, flags sessionFlags, f *OutputFormatter) (*session, error) {
	cfg, err := config.Discover(opts.ConfigPath)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfigInvalid, "failed to load config", err)
	}
	if flags.Spec != "" {
		cfg.CanonicalSpec = flags.Spec
	}
	if flags.Key != "" {
		cfg.ContainerKey = flags.Key
	}
	if flags.Database != "" {
		cfg.Database = flags.Database
	}
	if err := cfg.Validate(); err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfigInvalid, "invalid options", err)
	}

	p := pipeline.New()
	p.Codegen = cfg.CodegenOptions()
	p.ContainerKey = cfg.ContainerKey

	if cfg.CanonicalSpec != "" {
		spec, err := normalize.LoadSpec(cfg.CanonicalSpec)
		if err != nil {
			return nil, f.Fail(ExitCommandError, ErrCodeSpecInvalid,
				fmt.Sprintf("failed to load canonical spec %s", cfg.CanonicalSpec), err)
		}
		p.Spec = spec
		f.VerboseLog("Loaded canonical spec %s (%d kinds)", cfg.CanonicalSpec, len(spec.Kinds()))
	}

	if cfg.Selections != "" {
		cache := selections.NewCache()
		if err := cache.Load(ctx, selections.FileSource(cfg.Selections)); err != nil {
			return nil, f.Fail(ExitCommandError, ErrCodeSelections,
				fmt.Sprintf("failed to load selections %s", cfg.Selections), err)
		}
		p.Codegen.Selections = cache
	}

	return &session{cfg: cfg, pipeline: p}, nil
}

// importDocument imports path, mapping read and parse failures onto error
// codes.
func (s *session) importDocument(path string, f *OutputFormatter) (pipeline.Imported, error) {
	imported, err := s.pipeline.ImportFile(path)
	if err == nil {
		slog.Debug("imported document",
			"path", path,
			"placeholders", imported.Inferred.Registered,
			"declared", imported.Hydration.Declared,
			"discovered", imported.Hydration.Discovered)
		return imported, nil
	}

	var parseErr *ir.ParseError
	if errors.As(err, &parseErr) {
		return imported, f.Fail(ExitFailure, ErrCodeParseFailed,
			fmt.Sprintf("%s is not a block program", path), err)
	}
	return imported, f.Fail(ExitCommandError, ErrCodeReadFailed,
		fmt.Sprintf("failed to read %s", path), err)
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func placeholderKinds(imported pipeline.Imported) []string {
	kinds := make([]string, 0, len(imported.Inferred.Definitions))
	for _, def := range imported.Inferred.Definitions {
		kinds = append(kinds, def.Kind)
	}
	return kinds
}

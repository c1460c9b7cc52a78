// Package config loads the optional blockc.yaml project file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/blockc/internal/codegen"
)

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = "blockc.yaml"

// Config holds project settings. Paths are resolved relative to the
// directory of the file they were read from.
type Config struct {
	// ImportLine replaces the header line of generated scripts.
	ImportLine string `yaml:"import_line,omitempty"`

	// Runtime is the identifier runtime calls are made through.
	Runtime string `yaml:"runtime,omitempty"`

	// ContainerKey wraps exported documents: {"<key>": document}.
	ContainerKey string `yaml:"container_key,omitempty"`

	// CanonicalSpec is a CUE or JSON file declaring canonical kinds.
	CanonicalSpec string `yaml:"canonical_spec,omitempty"`

	// Selections is the flat enumerated-value table.
	Selections string `yaml:"selections,omitempty"`

	// Database is the SQLite build log.
	Database string `yaml:"database,omitempty"`
}

// Load reads and validates a config file.
// Unknown keys are rejected so typos do not pass silently.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

// Discover loads path when set. With no path it loads DefaultFile from the
// working directory if present and otherwise returns an empty config.
func Discover(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultFile); errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return Load(DefaultFile)
}

// Parse decodes config YAML. An empty document is a valid empty config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.Runtime != "" && codegen.Identifier(c.Runtime) != c.Runtime {
		return fmt.Errorf("runtime %q is not a valid identifier", c.Runtime)
	}
	if c.ContainerKey != "" && c.ContainerKey != codegen.Identifier(c.ContainerKey) {
		return fmt.Errorf("container_key %q must be a plain identifier", c.ContainerKey)
	}
	return nil
}

func (c *Config) resolve(dir string) {
	for _, p := range []*string{&c.CanonicalSpec, &c.Selections, &c.Database} {
		if *p != "" && !filepath.IsAbs(*p) && *p != ":memory:" {
			*p = filepath.Join(dir, *p)
		}
	}
}

// CodegenOptions maps the config onto generator options.
func (c *Config) CodegenOptions() codegen.Options {
	return codegen.Options{ImportLine: c.ImportLine, Runtime: c.Runtime}
}

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Recognition.IdleTimeout.Std() < 0 {
		errs = append(errs, fmt.Errorf("recognition.idle_timeout %s must not be negative", cfg.Recognition.IdleTimeout))
	}

	if cfg.Catalog.PostgresDSN != "" && (len(cfg.Catalog.Categories) > 0 || len(cfg.Catalog.Wallets) > 0) {
		slog.Warn("catalog.postgres_dsn is set; inline categories/wallets are ignored")
	}

	seen := make(map[string]string)
	for i, e := range cfg.Catalog.Categories {
		prefix := fmt.Sprintf("catalog.categories[%d]", i)
		validateEntry(&errs, seen, prefix, e.ID, e.Name)
	}
	for i, e := range cfg.Catalog.Wallets {
		prefix := fmt.Sprintf("catalog.wallets[%d]", i)
		validateEntry(&errs, seen, prefix, e.ID, e.Name)
	}

	return errors.Join(errs...)
}

// validateEntry checks one catalog entry for a missing ID or name and for
// duplicate IDs across both catalogs.
func validateEntry(errs *[]error, seen map[string]string, prefix, id, name string) {
	if id == "" {
		*errs = append(*errs, fmt.Errorf("%s.id is required", prefix))
	} else if prev, ok := seen[id]; ok {
		*errs = append(*errs, fmt.Errorf("%s.id %q is a duplicate of %s", prefix, id, prev))
	} else {
		seen[id] = prefix
	}
	if name == "" {
		*errs = append(*errs, fmt.Errorf("%s.name is required", prefix))
	}
}

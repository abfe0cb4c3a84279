// Package config provides the configuration schema and loader for the
// voicap voice-capture service.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ndhoang91/voicap/internal/catalog"
)

// Duration wraps [time.Duration] so YAML values can be written as "30s" or
// "2m" instead of raw nanoseconds.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a [time.Duration].
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String formats d like time.Duration.
func (d Duration) String() string { return time.Duration(d).String() }

// LogLevel controls log verbosity for the voicap server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level converts l to the slog level it names. Unset maps to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the root configuration structure for voicap.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Normalizer  NormalizerConfig  `yaml:"normalizer"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// RecognitionConfig holds the defaults applied to every dictation session.
type RecognitionConfig struct {
	// Language is the BCP-47 recognition locale. Default: "vi-VN".
	Language string `yaml:"language"`

	// Continuous keeps the engine listening across pauses.
	Continuous bool `yaml:"continuous"`

	// IdleTimeout stops a session when no result arrives within the
	// window. Zero disables the timeout.
	IdleTimeout Duration `yaml:"idle_timeout"`
}

// CatalogConfig selects where category and wallet catalogs come from.
// When PostgresDSN is set the service reads the finance tracker's database;
// otherwise the inline entries are served from memory.
type CatalogConfig struct {
	// PostgresDSN is the connection string for the finance tracker's
	// PostgreSQL database. Empty selects the in-memory store.
	PostgresDSN string `yaml:"postgres_dsn"`

	// Categories seed the in-memory store.
	Categories []catalog.Entry `yaml:"categories"`

	// Wallets seed the in-memory store.
	Wallets []catalog.Entry `yaml:"wallets"`
}

// NormalizerConfig extends the built-in speech-text correction tables.
type NormalizerConfig struct {
	// WordRules adds whole-token spelling corrections.
	WordRules map[string]string `yaml:"word_rules"`

	// PhraseRules adds multi-word corrections, applied after the built-in
	// phrase table.
	PhraseRules map[string]string `yaml:"phrase_rules"`
}

package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/ndhoang91/voicap/internal/config"
)

const validYAML = `
server:
  listen_addr: ":9090"
  log_level: debug
recognition:
  language: vi-VN
  continuous: true
  idle_timeout: 30s
catalog:
  categories:
    - id: cat-food
      name: "Ăn uống"
  wallets:
    - id: wal-cash
      name: "Tiền mặt"
normalizer:
  word_rules:
    trog: trong
`

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("listen_addr = %q, want :9090", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("log_level = %q, want debug", cfg.Server.LogLevel)
	}
	if !cfg.Recognition.Continuous {
		t.Error("continuous = false, want true")
	}
	if got := cfg.Recognition.IdleTimeout.Std(); got != 30*time.Second {
		t.Errorf("idle_timeout = %v, want 30s", got)
	}
	if len(cfg.Catalog.Categories) != 1 || cfg.Catalog.Categories[0].ID != "cat-food" {
		t.Errorf("categories = %+v, want one cat-food entry", cfg.Catalog.Categories)
	}
	if cfg.Normalizer.WordRules["trog"] != "trong" {
		t.Errorf("word_rules = %v, want trog entry", cfg.Normalizer.WordRules)
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("server:\n  listen_adr: ':8080'\n"))
	if err == nil {
		t.Fatal("misspelled key was accepted")
	}
}

func TestLoadFromReaderRejectsBadDuration(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("recognition:\n  idle_timeout: soon\n"))
	if err == nil {
		t.Fatal("unparseable duration was accepted")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "invalid log level",
			yaml:    "server:\n  log_level: verbose\n",
			wantErr: "log_level",
		},
		{
			name:    "negative idle timeout",
			yaml:    "recognition:\n  idle_timeout: -5s\n",
			wantErr: "idle_timeout",
		},
		{
			name:    "entry missing id",
			yaml:    "catalog:\n  categories:\n    - name: \"Ăn uống\"\n",
			wantErr: "id is required",
		},
		{
			name:    "entry missing name",
			yaml:    "catalog:\n  wallets:\n    - id: wal-cash\n",
			wantErr: "name is required",
		},
		{
			name: "duplicate id across catalogs",
			yaml: "catalog:\n  categories:\n    - id: x\n      name: a\n  wallets:\n    - id: x\n      name: b\n",
			wantErr: "duplicate",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tc.yaml))
			if err == nil {
				t.Fatal("invalid config was accepted")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	t.Parallel()

	if config.LogLevel("trace").IsValid() {
		t.Error("trace reported valid")
	}
	if !config.LogWarn.IsValid() {
		t.Error("warn reported invalid")
	}
}

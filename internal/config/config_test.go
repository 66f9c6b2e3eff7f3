package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledmerge.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	want := &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		OutputPattern: "{stem}_{timestamp}{ext}",
		Store: StoreConfig{
			HTTPTimeout: Duration(10 * time.Second),
			BoltBucket:  "profiles",
		},
		Review: ReviewConfig{
			MaxFrames: 300,
			Slots:     []uint32{5, 6, 7},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestNewConfigFromToml(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"
log_format = "json"

[store]
allow_http = true
http_timeout = "3s"
bolt_path = "/tmp/library.db"

[merge]
reindex_frames = true

[review]
slots = [1, 2]
`)

	cfg, err := NewConfigFromToml(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected logging config %+v", cfg)
	}
	if !cfg.Store.AllowHTTP || time.Duration(cfg.Store.HTTPTimeout) != 3*time.Second {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	if !cfg.Merge.ReindexFrames || cfg.Merge.StrictSources {
		t.Fatalf("unexpected merge config %+v", cfg.Merge)
	}
	if diff := cmp.Diff([]uint32{1, 2}, cfg.Review.Slots); diff != "" {
		t.Fatalf("slots mismatch (-want +got):\n%s", diff)
	}
	// Unset keys keep their defaults.
	if cfg.Review.MaxFrames != 300 || cfg.Store.BoltBucket != "profiles" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestNewConfigFromToml_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown key":  `colour = "red"`,
		"bad duration": "[store]\nhttp_timeout = \"soon\"",
		"bad level":    `log_level = "loud"`,
		"bad pattern":  `output_pattern = "merged.json"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewConfigFromToml(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestNewConfigFromToml_MissingFile(t *testing.T) {
	if _, err := NewConfigFromToml(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for explicit missing path")
	}
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := NewConfig()
	cfg.LogFormat = "xml"
	cfg.OutputPattern = "out/{stem}"
	cfg.Review.MaxFrames = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"log_format", "output_pattern", "review.max_frames"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestOutputName(t *testing.T) {
	cfg := NewConfig()
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	cases := map[string]string{
		"configs/keyboard.json": "configs/keyboard_2024-03-09_14-05-07.json",
		"keyboard.yaml":         "keyboard_2024-03-09_14-05-07.yaml",
		"keyboard":              "keyboard_2024-03-09_14-05-07.json",
		"gs://bucket/a/kb.json": "gs://bucket/a/kb_2024-03-09_14-05-07.json",
		"bolt://kb.json":        "bolt://kb_2024-03-09_14-05-07.json",
	}
	for base, want := range cases {
		if got := cfg.OutputName(base, now); got != want {
			t.Fatalf("OutputName(%q) = %q, want %q", base, got, want)
		}
	}
}

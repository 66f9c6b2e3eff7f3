// Package config loads the ledmerge TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultConfigPath is where the CLI looks when --config is not given.
	DefaultConfigPath = "ledmerge.toml"

	// TimestampLayout formats the {timestamp} placeholder of OutputPattern.
	TimestampLayout = "2006-01-02_15-04-05"
)

type Config struct {
	// LogLevel is any level accepted by logrus.ParseLevel.
	LogLevel string `toml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `toml:"log_format"`

	// OutputPattern names merged documents when no output is given. It may
	// use {stem}, {timestamp} and {ext}.
	OutputPattern string `toml:"output_pattern"`

	Store  StoreConfig  `toml:"store"`
	Merge  MergeConfig  `toml:"merge"`
	Review ReviewConfig `toml:"review"`
}

type StoreConfig struct {
	// AllowHTTP enables http(s) source locations.
	AllowHTTP bool `toml:"allow_http"`

	// HTTPTimeout caps remote fetches, e.g. "10s".
	HTTPTimeout Duration `toml:"http_timeout"`

	// BoltPath enables bolt:// locations backed by this database file.
	BoltPath string `toml:"bolt_path"`

	BoltBucket string `toml:"bolt_bucket"`

	// FSRoot serves fs: locations from this directory.
	FSRoot string `toml:"fs_root"`
}

type MergeConfig struct {
	ReindexFrames bool `toml:"reindex_frames"`
	StrictSources bool `toml:"strict_sources"`
}

type ReviewConfig struct {
	// MaxFrames is the per-slot frame limit the device accepts.
	MaxFrames int `toml:"max_frames"`

	// Slots are the editable slots offered by the wizard.
	Slots []uint32 `toml:"slots"`
}

// Duration is a time.Duration written as a string in TOML.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

type configParser func(*Config)

var parsers = []configParser{parseRootConfig, parseStoreConfig, parseReviewConfig}

// NewConfig returns an initialized Config with default values set.
func NewConfig() *Config {
	cfg := &Config{}
	parseConfig(cfg)
	return cfg
}

// NewConfigFromToml reads cfgPath over the defaults. A missing file at the
// default path yields the defaults.
func NewConfigFromToml(cfgPath string) (*Config, error) {
	f, err := os.Open(cfgPath)
	if err != nil {
		if os.IsNotExist(err) && cfgPath == DefaultConfigPath {
			return NewConfig(), nil
		}
		return nil, fmt.Errorf("failed to open config file %q: %w", cfgPath, err)
	}
	defer f.Close()

	cfg := NewConfig()
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err = dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config file %q: %w", cfgPath, err)
	}
	parseConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", cfgPath, err)
	}
	return cfg, nil
}

func parseConfig(cfg *Config) {
	for _, p := range parsers {
		p(cfg)
	}
}

func parseRootConfig(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaultLogFormat
	}
	if cfg.OutputPattern == "" {
		cfg.OutputPattern = defaultOutputPattern
	}
}

func parseStoreConfig(cfg *Config) {
	if cfg.Store.HTTPTimeout == 0 {
		cfg.Store.HTTPTimeout = Duration(defaultHTTPTimeout)
	}
	if cfg.Store.BoltBucket == "" {
		cfg.Store.BoltBucket = defaultBoltBucket
	}
}

func parseReviewConfig(cfg *Config) {
	if cfg.Review.MaxFrames == 0 {
		cfg.Review.MaxFrames = defaultMaxFrames
	}
	if len(cfg.Review.Slots) == 0 {
		cfg.Review.Slots = append([]uint32(nil), defaultSlots...)
	}
}

// Validate reports every problem with the configuration.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format: must be text or json, got %q", c.LogFormat))
	}
	if !strings.Contains(c.OutputPattern, "{stem}") && !strings.Contains(c.OutputPattern, "{timestamp}") {
		errs = append(errs, errors.New("output_pattern: must use {stem} or {timestamp}"))
	}
	if strings.ContainsAny(c.OutputPattern, `/\`) {
		errs = append(errs, errors.New("output_pattern: must not contain path separators"))
	}
	if c.Store.HTTPTimeout < 0 {
		errs = append(errs, errors.New("store.http_timeout: must not be negative"))
	}
	if c.Review.MaxFrames < 0 {
		errs = append(errs, errors.New("review.max_frames: must not be negative"))
	}
	return errors.Join(errs...)
}

// OutputName derives the merged document location from the base location.
// The result sits next to base, which may be a path or a scheme URL.
func (c *Config) OutputName(base string, now time.Time) string {
	dir, name := "", base
	if i := strings.LastIndexAny(base, "/"+string(filepath.Separator)); i >= 0 {
		dir, name = base[:i+1], base[i+1:]
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if ext == "" {
		ext = ".json"
	}

	out := strings.NewReplacer(
		"{stem}", stem,
		"{timestamp}", now.Format(TimestampLayout),
		"{ext}", ext,
	).Replace(c.OutputPattern)
	return dir + out
}

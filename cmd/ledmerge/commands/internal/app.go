package internal

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	ledmerge "github.com/goliatone/go-ledmerge"
	"github.com/goliatone/go-ledmerge/cmd/ledmerge/commands/global"
	"github.com/goliatone/go-ledmerge/internal/config"
	"github.com/goliatone/go-ledmerge/internal/logging"
	"github.com/goliatone/go-ledmerge/pkg/merge"
	"github.com/goliatone/go-ledmerge/pkg/review"
	"github.com/goliatone/go-ledmerge/pkg/store"
)

// All CLI commands should call NewApp near the start and Close it when done.

// App holds what a command needs: the resolved configuration, a logger and a
// store built from both.
type App struct {
	Config *config.Config
	Logger *logrus.Logger
	Store  ledmerge.Store
	Out    io.Writer
}

// NewApp loads the configuration named by the global flags, applies flag
// overrides and builds the logger and store.
func NewApp(cmd *cli.Command) (*App, error) {
	cfg, err := config.NewConfigFromToml(cmd.String(global.ConfigFlag))
	if err != nil {
		return nil, err
	}
	ApplyFlags(cfg, cmd)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	out := io.Writer(os.Stdout)
	if root := cmd.Root(); root != nil && root.Writer != nil {
		out = root.Writer
	}

	return &App{
		Config: cfg,
		Logger: logger,
		Store:  ledmerge.NewStore(StoreOptions(cfg, logger)...),
		Out:    out,
	}, nil
}

// ApplyFlags copies explicitly set global flags over cfg.
func ApplyFlags(cfg *config.Config, cmd *cli.Command) {
	if cmd.IsSet(global.LogLevelFlag) {
		cfg.LogLevel = cmd.String(global.LogLevelFlag)
	}
	if cmd.IsSet(global.LogFormatFlag) {
		cfg.LogFormat = cmd.String(global.LogFormatFlag)
	}
	if cmd.IsSet(global.AllowHTTPFlag) {
		cfg.Store.AllowHTTP = cmd.Bool(global.AllowHTTPFlag)
	}
	if cmd.IsSet(global.BoltFlag) {
		cfg.Store.BoltPath = cmd.String(global.BoltFlag)
	}
}

// StoreOptions translates the [store] section into store options.
func StoreOptions(cfg *config.Config, logger logrus.FieldLogger) []store.Option {
	options := []store.Option{store.WithLogger(logger)}
	if cfg.Store.AllowHTTP {
		options = append(options, store.WithHTTPFallback(time.Duration(cfg.Store.HTTPTimeout)))
	}
	if cfg.Store.BoltPath != "" {
		options = append(options, store.WithBolt(cfg.Store.BoltPath), store.WithBoltBucket(cfg.Store.BoltBucket))
	}
	if cfg.Store.FSRoot != "" {
		options = append(options, store.WithFileSystem(os.DirFS(cfg.Store.FSRoot)))
	}
	return options
}

// EngineOptions translates the [merge] section into engine options.
func (a *App) EngineOptions() []merge.Option {
	return []merge.Option{
		merge.WithLogger(a.Logger),
		merge.WithFrameReindex(a.Config.Merge.ReindexFrames),
		merge.WithStrictSources(a.Config.Merge.StrictSources),
	}
}

// ReviewOptions translates the [review] section into summary options.
func (a *App) ReviewOptions() []review.Option {
	return []review.Option{
		review.WithSlots(a.Config.Review.Slots...),
		review.WithMaxFrames(a.Config.Review.MaxFrames),
	}
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil || a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// AppContext returns the context for a command, bounded by the global timeout
// flag when one is set.
func AppContext(ctx context.Context, cmd *cli.Command) (context.Context, context.CancelFunc) {
	if timeout := cmd.Duration(global.TimeoutFlag); timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

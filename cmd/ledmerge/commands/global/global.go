package global

import (
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-ledmerge/internal/config"
)

// Global flags for the ledmerge CLI

const (
	ConfigFlag    = "config"
	LogLevelFlag  = "log-level"
	LogFormatFlag = "log-format"
	AllowHTTPFlag = "allow-http"
	BoltFlag      = "bolt"
	TimeoutFlag   = "timeout"
)

// Flags returns the global flags. Each call builds fresh flag values.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    ConfigFlag,
			Aliases: []string{"c"},
			Usage:   "path to the TOML configuration file",
			Value:   config.DefaultConfigPath,
			Sources: cli.EnvVars("LEDMERGE_CONFIG"),
		},
		&cli.StringFlag{
			Name:    LogLevelFlag,
			Usage:   "log level (overrides log_level)",
			Sources: cli.EnvVars("LEDMERGE_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:  LogFormatFlag,
			Usage: "log format, text or json (overrides log_format)",
		},
		&cli.BoolFlag{
			Name:  AllowHTTPFlag,
			Usage: "allow loading documents from http(s) locations",
		},
		&cli.StringFlag{
			Name:    BoltFlag,
			Usage:   "path to the bolt document library (overrides store.bolt_path)",
			Sources: cli.EnvVars("LEDMERGE_BOLT"),
		},
		&cli.DurationFlag{
			Name:  TimeoutFlag,
			Usage: "timeout for commands",
		},
	}
}

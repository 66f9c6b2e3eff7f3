package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-ledmerge/cmd/ledmerge/commands/global"
	"github.com/goliatone/go-ledmerge/internal/config"
)

// Root builds the ledmerge command tree.
func Root(version string) *cli.Command {
	return &cli.Command{
		Name:    "ledmerge",
		Usage:   "merge LED animation pages between keyboard profiles",
		Flags:   global.Flags(),
		Version: version,
		Commands: []*cli.Command{
			NewInspectCommand(),
			NewMergeCommand(),
			NewPlanCommand(),
			NewReviewCommand(),
			NewCopyCommand(),
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			// Fail on a broken config before any prompt or load starts.
			_, err := config.NewConfigFromToml(cmd.String(global.ConfigFlag))
			return ctx, err
		},
	}
}

package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-ledmerge/cmd/ledmerge/commands/internal"
	"github.com/goliatone/go-ledmerge/pkg/orchestrator"
)

const syncCountFlag = "sync-page-count"

func NewCopyCommand() *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Aliases:   []string{"cp"},
		Usage:     "copy a profile between locations",
		ArgsUsage: "<src> <dst>",
		Description: `Load src and save it to dst, converting between JSON and YAML by
extension. Either side may be a file, gs://bucket/object or bolt://key.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  syncCountFlag,
				Usage: "set page_num to the number of pages before saving",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cancel := internal.AppContext(ctx, cmd)
			defer cancel()

			if cmd.Args().Len() != 2 {
				return fmt.Errorf("expected <src> <dst>, got %d arguments", cmd.Args().Len())
			}

			app, err := internal.NewApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			src, dst := cmd.Args().Get(0), cmd.Args().Get(1)
			doc, err := app.Store.Load(ctx, src)
			if err != nil {
				return err
			}
			if cmd.Bool(syncCountFlag) {
				if err := orchestrator.SyncPageCount().Transform(ctx, &doc); err != nil {
					return err
				}
			}
			if err := app.Store.Save(ctx, doc, dst); err != nil {
				return err
			}
			app.Logger.WithField("src", src).WithField("dst", dst).Debug("profile copied")
			fmt.Fprintf(app.Out, "Copied %s to %s\n", src, dst)
			return nil
		},
	}
}

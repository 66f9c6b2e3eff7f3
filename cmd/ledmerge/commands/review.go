package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-ledmerge/cmd/ledmerge/commands/internal"
	"github.com/goliatone/go-ledmerge/pkg/review"
	"github.com/goliatone/go-ledmerge/pkg/service"
)

func NewReviewCommand() *cli.Command {
	return &cli.Command{
		Name:        "review",
		Usage:       "compare a merged profile against its base",
		ArgsUsage:   "<base> <merged>",
		Description: "summarize each reviewed slot: frame totals, changes and warnings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  formatFlag,
				Usage: "review output: text or html",
				Value: "text",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cancel := internal.AppContext(ctx, cmd)
			defer cancel()

			if cmd.Args().Len() != 2 {
				return fmt.Errorf("expected <base> <merged>, got %d arguments", cmd.Args().Len())
			}
			if err := checkFormat(cmd.String(formatFlag)); err != nil {
				return err
			}

			app, err := internal.NewApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			basePath, mergedPath := cmd.Args().Get(0), cmd.Args().Get(1)
			docs, err := service.LoadAll(ctx, app.Store, []string{basePath, mergedPath}, 2)
			if err != nil {
				return err
			}

			summary := review.Summarize(docs[basePath], docs[mergedPath], app.ReviewOptions()...)
			if err := printSummary(app.Out, cmd.String(formatFlag), summary); err != nil {
				return err
			}
			if !summary.Valid() {
				return errors.New("review found slots that need attention")
			}
			return nil
		},
	}
}

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-ledmerge/cmd/ledmerge/commands/internal"
	"github.com/goliatone/go-ledmerge/pkg/profile"
	"github.com/goliatone/go-ledmerge/pkg/wizard"
)

const (
	saveFlag    = "save"
	offlineFlag = "offline"
)

func NewPlanCommand() *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "build a merge plan interactively",
		ArgsUsage: "[flags] [base]",
		Description: `Walk through the editable slots of a base profile, pick keep, replace
or combine for each and name the source profiles. The plan is printed, or
written to --save, and can be run with "ledmerge merge --plan".`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    saveFlag,
				Aliases: []string{"s"},
				Usage:   "write the plan to this file (JSON or YAML by extension)",
			},
			&cli.BoolFlag{
				Name:  offlineFlag,
				Usage: "do not load the base and sources while prompting",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cancel := internal.AppContext(ctx, cmd)
			defer cancel()

			app, err := internal.NewApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			options := []wizard.Option{
				wizard.WithSlots(app.Config.Review.Slots...),
				wizard.WithLogger(app.Logger),
			}
			if !cmd.Bool(offlineFlag) {
				options = append(options, wizard.WithStore(app.Store))
			}

			plan, err := wizard.New(wizard.NewSurveyDriver(app.Out), options...).Run(ctx, cmd.Args().First())
			if err != nil {
				return err
			}

			path := cmd.String(saveFlag)
			data, err := plan.Encode(profile.FormatFromLocation(path))
			if err != nil {
				return err
			}
			if path == "" {
				_, err = app.Out.Write(data)
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write plan: %w", err)
			}
			fmt.Fprintf(app.Out, "Plan written to %s\n", path)
			return nil
		},
	}
}

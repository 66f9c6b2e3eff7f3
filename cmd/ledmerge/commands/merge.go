package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-ledmerge/cmd/ledmerge/commands/internal"
	"github.com/goliatone/go-ledmerge/pkg/instruction"
	"github.com/goliatone/go-ledmerge/pkg/orchestrator"
	"github.com/goliatone/go-ledmerge/pkg/review"
)

const (
	planFlag         = "plan"
	baseFlag         = "base"
	outputFlag       = "output"
	keepFlag         = "keep"
	replaceFlag      = "replace"
	combineFlag      = "combine"
	dryRunFlag       = "dry-run"
	reindexFlag      = "reindex"
	strictFlag       = "strict"
	enforceLimitFlag = "enforce-limit"
	formatFlag       = "format"
)

func NewMergeCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "apply keep, replace and combine instructions to a base profile",
		ArgsUsage: "[flags] [base]",
		Description: `Instructions come from a plan file (--plan), from flags, or both; plan
instructions run first. Flag values take the form SLOT=LOCATION, or
SLOT:SOURCE_SLOT=LOCATION to copy a specific slot of the source. Without
--output the result is written next to the base with a timestamped name.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    planFlag,
				Aliases: []string{"p"},
				Usage:   "plan file (JSON or YAML)",
			},
			&cli.StringFlag{
				Name:  baseFlag,
				Usage: "base profile location (overrides the plan)",
			},
			&cli.StringFlag{
				Name:    outputFlag,
				Aliases: []string{"o"},
				Usage:   "output location (overrides the plan)",
			},
			&cli.StringSliceFlag{
				Name:  keepFlag,
				Usage: "keep SLOT unchanged",
			},
			&cli.StringSliceFlag{
				Name:  replaceFlag,
				Usage: "replace the frames of SLOT with those from LOCATION",
			},
			&cli.StringSliceFlag{
				Name:  combineFlag,
				Usage: "append the frames from LOCATION to SLOT",
			},
			&cli.BoolFlag{
				Name:  dryRunFlag,
				Usage: "merge and review without saving",
			},
			&cli.BoolFlag{
				Name:  reindexFlag,
				Usage: "renumber frame_index after combining (overrides merge.reindex_frames)",
			},
			&cli.BoolFlag{
				Name:  strictFlag,
				Usage: "fail when a source has no matching page (overrides merge.strict_sources)",
			},
			&cli.BoolFlag{
				Name:  enforceLimitFlag,
				Usage: "refuse to save when a reviewed slot exceeds review.max_frames",
			},
			&cli.StringFlag{
				Name:  formatFlag,
				Usage: "review output: text, html or none",
				Value: "text",
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

			if cmd.IsSet(reindexFlag) {
				app.Config.Merge.ReindexFrames = cmd.Bool(reindexFlag)
			}
			if cmd.IsSet(strictFlag) {
				app.Config.Merge.StrictSources = cmd.Bool(strictFlag)
			}

			if err := checkFormat(cmd.String(formatFlag)); err != nil {
				return err
			}
			plan, err := planFromCommand(cmd)
			if err != nil {
				return err
			}
			if err := plan.Validate(); err != nil {
				return err
			}

			options := []orchestrator.Option{
				orchestrator.WithStore(app.Store),
				orchestrator.WithLogger(app.Logger),
				orchestrator.WithEngineOptions(app.EngineOptions()...),
				orchestrator.WithReviewOptions(app.ReviewOptions()...),
				orchestrator.WithOutputNamer(func(base string) string {
					return app.Config.OutputName(base, time.Now())
				}),
			}
			if cmd.Bool(enforceLimitFlag) {
				options = append(options, orchestrator.WithTransformers(
					orchestrator.FrameLimit(app.Config.Review.MaxFrames, app.Config.Review.Slots...),
				))
			}

			result, err := orchestrator.New(options...).Run(ctx, orchestrator.Request{
				Plan:   plan,
				DryRun: cmd.Bool(dryRunFlag),
			})
			if err != nil {
				return err
			}

			if err := printSummary(app.Out, cmd.String(formatFlag), result.Summary); err != nil {
				return err
			}
			if result.Saved {
				fmt.Fprintf(app.Out, "Merged profile written to %s\n", result.Output)
			} else {
				fmt.Fprintf(app.Out, "Dry run, would write %s\n", result.Output)
			}
			return nil
		},
	}
}

// planFromCommand merges the plan file with base, output and mapping flags.
func planFromCommand(cmd *cli.Command) (instruction.Plan, error) {
	var plan instruction.Plan
	if path := cmd.String(planFlag); path != "" {
		loaded, err := instruction.LoadPlan(path)
		if err != nil {
			return instruction.Plan{}, err
		}
		plan = loaded
	}

	switch {
	case cmd.IsSet(baseFlag):
		plan.Base = cmd.String(baseFlag)
	case cmd.Args().Present():
		plan.Base = cmd.Args().First()
	}
	if cmd.IsSet(outputFlag) {
		plan.Output = cmd.String(outputFlag)
	}
	if plan.Base == "" {
		return instruction.Plan{}, errors.New("a base profile is required (argument, --base or plan)")
	}

	extra, err := mappingsFromFlags(
		cmd.StringSlice(keepFlag),
		cmd.StringSlice(replaceFlag),
		cmd.StringSlice(combineFlag),
	)
	if err != nil {
		return instruction.Plan{}, err
	}
	plan.Instructions = append(plan.Instructions, extra...)
	if len(plan.Instructions) == 0 {
		return instruction.Plan{}, errors.New("no instructions given")
	}
	return plan, nil
}

func checkFormat(format string) error {
	switch format {
	case "", "text", "html", "none":
		return nil
	default:
		return fmt.Errorf("unknown review format %q", format)
	}
}

func printSummary(w io.Writer, format string, summary review.Summary) error {
	if err := checkFormat(format); err != nil || format == "none" {
		return err
	}
	renderer, err := review.NewRenderer()
	if err != nil {
		return err
	}
	switch format {
	case "", "text":
		_, err = renderer.Text(summary, w)
	case "html":
		_, err = renderer.HTML(summary, w)
	}
	return err
}

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-ledmerge/cmd/ledmerge/commands/internal"
	"github.com/goliatone/go-ledmerge/pkg/profile"
	"github.com/goliatone/go-ledmerge/pkg/service"
)

const (
	jsonFlag    = "json"
	libraryFlag = "library"
	jobsFlag    = "jobs"
)

func NewInspectCommand() *cli.Command {
	return &cli.Command{
		Name:        "inspect",
		Aliases:     []string{"ls"},
		Usage:       "list the pages of one or more profiles",
		ArgsUsage:   "[flags] <location>...",
		Description: "load every location concurrently and list its slots and frame counts",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  jsonFlag,
				Usage: "output in JSON format",
			},
			&cli.BoolFlag{
				Name:  libraryFlag,
				Usage: "inspect every document in the bolt library",
			},
			&cli.IntFlag{
				Name:  jobsFlag,
				Usage: "maximum concurrent loads",
				Value: service.DefaultLoadLimit,
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

			locations := cmd.Args().Slice()
			if cmd.Bool(libraryFlag) {
				keys, err := app.Store.Library(ctx)
				if err != nil {
					return err
				}
				locations = append(locations, keys...)
			}
			if len(locations) == 0 {
				return errors.New("no locations given")
			}

			docs, err := service.LoadAll(ctx, app.Store, locations, int(cmd.Int(jobsFlag)))
			if err != nil {
				return err
			}

			infos := make([]profileInfo, 0, len(locations))
			seen := make(map[string]struct{}, len(locations))
			for _, location := range locations {
				if _, ok := seen[location]; ok {
					continue
				}
				seen[location] = struct{}{}
				infos = append(infos, describe(location, docs[location]))
			}

			if cmd.Bool(jsonFlag) {
				enc := json.NewEncoder(app.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			return writeTable(app.Out, infos)
		},
	}
}

type pageInfo struct {
	Slot     uint32  `json:"slot"`
	Valid    uint32  `json:"valid"`
	Frames   int     `json:"frames"`
	Declared *uint32 `json:"declared,omitempty"`
	Comment  *string `json:"comment,omitempty"`
}

type profileInfo struct {
	Location  string     `json:"location"`
	PageCount uint32     `json:"pageCount"`
	Pages     []pageInfo `json:"pages"`
}

func describe(location string, doc profile.Document) profileInfo {
	info := profileInfo{
		Location:  location,
		PageCount: doc.PageCount,
		Pages:     make([]pageInfo, 0, len(doc.Pages)),
	}
	for _, page := range doc.Pages {
		info.Pages = append(info.Pages, pageInfo{
			Slot:     page.PageIndex,
			Valid:    page.Valid,
			Frames:   page.Frames.Len(),
			Declared: page.Frames.FrameCount,
			Comment:  page.Comment,
		})
	}
	return info
}

func writeTable(out io.Writer, infos []profileInfo) error {
	w := tabwriter.NewWriter(out, 8, 8, 4, ' ', 0)
	fmt.Fprintln(w, "LOCATION\tSLOT\tVALID\tFRAMES\tDECLARED\t")
	for _, info := range infos {
		if len(info.Pages) == 0 {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t\n", info.Location)
			continue
		}
		for _, page := range info.Pages {
			declared := "-"
			if page.Declared != nil {
				declared = fmt.Sprintf("%d", *page.Declared)
			}
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t\n", info.Location, page.Slot, page.Valid, page.Frames, declared)
		}
	}
	return w.Flush()
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-ledmerge/cmd/ledmerge/commands"
)

var version = "dev"

func main() {
	app := commands.Root(version)

	ctx, cancel := context.WithCancel(context.Background())
	if err := app.Run(ctx, os.Args); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "ledmerge: %v\n", err)
		os.Exit(1)
	}
	cancel()
}

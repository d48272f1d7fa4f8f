package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// main wires the padcraft demo harness: a thin external collaborator that
// exercises the engine package end to end, never imported by it.
func main() {
	app := &cli.Command{
		Name:  "padcraft",
		Usage: "Demo harness for the pad-grid fingering and layout engine",
		Commands: []*cli.Command{
			solveCommand,
			evolveCommand,
			annealCommand,
			analyseCommand,
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/rbscholtus/padcraft/internal/engine"
	"github.com/urfave/cli/v3"
)

// Data directories used by the CLI demo harness (relative to repository root).
const (
	testdataDir = "testdata/"
)

// appFlagsMap centralizes flag definitions so each command picks only the
// flags it needs, mirroring the teacher's single-source-of-truth flag map.
var appFlagsMap = map[string]cli.Flag{
	"performance": &cli.StringFlag{
		Name:     "performance",
		Aliases:  []string{"p"},
		Usage:    "performance JSON fixture to solve",
		Required: true,
	},
	"layout": &cli.StringFlag{
		Name:    "layout",
		Aliases: []string{"l"},
		Usage:   "layout JSON fixture (omit for grid-map-only, no pinned voices)",
	},
	"instrument": &cli.StringFlag{
		Name:    "instrument",
		Aliases: []string{"i"},
		Usage:   "instrument config JSON fixture (omit for the 8x8 default)",
	},
	"manual": &cli.StringFlag{
		Name:    "manual",
		Aliases: []string{"m"},
		Usage:   "JSON fixture pinning event indices to a hand and finger",
	},
	"beam-width": &cli.IntFlag{
		Name:    "beam-width",
		Aliases: []string{"bw"},
		Usage:   "beam solver width",
		Value:   8,
		Action: func(ctx context.Context, c *cli.Command, value int) error {
			if value < 1 {
				return fmt.Errorf("--beam-width must be at least 1 (got %d)", value)
			}
			return nil
		},
	},
	"stiffness": &cli.Float64Flag{
		Name:    "stiffness",
		Usage:   "attractor spring constant in [0,1]",
		Value:   0.3,
		Action: func(ctx context.Context, c *cli.Command, value float64) error {
			if value < 0 || value > 1 {
				return fmt.Errorf("--stiffness must be within [0,1] (got %v)", value)
			}
			return nil
		},
	},
	"population": &cli.UintFlag{
		Name:  "population",
		Usage: "genetic solver population size",
		Value: uint(engine.DefaultPopulation),
	},
	"generations": &cli.UintFlag{
		Name:    "generations",
		Aliases: []string{"g"},
		Usage:   "genetic solver generation count",
		Value:   uint(engine.DefaultGenerations),
	},
	"mutation-rate": &cli.Float64Flag{
		Name:  "mutation-rate",
		Usage: "genetic solver per-gene mutation rate",
		Value: engine.DefaultMutationRate,
	},
	"tournament-size": &cli.UintFlag{
		Name:  "tournament-size",
		Usage: "genetic solver tournament selection size",
		Value: uint(engine.DefaultTournamentSize),
	},
	"elitism": &cli.UintFlag{
		Name:  "elitism",
		Usage: "genetic solver hall-of-fame size",
		Value: uint(engine.DefaultElitism),
	},
	"seed": &cli.Int64Flag{
		Name:    "seed",
		Aliases: []string{"s"},
		Usage:   "random seed for reproducible genetic/annealing runs",
		Value:   1,
	},
	"initial-temp": &cli.Float64Flag{
		Name:  "initial-temp",
		Usage: "annealing initial temperature",
		Value: engine.DefaultInitialTemp,
	},
	"cooling-rate": &cli.Float64Flag{
		Name:  "cooling-rate",
		Usage: "annealing per-iteration multiplicative cooling rate",
		Value: engine.DefaultCoolingRate,
	},
	"iterations": &cli.UintFlag{
		Name:    "iterations",
		Aliases: []string{"it"},
		Usage:   "annealing iteration count",
		Value:   uint(engine.DefaultIterations),
	},
	"fast-beam-width": &cli.IntFlag{
		Name:  "fast-beam-width",
		Usage: "beam width used as the annealing cost oracle",
		Value: engine.DefaultFastBeamWidth,
	},
	"final-beam-width": &cli.IntFlag{
		Name:  "final-beam-width",
		Usage: "beam width used to render the annealing result",
		Value: engine.DefaultFinalBeamWidth,
	},
	"rows": &cli.IntFlag{
		Name:    "rows",
		Aliases: []string{"r"},
		Usage:   "number of debug-event rows to print (0 = all)",
		Value:   20,
	},
	"focus": &cli.IntFlag{
		Name:    "focus",
		Aliases: []string{"f"},
		Usage:   "moment index to build an onion-skin view around (-1 = skip)",
		Value:   -1,
	},
}

// flagsSlice returns a slice of cli.Flag pointers for the given keys from appFlagsMap.
func flagsSlice(keys ...string) []cli.Flag {
	flags := make([]cli.Flag, 0, len(keys))
	for _, k := range keys {
		if f, ok := appFlagsMap[k]; ok {
			flags = append(flags, f)
		}
	}
	return flags
}

package main

import (
	"context"
	"os"

	"github.com/rbscholtus/padcraft/internal/engine"
	"github.com/urfave/cli/v3"
)

// annealCommand runs the Annealing solver and prints a sampled iteration
// trace alongside the final fingering result.
var annealCommand = &cli.Command{
	Name:  "anneal",
	Usage: "Search for a better layout using Simulated Annealing",
	Flags: flagsSlice("performance", "layout", "instrument", "manual", "beam-width", "stiffness",
		"initial-temp", "cooling-rate", "iterations", "fast-beam-width", "final-beam-width", "seed", "rows"),
	Action: annealAction,
}

func annealAction(ctx context.Context, c *cli.Command) error {
	perf, layout, instrument, manual, err := loadSolveFixtures(c)
	if err != nil {
		return err
	}

	cfg := engine.DefaultEngineConfig()
	cfg.BeamWidth = int(c.Int("beam-width"))
	cfg.Stiffness = c.Float64("stiffness")

	solver := engine.NewAnnealingSolver(cfg)
	solver.InitialTemp = c.Float64("initial-temp")
	solver.CoolingRate = c.Float64("cooling-rate")
	solver.Iterations = int(c.Uint("iterations"))
	solver.FastBeamWidth = int(c.Int("fast-beam-width"))
	solver.FinalBeamWidth = int(c.Int("final-beam-width"))
	solver.Seed = c.Int64("seed")

	res, err := solver.Solve(perf, instrument, layout, manual)
	if err != nil {
		return err
	}

	RenderSummary(os.Stdout, solver.Name(), res)
	RenderAnnealingTrace(os.Stdout, res.AnnealingTrace, max(1, len(res.AnnealingTrace)/20))
	RenderDebugEvents(os.Stdout, res.DebugEvents, int(c.Int("rows")))
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rbscholtus/padcraft/internal/engine"
	"github.com/urfave/cli/v3"
)

// analyseCommand solves a performance with the Beam solver, then runs the
// event analyzer over the resulting debug events.
var analyseCommand = &cli.Command{
	Name:    "analyse",
	Aliases: []string{"a"},
	Usage:   "Solve a performance and report its moment/transition analysis",
	Flags:   flagsSlice("performance", "layout", "instrument", "manual", "beam-width", "stiffness", "focus"),
	Action:  analyseAction,
}

func analyseAction(ctx context.Context, c *cli.Command) error {
	perf, layout, instrument, manual, err := loadSolveFixtures(c)
	if err != nil {
		return err
	}

	cfg := engine.DefaultEngineConfig()
	cfg.BeamWidth = int(c.Int("beam-width"))
	cfg.Stiffness = c.Float64("stiffness")

	res := engine.NewBeamSolver(cfg).Solve(perf, instrument, layout, manual)
	analysis := engine.AnalyzeEvents(res.DebugEvents)

	fmt.Fprintf(os.Stdout, "%d moments, %d transitions\n", len(analysis.Moments), len(analysis.Transitions))
	RenderAnalysis(os.Stdout, analysis)

	if focus := int(c.Int("focus")); focus >= 0 {
		RenderOnionSkin(os.Stdout, analysis.FocusOnionSkin(res.DebugEvents, focus))
	}
	return nil
}

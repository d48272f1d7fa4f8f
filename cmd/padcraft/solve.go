package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rbscholtus/padcraft/internal/engine"
	"github.com/urfave/cli/v3"
)

// solveCommand runs the Beam solver against a performance/layout/instrument
// fixture set and prints the summary and per-note debug events.
var solveCommand = &cli.Command{
	Name:   "solve",
	Usage:  "Resolve a performance against a layout using the Beam solver",
	Flags:  flagsSlice("performance", "layout", "instrument", "manual", "beam-width", "stiffness", "rows"),
	Action: solveAction,
}

func solveAction(ctx context.Context, c *cli.Command) error {
	perf, layout, instrument, manual, err := loadSolveFixtures(c)
	if err != nil {
		return err
	}

	cfg := engine.DefaultEngineConfig()
	cfg.BeamWidth = int(c.Int("beam-width"))
	cfg.Stiffness = c.Float64("stiffness")

	solver := engine.NewBeamSolver(cfg)
	res := solver.SolveWithProgress(perf, instrument, layout, manual, os.Stdout)

	RenderSummary(os.Stdout, solver.Name(), res)
	RenderDebugEvents(os.Stdout, res.DebugEvents, int(c.Int("rows")))
	RenderFingerUsage(os.Stdout, res.FingerUsageStats)

	stats := solver.Stats()
	fmt.Fprintf(os.Stdout, "grip cache: hits=%d misses=%d\n", stats.Hits, stats.Misses)
	return nil
}

// loadSolveFixtures loads the performance/layout/instrument/manual fixture
// set shared by solve, evolve, anneal and analyse.
func loadSolveFixtures(c *cli.Command) (engine.Performance, *engine.Layout, engine.InstrumentConfig, map[int]engine.ManualAssignment, error) {
	perf, err := loadPerformance(c.String("performance"))
	if err != nil {
		return engine.Performance{}, nil, engine.InstrumentConfig{}, nil, err
	}
	layout, err := loadLayout(c.String("layout"))
	if err != nil {
		return engine.Performance{}, nil, engine.InstrumentConfig{}, nil, err
	}
	instrument, err := loadInstrument(c.String("instrument"))
	if err != nil {
		return engine.Performance{}, nil, engine.InstrumentConfig{}, nil, err
	}
	manual, err := loadManualAssignments(c.String("manual"))
	if err != nil {
		return engine.Performance{}, nil, engine.InstrumentConfig{}, nil, err
	}
	return perf, layout, instrument, manual, nil
}

package main

import (
	"context"
	"os"

	"github.com/rbscholtus/padcraft/internal/engine"
	"github.com/urfave/cli/v3"
)

// evolveCommand runs the Genetic solver and prints the generation trace
// alongside the final fingering result.
var evolveCommand = &cli.Command{
	Name:  "evolve",
	Usage: "Resolve a performance using the Genetic solver",
	Flags: flagsSlice("performance", "layout", "instrument", "manual", "beam-width", "stiffness",
		"population", "generations", "mutation-rate", "tournament-size", "elitism", "seed", "rows"),
	Action: evolveAction,
}

func evolveAction(ctx context.Context, c *cli.Command) error {
	perf, layout, instrument, manual, err := loadSolveFixtures(c)
	if err != nil {
		return err
	}

	cfg := engine.DefaultEngineConfig()
	cfg.BeamWidth = int(c.Int("beam-width"))
	cfg.Stiffness = c.Float64("stiffness")

	solver := engine.NewGeneticSolver(cfg)
	solver.Population = c.Uint("population")
	solver.Generations = c.Uint("generations")
	solver.MutationRate = c.Float64("mutation-rate")
	solver.TournamentSize = c.Uint("tournament-size")
	solver.Elitism = c.Uint("elitism")
	solver.Seed = uint64(c.Int64("seed"))

	res, err := solver.Solve(perf, instrument, layout, manual)
	if err != nil {
		return err
	}

	RenderSummary(os.Stdout, solver.Name(), res)
	RenderEvolutionLog(os.Stdout, res.EvolutionLog)
	RenderDebugEvents(os.Stdout, res.DebugEvents, int(c.Int("rows")))
	return nil
}

package engine

import (
	"fmt"
	"math"
	"math/rand"
)

// Annealing hyperparameters (spec.md §4.4.3).
const (
	DefaultInitialTemp    = 500.0
	DefaultCoolingRate    = 0.99
	DefaultIterations     = 1000
	DefaultFastBeamWidth  = 2
	DefaultFinalBeamWidth = 50
)

// AnnealingSolver searches the space of layouts (which voice sits on which
// pad, and with which forced finger) by simulated annealing, using a cheap
// Beam solve as the cost oracle during the search and a wide final Beam
// solve to produce the reported result (spec.md §4.4.3). Contrast with
// GeneticSolver, which searches fingering choices for a fixed layout.
type AnnealingSolver struct {
	cfg            EngineConfig
	InitialTemp    float64
	CoolingRate    float64
	Iterations     int
	FastBeamWidth  int
	FinalBeamWidth int
	Seed           int64
}

// NewAnnealingSolver returns an Annealing solver with the documented defaults.
func NewAnnealingSolver(cfg EngineConfig) *AnnealingSolver {
	return &AnnealingSolver{
		cfg:            cfg,
		InitialTemp:    DefaultInitialTemp,
		CoolingRate:    DefaultCoolingRate,
		Iterations:     DefaultIterations,
		FastBeamWidth:  DefaultFastBeamWidth,
		FinalBeamWidth: DefaultFinalBeamWidth,
		Seed:           1,
	}
}

func (s *AnnealingSolver) Name() string        { return "Simulated Annealing" }
func (s *AnnealingSolver) Type() SolverType    { return AnnealingSolverType }
func (s *AnnealingSolver) IsSynchronous() bool { return false }

// evaluateLayout scores a candidate layout with a narrow Beam solve,
// combining its per-note average cost with hard penalties for unplayable
// and hard notes so the search surface stays smooth even once average
// cost alone would plateau. It also returns the beam result's average
// cost-component breakdown, for AnnealingSnapshot's trace.
func (s *AnnealingSolver) evaluateLayout(perf Performance, instrument InstrumentConfig, layout *Layout, manual map[int]ManualAssignment, beamWidth int) (float64, CostBreakdown) {
	cfg := s.cfg
	cfg.BeamWidth = beamWidth
	res := NewBeamSolver(cfg).Solve(perf, instrument, layout, manual)
	cost := res.BestNodeAverageCost
	cost += float64(res.UnplayableCount) * 1000
	cost += float64(res.HardCount) * 10
	return cost, res.AverageMetrics
}

// componentShares normalizes a cost breakdown's buckets to fractions of its
// Total, for AnnealingSnapshot.ComponentShares; an infinite or zero total
// (e.g. an all-unplayable candidate) has no meaningful share split.
func componentShares(b CostBreakdown) CostBreakdown {
	if b.Total == 0 || costIsInfinite(b.Total) {
		return CostBreakdown{}
	}
	return CostBreakdown{
		Movement:  b.Movement / b.Total,
		Stretch:   b.Stretch / b.Total,
		Drift:     b.Drift / b.Total,
		Bounce:    b.Bounce / b.Total,
		Fatigue:   b.Fatigue / b.Total,
		Crossover: b.Crossover / b.Total,
		Total:     1,
	}
}

// padMaskIndex flattens a pad to an index into the dense 64-slot pinned
// mask, assuming the standard 8x8 grid (spec.md §3's engine constants).
func padMaskIndex(p Pad) int { return int(p.Row)*8 + int(p.Col) }

// buildPinnedMask marks every pad with a user FingerConstraint as
// swap/move-ineligible, precomputed once per search so mutateLayout never
// rescans FingerConstraints (mirrors BLS.validPairs in the teacher).
func buildPinnedMask(layout *Layout) [64]bool {
	var mask [64]bool
	for p := range layout.FingerConstraints {
		if i := padMaskIndex(p); i >= 0 && i < 64 {
			mask[i] = true
		}
	}
	return mask
}

// mutateLayout applies either a swap (exchange the voices on two occupied,
// unpinned pads) or a move (relocate one unpinned voice to an empty pad).
// Per the resolved Open Question on move-mutation (DESIGN.md), a move
// never carries the FingerConstraint of either the source or the
// destination pad forward: Layout.Clear already drops the source's, and
// Set never copies one in, so a relocated note always starts unconstrained
// at its new pad. swap carries both pads' constraints across unchanged,
// since it's a role exchange rather than a relocation.
func mutateLayout(layout *Layout, instrument InstrumentConfig, pinned [64]bool, rng *rand.Rand) {
	var occupied []Pad
	for p := range layout.Cells {
		if i := padMaskIndex(p); i < 0 || i >= 64 || !pinned[i] {
			occupied = append(occupied, p)
		}
	}
	if len(occupied) == 0 {
		return
	}

	if len(occupied) >= 2 && rng.Float64() < 0.5 {
		i := rng.Intn(len(occupied))
		j := rng.Intn(len(occupied))
		for j == i {
			j = rng.Intn(len(occupied))
		}
		pa, pb := occupied[i], occupied[j]
		va, vb := layout.Cells[pa], layout.Cells[pb]
		layout.Set(pa, vb)
		layout.Set(pb, va)
		return
	}

	var empty []Pad
	for r := 0; r < instrument.Rows; r++ {
		for c := 0; c < instrument.Cols; c++ {
			p := Pad{Row: uint8(r), Col: uint8(c)}
			if _, ok := layout.Cells[p]; !ok {
				empty = append(empty, p)
			}
		}
	}
	if len(empty) == 0 {
		return
	}
	src := occupied[rng.Intn(len(occupied))]
	dst := empty[rng.Intn(len(empty))]
	v := layout.Cells[src]
	layout.Clear(src)
	layout.Set(dst, v)
}

// getBestMapping runs the Metropolis search loop and returns the
// best-seen layout together with its iteration trace.
func (s *AnnealingSolver) getBestMapping(perf Performance, instrument InstrumentConfig, layout *Layout, manual map[int]ManualAssignment) (*Layout, []AnnealingSnapshot) {
	rng := rand.New(rand.NewSource(s.Seed))
	pinned := buildPinnedMask(layout)

	current := layout.Clone()
	currentCost, currentBreakdown := s.evaluateLayout(perf, instrument, current, manual, s.FastBeamWidth)
	best := current.Clone()
	bestCost := currentCost

	temp := s.InitialTemp
	trace := make([]AnnealingSnapshot, 0, s.Iterations)

	for it := 0; it < s.Iterations; it++ {
		candidate := current.Clone()
		mutateLayout(candidate, instrument, pinned, rng)
		candidateCost, candidateBreakdown := s.evaluateLayout(perf, instrument, candidate, manual, s.FastBeamWidth)

		delta := candidateCost - currentCost
		var prob float64
		accepted := false
		switch {
		case delta <= 0:
			prob, accepted = 1, true
		default:
			prob = math.Exp(-delta / math.Max(temp, 1e-9))
			accepted = rng.Float64() < prob
		}

		if accepted {
			current = candidate
			currentCost = candidateCost
			currentBreakdown = candidateBreakdown
			if currentCost < bestCost {
				best = current.Clone()
				bestCost = currentCost
			}
		}

		trace = append(trace, AnnealingSnapshot{
			Iteration:             it,
			Temperature:           temp,
			CurrentCost:           currentCost,
			BestCost:              bestCost,
			Accepted:              accepted,
			DeltaCost:             delta,
			AcceptanceProbability: prob,
			ComponentSums:         currentBreakdown,
			ComponentShares:       componentShares(currentBreakdown),
		})

		temp *= s.CoolingRate
	}

	return best, trace
}

// AnnealingStats summarizes a search trace, modeled on keycraft.ScorerStats.
type AnnealingStats struct {
	TotalIterations int
	AcceptedCount   int
	AcceptRate      float64
}

// AnnealingStatsFrom reduces a trace to summary counters.
func AnnealingStatsFrom(trace []AnnealingSnapshot) AnnealingStats {
	stats := AnnealingStats{TotalIterations: len(trace)}
	for _, snap := range trace {
		if snap.Accepted {
			stats.AcceptedCount++
		}
	}
	if stats.TotalIterations > 0 {
		stats.AcceptRate = float64(stats.AcceptedCount) / float64(stats.TotalIterations)
	}
	return stats
}

// Solve searches for a better layout, then produces the reported
// SolverResult from a wide final Beam solve against it.
//
// Precondition: layout must carry a non-empty initial mapping (spec.md
// §4.4.3) — Annealing searches the space of placements of voices already
// on the grid, it doesn't invent one. A nil or empty layout is a
// caller-visible fatal error (spec.md §4.6), not a per-note infeasibility,
// so it's reported the same way a malformed fixture would be.
func (s *AnnealingSolver) Solve(perf Performance, instrument InstrumentConfig, layout *Layout, manual map[int]ManualAssignment) (*SolverResult, error) {
	if layout == nil || len(layout.Cells) == 0 {
		return nil, fmt.Errorf("annealing: initial mapping must be non-empty")
	}

	best, trace := s.getBestMapping(perf, instrument, layout, manual)

	finalCfg := s.cfg
	finalCfg.BeamWidth = s.FinalBeamWidth
	result := NewBeamSolver(finalCfg).Solve(perf, instrument, best, manual)
	result.AnnealingTrace = trace
	return result, nil
}

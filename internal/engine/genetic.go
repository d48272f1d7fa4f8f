package engine

import (
	"math"
	"math/rand"
	"runtime"
	"sort"

	"github.com/MaxHalford/eaopt"
	"golang.org/x/sync/errgroup"
)

// Genetic solver defaults (spec.md §4.4.2).
const (
	DefaultPopulation     = 50
	DefaultGenerations    = 100
	DefaultMutationRate   = 0.05
	DefaultTournamentSize = 2
	DefaultElitism        = 2
)

// sideGrip is one hand's contribution to a geneticOption.
type sideGrip struct {
	grip         GripResult
	eventIndices []int
	pads         []Pad
}

// geneticOption is one fully-enumerated, manual-constraint-respecting way
// to resolve a single moment group; at least one of left/right is set.
type geneticOption struct {
	left, right *sideGrip
}

// GeneticSolver evolves a population of full-performance fingering
// chromosomes with eaopt's default genetic-algorithm model: tournament
// selection, crossover and mutation (spec.md §4.4.2). Contrast with
// AnnealingSolver, which runs its own Metropolis loop without eaopt.
type GeneticSolver struct {
	cfg            EngineConfig
	Population     uint
	Generations    uint
	MutationRate   float64
	TournamentSize uint
	Elitism        uint
	Seed           uint64
}

// NewGeneticSolver returns a Genetic solver with the documented defaults.
func NewGeneticSolver(cfg EngineConfig) *GeneticSolver {
	return &GeneticSolver{
		cfg:            cfg,
		Population:     DefaultPopulation,
		Generations:    DefaultGenerations,
		MutationRate:   DefaultMutationRate,
		TournamentSize: DefaultTournamentSize,
		Elitism:        DefaultElitism,
		Seed:           1,
	}
}

func (s *GeneticSolver) Name() string        { return "Genetic Algorithm" }
func (s *GeneticSolver) Type() SolverType    { return GeneticSolverType }
func (s *GeneticSolver) IsSynchronous() bool { return false }

// buildGroupOptions enumerates every feasible single-hand and split-hand
// resolution of a group, independent of the poses that precede it (pose
// only affects cost, not feasibility); manual assignments are honored the
// same way expandNode honors them in the Beam solver. Groups are independent
// of one another, so enumeration fans out across a bounded worker pool
// (mirrors keycraft.Scorer.LoadAnalysers's bounded-semaphore pattern,
// expressed here with errgroup.Group.SetLimit instead of a raw channel).
func buildGroupOptions(groups []momentGroup, manual map[int]ManualAssignment, cache *gripCache) [][]geneticOption {
	out := make([][]geneticOption, len(groups))

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for gi, group := range groups {
		gi, group := gi, group
		eg.Go(func() error {
			out[gi] = buildOneGroupOptions(group, manual, cache)
			return nil
		})
	}
	_ = eg.Wait() // buildOneGroupOptions never errors; kept for the propagation idiom

	return out
}

func buildOneGroupOptions(group momentGroup, manual map[int]ManualAssignment, cache *gripCache) []geneticOption {
	manualHands := map[HandSide]bool{}
	for _, idx := range group.eventIndices {
		if m, ok := manual[idx]; ok {
			manualHands[m.Hand] = true
		}
	}

	var options []geneticOption

	if len(manualHands) <= 1 {
		for _, hand := range [...]HandSide{Left, Right} {
			if len(manualHands) > 0 && !manualHands[hand] {
				continue
			}
			for _, g := range cache.grips(group.pads, hand) {
				if len(manualHands) > 0 && !gripSatisfiesManual(g, group, hand, manual) {
					continue
				}
				side := &sideGrip{grip: g, eventIndices: group.eventIndices, pads: group.pads}
				if hand == Left {
					options = append(options, geneticOption{left: side})
				} else {
					options = append(options, geneticOption{right: side})
				}
			}
		}
	}

	if len(group.pads) >= 2 && (len(manualHands) != 1) {
		options = append(options, splitOptions(group, manual, manualHands, cache)...)
	}

	if len(options) == 0 {
		options = []geneticOption{emergencyOption(group)}
	}
	return options
}

func splitOptions(group momentGroup, manual map[int]ManualAssignment, manualHands map[HandSide]bool, cache *gripCache) []geneticOption {
	type item struct {
		idx int
		pad Pad
	}
	items := make([]item, len(group.eventIndices))
	for i := range group.eventIndices {
		items[i] = item{idx: group.eventIndices[i], pad: group.pads[i]}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].pad.Col < items[j].pad.Col })

	var leftItems, rightItems []item
	if len(manualHands) == 2 {
		for _, it := range items {
			if manual[it.idx].Hand == Left {
				leftItems = append(leftItems, it)
			} else {
				rightItems = append(rightItems, it)
			}
		}
	} else {
		mid := len(items) / 2
		leftItems, rightItems = items[:mid], items[mid:]
	}
	if len(leftItems) == 0 || len(rightItems) == 0 {
		return nil
	}

	toPads := func(xs []item) []Pad {
		out := make([]Pad, len(xs))
		for i, x := range xs {
			out[i] = x.pad
		}
		return out
	}
	toIdx := func(xs []item) []int {
		out := make([]int, len(xs))
		for i, x := range xs {
			out[i] = x.idx
		}
		return out
	}
	leftPads, rightPads := toPads(leftItems), toPads(rightItems)
	leftIdx, rightIdx := toIdx(leftItems), toIdx(rightItems)

	var options []geneticOption
	for _, lg := range cache.grips(leftPads, Left) {
		if manualHands[Left] && !gripSatisfiesManualItemsIdx(lg, leftIdx, leftPads, manual) {
			continue
		}
		for _, rg := range cache.grips(rightPads, Right) {
			if manualHands[Right] && !gripSatisfiesManualItemsIdx(rg, rightIdx, rightPads, manual) {
				continue
			}
			options = append(options, geneticOption{
				left:  &sideGrip{grip: lg, eventIndices: leftIdx, pads: leftPads},
				right: &sideGrip{grip: rg, eventIndices: rightIdx, pads: rightPads},
			})
		}
	}
	return options
}

func gripSatisfiesManualItemsIdx(grip GripResult, eventIndices []int, pads []Pad, manual map[int]ManualAssignment) bool {
	padFinger := fingerAt(grip)
	for i, idx := range eventIndices {
		m, ok := manual[idx]
		if !ok {
			continue
		}
		f, found := padFinger[pads[i]]
		if !found || f != m.Finger {
			return false
		}
	}
	return true
}

// emergencyOption mirrors BeamSolver.emergencyExpand for groups whose
// per-hand pad count exceeds the grip generator's 5-finger limit.
func emergencyOption(group momentGroup) geneticOption {
	var leftPads, rightPads []Pad
	var leftIdx, rightIdx []int
	for i, idx := range group.eventIndices {
		pad := group.pads[i]
		hand := IfThen(absFloat(float64(pad.Col)-2) <= absFloat(float64(pad.Col)-5), Left, Right)
		if hand == Left {
			leftPads, leftIdx = append(leftPads, pad), append(leftIdx, idx)
		} else {
			rightPads, rightIdx = append(rightPads, pad), append(rightIdx, idx)
		}
	}
	opt := geneticOption{}
	if len(leftPads) > 0 {
		pose := NewPose(map[Finger]Point{Index: {X: meanCol(leftPads), Y: meanRow(leftPads)}})
		opt.left = &sideGrip{grip: GripResult{Pose: pose, Tier: Fallback, IsFallback: true}, eventIndices: leftIdx, pads: leftPads}
	}
	if len(rightPads) > 0 {
		pose := NewPose(map[Finger]Point{Index: {X: meanCol(rightPads), Y: meanRow(rightPads)}})
		opt.right = &sideGrip{grip: GripResult{Pose: pose, Tier: Fallback, IsFallback: true}, eventIndices: rightIdx, pads: rightPads}
	}
	return opt
}

// chromosome is one candidate full-performance fingering, encoded as a
// per-group option index (eaopt.Genome implementation).
type chromosome struct {
	groups  []momentGroup
	options [][]geneticOption
	genes   []int
	cfg     EngineConfig
	fixed   []bool // groups whose only option is forced (manual or singleton)
	pitches []int  // event index -> pitch, for StickinessLedger lookups
}

func newChromosome(groups []momentGroup, options [][]geneticOption, cfg EngineConfig, pitches []int) *chromosome {
	genes := make([]int, len(groups))
	fixed := make([]bool, len(groups))
	for i, opts := range options {
		if len(opts) <= 1 {
			fixed[i] = true
		}
	}
	return &chromosome{groups: groups, options: options, genes: genes, cfg: cfg, fixed: fixed, pitches: pitches}
}

// genePenaltyFallback and geneTransitionInfPenalty are spec.md §4.4.2's
// Fitness constants: "+100 if fallback" per gene, "+1000" per infeasible
// consecutive-same-hand transition. Distinct from the Beam solver's
// FallbackGripPenalty/costIsInfinite-collapse, which the Beam solver's own
// node-pruning search uses instead (spec.md §4.4.1's ∞-prunes-the-branch
// rule doesn't apply here: a GA chromosome can't prune a branch, so an
// infeasible transition is scored as a large finite penalty instead).
const (
	genePenaltyFallback      = 100.0
	geneTransitionInfPenalty = 1000.0
)

// handCursor tracks one hand's most recently used pose and timestamp, so
// transition cost is charged only between consecutive same-hand genes
// (spec.md §4.4.2), not between every group and every hand regardless of
// whether that hand participated in the prior group.
type handCursor struct {
	pose    Pose
	time    float64
	touched bool
}

// evaluateSequence walks the chromosome's chosen options in timestamp
// order, pricing each gene as grip-stretch + attractor (+100 if fallback)
// plus, for each hand, the transition cost from its own last use (+1000 if
// that transition is infeasible), plus StickinessLedger/FatigueState
// charges for the fingers the gene places, and returns the total cost plus
// resolved assignments (spec.md §4.4.2's Fitness formula, extended per
// spec.md §9). A fresh ledger and pair of fatigue trackers are built per
// call: unlike the Beam solver's per-branch forking, a chromosome walks a
// single linear sequence, so there is nothing to fork from.
func (c *chromosome) evaluateSequence() (float64, []beamAssignment) {
	left := handCursor{pose: c.cfg.RestingPoseLeft}
	right := handCursor{pose: c.cfg.RestingPoseRight}
	ledger := NewStickinessLedger()
	leftFatigue := NewFatigueState()
	rightFatigue := NewFatigueState()
	total := 0.0
	var assignments []beamAssignment

	apply := func(cursor *handCursor, fatigue *FatigueState, side *sideGrip, hand HandSide, timestamp float64) float64 {
		attractor := AttractorCost(side.grip.Pose, c.cfg.restingPose(hand), c.cfg.Stiffness)
		stretch := GripStretchCost(side.grip.Pose, comfortableSpanFor(side.grip.Pose, NeutralPads(hand)))
		geneCost := attractor + stretch
		if side.grip.IsFallback {
			geneCost += genePenaltyFallback
		}

		if cursor.touched {
			dt := timestamp - cursor.time
			transition := TransitionCost(cursor.pose, side.grip.Pose, dt)
			if costIsInfinite(transition) {
				geneCost += geneTransitionInfPenalty
			} else {
				geneCost += transition
			}
		}
		cursor.pose, cursor.time, cursor.touched = side.grip.Pose, timestamp, true

		padFinger := fingerAt(side.grip)
		var usedFingers []Finger
		var bounce float64
		for i, idx := range side.eventIndices {
			f, ok := padFinger[side.pads[i]]
			if !ok {
				continue
			}
			bounce += ledger.Penalty(c.pitches[idx], f, timestamp)
			usedFingers = append(usedFingers, f)
		}
		var fatigueCost float64
		for _, v := range fatigue.Advance(timestamp, usedFingers) {
			fatigueCost += v
		}

		assignments = append(assignments, assignmentsFromGrip(side.eventIndices, side.pads, side.grip, hand, geneCost, bounce, fatigueCost)...)
		return geneCost + bounce + fatigueCost
	}

	for gi, group := range c.groups {
		opt := c.options[gi][c.genes[gi]]
		if opt.left != nil {
			total += apply(&left, leftFatigue, opt.left, Left, group.timestamp)
		}
		if opt.right != nil {
			total += apply(&right, rightFatigue, opt.right, Right, group.timestamp)
		}
	}
	return total, assignments
}

// Evaluate returns the chromosome's total cost (eaopt minimizes fitness).
// evaluateSequence never produces an infinite total itself (an infeasible
// transition is already priced as a finite +1000), so this is only a
// safety net against a NaN/Inf gene cost slipping through.
func (c *chromosome) Evaluate() (float64, error) {
	total, _ := c.evaluateSequence()
	if costIsInfinite(total) || math.IsNaN(total) {
		return 1e12, nil
	}
	return total, nil
}

// Mutate reassigns a random non-fixed group to a different option.
func (c *chromosome) Mutate(rng *rand.Rand) {
	var free []int
	for i, f := range c.fixed {
		if !f {
			free = append(free, i)
		}
	}
	if len(free) == 0 {
		return
	}
	gi := free[rng.Intn(len(free))]
	n := len(c.options[gi])
	if n <= 1 {
		return
	}
	cur := c.genes[gi]
	next := rng.Intn(n - 1)
	if next >= cur {
		next++
	}
	c.genes[gi] = next
}

// Crossover performs single-point crossover with another chromosome,
// swapping a random gene suffix.
func (c *chromosome) Crossover(other eaopt.Genome, rng *rand.Rand) {
	o := other.(*chromosome)
	if len(c.genes) < 2 {
		return
	}
	point := 1 + rng.Intn(len(c.genes)-1)
	for i := point; i < len(c.genes); i++ {
		c.genes[i], o.genes[i] = o.genes[i], c.genes[i]
	}
}

// Clone deep-copies the mutable gene slice; groups/options are shared
// read-only across the population.
func (c *chromosome) Clone() eaopt.Genome {
	genes := make([]int, len(c.genes))
	copy(genes, c.genes)
	return &chromosome{groups: c.groups, options: c.options, genes: genes, cfg: c.cfg, fixed: c.fixed, pitches: c.pitches}
}

// Solve runs the genetic algorithm to completion and returns the
// best-of-run chromosome's resolved assignment as a SolverResult.
func (s *GeneticSolver) Solve(perf Performance, instrument InstrumentConfig, layout *Layout, manual map[int]ManualAssignment) (*SolverResult, error) {
	groups, events := groupPerformance(perf, layout, instrument)
	if len(groups) == 0 {
		return buildSolverResult(GeneticSolverType, events, nil, nil), nil
	}

	pitches := make([]int, len(perf.Events))
	for i, e := range perf.Events {
		pitches[i] = e.Pitch
	}

	cache := newGripCache()
	options := buildGroupOptions(groups, manual, &cache)

	cfg := eaopt.NewDefaultGAConfig()
	cfg.NPops = 1
	cfg.PopSize = s.Population
	cfg.NGenerations = s.Generations
	cfg.HofSize = s.Elitism
	cfg.Model = eaopt.ModGenerational{
		Selector:  eaopt.SelTournament{NContestants: s.TournamentSize},
		MutRate:   s.MutationRate,
		CrossRate: 0.7,
	}

	var log []EvolutionLogEntry
	cfg.Callback = func(ga *eaopt.GA) {
		if ga.Generations == 0 {
			return // initial population, before the first generation
		}
		pop := ga.Populations[0].Individuals
		sum, worst := 0.0, 0.0
		for _, ind := range pop {
			sum += ind.Fitness
			if ind.Fitness > worst {
				worst = ind.Fitness
			}
		}
		log = append(log, EvolutionLogEntry{
			Generation: int(ga.Generations),
			Best:       ga.HallOfFame[0].Fitness,
			Average:    sum / float64(len(pop)),
			Worst:      worst,
		})
	}

	ga, err := cfg.NewGA()
	if err != nil {
		return nil, err
	}
	ga.RNG = rand.New(rand.NewSource(int64(s.Seed)))

	newGenome := func(rng *rand.Rand) eaopt.Genome {
		c := newChromosome(groups, options, s.cfg, pitches)
		for gi := range c.genes {
			c.genes[gi] = rng.Intn(len(options[gi]))
		}
		return c
	}

	if err := ga.Minimize(newGenome); err != nil {
		return nil, err
	}

	best := ga.HallOfFame[0].Genome.(*chromosome)
	bestTotal, assignments := best.evaluateSequence()
	for _, a := range assignments {
		hand, fin := a.Hand, a.Finger
		events[a.EventIndex] = DebugEvent{
			Pitch:      perf.Events[a.EventIndex].Pitch,
			StartTime:  perf.Events[a.EventIndex].StartTime,
			Hand:       &hand,
			Finger:     &fin,
			TotalCost:  a.Cost,
			Breakdown:  &a.Breakdown,
			Difficulty: ClassifyDifficulty(a.Cost),
			Row:        a.Pad.Row,
			Col:        a.Pad.Col,
			HasPad:     true,
		}
	}

	result := buildSolverResult(GeneticSolverType, events, nil, nil)
	result.EvolutionLog = log
	if n := len(perf.Events); n > 0 && !costIsInfinite(bestTotal) {
		result.BestNodeAverageCost = bestTotal / float64(n)
	}
	return result, nil
}

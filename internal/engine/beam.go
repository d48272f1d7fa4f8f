package engine

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// momentGroupEps is the co-moment tolerance for beam expansion (spec.md
// §4.4.1), distinct from the event analyzer's tighter 1e-4s tolerance.
const momentGroupEps = 1e-3

// beamAssignment records one note's resolved hand/finger/pad within a
// single expansion step, before it's folded into a DebugEvent.
type beamAssignment struct {
	EventIndex int
	Hand       HandSide
	Finger     Finger
	Pad        Pad
	Cost       float64
	Breakdown  CostBreakdown
	IsFallback bool
}

// beamNode is addressed by index in an arena (spec.md §9): parent is an
// index into the same arena, -1 for the root.
type beamNode struct {
	leftPose, rightPose Pose
	totalCost           float64
	parent              int
	assignments         []beamAssignment
	depth               int

	// stickiness and the per-hand fatigue trackers are forked (not shared)
	// on every expansion so sibling candidate branches never observe each
	// other's replay/fatigue history (spec.md §9: threaded through each
	// beam expansion).
	stickiness                *StickinessLedger
	leftFatigue, rightFatigue *FatigueState
}

// momentGroup is a performance group: all events sharing a timestamp
// within momentGroupEps, restricted to pitches that resolved to a pad.
type momentGroup struct {
	timestamp    float64
	eventIndices []int
	pads         []Pad
}

// BeamSolver is the workhorse solver and the cost oracle used by Annealing.
type BeamSolver struct {
	cfg   EngineConfig
	cache gripCache
}

// NewBeamSolver returns a Beam solver configured with cfg.
func NewBeamSolver(cfg EngineConfig) *BeamSolver {
	return &BeamSolver{cfg: cfg, cache: newGripCache()}
}

func (b *BeamSolver) Name() string        { return "Beam Search" }
func (b *BeamSolver) Type() SolverType    { return BeamSolverType }
func (b *BeamSolver) IsSynchronous() bool { return true }

// gripCache memoizes GenerateGrips by pad-set+hand, mirroring
// keycraft.Scorer's scoreCache (SPEC_FULL.md §3.1): a pure function of its
// inputs, safe to share across a single solver invocation.
type gripCache struct {
	mu    sync.Mutex
	store map[string][]GripResult
	hits  atomic.Int64
	miss  atomic.Int64
}

func newGripCache() gripCache {
	return gripCache{store: make(map[string][]GripResult)}
}

func gripCacheKey(pads []Pad, hand HandSide) string {
	var sb strings.Builder
	sb.WriteByte(byte(hand))
	for _, p := range pads {
		fmt.Fprintf(&sb, ":%d,%d", p.Row, p.Col)
	}
	return sb.String()
}

func (c *gripCache) grips(pads []Pad, hand HandSide) []GripResult {
	key := gripCacheKey(pads, hand)
	c.mu.Lock()
	if cached, ok := c.store[key]; ok {
		c.mu.Unlock()
		c.hits.Add(1)
		return cached
	}
	c.mu.Unlock()

	result := GenerateGrips(pads, hand)

	c.mu.Lock()
	c.store[key] = result
	c.mu.Unlock()
	c.miss.Add(1)
	return result
}

// BeamCacheStats reports grip-cache effectiveness for one solver instance.
type BeamCacheStats struct {
	Hits, Misses int64
}

func (b *BeamSolver) Stats() BeamCacheStats {
	return BeamCacheStats{Hits: b.cache.hits.Load(), Misses: b.cache.miss.Load()}
}

// Solve runs the beam search synchronously (spec.md §4.4.1).
func (b *BeamSolver) Solve(perf Performance, instrument InstrumentConfig, layout *Layout, manual map[int]ManualAssignment) *SolverResult {
	return b.solve(perf, instrument, layout, manual, nil)
}

// SolveWithProgress is Solve plus an optional progress sink, written to
// once per processed group (SPEC_FULL.md §3.2).
func (b *BeamSolver) SolveWithProgress(perf Performance, instrument InstrumentConfig, layout *Layout, manual map[int]ManualAssignment, progress io.Writer) *SolverResult {
	return b.solve(perf, instrument, layout, manual, progress)
}

// groupPerformance resolves every event's pad (marking unresolved pitches
// Unplayable directly) and co-groups the rest into moments within
// momentGroupEps, ordered by start time.
func groupPerformance(perf Performance, layout *Layout, instrument InstrumentConfig) ([]momentGroup, []DebugEvent) {
	n := len(perf.Events)
	events := make([]DebugEvent, n)

	type indexedEvent struct {
		idx int
		ev  NoteEvent
		pad Pad
	}
	var mapped []indexedEvent
	for i, ev := range perf.Events {
		pad, ok := ResolvePad(ev.Pitch, layout, instrument)
		if !ok {
			events[i] = DebugEvent{Pitch: ev.Pitch, StartTime: ev.StartTime, Difficulty: Unplayable}
			continue
		}
		mapped = append(mapped, indexedEvent{idx: i, ev: ev, pad: pad})
	}
	sort.SliceStable(mapped, func(i, j int) bool { return mapped[i].ev.StartTime < mapped[j].ev.StartTime })

	var groups []momentGroup
	for _, m := range mapped {
		if len(groups) > 0 && m.ev.StartTime-groups[len(groups)-1].timestamp <= momentGroupEps {
			g := &groups[len(groups)-1]
			g.eventIndices = append(g.eventIndices, m.idx)
			g.pads = append(g.pads, m.pad)
			continue
		}
		groups = append(groups, momentGroup{
			timestamp:    m.ev.StartTime,
			eventIndices: []int{m.idx},
			pads:         []Pad{m.pad},
		})
	}
	return groups, events
}

func (b *BeamSolver) solve(perf Performance, instrument InstrumentConfig, layout *Layout, manual map[int]ManualAssignment, progress io.Writer) *SolverResult {
	groups, events := groupPerformance(perf, layout, instrument)

	pitches := make([]int, len(perf.Events))
	for i, e := range perf.Events {
		pitches[i] = e.Pitch
	}

	arena := []beamNode{{
		leftPose:     b.cfg.RestingPoseLeft,
		rightPose:    b.cfg.RestingPoseRight,
		parent:       -1,
		stickiness:   NewStickinessLedger(),
		leftFatigue:  NewFatigueState(),
		rightFatigue: NewFatigueState(),
	}}
	beam := []int{0}

	var prevTimestamp float64
	for gi, group := range groups {
		dt := group.timestamp - prevTimestamp
		if gi == 0 {
			dt = 1.0
		}
		prevTimestamp = group.timestamp

		var newBeam []int
		for _, nodeIdx := range beam {
			children := b.expandNode(&arena, nodeIdx, group, dt, gi == 0, manual, pitches)
			if len(children) == 0 {
				children = []int{b.emergencyExpand(&arena, nodeIdx, group, gi)}
			}
			newBeam = append(newBeam, children...)
		}

		sort.Slice(newBeam, func(i, j int) bool { return arena[newBeam[i]].totalCost < arena[newBeam[j]].totalCost })
		if len(newBeam) > b.cfg.BeamWidth {
			newBeam = newBeam[:b.cfg.BeamWidth]
		}
		beam = newBeam

		if progress != nil {
			fmt.Fprintf(progress, "group %d/%d: beam size %d, best cost %.3f\n", gi+1, len(groups), len(beam), arena[beam[0]].totalCost)
		}
	}

	var best int
	if len(beam) > 0 {
		best = beam[0]
		for _, idx := range beam {
			if arena[idx].totalCost < arena[best].totalCost {
				best = idx
			}
		}
		for idx := best; idx != -1; idx = arena[idx].parent {
			for _, a := range arena[idx].assignments {
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
		}
	}

	return buildSolverResult(BeamSolverType, events, arena, beam)
}

// expandNode applies single-hand and (when applicable) split-hand
// expansion, honoring manual assignments for the group. pitches maps each
// performance event index to its pitch, for StickinessLedger lookups.
func (b *BeamSolver) expandNode(arena *[]beamNode, nodeIdx int, group momentGroup, dt float64, isFirstGroup bool, manual map[int]ManualAssignment, pitches []int) []int {
	node := (*arena)[nodeIdx]
	manualHands := map[HandSide]bool{}
	for _, idx := range group.eventIndices {
		if m, ok := manual[idx]; ok {
			manualHands[m.Hand] = true
		}
	}

	var children []int

	tryAssignWholeGroupToHand := func(hand HandSide) {
		grips := b.cache.grips(group.pads, hand)
		pose := IfThen(hand == Left, node.leftPose, node.rightPose)
		for _, grip := range grips {
			if len(manualHands) > 0 {
				if !manualHands[hand] {
					continue
				}
				if !gripSatisfiesManual(grip, group, hand, manual) {
					continue
				}
			}
			transition := TransitionCost(pose, grip.Pose, dt)
			if costIsInfinite(transition) && !isFirstGroup && !grip.IsFallback {
				continue
			}
			attractor := AttractorCost(grip.Pose, b.cfg.restingPose(hand), b.cfg.Stiffness)
			stretch := GripStretchCost(grip.Pose, comfortableSpanFor(grip.Pose, NeutralPads(hand)))
			gripCost := TotalGripCost(transition, attractor, stretch)
			if grip.IsFallback {
				gripCost += FallbackGripPenalty
			}

			parentFatigue := IfThen(hand == Left, node.leftFatigue, node.rightFatigue)
			ledger, fatigue, bounce, fatigueCost := applyStickinessFatigue(node.stickiness, parentFatigue, grip, group.eventIndices, group.pads, pitches, group.timestamp)

			child := node
			child.stickiness = ledger
			if hand == Left {
				child.leftPose = grip.Pose
				child.leftFatigue = fatigue
			} else {
				child.rightPose = grip.Pose
				child.rightFatigue = fatigue
			}
			if !costIsInfinite(gripCost) {
				child.totalCost += gripCost + bounce + fatigueCost
			} else {
				child.totalCost = posInf()
			}
			child.parent = nodeIdx
			child.depth = node.depth + 1
			child.assignments = assignmentsFromGrip(group.eventIndices, group.pads, grip, hand, gripCost, bounce, fatigueCost)

			*arena = append(*arena, child)
			children = append(children, len(*arena)-1)
		}
	}

	if len(manualHands) <= 1 {
		tryAssignWholeGroupToHand(Left)
		tryAssignWholeGroupToHand(Right)
	}

	if len(group.pads) >= 2 && len(manualHands) != 1 {
		children = append(children, b.trySplitHand(arena, nodeIdx, group, dt, isFirstGroup, manual, manualHands, pitches)...)
	}
	if len(manualHands) == 2 {
		children = append(children, b.trySplitHand(arena, nodeIdx, group, dt, isFirstGroup, manual, manualHands, pitches)...)
	}

	return children
}

// applyStickinessFatigue forks one hand's stickiness ledger and fatigue
// tracker for a single candidate grip and charges the group's notes against
// the forks, leaving the parent node's state untouched (spec.md §9).
func applyStickinessFatigue(ledger *StickinessLedger, fatigue *FatigueState, grip GripResult, eventIndices []int, pads []Pad, pitches []int, timestamp float64) (*StickinessLedger, *FatigueState, float64, float64) {
	ledger = ledger.Clone()
	fatigue = fatigue.Clone()

	padFinger := fingerAt(grip)
	var usedFingers []Finger
	var bounce float64
	for i, idx := range eventIndices {
		f, ok := padFinger[pads[i]]
		if !ok {
			continue
		}
		bounce += ledger.Penalty(pitches[idx], f, timestamp)
		usedFingers = append(usedFingers, f)
	}

	var fatigueCost float64
	for _, v := range fatigue.Advance(timestamp, usedFingers) {
		fatigueCost += v
	}
	return ledger, fatigue, bounce, fatigueCost
}

// trySplitHand implements the split-hand expansion of spec.md §4.4.1 step 3.
func (b *BeamSolver) trySplitHand(arena *[]beamNode, nodeIdx int, group momentGroup, dt float64, isFirstGroup bool, manual map[int]ManualAssignment, manualHands map[HandSide]bool, pitches []int) []int {
	node := (*arena)[nodeIdx]

	type padEvt struct {
		idx int
		pad Pad
	}
	items := make([]padEvt, len(group.eventIndices))
	for i := range group.eventIndices {
		items[i] = padEvt{idx: group.eventIndices[i], pad: group.pads[i]}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].pad.Col < items[j].pad.Col })

	var leftItems, rightItems []padEvt
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
		leftItems = items[:mid]
		rightItems = items[mid:]
	}
	if len(leftItems) == 0 || len(rightItems) == 0 {
		return nil
	}

	leftPads := padsOf(leftItems)
	rightPads := padsOf(rightItems)

	leftGrips := b.cache.grips(leftPads, Left)
	rightGrips := b.cache.grips(rightPads, Right)

	var children []int
	for _, lg := range leftGrips {
		if len(manualHands) > 0 && manualHands[Left] && !gripSatisfiesManualItems(lg, leftItems, manual) {
			continue
		}
		ltrans := TransitionCost(node.leftPose, lg.Pose, dt)
		if costIsInfinite(ltrans) && !isFirstGroup && !lg.IsFallback {
			continue
		}
		lattr := AttractorCost(lg.Pose, b.cfg.restingPose(Left), b.cfg.Stiffness)
		lstretch := GripStretchCost(lg.Pose, comfortableSpanFor(lg.Pose, NeutralPads(Left)))
		lcost := TotalGripCost(ltrans, lattr, lstretch)
		if lg.IsFallback {
			lcost += FallbackGripPenalty
		}

		for _, rg := range rightGrips {
			if len(manualHands) > 0 && manualHands[Right] && !gripSatisfiesManualItems(rg, rightItems, manual) {
				continue
			}
			rtrans := TransitionCost(node.rightPose, rg.Pose, dt)
			if costIsInfinite(rtrans) && !isFirstGroup && !rg.IsFallback {
				continue
			}
			rattr := AttractorCost(rg.Pose, b.cfg.restingPose(Right), b.cfg.Stiffness)
			rstretch := GripStretchCost(rg.Pose, comfortableSpanFor(rg.Pose, NeutralPads(Right)))
			rcost := TotalGripCost(rtrans, rattr, rstretch)
			if rg.IsFallback {
				rcost += FallbackGripPenalty
			}

			leftEventIdx := eventIndicesOf(leftItems)
			rightEventIdx := eventIndicesOf(rightItems)
			ledger, lFatigue, rFatigue, lBounce, lFatigueCost, rBounce, rFatigueCost :=
				applySplitStickinessFatigue(node.stickiness, node.leftFatigue, node.rightFatigue, lg, rg, leftEventIdx, rightEventIdx, leftPads, rightPads, pitches, group.timestamp)

			child := node
			child.leftPose = lg.Pose
			child.rightPose = rg.Pose
			child.stickiness = ledger
			child.leftFatigue = lFatigue
			child.rightFatigue = rFatigue
			child.parent = nodeIdx
			child.depth = node.depth + 1

			if costIsInfinite(lcost) || costIsInfinite(rcost) {
				child.totalCost = posInf()
			} else {
				child.totalCost += lcost + rcost + lBounce + lFatigueCost + rBounce + rFatigueCost
			}

			child.assignments = append(
				assignmentsFromGrip(leftEventIdx, leftPads, lg, Left, lcost, lBounce, lFatigueCost),
				assignmentsFromGrip(rightEventIdx, rightPads, rg, Right, rcost, rBounce, rFatigueCost)...,
			)

			*arena = append(*arena, child)
			children = append(children, len(*arena)-1)
		}
	}
	return children
}

// applySplitStickinessFatigue is applyStickinessFatigue generalized to a
// split-hand candidate: both hands' notes charge the same forked ledger
// (stickiness is keyed by pitch, not by hand), while each hand forks and
// advances its own independent FatigueState.
func applySplitStickinessFatigue(ledger *StickinessLedger, leftFatigue, rightFatigue *FatigueState, lg, rg GripResult, leftIdx, rightIdx []int, leftPads, rightPads []Pad, pitches []int, timestamp float64) (newLedger *StickinessLedger, newLeftFatigue, newRightFatigue *FatigueState, leftBounce, leftFatigueCost, rightBounce, rightFatigueCost float64) {
	newLedger = ledger.Clone()
	newLeftFatigue = leftFatigue.Clone()
	newRightFatigue = rightFatigue.Clone()

	charge := func(grip GripResult, idx []int, pads []Pad) ([]Finger, float64) {
		padFinger := fingerAt(grip)
		var used []Finger
		var bounce float64
		for i, id := range idx {
			f, ok := padFinger[pads[i]]
			if !ok {
				continue
			}
			bounce += newLedger.Penalty(pitches[id], f, timestamp)
			used = append(used, f)
		}
		return used, bounce
	}

	leftUsed, leftBounce := charge(lg, leftIdx, leftPads)
	rightUsed, rightBounce := charge(rg, rightIdx, rightPads)

	for _, v := range newLeftFatigue.Advance(timestamp, leftUsed) {
		leftFatigueCost += v
	}
	for _, v := range newRightFatigue.Advance(timestamp, rightUsed) {
		rightFatigueCost += v
	}
	return
}

func padsOf(items []struct {
	idx int
	pad Pad
}) []Pad {
	out := make([]Pad, len(items))
	for i, it := range items {
		out[i] = it.pad
	}
	return out
}

func eventIndicesOf(items []struct {
	idx int
	pad Pad
}) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.idx
	}
	return out
}

// gripSatisfiesManual reports whether grip, if applied to the whole group
// on hand, would place the required finger at every manually-pinned event
// in the group that names hand.
func gripSatisfiesManual(grip GripResult, group momentGroup, hand HandSide, manual map[int]ManualAssignment) bool {
	padFinger := fingerAt(grip)
	for i, idx := range group.eventIndices {
		m, ok := manual[idx]
		if !ok || m.Hand != hand {
			continue
		}
		f, found := padFinger[group.pads[i]]
		if !found || f != m.Finger {
			return false
		}
	}
	return true
}

func gripSatisfiesManualItems(grip GripResult, items []struct {
	idx int
	pad Pad
}, manual map[int]ManualAssignment) bool {
	padFinger := fingerAt(grip)
	for _, it := range items {
		m, ok := manual[it.idx]
		if !ok {
			continue
		}
		f, found := padFinger[it.pad]
		if !found || f != m.Finger {
			return false
		}
	}
	return true
}

// fingerAt maps each pad a grip's pose occupies to the finger placed there.
func fingerAt(grip GripResult) map[Pad]Finger {
	out := make(map[Pad]Finger, numFingers)
	for f := range numFingers {
		if grip.Pose.Placed[f] {
			pt := grip.Pose.Fingers[f]
			out[Pad{Row: uint8(pt.Y), Col: uint8(pt.X)}] = Finger(f)
		}
	}
	return out
}

// assignmentsFromGrip builds one beamAssignment per event, assigning
// fingers by iterating the grip's finger map and matching events to pads
// (events sharing a pad share a finger); gripCost, bounce and fatigueCost
// are each divided evenly among the group's notes for reporting.
func assignmentsFromGrip(eventIndices []int, pads []Pad, grip GripResult, hand HandSide, gripCost, bounce, fatigueCost float64) []beamAssignment {
	padFinger := fingerAt(grip)
	perGrip, perBounce, perFatigue := gripCost, bounce, fatigueCost
	if n := len(eventIndices); n > 0 && !costIsInfinite(gripCost) {
		perGrip /= float64(n)
		perBounce /= float64(n)
		perFatigue /= float64(n)
	}
	perTotal := perGrip + perBounce + perFatigue

	out := make([]beamAssignment, 0, len(eventIndices))
	for i, idx := range eventIndices {
		f, ok := padFinger[pads[i]]
		if !ok {
			continue
		}
		out = append(out, beamAssignment{
			EventIndex: idx,
			Hand:       hand,
			Finger:     f,
			Pad:        pads[i],
			Cost:       perTotal,
			Breakdown:  buildBreakdown(perGrip, perBounce, perFatigue),
			IsFallback: grip.IsFallback,
		})
	}
	return out
}

// buildBreakdown splits a grip's per-note cost into reporting buckets.
// Bounce and fatigue are the real StickinessLedger/FatigueState
// contributions; movement/stretch/drift/crossover still use the
// approximate 4/2/2/1-ninths proportional split of gripCost documented in
// DESIGN.md, since TotalGripCost doesn't track those four separately.
func buildBreakdown(gripCost, bounce, fatigueCost float64) *CostBreakdown {
	if costIsInfinite(gripCost) {
		return &CostBreakdown{Total: gripCost}
	}
	return &CostBreakdown{
		Movement:  gripCost * (4.0 / 9.0),
		Stretch:   gripCost * (2.0 / 9.0),
		Drift:     gripCost * (2.0 / 9.0),
		Bounce:    bounce,
		Fatigue:   fatigueCost,
		Crossover: gripCost * (1.0 / 9.0),
		Total:     gripCost + bounce + fatigueCost,
	}
}

// emergencyExpand synthesizes a single-finger (index) placement per note
// at its own pad on the nearer hand when a group produces zero children
// (spec.md §4.4.1's emergency expansion: reached when every candidate was
// skipped, e.g. all transitions exceed MaxHandSpeed with no fallback grip,
// no grip meets a manual assignment, or a hand gets more than 5 pads). It
// carries the parent's stickiness ledger and fatigue state forward
// unmodified rather than charging them: this path is already dominated by
// FallbackGripPenalty, and it never competes with a non-emergency sibling
// since it only runs when expandNode produced zero children.
func (b *BeamSolver) emergencyExpand(arena *[]beamNode, nodeIdx int, group momentGroup, _ int) int {
	node := (*arena)[nodeIdx]
	child := node
	child.parent = nodeIdx
	child.depth = node.depth + 1
	child.totalCost += FallbackGripPenalty

	var leftPads, rightPads []Pad
	var assignments []beamAssignment
	for i, idx := range group.eventIndices {
		pad := group.pads[i]
		distLeft := absFloat(float64(pad.Col) - 2)
		distRight := absFloat(float64(pad.Col) - 5)
		hand := IfThen(distLeft <= distRight, Left, Right)
		if hand == Left {
			leftPads = append(leftPads, pad)
		} else {
			rightPads = append(rightPads, pad)
		}
		assignments = append(assignments, beamAssignment{
			EventIndex: idx,
			Hand:       hand,
			Finger:     Index,
			Pad:        pad,
			Cost:       FallbackGripPenalty / float64(len(group.eventIndices)),
			Breakdown:  buildBreakdown(FallbackGripPenalty/float64(len(group.eventIndices)), 0, 0),
			IsFallback: true,
		})
	}
	if len(leftPads) > 0 {
		child.leftPose = NewPose(map[Finger]Point{Index: {X: float64(meanCol(leftPads)), Y: float64(meanRow(leftPads))}})
	}
	if len(rightPads) > 0 {
		child.rightPose = NewPose(map[Finger]Point{Index: {X: float64(meanCol(rightPads)), Y: float64(meanRow(rightPads))}})
	}
	child.assignments = assignments

	*arena = append(*arena, child)
	return len(*arena) - 1
}

func meanCol(pads []Pad) float64 {
	s := 0.0
	for _, p := range pads {
		s += float64(p.Col)
	}
	return s / float64(len(pads))
}

func meanRow(pads []Pad) float64 {
	s := 0.0
	for _, p := range pads {
		s += float64(p.Row)
	}
	return s / float64(len(pads))
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func posInf() float64 { return math.Inf(1) }

// buildSolverResult assembles the final SolverResult from the resolved
// debug events, including score, per-finger stats and the approximate
// average-metrics reconstruction.
func buildSolverResult(solverType SolverType, events []DebugEvent, arena []beamNode, beam []int) *SolverResult {
	hardCount := 0
	unplayableCount := 0
	fingerUsage := make(map[string]int)
	fatigueMap := make(map[string]float64)
	var driftSum, driftN float64
	var avg CostBreakdown

	for _, e := range events {
		switch e.Difficulty {
		case Unplayable:
			unplayableCount++
		case Hard:
			hardCount++
		}
		if e.Hand != nil && e.Finger != nil {
			key := fingerUsageKey(*e.Hand, *e.Finger)
			fingerUsage[key]++
			if e.Breakdown != nil {
				fatigueMap[key] += e.Breakdown.Fatigue
				avg.add(*e.Breakdown)
				driftSum += e.Breakdown.Drift
				driftN++
			}
		}
	}

	score := 100 - 5*hardCount - 20*unplayableCount
	if score < 0 {
		score = 0
	}

	n := float64(len(events))
	if n > 0 {
		avg.Movement /= n
		avg.Stretch /= n
		avg.Drift /= n
		avg.Bounce /= n
		avg.Fatigue /= n
		avg.Crossover /= n
		avg.Total /= n
	}

	var bestAvg float64
	if len(beam) > 0 && n > 0 {
		best := beam[0]
		for _, idx := range beam {
			if arena[idx].totalCost < arena[best].totalCost {
				best = idx
			}
		}
		bestAvg = arena[best].totalCost / n
	}

	averageDrift := 0.0
	if driftN > 0 {
		averageDrift = driftSum / driftN
	}

	return &SolverResult{
		Score:               score,
		UnplayableCount:     unplayableCount,
		HardCount:           hardCount,
		DebugEvents:         events,
		FingerUsageStats:    fingerUsage,
		FatigueMap:          fatigueMap,
		AverageDrift:        averageDrift,
		AverageMetrics:      avg,
		BestNodeAverageCost: bestAvg,
		RunID:               fingerprintRunID(solverType, events),
	}
}

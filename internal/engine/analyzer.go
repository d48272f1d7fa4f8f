package engine

import (
	"math"
	"sort"
)

// momentEps is the event analyzer's own (tighter) co-moment tolerance,
// distinct from the beam's 1e-3s group tolerance (spec.md §4.5).
const momentEps = 1e-4

// Moment is one co-occurring cluster of resolved notes, with aggregate
// anatomical metrics over the hand shape it requires.
type Moment struct {
	Timestamp           float64
	EventIndices        []int
	Polyphony           int
	SpreadX, SpreadY     float64
	AnatomicalStretch   float64
	CompositeDifficulty float64
}

// Transition describes the hand-shape change between two consecutive
// moments, using an "onion-skin" comparison of which pads persist, drop
// out, or newly appear.
type Transition struct {
	FromMoment      int
	ToMoment        int
	SharedPads      []Pad
	CurrentOnlyPads []Pad
	NextOnlyPads    []Pad
	FingerMoves     int
}

// AnalysisResult is the full moment/transition breakdown of a solved
// performance, read from its DebugEvents.
type AnalysisResult struct {
	Moments     []Moment
	Transitions []Transition
}

// FingerMove is one (hand, finger)'s movement from the current onion-skin
// moment into the next one (spec.md §3, §4.5).
type FingerMove struct {
	Finger       Finger
	Hand         HandSide
	FromPad      *Pad // nil when this (hand, finger) wasn't active in the current moment
	ToPad        Pad
	IsHold       bool
	IsImpossible bool
	RawDistance  float64
}

// OnionSkin is the focused-index view of an analyzed performance
// (spec.md §2, §3): the moment at CurrentIndex, its neighbors, the
// pad-set deltas into the next moment, and the finger moves those deltas
// imply.
type OnionSkin struct {
	CurrentIndex    int
	Current         *Moment
	Previous        *Moment
	Next            *Moment
	SharedPads      []Pad
	CurrentOnlyPads []Pad
	NextOnlyPads    []Pad
	FingerMoves     []FingerMove
}

// FocusOnionSkin builds the onion-skin view for moments[i] (spec.md
// §4.5), or nil if i is out of range.
func (r *AnalysisResult) FocusOnionSkin(events []DebugEvent, i int) *OnionSkin {
	return FocusOnionSkin(events, r.Moments, i)
}

// FocusOnionSkin is AnalysisResult.FocusOnionSkin without requiring an
// AnalysisResult, for callers holding only a moment slice.
func FocusOnionSkin(events []DebugEvent, moments []Moment, i int) *OnionSkin {
	if i < 0 || i >= len(moments) {
		return nil
	}

	skin := &OnionSkin{CurrentIndex: i, Current: &moments[i]}
	if i > 0 {
		skin.Previous = &moments[i-1]
	}

	currentPads := padSet(events, moments[i].EventIndices)
	currentFingerPad := fingerPadMap(events, moments[i].EventIndices)

	if i+1 >= len(moments) {
		for p := range currentPads {
			skin.CurrentOnlyPads = append(skin.CurrentOnlyPads, p)
		}
		sortPads(skin.CurrentOnlyPads)
		return skin
	}

	next := &moments[i+1]
	skin.Next = next
	nextPads := padSet(events, next.EventIndices)

	for p := range currentPads {
		if nextPads[p] {
			skin.SharedPads = append(skin.SharedPads, p)
		} else {
			skin.CurrentOnlyPads = append(skin.CurrentOnlyPads, p)
		}
	}
	for p := range nextPads {
		if !currentPads[p] {
			skin.NextOnlyPads = append(skin.NextOnlyPads, p)
		}
	}
	sortPads(skin.SharedPads)
	sortPads(skin.CurrentOnlyPads)
	sortPads(skin.NextOnlyPads)

	for _, idx := range next.EventIndices {
		e := events[idx]
		if !e.HasPad || e.Hand == nil || e.Finger == nil {
			continue // skip unplayable next notes
		}
		toPad := Pad{Row: e.Row, Col: e.Col}
		move := FingerMove{Finger: *e.Finger, Hand: *e.Hand, ToPad: toPad}
		if fromPad, ok := currentFingerPad[fingerUsageKey(*e.Hand, *e.Finger)]; ok {
			fp := fromPad
			move.FromPad = &fp
			move.RawDistance = dist2(float64(fromPad.Col), float64(fromPad.Row), float64(toPad.Col), float64(toPad.Row))
			move.IsHold = fromPad == toPad
			move.IsImpossible = move.RawDistance > maxReach
		}
		skin.FingerMoves = append(skin.FingerMoves, move)
	}

	return skin
}

// AnalyzeEvents groups a solver's debug events into moments and computes
// the transitions between them (spec.md §4.5). Events are assumed already
// time-ordered, as every solver in this package emits them.
func AnalyzeEvents(events []DebugEvent) *AnalysisResult {
	var moments []Moment
	var indices []int

	flush := func() {
		if len(indices) == 0 {
			return
		}
		moments = append(moments, buildMoment(events, indices))
		indices = nil
	}

	for i, e := range events {
		if len(indices) > 0 && e.StartTime-events[indices[0]].StartTime > momentEps {
			flush()
		}
		indices = append(indices, i)
	}
	flush()

	var transitions []Transition
	for i := 0; i+1 < len(moments); i++ {
		transitions = append(transitions, buildTransition(events, moments, i, i+1))
	}

	return &AnalysisResult{Moments: moments, Transitions: transitions}
}

// perNoteStretch implements spec.md §4.5's "Per-note anatomical stretch".
func perNoteStretch(e DebugEvent) float64 {
	switch {
	case e.Difficulty == Unplayable:
		return 1.0
	case e.Breakdown != nil:
		return clamp(e.Breakdown.Stretch/10, 0, 1)
	case e.Hand != nil:
		home := homeOf(*e.Hand)
		return clamp(dist2(float64(e.Col), float64(e.Row), home.X, home.Y)/4, 0, 1)
	default:
		return 0
	}
}

// perNoteDifficulty implements spec.md §4.5's "Per-note composite difficulty".
func perNoteDifficulty(e DebugEvent) float64 {
	var d float64
	switch e.Difficulty {
	case Unplayable:
		d = 1.0
	case Hard:
		d = 0.7
	case Medium:
		d = 0.4
	default:
		d = 0.1
	}

	d += clamp(e.TotalCost/20, 0, 1) * 0.2
	d += perNoteStretch(e) * 0.1

	if e.Breakdown != nil {
		d += 0.05 * clamp(e.Breakdown.Movement/10, 0, 1)
		d += 0.03 * clamp(e.Breakdown.Fatigue/5, 0, 1)
		d += 0.02 * clamp(e.Breakdown.Crossover/20, 0, 1)
	}

	return clamp(d, 0, 1)
}

func buildMoment(events []DebugEvent, indices []int) Moment {
	m := Moment{
		Timestamp:    events[indices[0]].StartTime,
		EventIndices: indices,
		Polyphony:    len(indices),
	}

	var minCol, maxCol, minRow, maxRow uint8
	first := true
	for _, idx := range indices {
		e := events[idx]

		m.AnatomicalStretch = math.Max(m.AnatomicalStretch, perNoteStretch(e))
		m.CompositeDifficulty = math.Max(m.CompositeDifficulty, perNoteDifficulty(e))

		if !e.HasPad {
			continue
		}
		if first {
			minCol, maxCol, minRow, maxRow = e.Col, e.Col, e.Row, e.Row
			first = false
		} else {
			minCol, maxCol = minUint8(minCol, e.Col), maxUint8(maxCol, e.Col)
			minRow, maxRow = minUint8(minRow, e.Row), maxUint8(maxRow, e.Row)
		}
	}
	if !first {
		m.SpreadX = float64(maxCol - minCol)
		m.SpreadY = float64(maxRow - minRow)
	}

	return m
}

func buildTransition(events []DebugEvent, moments []Moment, fromIdx, toIdx int) Transition {
	currentPads := padSet(events, moments[fromIdx].EventIndices)
	nextPads := padSet(events, moments[toIdx].EventIndices)

	var shared, currentOnly, nextOnly []Pad
	for p := range currentPads {
		if nextPads[p] {
			shared = append(shared, p)
		} else {
			currentOnly = append(currentOnly, p)
		}
	}
	for p := range nextPads {
		if !currentPads[p] {
			nextOnly = append(nextOnly, p)
		}
	}
	sortPads(shared)
	sortPads(currentOnly)
	sortPads(nextOnly)

	currentFingerPad := fingerPadMap(events, moments[fromIdx].EventIndices)
	nextFingerPad := fingerPadMap(events, moments[toIdx].EventIndices)
	moves := 0
	for key, pad := range currentFingerPad {
		if nextPad, ok := nextFingerPad[key]; ok && nextPad != pad {
			moves++
		}
	}

	return Transition{
		FromMoment:      fromIdx,
		ToMoment:        toIdx,
		SharedPads:      shared,
		CurrentOnlyPads: currentOnly,
		NextOnlyPads:    nextOnly,
		FingerMoves:     moves,
	}
}

func padSet(events []DebugEvent, indices []int) map[Pad]bool {
	out := make(map[Pad]bool, len(indices))
	for _, idx := range indices {
		e := events[idx]
		if e.HasPad {
			out[Pad{Row: e.Row, Col: e.Col}] = true
		}
	}
	return out
}

func fingerPadMap(events []DebugEvent, indices []int) map[string]Pad {
	out := make(map[string]Pad, len(indices))
	for _, idx := range indices {
		e := events[idx]
		if !e.HasPad || e.Hand == nil || e.Finger == nil {
			continue
		}
		out[fingerUsageKey(*e.Hand, *e.Finger)] = Pad{Row: e.Row, Col: e.Col}
	}
	return out
}

func sortPads(pads []Pad) {
	sort.Slice(pads, func(i, j int) bool {
		if pads[i].Row != pads[j].Row {
			return pads[i].Row < pads[j].Row
		}
		return pads[i].Col < pads[j].Col
	})
}

func minUint8(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}

func maxUint8(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

package engine

import "math"

// Engine constants (spec.md §3 "Engine constants").
const (
	ActivationCost         = 5.0
	CrossoverPenaltyWeight = 20.0
	FatigueAccumRate       = 0.1  // per use
	FatigueDecayRate       = 0.05 // per second
	MaxFatigue             = 5.0

	// Beam/annealing constants.
	MaxHandSpeed        = 12.0 // grid-units/s
	SpeedCostWeight     = 0.5
	MinTimeDelta        = 0.001
	FallbackGripPenalty = 1000.0

	defaultComfortableSpan = 2.0
	stickinessWindow       = 5.0 // seconds
	stickinessPenalty      = 2.0
	driftWeight            = 0.5
)

func costIsInfinite(c float64) bool {
	return math.IsInf(c, 1)
}

// TransitionCost is the Fitts-style transition cost between two hand
// centroids with a hard speed ceiling (spec.md §4.3).
func TransitionCost(prev, curr Pose, dt float64) float64 {
	if dt <= MinTimeDelta {
		return 0
	}
	d := dist2(prev.Centroid.X, prev.Centroid.Y, curr.Centroid.X, curr.Centroid.Y)
	if d == 0 {
		return 0
	}
	speed := d / dt
	if speed > MaxHandSpeed {
		return math.Inf(1)
	}
	return d + SpeedCostWeight*speed
}

// AttractorCost is a linear spring pulling the current centroid toward
// the resting centroid.
func AttractorCost(curr, resting Pose, stiffness float64) float64 {
	d := dist2(curr.Centroid.X, curr.Centroid.Y, resting.Centroid.X, resting.Centroid.Y)
	return d * stiffness
}

// GripStretchCost penalizes a pose whose widest finger-pair span exceeds a
// comfortable span, quadratically as it approaches maxSpan.
func GripStretchCost(p Pose, comfortableSpan float64) float64 {
	s := p.MaxPairwiseSpan()
	if s <= comfortableSpan {
		return 0
	}
	e := clamp((s-comfortableSpan)/(maxSpan-comfortableSpan), 0, 1)
	return 10 * e * e
}

// comfortableSpanFor derives the comfortable-span parameter for
// GripStretchCost from neutral pad positions of the widest placed pair,
// falling back to the documented default when unavailable.
func comfortableSpanFor(p Pose, neutral map[Finger]Point) float64 {
	placed := p.PlacedFingers()
	if len(placed) < 2 || neutral == nil {
		return defaultComfortableSpan
	}
	var widest float64
	var f1, f2 Finger
	for i := range placed {
		for j := i + 1; j < len(placed); j++ {
			a, b := p.Fingers[placed[i]], p.Fingers[placed[j]]
			if d := dist2(a.X, a.Y, b.X, b.Y); d > widest {
				widest = d
				f1, f2 = placed[i], placed[j]
			}
		}
	}
	n1, ok1 := neutral[f1]
	n2, ok2 := neutral[f2]
	if !ok1 || !ok2 {
		return defaultComfortableSpan
	}
	return dist2(n1.X, n1.Y, n2.X, n2.Y)
}

// MovementCost is the per-finger cost of moving one finger to a pad,
// used for debug events and the simple per-finger engine state.
func MovementCost(wasPlaced bool, from, to Point, finger Finger, neutral map[Finger]Point) float64 {
	if !wasPlaced {
		return ActivationCost
	}
	d := dist2(from.X, from.Y, to.X, to.Y)
	cost := d * FingerWeight[finger]
	if n, ok := neutral[finger]; ok {
		cost += 0.1 * FingerWeight[finger] * dist2(to.X, to.Y, n.X, n.Y)
	}
	return cost
}

// DriftCost is the distance between the pose's center of gravity and the
// hand's neutral center, scaled by 0.5.
func DriftCost(p Pose, neutralCenter Point) float64 {
	cog := p.CenterOfGravity()
	return dist2(cog.X, cog.Y, neutralCenter.X, neutralCenter.Y) * driftWeight
}

// CrossoverCost sums fixed penalties for each violated topology rule,
// doubling the thumb-pinky rule's penalty in the extreme case where the
// thumb sits both above and outside the pinky.
func CrossoverCost(hand HandSide, p Pose) float64 {
	cost := 0.0
	get := func(f Finger) (Point, bool) {
		if p.Placed[f] {
			return p.Fingers[f], true
		}
		return Point{}, false
	}

	thumb, hasThumb := get(Thumb)
	pinky, hasPinky := get(Pinky)
	index, hasIndex := get(Index)
	middle, hasMiddle := get(Middle)
	ring, hasRing := get(Ring)

	if hasThumb && hasPinky {
		violatesCol := IfThen(hand == Right, thumb.X >= pinky.X, thumb.X <= pinky.X)
		violatesRow := thumb.Y >= pinky.Y
		switch {
		case violatesCol && violatesRow:
			cost += CrossoverPenaltyWeight * 2
		case violatesCol || violatesRow:
			cost += CrossoverPenaltyWeight
		}
	}

	if hasIndex && hasPinky {
		ok := IfThen(hand == Right, index.X <= pinky.X, index.X >= pinky.X)
		if !ok {
			cost += CrossoverPenaltyWeight
		}
	}

	if hasThumb && hasMiddle && thumb.Y > middle.Y+1.0 {
		cost += CrossoverPenaltyWeight
	}

	ordered := []struct {
		pt Point
		ok bool
	}{{index, hasIndex}, {middle, hasMiddle}, {ring, hasRing}, {pinky, hasPinky}}
	for i := 0; i < len(ordered)-1; i++ {
		a, b := ordered[i], ordered[i+1]
		if !a.ok || !b.ok {
			continue
		}
		ok := IfThen(hand == Right, a.pt.X < b.pt.X, a.pt.X > b.pt.X)
		if !ok {
			cost += CrossoverPenaltyWeight
		}
	}

	return cost
}

// StickinessKey identifies a (pitch, finger) pair for the recency ledger.
type StickinessKey struct {
	Pitch  int
	Finger Finger
}

// StickinessLedger is an explicit replacement for the source's
// module-level noteHistory global (spec.md §9): a bounded map from pitch
// to the last finger used and when. The Beam solver forks one per
// candidate branch (Clone) so branches don't corrupt each other's replay
// history; the Genetic solver carries a single one down its one
// chromosome-length walk. Nothing escapes a solver invocation.
type StickinessLedger struct {
	lastUse map[int]stickyEntry
}

type stickyEntry struct {
	finger Finger
	time   float64
}

// NewStickinessLedger returns an empty ledger.
func NewStickinessLedger() *StickinessLedger {
	return &StickinessLedger{lastUse: make(map[int]stickyEntry)}
}

// Clone returns an independent copy, so a beam search can fork one ledger
// per candidate branch without candidates corrupting each other's history.
func (l *StickinessLedger) Clone() *StickinessLedger {
	if l == nil {
		return NewStickinessLedger()
	}
	cp := make(map[int]stickyEntry, len(l.lastUse))
	for k, v := range l.lastUse {
		cp[k] = v
	}
	return &StickinessLedger{lastUse: cp}
}

// Penalty returns the finger-bounce penalty for replaying pitch with
// finger at timestamp t, and records the new use. If the same pitch is
// replayed with a different finger within the recency window, the
// penalty is 2.0*(1 - dt/window); otherwise zero.
func (l *StickinessLedger) Penalty(pitch int, finger Finger, t float64) float64 {
	penalty := 0.0
	if prev, ok := l.lastUse[pitch]; ok && prev.finger != finger {
		dt := t - prev.time
		if dt >= 0 && dt < stickinessWindow {
			penalty = stickinessPenalty * (1 - dt/stickinessWindow)
		}
	}
	l.lastUse[pitch] = stickyEntry{finger: finger, time: t}
	return penalty
}

// FatigueState tracks per-finger fatigue in [0, MaxFatigue] for one hand.
type FatigueState struct {
	level    [numFingers]float64
	lastTime float64
	hasTime  bool
}

// NewFatigueState returns a hand's fatigue tracker, all fingers at rest.
func NewFatigueState() *FatigueState {
	return &FatigueState{}
}

// Clone returns an independent copy, for the same reason as
// StickinessLedger.Clone.
func (f *FatigueState) Clone() *FatigueState {
	if f == nil {
		return NewFatigueState()
	}
	cp := *f
	return &cp
}

// Advance decays all fingers' fatigue for the elapsed time since the last
// recorded timestamp, then returns the per-finger cost contribution added
// when usedFingers are activated at time t.
func (f *FatigueState) Advance(t float64, usedFingers []Finger) map[Finger]float64 {
	if f.hasTime {
		dt := t - f.lastTime
		if dt > 0 {
			decay := dt * FatigueDecayRate
			for i := range f.level {
				f.level[i] = clamp(f.level[i]-decay, 0, MaxFatigue)
			}
		}
	}
	f.lastTime = t
	f.hasTime = true

	used := make(map[Finger]bool, len(usedFingers))
	for _, fi := range usedFingers {
		used[fi] = true
	}

	cost := make(map[Finger]float64, len(usedFingers))
	for _, fi := range usedFingers {
		f.level[fi] = clamp(f.level[fi]+FatigueAccumRate, 0, MaxFatigue)
		cost[fi] = f.level[fi]
	}
	return cost
}

// TotalGripCost combines transition, attractor and grip-stretch into the
// documented three-term total (spec.md §4.3); returns +Inf whenever the
// transition itself is infinite.
func TotalGripCost(transition, attractor, gripStretch float64) float64 {
	if costIsInfinite(transition) {
		return math.Inf(1)
	}
	return transition + attractor + gripStretch
}

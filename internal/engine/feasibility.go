package engine

import (
	"math"
	"sort"
)

const (
	idealReach = 2.0
	maxReach   = 4.0
	maxSpan    = 4.0
)

// Tier identifies which constraint-relaxation regime produced a grip.
type Tier uint8

const (
	Strict Tier = iota
	Relaxed
	Fallback
)

func (t Tier) String() string {
	switch t {
	case Strict:
		return "strict"
	case Relaxed:
		return "relaxed"
	default:
		return "fallback"
	}
}

// tierParams holds the per-tier relaxation thresholds from spec.md §4.2.
type tierParams struct {
	maxPairwiseSpan float64
	thumbRowSlack   float64
	allowColOverlap bool
	colOverlapSlack float64
}

var tiers = map[Tier]tierParams{
	Strict:  {maxPairwiseSpan: 5.5, thumbRowSlack: 1.0, allowColOverlap: false},
	Relaxed: {maxPairwiseSpan: 7.5, thumbRowSlack: 2.0, allowColOverlap: true, colOverlapSlack: 0.5},
}

// GripResult is a feasible placement of fingers on a chord, annotated with
// the tier of relaxation needed to find it.
type GripResult struct {
	Pose     Pose
	Tier     Tier
	IsFallback bool
}

// Reach reports whether a pad is within reach of a reference point.
func Reach(from Point, pad Point) bool {
	return dist2(from.X, from.Y, pad.X, pad.Y) <= maxReach
}

// Span reports whether the pairwise span of a pose's placed fingers
// respects the coarse wrist-span limit used outside grip generation.
func Span(p Pose) bool {
	return p.MaxPairwiseSpan() <= maxSpan+1.5 // 5.5, the strict grip bound
}

// Collision reports whether any two placed fingers in a pose share a pad.
func Collision(p Pose) bool {
	placed := p.PlacedFingers()
	for i := range placed {
		for j := i + 1; j < len(placed); j++ {
			a, b := p.Fingers[placed[i]], p.Fingers[placed[j]]
			if a == b {
				return true
			}
		}
	}
	return false
}

// Topology checks the per-hand finger-ordering rules of spec.md §4.2
// against whichever fingers in the pose are placed. Only pairs where both
// fingers are placed are checked; an unplaced finger imposes no constraint.
func Topology(hand HandSide, p Pose, thumbRowSlack float64, allowColOverlap bool, colOverlapSlack float64) bool {
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

	colOK := func(a, b float64, rightWantsLess bool) bool {
		if allowColOverlap && math.Abs(a-b) <= colOverlapSlack {
			return true
		}
		if rightWantsLess {
			return a < b
		}
		return a > b
	}

	if hasThumb && hasPinky {
		if hand == Right {
			if !(thumb.X < pinky.X || thumb.Y < pinky.Y) {
				return false
			}
		} else {
			if !(thumb.X > pinky.X || thumb.Y < pinky.Y) {
				return false
			}
		}
	}

	if hasIndex && hasPinky {
		if hand == Right {
			if !(index.X <= pinky.X || (allowColOverlap && math.Abs(index.X-pinky.X) <= colOverlapSlack)) {
				return false
			}
		} else {
			if !(index.X >= pinky.X || (allowColOverlap && math.Abs(index.X-pinky.X) <= colOverlapSlack)) {
				return false
			}
		}
	}

	if hasThumb && hasMiddle {
		if thumb.Y > middle.Y+thumbRowSlack {
			return false
		}
	}

	// Ordered sequence: index<middle<ring<pinky strictly by column for the
	// right hand; mirrored (index>middle>ring>pinky) for the left.
	ordered := []struct {
		pt Point
		ok bool
	}{{index, hasIndex}, {middle, hasMiddle}, {ring, hasRing}, {pinky, hasPinky}}
	for i := 0; i < len(ordered)-1; i++ {
		a, b := ordered[i], ordered[i+1]
		if !a.ok || !b.ok {
			continue
		}
		if hand == Right {
			if !colOK(a.pt.X, b.pt.X, true) {
				return false
			}
		} else {
			if !colOK(a.pt.X, b.pt.X, false) {
				return false
			}
		}
	}

	return true
}

// GenerateGrips is the valid-grip generator (spec.md §4.2): given 1..5 pads
// and a hand side, it enumerates biomechanically admissible placements
// using tiered constraint relaxation, guaranteed to return a non-empty list
// for any non-empty pad set of size <= 5.
func GenerateGrips(pads []Pad, hand HandSide) []GripResult {
	if len(pads) == 0 || len(pads) > 5 {
		return nil
	}

	for _, tier := range []Tier{Strict, Relaxed} {
		params := tiers[tier]
		if grips := enumerateTier(pads, hand, tier, params); len(grips) > 0 {
			return grips
		}
	}

	return []GripResult{fallbackGrip(pads, hand)}
}

// candidateFingers lists fingers in the priority order a hand naturally
// reaches for additional notes with, used both for permutation pruning
// and the fallback assignment.
var candidateFingers = [numFingers]Finger{Index, Middle, Ring, Thumb, Pinky}

// enumerateTier assigns each pad a distinct finger (permutation over the
// five fingers), pruning any partial assignment that already violates the
// tier's span bound.
func enumerateTier(pads []Pad, hand HandSide, tier Tier, params tierParams) []GripResult {
	n := len(pads)
	used := make([]bool, numFingers)
	assign := make([]Finger, n)
	var results []GripResult

	var recurse func(i int)
	recurse = func(i int) {
		if i == n {
			pose := poseFromAssignment(pads, assign)
			if Collision(pose) {
				return
			}
			if pose.MaxPairwiseSpan() > params.maxPairwiseSpan {
				return
			}
			if !Topology(hand, pose, params.thumbRowSlack, params.allowColOverlap, params.colOverlapSlack) {
				return
			}
			results = append(results, GripResult{Pose: pose, Tier: tier})
			return
		}
		for _, f := range candidateFingers {
			if used[f] {
				continue
			}
			used[f] = true
			assign[i] = f

			// Prune: partial span check against already-assigned fingers.
			partial := poseFromAssignment(pads[:i+1], assign[:i+1])
			if partial.MaxPairwiseSpan() <= params.maxPairwiseSpan {
				recurse(i + 1)
			}

			used[f] = false
		}
	}
	recurse(0)
	return results
}

func poseFromAssignment(pads []Pad, assign []Finger) Pose {
	fingers := make(map[Finger]Point, len(pads))
	for i, pad := range pads {
		fingers[assign[i]] = Point{X: float64(pad.Col), Y: float64(pad.Row)}
	}
	return NewPose(fingers)
}

// fallbackGrip constructs the last-resort placement: sort pads by column
// (ascending for left, descending for right), assign in priority order
// [index, middle, ring, thumb, pinky], take the first k.
func fallbackGrip(pads []Pad, hand HandSide) GripResult {
	sorted := append([]Pad(nil), pads...)
	sort.Slice(sorted, func(i, j int) bool {
		if hand == Left {
			return sorted[i].Col < sorted[j].Col
		}
		return sorted[i].Col > sorted[j].Col
	})

	k := len(sorted)
	if k > numFingers {
		k = numFingers
	}

	fingers := make(map[Finger]Point, k)
	for i := 0; i < k; i++ {
		pad := sorted[i]
		fingers[candidateFingers[i]] = Point{X: float64(pad.Col), Y: float64(pad.Row)}
	}

	return GripResult{Pose: NewPose(fingers), Tier: Fallback, IsFallback: true}
}

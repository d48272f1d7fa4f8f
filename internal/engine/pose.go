package engine

// Finger identifies one of the five fingers of a hand. The ordering
// matches spec: pinky < ring < middle < index < thumb, used by topology
// checks in feasibility.go.
type Finger uint8

const (
	Pinky Finger = iota
	Ring
	Middle
	Index
	Thumb

	numFingers = 5
)

func (f Finger) String() string {
	switch f {
	case Thumb:
		return "Thumb"
	case Index:
		return "Index"
	case Middle:
		return "Middle"
	case Ring:
		return "Ring"
	case Pinky:
		return "Pinky"
	default:
		return "Unknown"
	}
}

// FingerWeight is the per-finger strength weight used by the movement
// cost component. Heavier fingers (pinky, thumb) cost more to move.
var FingerWeight = [numFingers]float64{
	Pinky:  2.5,
	Ring:   1.1,
	Middle: 1.0,
	Index:  1.0,
	Thumb:  2.0,
}

// HandSide identifies which hand a pose or assignment belongs to.
type HandSide uint8

const (
	Left HandSide = iota
	Right
)

func (h HandSide) String() string {
	if h == Right {
		return "Right"
	}
	return "Left"
}

// Point is a location in grid units; X corresponds to column, Y to row.
type Point struct {
	X, Y float64
}

// Pose is a hand shape: a centroid plus up to five placed fingers.
// Invariant: Centroid equals the mean of placed fingers, or a default
// grid-center point when no finger is placed.
type Pose struct {
	Centroid Point
	Fingers  [numFingers]Point
	Placed   [numFingers]bool
}

// defaultGridCenter is used as the centroid of a Pose with no fingers placed.
var defaultGridCenter = Point{X: 3.5, Y: 3.5}

// NewPose builds a Pose from a finger->point mapping, deriving the centroid.
func NewPose(fingers map[Finger]Point) Pose {
	var p Pose
	for f, pt := range fingers {
		p.Fingers[f] = pt
		p.Placed[f] = true
	}
	p.Centroid = computeCentroid(p)
	return p
}

func computeCentroid(p Pose) Point {
	var sx, sy float64
	n := 0
	for f := range numFingers {
		if p.Placed[f] {
			sx += p.Fingers[f].X
			sy += p.Fingers[f].Y
			n++
		}
	}
	if n == 0 {
		return defaultGridCenter
	}
	return Point{X: sx / float64(n), Y: sy / float64(n)}
}

// PlacedFingers returns the list of fingers with a placed position.
func (p Pose) PlacedFingers() []Finger {
	out := make([]Finger, 0, numFingers)
	for f := range numFingers {
		if p.Placed[f] {
			out = append(out, Finger(f))
		}
	}
	return out
}

// MaxPairwiseSpan returns the largest Euclidean distance among placed fingers.
func (p Pose) MaxPairwiseSpan() float64 {
	placed := p.PlacedFingers()
	maxSpan := 0.0
	for i := range placed {
		for j := i + 1; j < len(placed); j++ {
			a, b := p.Fingers[placed[i]], p.Fingers[placed[j]]
			if d := dist2(a.X, a.Y, b.X, b.Y); d > maxSpan {
				maxSpan = d
			}
		}
	}
	return maxSpan
}

// CenterOfGravity returns the mean position of placed fingers, falling
// back to the centroid (already the same value, kept separate since
// Drift cost is defined against it explicitly in spec.md §4.3).
func (p Pose) CenterOfGravity() Point {
	return computeCentroid(p)
}

// DefaultRestingPose returns the engine's default "claw" resting pose for
// the given hand: left centroid (2,1.8), right centroid (5,1.8), thumbs tucked
// toward the keyboard's center column and pinkies toward the outer edge.
func DefaultRestingPose(hand HandSide) Pose {
	if hand == Left {
		return NewPose(map[Finger]Point{
			Pinky:  {X: 0, Y: 2},
			Ring:   {X: 1, Y: 2},
			Middle: {X: 2, Y: 2},
			Index:  {X: 3, Y: 2},
			Thumb:  {X: 4, Y: 1},
		})
	}
	return NewPose(map[Finger]Point{
		Thumb:  {X: 3, Y: 1},
		Index:  {X: 4, Y: 2},
		Middle: {X: 5, Y: 2},
		Ring:   {X: 6, Y: 2},
		Pinky:  {X: 7, Y: 2},
	})
}

// homeOf returns the event-analyzer's fallback "home" pad for a hand,
// used when a debug event's cost breakdown has no stretch bucket
// (spec.md §4.5).
func homeOf(hand HandSide) Point {
	if hand == Right {
		return Point{X: 5, Y: 0}
	}
	return Point{X: 1, Y: 0}
}

// NeutralPads returns a per-finger neutral pad position for a hand, taken
// directly from DefaultRestingPose. It takes no layout and resolves no
// pitches, so the result is the same for every layout; it does not adapt
// "comfortable spread" or "drift home" to where voices sit on the grid.
func NeutralPads(hand HandSide) map[Finger]Point {
	pose := DefaultRestingPose(hand)
	out := make(map[Finger]Point, numFingers)
	for f := range numFingers {
		if pose.Placed[f] {
			out[Finger(f)] = pose.Fingers[f]
		}
	}
	return out
}

package engine

import "fmt"

// Pad addresses one cell of the 8x8 grid. Rows are numbered bottom-to-top,
// columns left-to-right, both 0..7.
type Pad struct {
	Row, Col uint8
}

// String returns the external boundary form "<row>,<col>".
func (p Pad) String() string {
	return padKey(p)
}

// MarshalText lets Pad serve as a JSON object key (encoding/json only
// accepts string, integer or encoding.TextMarshaler map keys), so a Layout's
// Cells and FingerConstraints round-trip through fixture files.
func (p Pad) MarshalText() ([]byte, error) {
	return []byte(padKey(p)), nil
}

// UnmarshalText parses the "<row>,<col>" form produced by MarshalText.
func (p *Pad) UnmarshalText(text []byte) error {
	var row, col uint16
	if _, err := fmt.Sscanf(string(text), "%d,%d", &row, &col); err != nil {
		return fmt.Errorf("invalid pad %q: %w", text, err)
	}
	p.Row, p.Col = uint8(row), uint8(col)
	return nil
}

// Voice is the user-facing sound occupying a pad: a pitch plus display metadata.
type Voice struct {
	ID               string
	OriginalMIDINote int
	DisplayName      string
}

// LayoutMode selects the algorithmic pitch->pad tiling rule. The engine
// currently implements the standard quadrant-tiling convention; the field
// exists so instrument configs can be round-tripped even though only one
// mode is recognized today.
type LayoutMode string

const StandardLayoutMode LayoutMode = "standard"

// InstrumentConfig determines the algorithmic pitch->pad function.
type InstrumentConfig struct {
	BottomLeftNote int
	Rows, Cols     int
	LayoutMode     LayoutMode
}

// DefaultInstrumentConfig returns an 8x8 instrument rooted at MIDI note 36
// (a common drum-bank convention), the standard quadrant-tiling mode.
func DefaultInstrumentConfig() InstrumentConfig {
	return InstrumentConfig{BottomLeftNote: 36, Rows: 8, Cols: 8, LayoutMode: StandardLayoutMode}
}

// PitchToPad applies the quadrant-tiling rule (spec.md §3): pads tile the
// grid in banks of 16 (4x4 quadrants). Returns false if the pitch falls
// outside [0,127] or doesn't land in the current 8x8 window.
func (ic InstrumentConfig) PitchToPad(pitch int) (Pad, bool) {
	if pitch < 0 || pitch > 127 {
		return Pad{}, false
	}
	n := pitch - ic.BottomLeftNote
	if n < 0 || n >= ic.Rows*ic.Cols {
		return Pad{}, false
	}
	bank := n / 16
	quadrant := bank % 4
	local := n % 16
	localRow := uint8(local / 4)
	localCol := uint8(local % 4)

	var rowOff, colOff uint8
	switch quadrant {
	case 0:
		rowOff, colOff = 0, 0
	case 1:
		rowOff, colOff = 0, 4
	case 2:
		rowOff, colOff = 4, 0
	case 3:
		rowOff, colOff = 4, 4
	}
	return Pad{Row: rowOff + localRow, Col: colOff + localCol}, true
}

// FingerConstraint forces a specific finger on a pad.
type FingerConstraint struct {
	Finger Finger
}

// Layout is a user-configured, partial mapping of pads to voices and
// optional forced fingers. It owns no file format: callers own
// persistence, the engine only reads it.
type Layout struct {
	ID               string
	Cells            map[Pad]Voice
	FingerConstraints map[Pad]Finger
	Version          int
	ScoreCache       *float64

	pitchIndex     map[int]Pad
	pitchIndexVer  int
}

// NewLayout returns an empty layout ready to be populated.
func NewLayout(id string) *Layout {
	return &Layout{
		ID:                id,
		Cells:             make(map[Pad]Voice),
		FingerConstraints: make(map[Pad]Finger),
		Version:           1,
	}
}

// Set places a voice at a pad, bumping the layout version and invalidating
// the score cache, mirroring a user edit.
func (l *Layout) Set(pad Pad, v Voice) {
	l.Cells[pad] = v
	l.Version++
	l.ScoreCache = nil
}

// Clear removes whatever voice occupies a pad.
func (l *Layout) Clear(pad Pad) {
	delete(l.Cells, pad)
	delete(l.FingerConstraints, pad)
	l.Version++
	l.ScoreCache = nil
}

// Clone returns a deep copy of the layout, safe for independent mutation
// (used by Annealing to generate candidate mappings without aliasing).
func (l *Layout) Clone() *Layout {
	cc := &Layout{
		ID:                l.ID,
		Cells:             make(map[Pad]Voice, len(l.Cells)),
		FingerConstraints: make(map[Pad]Finger, len(l.FingerConstraints)),
		Version:           l.Version,
	}
	for k, v := range l.Cells {
		cc.Cells[k] = v
	}
	for k, v := range l.FingerConstraints {
		cc.FingerConstraints[k] = v
	}
	return cc
}

// byPitch lazily builds and caches a reverse pitch->pad index, rebuilt
// whenever the layout's version changes.
func (l *Layout) byPitch() map[int]Pad {
	if l.pitchIndex != nil && l.pitchIndexVer == l.Version {
		return l.pitchIndex
	}
	idx := make(map[int]Pad, len(l.Cells))
	for pad, v := range l.Cells {
		idx[v.OriginalMIDINote] = pad
	}
	l.pitchIndex = idx
	l.pitchIndexVer = l.Version
	return idx
}

// ResolvePad is the Grid-Map service (spec.md §4.1): the layout's explicit
// mapping takes precedence (exact pitch match over its voices), otherwise
// the instrument's algorithmic pitch->pad function applies. Pure and
// side-effect free except for the layout's internal reverse-index cache.
func ResolvePad(pitch int, layout *Layout, instrument InstrumentConfig) (Pad, bool) {
	if layout != nil {
		if pad, ok := layout.byPitch()[pitch]; ok {
			return pad, true
		}
	}
	return instrument.PitchToPad(pitch)
}

// NoteEvent is one note in a performance.
type NoteEvent struct {
	Pitch     int
	StartTime float64 // seconds
	Duration  float64 // seconds
}

// Performance is a time-ordered sequence of note events plus a tempo hint.
type Performance struct {
	Tempo  float64
	Name   string
	Events []NoteEvent
}

// ManualAssignment pins an event index to a specific hand and finger.
type ManualAssignment struct {
	Hand   HandSide
	Finger Finger
}

// EngineConfig is the tunable knobs shared by all solvers.
type EngineConfig struct {
	BeamWidth        int
	Stiffness        float64 // spring constant in [0,1]
	RestingPoseLeft  Pose
	RestingPoseRight Pose
}

// DefaultEngineConfig returns the documented defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		BeamWidth:        8,
		Stiffness:        0.3,
		RestingPoseLeft:  DefaultRestingPose(Left),
		RestingPoseRight: DefaultRestingPose(Right),
	}
}

func (c EngineConfig) restingPose(hand HandSide) Pose {
	if hand == Right {
		return c.RestingPoseRight
	}
	return c.RestingPoseLeft
}

// Difficulty classifies a per-note total cost.
type Difficulty uint8

const (
	Easy Difficulty = iota
	Medium
	Hard
	Unplayable
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "Easy"
	case Medium:
		return "Medium"
	case Hard:
		return "Hard"
	case Unplayable:
		return "Unplayable"
	default:
		return "Unknown"
	}
}

// ClassifyDifficulty implements spec.md §4.3's thresholds.
func ClassifyDifficulty(cost float64) Difficulty {
	switch {
	case costIsInfinite(cost) || cost > 100:
		return Unplayable
	case cost > 10:
		return Hard
	case cost > 3:
		return Medium
	default:
		return Easy
	}
}

// CostBreakdown is the named scalar bucket decomposition of a cost.
type CostBreakdown struct {
	Movement  float64
	Stretch   float64
	Drift     float64
	Bounce    float64
	Fatigue   float64
	Crossover float64
	Total     float64
}

func (b *CostBreakdown) add(other CostBreakdown) {
	b.Movement += other.Movement
	b.Stretch += other.Stretch
	b.Drift += other.Drift
	b.Bounce += other.Bounce
	b.Fatigue += other.Fatigue
	b.Crossover += other.Crossover
	b.Total += other.Total
}

// DebugEvent is the per-input-note record produced by every solver.
type DebugEvent struct {
	Pitch         int
	StartTime     float64
	Hand          *HandSide // nil means "unplayable"
	Finger        *Finger   // nil when unplayable
	TotalCost     float64
	Breakdown     *CostBreakdown
	Difficulty    Difficulty
	Row, Col      uint8
	HasPad        bool
}

// AssignedHandString returns "Left", "Right" or "Unplayable" for display.
func (e DebugEvent) AssignedHandString() string {
	if e.Hand == nil {
		return "Unplayable"
	}
	return e.Hand.String()
}

// SolverType tags which algorithm produced a SolverResult.
type SolverType string

const (
	BeamSolverType      SolverType = "beam"
	GeneticSolverType   SolverType = "genetic"
	AnnealingSolverType SolverType = "annealing"
)

// EvolutionLogEntry records one generation of the genetic solver.
type EvolutionLogEntry struct {
	Generation int
	Best       float64
	Average    float64
	Worst      float64
}

// AnnealingSnapshot records one iteration of the annealing solver.
// ComponentSums is the current layout's average cost-component breakdown
// (the evaluating Beam solve's AverageMetrics); ComponentShares is the same
// breakdown normalized so its buckets sum to ~1, for charting relative
// contribution over the run.
type AnnealingSnapshot struct {
	Iteration             int
	Temperature           float64
	CurrentCost           float64
	BestCost              float64
	Accepted              bool
	DeltaCost             float64
	AcceptanceProbability float64
	ComponentSums         CostBreakdown
	ComponentShares       CostBreakdown
}

// OptimizationLogEntry is a coarse per-iteration summary, kept for UI
// compatibility with the evolution log shape used by the genetic solver.
type OptimizationLogEntry struct {
	Iteration int
	BestCost  float64
}

// SolverResult is the output of any solver.
type SolverResult struct {
	Score            int
	UnplayableCount  int
	HardCount        int
	DebugEvents      []DebugEvent
	FingerUsageStats map[string]int
	FatigueMap       map[string]float64
	AverageDrift     float64
	AverageMetrics   CostBreakdown

	// BestNodeAverageCost is bestNode.TotalCost / eventCount: the
	// non-reconstructed alternative to AverageMetrics.Total (see
	// DESIGN.md, Open Question on averageMetrics.total shape).
	BestNodeAverageCost float64

	EvolutionLog    []EvolutionLogEntry    `json:",omitempty"`
	OptimizationLog []OptimizationLogEntry `json:",omitempty"`
	AnnealingTrace  []AnnealingSnapshot    `json:",omitempty"`

	RunID string
}

// Solver is the shared contract implemented by Beam, Genetic and Annealing.
type Solver interface {
	Name() string
	Type() SolverType
	IsSynchronous() bool
}

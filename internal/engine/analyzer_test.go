package engine

import "testing"

func debugEvent(t float64, row, col uint8, hand HandSide, finger Finger, cost float64) DebugEvent {
	h, f := hand, finger
	return DebugEvent{
		StartTime:  t,
		Hand:       &h,
		Finger:     &f,
		Row:        row,
		Col:        col,
		HasPad:     true,
		TotalCost:  cost,
		Difficulty: ClassifyDifficulty(cost),
	}
}

func TestAnalyzeEventsGroupsSimultaneousNotesIntoOneMoment(t *testing.T) {
	events := []DebugEvent{
		debugEvent(0, 0, 0, Left, Index, 2),
		debugEvent(0, 0, 1, Left, Middle, 2),
		debugEvent(1, 0, 2, Left, Ring, 2),
	}
	res := AnalyzeEvents(events)
	if len(res.Moments) != 2 {
		t.Fatalf("len(Moments) = %d, want 2", len(res.Moments))
	}
	if res.Moments[0].Polyphony != 2 {
		t.Errorf("Moments[0].Polyphony = %d, want 2", res.Moments[0].Polyphony)
	}
	if res.Moments[1].Polyphony != 1 {
		t.Errorf("Moments[1].Polyphony = %d, want 1", res.Moments[1].Polyphony)
	}
}

func TestAnalyzeEventsComputesOneTransitionPerMomentPair(t *testing.T) {
	events := []DebugEvent{
		debugEvent(0, 0, 0, Left, Index, 2),
		debugEvent(1, 0, 1, Left, Index, 2),
		debugEvent(2, 0, 2, Left, Index, 2),
	}
	res := AnalyzeEvents(events)
	if len(res.Transitions) != 2 {
		t.Fatalf("len(Transitions) = %d, want 2", len(res.Transitions))
	}
	if res.Transitions[0].FingerMoves != 1 {
		t.Errorf("Transitions[0].FingerMoves = %d, want 1 (index moved from col 0 to col 1)", res.Transitions[0].FingerMoves)
	}
}

func TestAnalyzeEventsTransitionSharedPads(t *testing.T) {
	events := []DebugEvent{
		debugEvent(0, 0, 0, Left, Index, 2),
		debugEvent(0, 0, 1, Left, Middle, 2),
		debugEvent(1, 0, 0, Left, Index, 2),
		debugEvent(1, 0, 3, Left, Ring, 2),
	}
	res := AnalyzeEvents(events)
	if len(res.Transitions) != 1 {
		t.Fatalf("len(Transitions) = %d, want 1", len(res.Transitions))
	}
	tr := res.Transitions[0]
	if len(tr.SharedPads) != 1 || tr.SharedPads[0] != (Pad{Row: 0, Col: 0}) {
		t.Errorf("SharedPads = %v, want [{0 0}]", tr.SharedPads)
	}
	if len(tr.CurrentOnlyPads) != 1 || tr.CurrentOnlyPads[0] != (Pad{Row: 0, Col: 1}) {
		t.Errorf("CurrentOnlyPads = %v, want [{0 1}]", tr.CurrentOnlyPads)
	}
	if len(tr.NextOnlyPads) != 1 || tr.NextOnlyPads[0] != (Pad{Row: 0, Col: 3}) {
		t.Errorf("NextOnlyPads = %v, want [{0 3}]", tr.NextOnlyPads)
	}
}

func TestAnalyzeEventsSkipsUnplayableNotesInMetrics(t *testing.T) {
	events := []DebugEvent{
		{StartTime: 0, Difficulty: Unplayable},
	}
	res := AnalyzeEvents(events)
	if len(res.Moments) != 1 {
		t.Fatalf("len(Moments) = %d, want 1", len(res.Moments))
	}
	if res.Moments[0].Polyphony != 1 {
		t.Errorf("Polyphony = %d, want 1 (unplayable events still count toward polyphony)", res.Moments[0].Polyphony)
	}
	if res.Moments[0].AnatomicalStretch != 1.0 {
		t.Errorf("AnatomicalStretch = %v, want 1.0 for an unplayable note", res.Moments[0].AnatomicalStretch)
	}
	if res.Moments[0].CompositeDifficulty != 1.0 {
		t.Errorf("CompositeDifficulty = %v, want 1.0 for an unplayable note", res.Moments[0].CompositeDifficulty)
	}
}

func TestFocusOnionSkinBuildsHoldAndImpossibleMoves(t *testing.T) {
	events := []DebugEvent{
		debugEvent(0, 4, 0, Left, Index, 2),
		debugEvent(1, 4, 0, Left, Index, 2), // hold: same pad, same finger
		debugEvent(2, 7, 7, Left, Index, 2), // far jump: impossible
	}
	res := AnalyzeEvents(events)
	if len(res.Moments) != 3 {
		t.Fatalf("len(Moments) = %d, want 3", len(res.Moments))
	}

	hold := res.FocusOnionSkin(events, 0)
	if hold == nil {
		t.Fatal("FocusOnionSkin(0) = nil")
	}
	if len(hold.FingerMoves) != 1 {
		t.Fatalf("len(FingerMoves) = %d, want 1", len(hold.FingerMoves))
	}
	mv := hold.FingerMoves[0]
	if !mv.IsHold {
		t.Error("expected IsHold for a same-pad repeat")
	}
	if mv.FromPad == nil || *mv.FromPad != (Pad{Row: 4, Col: 0}) {
		t.Errorf("FromPad = %v, want {4 0}", mv.FromPad)
	}
	if mv.ToPad != (Pad{Row: 4, Col: 0}) {
		t.Errorf("ToPad = %v, want {4 0}", mv.ToPad)
	}
	if mv.IsImpossible {
		t.Error("a hold must never be impossible")
	}

	jump := res.FocusOnionSkin(events, 1)
	if jump == nil || len(jump.FingerMoves) != 1 {
		t.Fatalf("FocusOnionSkin(1) finger moves = %v", jump)
	}
	jmv := jump.FingerMoves[0]
	if !jmv.IsImpossible {
		t.Errorf("expected IsImpossible for rawDistance %v > maxReach", jmv.RawDistance)
	}
	if jmv.RawDistance <= maxReach {
		t.Errorf("RawDistance = %v, want > %v", jmv.RawDistance, maxReach)
	}

	last := res.FocusOnionSkin(events, 2)
	if last == nil || last.Next != nil {
		t.Fatalf("FocusOnionSkin(2) should have no Next, got %+v", last)
	}
	if last.Previous == nil {
		t.Error("FocusOnionSkin(2) should have a Previous")
	}

	if res.FocusOnionSkin(events, -1) != nil || res.FocusOnionSkin(events, 3) != nil {
		t.Error("FocusOnionSkin with an out-of-range index should return nil")
	}
}

func TestAnalyzeEventsEmptyInput(t *testing.T) {
	res := AnalyzeEvents(nil)
	if len(res.Moments) != 0 || len(res.Transitions) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

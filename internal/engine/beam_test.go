package engine

import "testing"

func simplePerformance() Performance {
	return Performance{
		Tempo: 120,
		Name:  "test",
		Events: []NoteEvent{
			{Pitch: 36, StartTime: 0, Duration: 0.25},
			{Pitch: 38, StartTime: 0, Duration: 0.25},
			{Pitch: 40, StartTime: 0.5, Duration: 0.25},
			{Pitch: 45, StartTime: 1.0, Duration: 0.5},
			{Pitch: 50, StartTime: 1.5, Duration: 0.25},
		},
	}
}

func TestBeamSolverProducesOneEventPerNote(t *testing.T) {
	perf := simplePerformance()
	solver := NewBeamSolver(DefaultEngineConfig())
	res := solver.Solve(perf, DefaultInstrumentConfig(), NewLayout("t"), nil)

	if len(res.DebugEvents) != len(perf.Events) {
		t.Fatalf("len(DebugEvents) = %d, want %d", len(res.DebugEvents), len(perf.Events))
	}
	for i, e := range res.DebugEvents {
		if e.Pitch != perf.Events[i].Pitch {
			t.Errorf("event %d: Pitch = %d, want %d", i, e.Pitch, perf.Events[i].Pitch)
		}
	}
	if res.RunID == "" {
		t.Error("expected a non-empty RunID")
	}
}

func TestBeamSolverMarksUnresolvedPitchUnplayable(t *testing.T) {
	perf := Performance{Events: []NoteEvent{{Pitch: -1, StartTime: 0, Duration: 0.1}}}
	solver := NewBeamSolver(DefaultEngineConfig())
	res := solver.Solve(perf, DefaultInstrumentConfig(), NewLayout("t"), nil)

	if len(res.DebugEvents) != 1 {
		t.Fatalf("len(DebugEvents) = %d, want 1", len(res.DebugEvents))
	}
	if res.DebugEvents[0].Difficulty != Unplayable || res.DebugEvents[0].Hand != nil {
		t.Errorf("expected an unplayable, hand-less event, got %+v", res.DebugEvents[0])
	}
	if res.UnplayableCount != 1 {
		t.Errorf("UnplayableCount = %d, want 1", res.UnplayableCount)
	}
}

func TestBeamSolverHonorsManualAssignment(t *testing.T) {
	perf := Performance{Events: []NoteEvent{
		{Pitch: 36, StartTime: 0, Duration: 0.25},
		{Pitch: 38, StartTime: 0, Duration: 0.25},
	}}
	manual := map[int]ManualAssignment{0: {Hand: Right, Finger: Thumb}}

	solver := NewBeamSolver(DefaultEngineConfig())
	res := solver.Solve(perf, DefaultInstrumentConfig(), NewLayout("t"), manual)

	e := res.DebugEvents[0]
	if e.Hand == nil || *e.Hand != Right {
		t.Fatalf("event 0: Hand = %v, want Right", e.Hand)
	}
	if e.Finger == nil || *e.Finger != Thumb {
		t.Fatalf("event 0: Finger = %v, want Thumb", e.Finger)
	}
}

func TestBeamSolverGripCacheRecordsHits(t *testing.T) {
	// Two moments resolving to the same pad set/hand should hit the cache
	// on the second lookup.
	perf := Performance{Events: []NoteEvent{
		{Pitch: 36, StartTime: 0, Duration: 0.1},
		{Pitch: 36, StartTime: 1, Duration: 0.1},
	}}
	solver := NewBeamSolver(DefaultEngineConfig())
	solver.Solve(perf, DefaultInstrumentConfig(), NewLayout("t"), nil)

	stats := solver.Stats()
	if stats.Hits == 0 {
		t.Errorf("expected at least one grip-cache hit, got %+v", stats)
	}
}

func TestBeamSolverRespectsBeamWidth(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.BeamWidth = 1
	perf := simplePerformance()
	solver := NewBeamSolver(cfg)
	res := solver.Solve(perf, DefaultInstrumentConfig(), NewLayout("t"), nil)
	if len(res.DebugEvents) != len(perf.Events) {
		t.Fatalf("len(DebugEvents) = %d, want %d even at BeamWidth=1", len(res.DebugEvents), len(perf.Events))
	}
}

package engine

import "testing"

func TestPitchToPadQuadrantTiling(t *testing.T) {
	ic := DefaultInstrumentConfig() // BottomLeftNote 36, 8x8

	tests := []struct {
		pitch int
		want  Pad
		ok    bool
	}{
		{36, Pad{Row: 0, Col: 0}, true},
		{39, Pad{Row: 0, Col: 3}, true},
		{40, Pad{Row: 1, Col: 0}, true}, // local index 4 wraps to row 1 within the quadrant
		{52, Pad{Row: 0, Col: 4}, true}, // bank 1 lands in the second quadrant
		{35, Pad{}, false},              // below BottomLeftNote
		{36 + 64, Pad{}, false},         // outside the 8x8 window
		{-1, Pad{}, false},
		{128, Pad{}, false},
	}
	for _, tt := range tests {
		got, ok := ic.PitchToPad(tt.pitch)
		if ok != tt.ok {
			t.Errorf("PitchToPad(%d) ok = %v, want %v", tt.pitch, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("PitchToPad(%d) = %+v, want %+v", tt.pitch, got, tt.want)
		}
	}
}

func TestPadTextRoundTrip(t *testing.T) {
	p := Pad{Row: 6, Col: 2}
	text, err := p.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(text) != "6,2" {
		t.Errorf("MarshalText = %q, want %q", text, "6,2")
	}

	var got Pad
	if err := got.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if got != p {
		t.Errorf("round-tripped pad = %+v, want %+v", got, p)
	}
}

func TestPadUnmarshalTextRejectsGarbage(t *testing.T) {
	var p Pad
	if err := p.UnmarshalText([]byte("not-a-pad")); err == nil {
		t.Error("expected an error for a malformed pad string")
	}
}

func TestLayoutSetClearBumpsVersionAndInvalidatesCache(t *testing.T) {
	l := NewLayout("test")
	cache := 3.5
	l.ScoreCache = &cache
	startVersion := l.Version

	l.Set(Pad{Row: 0, Col: 0}, Voice{ID: "kick", OriginalMIDINote: 36})
	if l.Version != startVersion+1 {
		t.Errorf("Version after Set = %d, want %d", l.Version, startVersion+1)
	}
	if l.ScoreCache != nil {
		t.Error("expected ScoreCache to be invalidated after Set")
	}

	l.FingerConstraints[Pad{Row: 0, Col: 0}] = Index
	l.ScoreCache = &cache
	l.Clear(Pad{Row: 0, Col: 0})
	if l.Version != startVersion+2 {
		t.Errorf("Version after Clear = %d, want %d", l.Version, startVersion+2)
	}
	if l.ScoreCache != nil {
		t.Error("expected ScoreCache to be invalidated after Clear")
	}
	if _, ok := l.Cells[Pad{Row: 0, Col: 0}]; ok {
		t.Error("expected Cells entry removed after Clear")
	}
	if _, ok := l.FingerConstraints[Pad{Row: 0, Col: 0}]; ok {
		t.Error("expected FingerConstraints entry removed after Clear")
	}
}

func TestLayoutCloneIsIndependent(t *testing.T) {
	l := NewLayout("test")
	l.Set(Pad{Row: 1, Col: 1}, Voice{ID: "a", OriginalMIDINote: 40})
	clone := l.Clone()

	clone.Set(Pad{Row: 2, Col: 2}, Voice{ID: "b", OriginalMIDINote: 41})
	if _, ok := l.Cells[Pad{Row: 2, Col: 2}]; ok {
		t.Error("mutating the clone mutated the original")
	}
}

func TestResolvePadPrefersLayoutOverInstrument(t *testing.T) {
	layout := NewLayout("test")
	instrument := DefaultInstrumentConfig()
	pinnedPad := Pad{Row: 7, Col: 7}
	layout.Set(pinnedPad, Voice{ID: "custom", OriginalMIDINote: 36})

	got, ok := ResolvePad(36, layout, instrument)
	if !ok || got != pinnedPad {
		t.Errorf("ResolvePad(36) = %+v, %v, want %+v, true (layout override)", got, ok, pinnedPad)
	}

	got, ok = ResolvePad(37, layout, instrument)
	algorithmic, _ := instrument.PitchToPad(37)
	if !ok || got != algorithmic {
		t.Errorf("ResolvePad(37) = %+v, %v, want %+v, true (algorithmic fallback)", got, ok, algorithmic)
	}
}

func TestClassifyDifficultyThresholds(t *testing.T) {
	tests := []struct {
		cost float64
		want Difficulty
	}{
		{0, Easy},
		{3, Easy},
		{3.1, Medium},
		{10, Medium},
		{10.1, Hard},
		{100, Hard},
		{100.1, Unplayable},
	}
	for _, tt := range tests {
		if got := ClassifyDifficulty(tt.cost); got != tt.want {
			t.Errorf("ClassifyDifficulty(%v) = %v, want %v", tt.cost, got, tt.want)
		}
	}
}

package engine

import (
	"fmt"
	"testing"
)

func TestFingerString(t *testing.T) {
	tests := []struct {
		f    Finger
		want string
	}{
		{Pinky, "Pinky"}, {Ring, "Ring"}, {Middle, "Middle"}, {Index, "Index"}, {Thumb, "Thumb"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.f.String(); got != tt.want {
				t.Errorf("Finger(%d).String() = %q, want %q", tt.f, got, tt.want)
			}
		})
	}
}

func TestHandSideString(t *testing.T) {
	if Left.String() != "Left" {
		t.Errorf("Left.String() = %q, want Left", Left.String())
	}
	if Right.String() != "Right" {
		t.Errorf("Right.String() = %q, want Right", Right.String())
	}
}

func TestNewPoseCentroidIsMeanOfPlaced(t *testing.T) {
	p := NewPose(map[Finger]Point{
		Index:  {X: 2, Y: 2},
		Middle: {X: 4, Y: 2},
	})
	want := Point{X: 3, Y: 2}
	if p.Centroid != want {
		t.Errorf("Centroid = %+v, want %+v", p.Centroid, want)
	}
	if !p.Placed[Index] || !p.Placed[Middle] {
		t.Error("expected Index and Middle to be placed")
	}
	if p.Placed[Thumb] {
		t.Error("expected Thumb to be unplaced")
	}
}

func TestNewPoseEmptyFallsBackToGridCenter(t *testing.T) {
	p := NewPose(nil)
	if p.Centroid != defaultGridCenter {
		t.Errorf("Centroid = %+v, want %+v", p.Centroid, defaultGridCenter)
	}
}

func TestMaxPairwiseSpan(t *testing.T) {
	p := NewPose(map[Finger]Point{
		Index: {X: 0, Y: 0},
		Ring:  {X: 3, Y: 4},
	})
	if got := p.MaxPairwiseSpan(); got != 5 {
		t.Errorf("MaxPairwiseSpan = %v, want 5", got)
	}
}

func TestMaxPairwiseSpanSingleFingerIsZero(t *testing.T) {
	p := NewPose(map[Finger]Point{Index: {X: 1, Y: 1}})
	if got := p.MaxPairwiseSpan(); got != 0 {
		t.Errorf("MaxPairwiseSpan = %v, want 0", got)
	}
}

func TestDefaultRestingPoseMirrorsHands(t *testing.T) {
	left := DefaultRestingPose(Left)
	right := DefaultRestingPose(Right)
	if left.Centroid.X >= right.Centroid.X {
		t.Errorf("expected left centroid X (%v) < right centroid X (%v)", left.Centroid.X, right.Centroid.X)
	}
	for f := Finger(0); f < numFingers; f++ {
		if !left.Placed[f] || !right.Placed[f] {
			t.Errorf("finger %v expected placed on both hands", f)
		}
	}
}

func TestNeutralPadsMatchesRestingPose(t *testing.T) {
	for _, hand := range []HandSide{Left, Right} {
		t.Run(fmt.Sprint(hand), func(t *testing.T) {
			neutral := NeutralPads(hand)
			resting := DefaultRestingPose(hand)
			if len(neutral) != numFingers {
				t.Fatalf("len(neutral) = %d, want %d", len(neutral), numFingers)
			}
			for f, pt := range neutral {
				if resting.Fingers[f] != pt {
					t.Errorf("finger %v: neutral %+v != resting %+v", f, pt, resting.Fingers[f])
				}
			}
		})
	}
}

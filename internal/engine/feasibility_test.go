package engine

import (
	"fmt"
	"testing"
)

func TestGenerateGripsNonEmptyForAllSizes(t *testing.T) {
	base := []Pad{{Row: 2, Col: 3}, {Row: 2, Col: 4}, {Row: 2, Col: 5}, {Row: 3, Col: 4}, {Row: 3, Col: 5}}
	for n := 1; n <= 5; n++ {
		for _, hand := range []HandSide{Left, Right} {
			t.Run(fmt.Sprintf("n=%d/%v", n, hand), func(t *testing.T) {
				grips := GenerateGrips(base[:n], hand)
				if len(grips) == 0 {
					t.Fatalf("GenerateGrips returned no grips for %d pads", n)
				}
			})
		}
	}
}

func TestGenerateGripsEmptyOrOversizedReturnsNil(t *testing.T) {
	if got := GenerateGrips(nil, Left); got != nil {
		t.Errorf("GenerateGrips(nil) = %v, want nil", got)
	}
	six := []Pad{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 0, Col: 3}, {Row: 0, Col: 4}, {Row: 0, Col: 5}}
	if got := GenerateGrips(six, Left); got != nil {
		t.Errorf("GenerateGrips(6 pads) = %v, want nil", got)
	}
}

func TestGenerateGripsWidelySpacedFallsBackWithoutCollision(t *testing.T) {
	// Pads far enough apart that no strict/relaxed assignment satisfies the
	// span bound; GenerateGrips must still produce a collision-free grip.
	wide := []Pad{{Row: 0, Col: 0}, {Row: 7, Col: 7}, {Row: 0, Col: 7}}
	grips := GenerateGrips(wide, Right)
	if len(grips) != 1 || !grips[0].IsFallback {
		t.Fatalf("expected exactly one fallback grip, got %+v", grips)
	}
	if Collision(grips[0].Pose) {
		t.Error("fallback grip must not collide fingers on the same pad")
	}
}

func TestCollisionDetectsSharedPad(t *testing.T) {
	p := NewPose(map[Finger]Point{
		Index:  {X: 1, Y: 1},
		Middle: {X: 1, Y: 1},
	})
	if !Collision(p) {
		t.Error("expected a collision when two fingers share a pad")
	}
}

func TestTopologyRightHandOrdering(t *testing.T) {
	ordered := NewPose(map[Finger]Point{
		Index:  {X: 4, Y: 2},
		Middle: {X: 5, Y: 2},
		Ring:   {X: 6, Y: 2},
		Pinky:  {X: 7, Y: 2},
	})
	if !Topology(Right, ordered, 1.0, false, 0) {
		t.Error("expected a properly ordered right-hand grip to pass topology")
	}

	reversed := NewPose(map[Finger]Point{
		Index: {X: 7, Y: 2},
		Pinky: {X: 4, Y: 2},
	})
	if Topology(Right, reversed, 1.0, false, 0) {
		t.Error("expected a reversed index/pinky placement to fail topology")
	}
}

func TestTopologyUnplacedFingersImposeNoConstraint(t *testing.T) {
	single := NewPose(map[Finger]Point{Index: {X: 3, Y: 2}})
	if !Topology(Right, single, 1.0, false, 0) {
		t.Error("a single placed finger should always pass topology")
	}
}

func TestSpanRespectsStrictBound(t *testing.T) {
	tight := NewPose(map[Finger]Point{Index: {X: 0, Y: 0}, Ring: {X: 1, Y: 0}})
	if !Span(tight) {
		t.Error("expected a one-unit span to pass Span")
	}
	wide := NewPose(map[Finger]Point{Index: {X: 0, Y: 0}, Ring: {X: 7, Y: 7}})
	if Span(wide) {
		t.Error("expected a corner-to-corner span to fail Span")
	}
}

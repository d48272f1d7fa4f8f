package engine

import (
	"math"
	"testing"
)

func TestTransitionCostZeroDtIsFree(t *testing.T) {
	p := NewPose(map[Finger]Point{Index: {X: 0, Y: 0}})
	q := NewPose(map[Finger]Point{Index: {X: 5, Y: 5}})
	if got := TransitionCost(p, q, 0); got != 0 {
		t.Errorf("TransitionCost with dt=0 = %v, want 0", got)
	}
}

func TestTransitionCostExceedsMaxSpeedIsInfinite(t *testing.T) {
	p := NewPose(map[Finger]Point{Index: {X: 0, Y: 0}})
	q := NewPose(map[Finger]Point{Index: {X: 7, Y: 7}})
	got := TransitionCost(p, q, 0.01) // speed far beyond MaxHandSpeed
	if !costIsInfinite(got) {
		t.Errorf("TransitionCost = %v, want +Inf", got)
	}
}

func TestTransitionCostWithinSpeedLimit(t *testing.T) {
	p := NewPose(map[Finger]Point{Index: {X: 0, Y: 0}})
	q := NewPose(map[Finger]Point{Index: {X: 1, Y: 0}})
	got := TransitionCost(p, q, 1.0) // speed 1, well under MaxHandSpeed
	want := 1.0 + SpeedCostWeight*1.0
	if got != want {
		t.Errorf("TransitionCost = %v, want %v", got, want)
	}
}

func TestGripStretchCostBelowComfortableIsZero(t *testing.T) {
	p := NewPose(map[Finger]Point{Index: {X: 0, Y: 0}, Middle: {X: 1, Y: 0}})
	if got := GripStretchCost(p, defaultComfortableSpan); got != 0 {
		t.Errorf("GripStretchCost = %v, want 0", got)
	}
}

func TestGripStretchCostGrowsQuadratically(t *testing.T) {
	near := NewPose(map[Finger]Point{Index: {X: 0, Y: 0}, Pinky: {X: 3, Y: 0}})
	far := NewPose(map[Finger]Point{Index: {X: 0, Y: 0}, Pinky: {X: 4, Y: 0}})
	costNear := GripStretchCost(near, defaultComfortableSpan)
	costFar := GripStretchCost(far, defaultComfortableSpan)
	if costFar <= costNear {
		t.Errorf("expected cost to grow with span: near=%v far=%v", costNear, costFar)
	}
}

func TestTotalGripCostPropagatesInfiniteTransition(t *testing.T) {
	got := TotalGripCost(math.Inf(1), 1, 1)
	if !costIsInfinite(got) {
		t.Errorf("TotalGripCost = %v, want +Inf", got)
	}
}

func TestTotalGripCostSumsFiniteTerms(t *testing.T) {
	if got := TotalGripCost(1, 2, 3); got != 6 {
		t.Errorf("TotalGripCost(1,2,3) = %v, want 6", got)
	}
}

func TestCrossoverCostNoPenaltyForOrderedRightHand(t *testing.T) {
	p := NewPose(map[Finger]Point{
		Thumb: {X: 3, Y: 1}, Index: {X: 4, Y: 2}, Middle: {X: 5, Y: 2}, Ring: {X: 6, Y: 2}, Pinky: {X: 7, Y: 2},
	})
	if got := CrossoverCost(Right, p); got != 0 {
		t.Errorf("CrossoverCost = %v, want 0 for a well-ordered grip", got)
	}
}

func TestCrossoverCostPenalizesThumbOverPinky(t *testing.T) {
	p := NewPose(map[Finger]Point{
		Thumb: {X: 7, Y: 0}, Pinky: {X: 3, Y: 2},
	})
	if got := CrossoverCost(Right, p); got <= 0 {
		t.Errorf("CrossoverCost = %v, want > 0 for a crossed thumb/pinky", got)
	}
}

func TestStickinessLedgerPenalizesFingerSwitchWithinWindow(t *testing.T) {
	l := NewStickinessLedger()
	if got := l.Penalty(60, Index, 0); got != 0 {
		t.Errorf("first use penalty = %v, want 0", got)
	}
	got := l.Penalty(60, Middle, 1.0)
	if got <= 0 {
		t.Errorf("expected a positive bounce penalty switching fingers within the window, got %v", got)
	}
}

func TestStickinessLedgerNoPenaltyForSameFinger(t *testing.T) {
	l := NewStickinessLedger()
	l.Penalty(60, Index, 0)
	if got := l.Penalty(60, Index, 1.0); got != 0 {
		t.Errorf("same-finger replay penalty = %v, want 0", got)
	}
}

func TestStickinessLedgerNoPenaltyOutsideWindow(t *testing.T) {
	l := NewStickinessLedger()
	l.Penalty(60, Index, 0)
	if got := l.Penalty(60, Middle, stickinessWindow+1); got != 0 {
		t.Errorf("penalty outside the recency window = %v, want 0", got)
	}
}

func TestFatigueStateAccumulatesAndDecays(t *testing.T) {
	f := NewFatigueState()
	cost := f.Advance(0, []Finger{Index})
	if cost[Index] != FatigueAccumRate {
		t.Errorf("first activation fatigue = %v, want %v", cost[Index], FatigueAccumRate)
	}

	cost = f.Advance(0, []Finger{Index})
	if cost[Index] != 2*FatigueAccumRate {
		t.Errorf("second immediate activation fatigue = %v, want %v", cost[Index], 2*FatigueAccumRate)
	}

	// After a long rest, fatigue should decay back toward zero.
	cost = f.Advance(1000, []Finger{Index})
	if cost[Index] >= 2*FatigueAccumRate {
		t.Errorf("fatigue after a long rest = %v, expected it to have decayed", cost[Index])
	}
}

func TestFatigueStateClampsToMax(t *testing.T) {
	f := NewFatigueState()
	var cost map[Finger]float64
	for i := 0; i < 1000; i++ {
		cost = f.Advance(float64(i)*0.001, []Finger{Thumb})
	}
	if cost[Thumb] > MaxFatigue {
		t.Errorf("fatigue = %v, want <= %v", cost[Thumb], MaxFatigue)
	}
}

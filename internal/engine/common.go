// Package engine implements the biomechanical cost model, feasibility layer,
// and solvers that turn a performance and a grid layout into a fingering
// assignment. It owns no I/O: callers supply performances, layouts and
// engine configuration, and read back a SolverResult.
package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// Must unwraps val if err is nil, panicking otherwise. Used only at
// construction boundaries (fixture loading, test setup) where an error
// is a programmer mistake, never for per-note infeasibility.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// IfThen returns a if cond is true, else b. Both arguments are evaluated
// eagerly, so avoid it for expensive or invalid-unless-guarded values.
func IfThen[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// dist2 returns the Euclidean distance between two grid points.
func dist2(ax, ay, bx, by float64) float64 {
	dx := ax - bx
	dy := ay - by
	return math.Sqrt(dx*dx + dy*dy)
}

// runIDNamespace roots the deterministic RunID derivation below; any fixed
// UUID works since it only needs to be stable across the module's lifetime.
var runIDNamespace = uuid.NameSpaceOID

// fingerprintRunID derives a SolverResult.RunID deterministically from its
// resolved debug events, so replaying a solver with the same (inputs, seed)
// twice produces the same RunID as well as the same events (spec.md §5,
// §8's byte-identical-replay guarantee) — uuid.NewString's random v4 UUID
// broke that guarantee despite everything else about the result matching.
func fingerprintRunID(solverType SolverType, events []DebugEvent) string {
	var sb strings.Builder
	sb.WriteString(string(solverType))
	for _, e := range events {
		fmt.Fprintf(&sb, "|%d,%.6f,", e.Pitch, e.StartTime)
		if e.Hand != nil {
			fmt.Fprintf(&sb, "%d", *e.Hand)
		}
		if e.Finger != nil {
			fmt.Fprintf(&sb, ",%d", *e.Finger)
		}
		fmt.Fprintf(&sb, ",%d,%d,%.6f", e.Row, e.Col, e.TotalCost)
	}
	return uuid.NewSHA1(runIDNamespace, []byte(sb.String())).String()
}

// padKey formats a pad as the external boundary string form "<row>,<col>".
func padKey(p Pad) string {
	return fmt.Sprintf("%d,%d", p.Row, p.Col)
}

// fingerUsageKey formats a hand/finger pair as the external "<L|R>-<Finger>" form.
func fingerUsageKey(hand HandSide, f Finger) string {
	side := "L"
	if hand == Right {
		side = "R"
	}
	return side + "-" + f.String()
}

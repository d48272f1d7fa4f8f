package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rbscholtus/padcraft/internal/engine"
)

// createSimpleTable returns a table.Writer preconfigured the way the
// teacher's CLI renders everything: box-drawing style, rows not separated.
func createSimpleTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	return t
}

// RenderSummary prints the headline counters and per-note average metrics
// of a SolverResult.
func RenderSummary(w io.Writer, name string, res *engine.SolverResult) {
	t := createSimpleTable()
	t.AppendHeader(table.Row{"solver", "score", "unplayable", "hard", "avg cost", "avg drift", "run"})
	t.AppendRow(table.Row{
		name, res.Score, res.UnplayableCount, res.HardCount,
		fmt.Sprintf("%.3f", res.BestNodeAverageCost),
		fmt.Sprintf("%.3f", res.AverageDrift),
		res.RunID,
	})
	fmt.Fprintln(w, t.Render())

	bt := createSimpleTable()
	bt.AppendHeader(table.Row{"movement", "stretch", "drift", "bounce", "fatigue", "crossover", "total"})
	m := res.AverageMetrics
	bt.AppendRow(table.Row{
		fmt.Sprintf("%.3f", m.Movement), fmt.Sprintf("%.3f", m.Stretch),
		fmt.Sprintf("%.3f", m.Drift), fmt.Sprintf("%.3f", m.Bounce),
		fmt.Sprintf("%.3f", m.Fatigue), fmt.Sprintf("%.3f", m.Crossover),
		fmt.Sprintf("%.3f", m.Total),
	})
	fmt.Fprintln(w, bt.Render())
}

// RenderDebugEvents prints up to maxRows per-note debug events (0 means all).
func RenderDebugEvents(w io.Writer, events []engine.DebugEvent, maxRows int) {
	t := createSimpleTable()
	t.AppendHeader(table.Row{"pitch", "start", "hand", "finger", "pad", "cost", "difficulty"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight},
	})

	n := len(events)
	if maxRows > 0 && maxRows < n {
		n = maxRows
	}
	for i := 0; i < n; i++ {
		e := events[i]
		finger := "-"
		if e.Finger != nil {
			finger = e.Finger.String()
		}
		pad := "-"
		if e.HasPad {
			pad = engine.Pad{Row: e.Row, Col: e.Col}.String()
		}
		t.AppendRow(table.Row{
			e.Pitch, fmt.Sprintf("%.3f", e.StartTime), e.AssignedHandString(), finger, pad,
			fmt.Sprintf("%.3f", e.TotalCost), e.Difficulty.String(),
		})
	}
	fmt.Fprintln(w, t.Render())
	if maxRows > 0 && maxRows < len(events) {
		fmt.Fprintf(w, "... %d more rows omitted\n", len(events)-maxRows)
	}
}

// RenderFingerUsage prints the per-(hand,finger) usage counts.
func RenderFingerUsage(w io.Writer, stats map[string]int) {
	t := createSimpleTable()
	t.AppendHeader(table.Row{"hand/finger", "count"})
	for k, v := range stats {
		t.AppendRow(table.Row{k, v})
	}
	t.SortBy([]table.SortBy{{Number: 2, Mode: table.DscNumeric}})
	fmt.Fprintln(w, t.Render())
}

// RenderEvolutionLog prints the genetic solver's per-generation trace.
func RenderEvolutionLog(w io.Writer, log []engine.EvolutionLogEntry) {
	t := createSimpleTable()
	t.AppendHeader(table.Row{"generation", "best", "average", "worst"})
	for _, e := range log {
		t.AppendRow(table.Row{
			e.Generation, fmt.Sprintf("%.3f", e.Best),
			fmt.Sprintf("%.3f", e.Average), fmt.Sprintf("%.3f", e.Worst),
		})
	}
	fmt.Fprintln(w, t.Render())
}

// RenderAnnealingTrace prints a sampled view of the annealing iteration
// trace (every stride-th row, plus the final one) and a summary footer.
func RenderAnnealingTrace(w io.Writer, trace []engine.AnnealingSnapshot, stride int) {
	if stride < 1 {
		stride = 1
	}
	t := createSimpleTable()
	t.AppendHeader(table.Row{"iter", "temp", "current", "best", "accepted", "delta", "p(accept)"})
	for i, s := range trace {
		if i%stride != 0 && i != len(trace)-1 {
			continue
		}
		t.AppendRow(table.Row{
			s.Iteration, fmt.Sprintf("%.2f", s.Temperature),
			fmt.Sprintf("%.3f", s.CurrentCost), fmt.Sprintf("%.3f", s.BestCost),
			s.Accepted, fmt.Sprintf("%.3f", s.DeltaCost), fmt.Sprintf("%.4f", s.AcceptanceProbability),
		})
	}
	fmt.Fprintln(w, t.Render())

	stats := engine.AnnealingStatsFrom(trace)
	fmt.Fprintf(w, "iterations=%d accepted=%d accept-rate=%.3f\n",
		stats.TotalIterations, stats.AcceptedCount, stats.AcceptRate)
}

// RenderAnalysis prints the moment and transition tables produced by the
// event analyzer.
func RenderAnalysis(w io.Writer, result *engine.AnalysisResult) {
	mt := createSimpleTable()
	mt.AppendHeader(table.Row{"moment", "time", "polyphony", "spreadX", "spreadY", "stretch", "difficulty"})
	for i, m := range result.Moments {
		mt.AppendRow(table.Row{
			i, fmt.Sprintf("%.3f", m.Timestamp), m.Polyphony,
			fmt.Sprintf("%.1f", m.SpreadX), fmt.Sprintf("%.1f", m.SpreadY),
			fmt.Sprintf("%.3f", m.AnatomicalStretch), fmt.Sprintf("%.3f", m.CompositeDifficulty),
		})
	}
	fmt.Fprintln(w, mt.Render())

	tt := createSimpleTable()
	tt.AppendHeader(table.Row{"from", "to", "shared", "dropped", "new", "finger moves"})
	for _, t2 := range result.Transitions {
		tt.AppendRow(table.Row{
			t2.FromMoment, t2.ToMoment, len(t2.SharedPads), len(t2.CurrentOnlyPads),
			len(t2.NextOnlyPads), t2.FingerMoves,
		})
	}
	fmt.Fprintln(w, tt.Render())
}

// RenderOnionSkin prints the focused-moment onion-skin view: the pad-set
// delta into the next moment, and the per-(hand,finger) moves it implies.
func RenderOnionSkin(w io.Writer, skin *engine.OnionSkin) {
	if skin == nil {
		fmt.Fprintln(w, "no moment at that focus index")
		return
	}

	fmt.Fprintf(w, "focus=%d shared=%d current-only=%d next-only=%d\n",
		skin.CurrentIndex, len(skin.SharedPads), len(skin.CurrentOnlyPads), len(skin.NextOnlyPads))

	t := createSimpleTable()
	t.AppendHeader(table.Row{"hand", "finger", "from", "to", "hold", "impossible", "distance"})
	for _, mv := range skin.FingerMoves {
		from := "-"
		if mv.FromPad != nil {
			from = mv.FromPad.String()
		}
		t.AppendRow(table.Row{
			mv.Hand.String(), mv.Finger.String(), from, mv.ToPad.String(),
			mv.IsHold, mv.IsImpossible, fmt.Sprintf("%.3f", mv.RawDistance),
		})
	}
	fmt.Fprintln(w, t.Render())
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rbscholtus/padcraft/internal/engine"
)

// closeFile closes f, logging rather than swallowing the error, matching
// the engine's own best-effort-diagnostics policy for non-fatal I/O.
func closeFile(f *os.File) {
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "padcraft: error closing file: %v\n", err)
	}
}

// loadPerformance reads a Performance from a JSON fixture.
func loadPerformance(path string) (engine.Performance, error) {
	f, err := os.Open(path)
	if err != nil {
		return engine.Performance{}, fmt.Errorf("load performance %s: %w", path, err)
	}
	defer closeFile(f)

	var perf engine.Performance
	if err := json.NewDecoder(f).Decode(&perf); err != nil {
		return engine.Performance{}, fmt.Errorf("decode performance %s: %w", path, err)
	}
	return perf, nil
}

// loadInstrument reads an InstrumentConfig from a JSON fixture, falling back
// to the documented default when path is empty.
func loadInstrument(path string) (engine.InstrumentConfig, error) {
	if path == "" {
		return engine.DefaultInstrumentConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return engine.InstrumentConfig{}, fmt.Errorf("load instrument %s: %w", path, err)
	}
	defer closeFile(f)

	ic := engine.DefaultInstrumentConfig()
	if err := json.NewDecoder(f).Decode(&ic); err != nil {
		return engine.InstrumentConfig{}, fmt.Errorf("decode instrument %s: %w", path, err)
	}
	return ic, nil
}

// loadLayout reads a Layout from a JSON fixture, or returns a fresh empty
// layout when path is empty (the grid-map-only scenario, spec.md §4.1).
func loadLayout(path string) (*engine.Layout, error) {
	if path == "" {
		return engine.NewLayout("unnamed"), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load layout %s: %w", path, err)
	}
	defer closeFile(f)

	layout := engine.NewLayout("unnamed")
	if err := json.NewDecoder(f).Decode(layout); err != nil {
		return nil, fmt.Errorf("decode layout %s: %w", path, err)
	}
	return layout, nil
}

// loadManualAssignments reads the optional event-index->(hand,finger) pin
// map used by the --manual flag.
func loadManualAssignments(path string) (map[int]engine.ManualAssignment, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load manual assignments %s: %w", path, err)
	}
	defer closeFile(f)

	var manual map[int]engine.ManualAssignment
	if err := json.NewDecoder(f).Decode(&manual); err != nil {
		return nil, fmt.Errorf("decode manual assignments %s: %w", path, err)
	}
	return manual, nil
}

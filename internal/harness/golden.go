package harness

import (
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tokenreplay/internal/engine"
	"github.com/roach88/tokenreplay/internal/ir"
)

// formatFitness renders a fitness value for snapshots. Canonical JSON has
// no floats, so fitness is stored as a fixed-precision string.
func formatFitness(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

func dimensionsMap(d engine.Dimensions) map[string]any {
	return map[string]any{
		"consumed":  d.Consumed,
		"produced":  d.Produced,
		"missing":   d.Missing,
		"remaining": d.Remaining,
	}
}

// Snapshot converts a result to a map for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles primitives,
// string slices and maps.
func Snapshot(name string, result *Result) map[string]any {
	r := result.Replay

	traces := make([]any, len(r.Traces))
	for i, t := range r.Traces {
		m := dimensionsMap(t.Dimensions)
		m["case"] = t.Case
		m["fitness"] = formatFitness(t.Fitness)
		if len(t.Skipped) > 0 {
			m["skipped"] = t.Skipped
		}
		if t.OrphanedSilent > 0 {
			m["orphaned_silent"] = t.OrphanedSilent
		}
		traces[i] = m
	}

	steps := make([]any, len(result.Steps))
	for i, s := range result.Steps {
		m := map[string]any{
			"seq":  s.Seq,
			"case": s.Case,
			"kind": string(s.Kind),
		}
		if s.Activity != "" {
			m["activity"] = s.Activity
		}
		if s.Transition != "" {
			m["transition"] = s.Transition
		}
		if len(s.Lacking) > 0 {
			m["lacking"] = s.Lacking
		}
		steps[i] = m
	}

	return map[string]any{
		"scenario_name": name,
		"session":       r.Session,
		"dimensions":    dimensionsMap(r.Dimensions),
		"fitness":       formatFitness(r.Fitness),
		"missing":       r.Report.Missing,
		"remaining":     r.Report.Remaining,
		"traces":        traces,
		"steps":         steps,
	}
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// MarshalSnapshot returns the canonical JSON snapshot of a result, the
// content of its golden file.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	return ir.MarshalCanonical(Snapshot(scenarioName, result))
}

// AssertGolden compares an existing result's snapshot against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}

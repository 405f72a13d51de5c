package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/tokenreplay/internal/compiler"
	"github.com/roach88/tokenreplay/internal/engine"
	"github.com/roach88/tokenreplay/internal/eventlog"
	"github.com/roach88/tokenreplay/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the model and the traces (inline or from the log file)
//  2. Replay the log sequentially with a fixed session id and a recorder
//  3. Check the expectations against the replay
//
// An error is returned only when the scenario cannot run at all; failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	net, err := compiler.LoadFile(scenario.Model, scenario.Net)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	log, err := scenarioLog(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load log: %w", err)
	}

	marker := scenario.SilentMarker
	if marker == "" {
		marker = engine.DefaultSilentMarker
	}
	rec := engine.NewRecorder()
	eng := engine.New(net,
		engine.WithSilentMarker(marker),
		engine.WithSessionIDs(testutil.NewFixedSessionGenerator(scenario.Session)),
		engine.WithRecorder(rec),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	)

	replay, err := eng.ReplayLog(context.Background(), eng.NewSession(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to replay: %w", err)
	}

	result := NewResult()
	result.Replay = replay
	result.Steps = rec.Steps()
	for _, msg := range EvaluateExpect(result, scenario.Expect) {
		result.AddError(msg)
	}
	return result, nil
}

func scenarioLog(s *Scenario) (eventlog.Log, error) {
	if s.Log != "" {
		return eventlog.Open(s.Log)
	}
	return eventlog.FromActivities(s.Name, s.Traces), nil
}

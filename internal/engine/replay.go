package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/tokenreplay/internal/eventlog"
)

// ReplayTrace replays one trace start to finish in session s.
func (e *Engine) ReplayTrace(s *Session, trace eventlog.Trace) TraceResult {
	r := e.Start(s, trace.Case)
	r.Replay(trace.Activities)
	return r.End()
}

// ReplayLog replays every trace of log in order. Each trace starts from the
// initial marking; the session accumulates counters over the whole log.
//
// The context is checked between traces. On cancellation the traces
// replayed so far stay merged in the session and ctx.Err() is returned.
func (e *Engine) ReplayLog(ctx context.Context, s *Session, log eventlog.Log) (LogResult, error) {
	results := make([]TraceResult, 0, len(log.Traces))
	for _, trace := range log.Traces {
		if err := ctx.Err(); err != nil {
			return LogResult{}, fmt.Errorf("replay log %q: %w", log.Name, err)
		}
		results = append(results, e.ReplayTrace(s, trace))
	}
	return e.finish(s, log, results), nil
}

// ReplayLogConcurrent replays traces on up to the configured number of
// workers. Every trace gets its own marking; only the session is shared,
// and its updates are serialized. The result is identical to ReplayLog.
func (e *Engine) ReplayLogConcurrent(ctx context.Context, s *Session, log eventlog.Log) (LogResult, error) {
	if e.workers <= 1 {
		return e.ReplayLog(ctx, s, log)
	}

	results := make([]TraceResult, len(log.Traces))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, trace := range log.Traces {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.ReplayTrace(s, trace)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return LogResult{}, fmt.Errorf("replay log %q: %w", log.Name, err)
	}
	return e.finish(s, log, results), nil
}

// finish summarizes a replayed log. Every run the call started has already
// ended; runs other callers opened on s are left alone.
func (e *Engine) finish(s *Session, log eventlog.Log, results []TraceResult) LogResult {
	dims := s.Dimensions()
	out := LogResult{
		Session:    s.ID(),
		Dimensions: dims,
		Fitness:    dims.Fitness(),
		Report:     s.Unconformity(),
		Traces:     results,
	}
	e.logger.Info("log replayed",
		"session", s.ID(),
		"log", log.Name,
		"traces", len(log.Traces),
		"fitting", out.FittingTraces(),
		"fitness", out.Fitness,
	)
	return out
}

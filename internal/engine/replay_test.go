package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tokenreplay/internal/eventlog"
	"github.com/roach88/tokenreplay/internal/testutil"
)

func mixedLog() eventlog.Log {
	return eventlog.Log{
		Name: "mixed",
		Traces: []eventlog.Trace{
			{Case: "1", Activities: []string{"t1", "t2", "t3"}},
			{Case: "2", Activities: []string{"t2"}},
			{Case: "3", Activities: []string{"tau", "t1", "t2", "t3"}},
			{Case: "4", Activities: []string{"t1", "t3"}},
			{Case: "5", Activities: []string{"t1", "t1", "t2", "t3", "x"}},
		},
	}
}

func TestReplayLog_EndToEnd(t *testing.T) {
	e := New(testutil.LinearNet(t), WithSessionIDs(NewFixedGenerator("s")))
	s := e.NewSession()

	res, err := e.ReplayLog(context.Background(), s, eventlog.Log{
		Name:   "perfect",
		Traces: []eventlog.Trace{{Case: "1", Activities: []string{"t1", "t2", "t3"}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "s", res.Session)
	assert.Equal(t, 1.0, res.Fitness)
	assert.True(t, res.Report.Empty())
	assert.Equal(t, 1, res.FittingTraces())
}

func TestReplayLog_AccumulatesAcrossTraces(t *testing.T) {
	e := New(testutil.LinearNet(t))
	s := e.NewSession()

	e.ReplayTrace(s, eventlog.Trace{Case: "1", Activities: []string{"t1", "t2", "t3"}})
	first := s.Unconformity()
	assert.True(t, first.Empty())

	e.ReplayTrace(s, eventlog.Trace{Case: "2", Activities: []string{"t2"}})
	second := s.Unconformity()

	assert.Equal(t, map[string]int{"p1": 1, "p_fm": 1}, second.Missing)
	assert.Equal(t, map[string]int{"p_im": 1, "p2": 1}, second.Remaining)
	assert.True(t, first.Empty(), "earlier snapshot is not mutated")

	assert.Equal(t, Dimensions{Consumed: 4, Produced: 4, Missing: 2, Remaining: 2}, s.Dimensions())
	assert.Equal(t, 0.5, s.Fitness())
	assert.Equal(t, 2, s.Traces())
}

func TestUnconformity_Idempotent(t *testing.T) {
	e := New(testutil.LinearNet(t))
	s := e.NewSession()
	_, err := e.ReplayLog(context.Background(), s, mixedLog())
	require.NoError(t, err)

	assert.Equal(t, s.Unconformity(), s.Unconformity())
}

func TestUnconformity_SnapshotIsCopy(t *testing.T) {
	e := New(testutil.LinearNet(t))
	s := e.NewSession()
	e.ReplayTrace(s, eventlog.Trace{Case: "1", Activities: []string{"t2"}})

	snap := s.Unconformity()
	snap.Missing["p1"] = 100

	assert.Equal(t, 1, s.Unconformity().Missing["p1"])
}

func TestSession_CountersNeverDecrease(t *testing.T) {
	e := New(testutil.LinearNet(t))
	s := e.NewSession()

	var prev Dimensions
	for _, tr := range mixedLog().Traces {
		e.ReplayTrace(s, tr)
		cur := s.Dimensions()
		assert.GreaterOrEqual(t, cur.Consumed, prev.Consumed)
		assert.GreaterOrEqual(t, cur.Missing, prev.Missing)
		assert.GreaterOrEqual(t, cur.Remaining, prev.Remaining)
		assert.Equal(t, cur.Consumed, cur.Produced)
		prev = cur
	}
}

func TestSessions_AreIndependent(t *testing.T) {
	e := New(testutil.LinearNet(t))
	a := e.NewSession()
	b := e.NewSession()

	e.ReplayTrace(a, eventlog.Trace{Case: "1", Activities: []string{"t2"}})

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, Dimensions{}, b.Dimensions())
	assert.True(t, b.Unconformity().Empty())
}

func TestReplayLogConcurrent_MatchesSequential(t *testing.T) {
	net := testutil.LinearNet(t)
	log := mixedLog()
	for i := 0; i < 50; i++ {
		log.Traces = append(log.Traces, mixedLog().Traces[i%5])
	}

	seq := New(net)
	seqSession := seq.NewSession()
	want, err := seq.ReplayLog(context.Background(), seqSession, log)
	require.NoError(t, err)

	conc := New(net, WithWorkers(4))
	concSession := conc.NewSession()
	got, err := conc.ReplayLogConcurrent(context.Background(), concSession, log)
	require.NoError(t, err)

	assert.Equal(t, want.Dimensions, got.Dimensions)
	assert.Equal(t, want.Report, got.Report)
	assert.Equal(t, want.Fitness, got.Fitness)
	require.Len(t, got.Traces, len(log.Traces))
	for i := range want.Traces {
		assert.Equal(t, want.Traces[i], got.Traces[i], "trace %d keeps its position", i)
	}
	assert.Equal(t, len(log.Traces), concSession.Traces())
}

func TestReplayLog_Cancelled(t *testing.T) {
	e := New(testutil.LinearNet(t), WithWorkers(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ReplayLog(ctx, e.NewSession(), mixedLog())
	assert.ErrorIs(t, err, context.Canceled)

	_, err = e.ReplayLogConcurrent(ctx, e.NewSession(), mixedLog())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFinish_ReconcilesOpenRuns(t *testing.T) {
	e := New(testutil.LinearNet(t))
	s := e.NewSession()

	r := e.Start(s, "open")
	r.Step("t1")
	assert.Equal(t, 0, s.Traces(), "nothing merged before the run ends")

	results := s.Finish()
	require.Len(t, results, 1)
	assert.Equal(t, "open", results[0].Case)
	assert.Equal(t, map[string]int{"p1": 1}, s.Unconformity().Remaining)
	assert.Equal(t, map[string]int{"p_fm": 1}, s.Unconformity().Missing)

	assert.Empty(t, s.Finish(), "already reconciled")
	assert.Equal(t, 1, s.Traces())
}

func TestReplayLog_LeavesOtherRunsOpen(t *testing.T) {
	e := New(testutil.LinearNet(t))
	s := e.NewSession()

	open := e.Start(s, "A")
	open.Step("t1")

	res, err := e.ReplayLog(context.Background(), s, eventlog.Log{
		Name:   "b",
		Traces: []eventlog.Trace{{Case: "B", Activities: []string{"t1", "t2", "t3"}}},
	})
	require.NoError(t, err)
	require.Len(t, res.Traces, 1)
	assert.Equal(t, "B", res.Traces[0].Case)
	assert.Equal(t, 1, s.Traces())

	assert.Equal(t, StepFire, open.Step("t2"))
	assert.Equal(t, StepFire, open.Step("t3"))
	assert.True(t, open.End().Fits())

	assert.Equal(t, 2, s.Traces())
	assert.True(t, s.Unconformity().Empty())
	assert.Equal(t, 1.0, s.Fitness())
	assert.Empty(t, s.Finish())
}

func TestReplayLogConcurrent_SharedSession(t *testing.T) {
	e := New(testutil.LinearNet(t), WithWorkers(3))
	s := e.NewSession()

	done := make(chan TraceResult)
	go func() {
		r := e.Start(s, "side")
		for _, a := range []string{"t1", "t2", "t3"} {
			r.Step(a)
		}
		done <- r.End()
	}()

	log := eventlog.FromActivities("fitting", [][]string{
		{"t1", "t2", "t3"}, {"t1", "t2", "t3"}, {"t1", "t2", "t3"}, {"t1", "t2", "t3"},
	})
	_, err := e.ReplayLogConcurrent(context.Background(), s, log)
	require.NoError(t, err)
	side := <-done

	assert.True(t, side.Fits())
	assert.Equal(t, 5, s.Traces())
	assert.Equal(t, Dimensions{Consumed: 15, Produced: 15}, s.Dimensions())
	assert.Equal(t, 1.0, s.Fitness())
}

func TestFinish_SkipsEndedRuns(t *testing.T) {
	e := New(testutil.LinearNet(t))
	s := e.NewSession()
	e.ReplayTrace(s, eventlog.Trace{Case: "1", Activities: []string{"t1", "t2", "t3"}})

	assert.Empty(t, s.Finish())
	assert.True(t, s.Unconformity().Empty())
}

func TestRecorder_Steps(t *testing.T) {
	rec := NewRecorder()
	e := New(testutil.LinearNet(t), WithRecorder(rec), WithSessionIDs(NewFixedGenerator("s")))
	s := e.NewSession()

	e.ReplayTrace(s, eventlog.Trace{Case: "c", Activities: []string{"tau", "t1", "ghost", "t3", "tau"}})

	steps := rec.ForCase("c")
	kinds := make([]StepKind, len(steps))
	for i, st := range steps {
		kinds[i] = st.Kind
		assert.Equal(t, int64(i+1), st.Seq)
		assert.Equal(t, "s", st.Session)
	}
	assert.Equal(t, []StepKind{StepSilent, StepFire, StepSkip, StepForced, StepOrphan, StepReconcile}, kinds)
	assert.Equal(t, []string{"p2"}, steps[3].Lacking)
	assert.Equal(t, "t3", steps[3].Transition)
	assert.Len(t, rec.Steps(), 6)
	assert.Empty(t, rec.ForCase("other"))
}

func TestEngine_Logs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := New(testutil.LinearNet(t), WithLogger(logger), WithSessionIDs(NewFixedGenerator("s-log")))

	_, err := e.ReplayLog(context.Background(), e.NewSession(), mixedLog())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "trace replayed")
	assert.Contains(t, out, "log replayed")
	assert.Contains(t, out, "session=s-log")
}

func TestUUIDv7Generator(t *testing.T) {
	id := UUIDv7Generator{}.Generate()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

func TestClock(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
	for i := 1; i <= 3; i++ {
		assert.Equal(t, int64(i), c.Next(), fmt.Sprintf("tick %d", i))
	}
	assert.Equal(t, int64(3), c.Current())
}

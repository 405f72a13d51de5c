package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tokenreplay/internal/engine"
)

func ptr[T any](v T) *T { return &v }

func sampleResult() *Result {
	r := NewResult()
	r.Replay = engine.LogResult{
		Session:    "s",
		Dimensions: engine.Dimensions{Consumed: 4, Produced: 4, Missing: 1, Remaining: 1},
		Fitness:    0.75,
		Report: engine.Report{
			Missing:   map[string]int{"p2": 1},
			Remaining: map[string]int{"p1": 1},
		},
		Traces: []engine.TraceResult{
			{Case: "1", Skipped: []string{"zeta", "alpha"}},
			{Case: "2", Skipped: []string{"alpha"}, Dimensions: engine.Dimensions{Consumed: 2, Produced: 2, Missing: 1, Remaining: 1}},
		},
	}
	return r
}

func TestEvaluateExpect_AllHold(t *testing.T) {
	errs := EvaluateExpect(sampleResult(), Expect{
		Fitness:       ptr(0.7500004),
		Consumed:      ptr(4),
		Produced:      ptr(4),
		Missing:       map[string]int{"p2": 1},
		Remaining:     map[string]int{"p1": 1},
		FittingTraces: ptr(1),
		Skipped:       []string{"alpha", "zeta"},
	})
	assert.Empty(t, errs)
}

func TestEvaluateExpect_Failures(t *testing.T) {
	errs := EvaluateExpect(sampleResult(), Expect{
		Fitness:   ptr(0.5),
		Produced:  ptr(4),
		Missing:   map[string]int{},
		Remaining: map[string]int{"p1": 2},
		Skipped:   []string{},
	})
	require.Len(t, errs, 4)
	assert.Contains(t, errs[0], "Expectation failed: fitness")
	assert.Contains(t, errs[1], "Expected: {}")
	assert.Contains(t, errs[1], "Actual: {p2:1}")
	assert.Contains(t, errs[2], "Expected: {p1:2}")
	assert.Contains(t, errs[3], "Expectation failed: skipped")
}

func TestEvaluateExpect_NilFieldsUnchecked(t *testing.T) {
	assert.Empty(t, EvaluateExpect(sampleResult(), Expect{}))
}

func TestSameCounts_IgnoresZeros(t *testing.T) {
	assert.True(t, sameCounts(map[string]int{"a": 1, "b": 0}, map[string]int{"a": 1}))
	assert.False(t, sameCounts(map[string]int{"a": 1}, map[string]int{"a": 2}))
	assert.False(t, sameCounts(map[string]int{}, map[string]int{"a": 1}))
}

func TestFormatCounts(t *testing.T) {
	assert.Equal(t, "{a:1, b:2}", formatCounts(map[string]int{"b": 2, "a": 1, "c": 0}))
	assert.Equal(t, "{}", formatCounts(nil))
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepSilent_PairsWithKnownActivity(t *testing.T) {
	e, _, r := setupRun(t)
	net := e.Net()

	advanced := r.StepSilent([]string{"tau", "t1"}, 0)

	assert.Equal(t, 2, advanced)
	m := r.Marking()
	assert.Equal(t, 0, tokens(t, net, m, "p_im"))
	assert.Equal(t, 1, tokens(t, net, m, "p1"))
	assert.Equal(t, Dimensions{Consumed: 2, Produced: 2}, r.Dimensions())
}

func TestStepSilent_UnknownFollowerIsNoOp(t *testing.T) {
	_, _, r := setupRun(t)
	before := r.Marking()

	advanced := r.StepSilent([]string{"tau", "non_existent_event"}, 0)

	assert.Equal(t, 1, advanced)
	assert.True(t, before.Equal(r.Marking()))
	assert.Equal(t, Dimensions{}, r.Dimensions())
}

func TestStepSilent_DisabledFollowerIsForced(t *testing.T) {
	_, _, r := setupRun(t)

	r.Replay([]string{"tau", "t2"})

	assert.Equal(t, Dimensions{Consumed: 2, Produced: 2, Missing: 1}, r.Dimensions())
}

func TestReplay_SilentEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		trace    []string
		consumed int
		orphans  int
	}{
		{"trailing marker", []string{"t1", "tau"}, 1, 1},
		{"marker alone", []string{"tau"}, 0, 1},
		{"double marker pairs the second", []string{"tau", "tau", "t1"}, 2, 1},
		{"marker before unknown", []string{"tau", "ghost", "t1"}, 1, 1},
		{"marker between activities", []string{"t1", "tau", "t2", "t3"}, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, r := setupRun(t)
			r.Replay(tt.trace)
			res := r.End()

			assert.Equal(t, tt.consumed, res.Dimensions.Consumed)
			assert.Equal(t, tt.consumed, res.Dimensions.Produced)
			assert.Equal(t, tt.orphans, res.OrphanedSilent)
		})
	}
}

func TestReplay_CustomSilentMarker(t *testing.T) {
	_, _, r := setupRun(t, WithSilentMarker("skip"))

	r.Replay([]string{"skip", "t1", "t2", "t3"})
	res := r.End()

	assert.Equal(t, 4, res.Dimensions.Consumed)
	assert.True(t, res.Fits())
	assert.Empty(t, res.Skipped)
}

func TestReplay_DefaultMarkerIsOrdinaryWhenReplaced(t *testing.T) {
	_, _, r := setupRun(t, WithSilentMarker("skip"))

	r.Replay([]string{"tau", "t1"})
	res := r.End()

	assert.Equal(t, []string{"tau"}, res.Skipped)
	assert.Equal(t, 1, res.Dimensions.Consumed)
}

package footprint

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/tokenreplay/internal/eventlog"
)

func logOf(traces ...[]string) eventlog.Log {
	return eventlog.FromActivities("test", traces)
}

func TestFromLog_Relations(t *testing.T) {
	m := FromLog(logOf(
		[]string{"a", "b", "c", "d"},
		[]string{"a", "c", "b", "d"},
	))

	assert.Equal(t, []string{"a", "b", "c", "d"}, m.Activities())
	assert.Equal(t, Causal, m.Relation("a", "b"))
	assert.Equal(t, Reverse, m.Relation("b", "a"))
	assert.Equal(t, Parallel, m.Relation("b", "c"))
	assert.Equal(t, Unrelated, m.Relation("a", "d"))
	assert.Equal(t, Unrelated, m.Relation("a", "a"))
	assert.Equal(t, Unrelated, m.Relation("a", "zz"), "unknown activity")
}

func TestFromLog_SelfLoop(t *testing.T) {
	m := FromLog(logOf([]string{"a", "a"}))
	assert.Equal(t, Parallel, m.Relation("a", "a"))
}

func TestFromLog_NaturalOrder(t *testing.T) {
	m := FromLog(logOf([]string{"a10", "a2", "a1"}))
	assert.Equal(t, []string{"a1", "a2", "a10"}, m.Activities())
}

func TestRows(t *testing.T) {
	m := FromLog(logOf([]string{"a", "b"}))
	assert.Equal(t, [][]string{{"#", "->"}, {"<-", "#"}}, m.Rows())
}

func TestWriteText(t *testing.T) {
	m := FromLog(logOf([]string{"a", "b"}))

	var buf bytes.Buffer
	assert.NoError(t, m.WriteText(&buf))
	assert.Equal(t, "   | a  | b\na  | #  | ->\nb  | <- | #\n", buf.String())
}

func TestConformance(t *testing.T) {
	base := FromLog(logOf([]string{"a", "b", "c"}))

	assert.Equal(t, 1.0, Conformance(base, base))
	assert.Equal(t, 1.0, Conformance(FromLog(logOf()), FromLog(logOf())))

	// base: a->b, b->c; other: a->c, c->b. Every off-diagonal cell differs.
	other := FromLog(logOf([]string{"a", "c", "b"}))
	assert.InDelta(t, 1-6.0/9.0, Conformance(base, other), 1e-9)
	assert.Equal(t, Conformance(base, other), Conformance(other, base))
}

func TestConformance_DisjointActivities(t *testing.T) {
	a := FromLog(logOf([]string{"x"}))
	b := FromLog(logOf([]string{"y"}))

	// Single activities with no follows are unrelated everywhere.
	assert.Equal(t, 1.0, Conformance(a, b))

	c := FromLog(logOf([]string{"x", "y"}))
	// union {x,y}: c has x->y, y<-x; a has none: 2 of 4 differ
	assert.InDelta(t, 0.5, Conformance(a, c), 1e-9)
}

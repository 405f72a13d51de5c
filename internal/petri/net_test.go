package petri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearNet builds p_im -> t1 -> p1 -> t2 -> p2 -> t3 -> p_fm.
func linearNet(t *testing.T) *Net {
	t.Helper()
	b := NewBuilder("linear")
	for _, p := range []string{"p_im", "p1", "p2", "p_fm"} {
		b.Place(p)
	}
	for _, tr := range []string{"t1", "t2", "t3"} {
		b.Transition(tr, tr)
	}
	b.Arc("p_im", "t1").Arc("t1", "p1")
	b.Arc("p1", "t2").Arc("t2", "p2")
	b.Arc("p2", "t3").Arc("t3", "p_fm")
	b.Initial("p_im", 1).Final("p_fm", 1)
	net, err := b.Build()
	require.NoError(t, err)
	return net
}

func TestBuild_LinearNet(t *testing.T) {
	net := linearNet(t)

	assert.Equal(t, "linear", net.Name())
	assert.Equal(t, Stats{Places: 4, Transitions: 3, Arcs: 6}, net.Stats())

	t2, ok := net.Lookup("t2")
	require.True(t, ok)
	p1, _ := net.PlaceIndex("p1")
	p2, _ := net.PlaceIndex("p2")
	assert.Equal(t, []int{p1}, net.Inputs(t2))
	assert.Equal(t, []int{p2}, net.Outputs(t2))

	assert.Equal(t, map[string]int{"p_im": 1}, net.Initial().Named(net))
	assert.Equal(t, map[string]int{"p_fm": 1}, net.Final().Named(net))
	assert.Equal(t, []string{"t1", "t2", "t3"}, net.Labels())
}

func TestBuild_InitialIsCopied(t *testing.T) {
	net := linearNet(t)
	m := net.Initial()
	m.Add(0, 5)
	assert.Equal(t, 1, net.Initial().Get(0))
}

func TestBuild_ArcDirection(t *testing.T) {
	net := linearNet(t)
	arcs := net.Arcs()
	require.Len(t, arcs, 6)
	assert.Equal(t, PlaceToTransition, arcs[0].Dir)
	assert.Equal(t, TransitionToPlace, arcs[1].Dir)
}

func TestBuild_InvisibleTransitionsAreNotIndexed(t *testing.T) {
	b := NewBuilder("")
	b.Place("a").Place("b").Transition("skip", "").Arc("a", "skip").Arc("skip", "b")
	net, err := b.Build()
	require.NoError(t, err)

	assert.True(t, net.Transition(0).Invisible())
	assert.Empty(t, net.Resolve(""))
	assert.Equal(t, 1, net.Stats().Invisible)
}

func TestBuild_DuplicateLabelsResolveInOrder(t *testing.T) {
	b := NewBuilder("")
	b.Place("a").Transition("x1", "x").Transition("x2", "x")
	b.Arc("a", "x1").Arc("a", "x2")
	net, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, net.Resolve("x"))
	first, ok := net.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, 0, first)
}

func TestBuild_LabelsAreNFCNormalized(t *testing.T) {
	b := NewBuilder("")
	b.Place("a").Transition("t", "cafe\u0301").Arc("a", "t")
	net, err := b.Build()
	require.NoError(t, err)

	_, ok := net.Lookup("caf\u00e9")
	assert.True(t, ok)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder)
		code  ModelErrorCode
	}{
		{"unknown arc source", func(b *Builder) { b.Transition("t", "t").Arc("ghost", "t") }, ErrCodeUnknownNode},
		{"place to place", func(b *Builder) { b.Place("a").Place("b").Arc("a", "b") }, ErrCodeBadArc},
		{"transition to transition", func(b *Builder) { b.Transition("a", "a").Transition("b", "b").Arc("a", "b") }, ErrCodeBadArc},
		{"duplicate node", func(b *Builder) { b.Place("a").Transition("a", "a") }, ErrCodeDuplicateNode},
		{"duplicate arc", func(b *Builder) { b.Place("a").Transition("t", "t").Arc("a", "t").Arc("a", "t") }, ErrCodeDuplicateArc},
		{"negative tokens", func(b *Builder) { b.Place("a").Initial("a", -1) }, ErrCodeNegativeTokens},
		{"unknown final place", func(b *Builder) { b.Place("a").Final("z", 1) }, ErrCodeUnknownNode},
		{"empty name", func(b *Builder) { b.Place("") }, ErrCodeEmptyName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder("broken")
			tt.build(b)
			net, err := b.Build()
			require.Error(t, err)
			assert.Nil(t, net)
			assert.True(t, IsModelError(err))
			assert.True(t, HasCode(err, tt.code), "expected %s in %v", tt.code, err)
		})
	}
}

func TestBuild_CollectsAllErrors(t *testing.T) {
	b := NewBuilder("")
	b.Place("a").Arc("a", "x").Arc("y", "a")
	_, err := b.Build()
	require.Error(t, err)

	var es ModelErrors
	require.ErrorAs(t, err, &es)
	assert.Len(t, es, 2)
	assert.Contains(t, err.Error(), "2 model errors")
}

func TestBuild_Rebuild(t *testing.T) {
	b := NewBuilder("")
	b.Place("a").Transition("t", "t").Arc("a", "missing")
	_, err := b.Build()
	require.Error(t, err)

	b.Place("missing")
	// "missing" is now a place, so the arc joins two places.
	_, err = b.Build()
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeBadArc))
	assert.False(t, HasCode(err, ErrCodeUnknownNode))
}

func TestDigest(t *testing.T) {
	a := linearNet(t)
	b := linearNet(t)

	da, err := a.Digest()
	require.NoError(t, err)
	db, err := b.Digest()
	require.NoError(t, err)
	assert.Equal(t, da, db)

	c, err := NewBuilder("linear").Place("p_im").Build()
	require.NoError(t, err)
	dc, err := c.Digest()
	require.NoError(t, err)
	assert.NotEqual(t, da, dc)
}

func TestMarking(t *testing.T) {
	m := NewMarking(2)
	assert.False(t, m.Take(0))
	assert.Equal(t, 0, m.Get(0))

	m.Add(1, 2)
	assert.True(t, m.Take(1))
	assert.Equal(t, 1, m.Get(1))
	assert.Equal(t, 1, m.Total())

	c := m.Clone()
	assert.True(t, c.Equal(m))
	c.Add(0, 1)
	assert.False(t, c.Equal(m))
}

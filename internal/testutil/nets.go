package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tokenreplay/internal/petri"
)

// LinearNet builds the four-place sequence
//
//	p_im -> t1 -> p1 -> t2 -> p2 -> t3 -> p_fm
//
// with initial marking {p_im: 1} and final marking {p_fm: 1}.
func LinearNet(t testing.TB) *petri.Net {
	t.Helper()
	b := petri.NewBuilder("linear")
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

// ParallelNet builds an AND-split/AND-join:
//
//	start -> split -> {pa, pb}; pa -> a -> qa; pb -> b -> qb; {qa, qb} -> join -> end
//
// split has two output places and join two input places, so a single firing
// moves two tokens.
func ParallelNet(t testing.TB) *petri.Net {
	t.Helper()
	b := petri.NewBuilder("parallel")
	for _, p := range []string{"start", "pa", "pb", "qa", "qb", "end"} {
		b.Place(p)
	}
	for _, tr := range []string{"split", "a", "b", "join"} {
		b.Transition(tr, tr)
	}
	b.Arc("start", "split").Arc("split", "pa").Arc("split", "pb")
	b.Arc("pa", "a").Arc("a", "qa")
	b.Arc("pb", "b").Arc("b", "qb")
	b.Arc("qa", "join").Arc("qb", "join").Arc("join", "end")
	b.Initial("start", 1).Final("end", 1)

	net, err := b.Build()
	require.NoError(t, err)
	return net
}

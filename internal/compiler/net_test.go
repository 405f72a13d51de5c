package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tokenreplay/internal/petri"
)

const orderCUE = `
net: order: {
	places: {
		start: initial: 1
		p1: {}
		end: final: 1
	}
	transitions: {
		t1: {label: "register", in: ["start"], out: ["p1"]}
		t2: {label: "ship", in: ["p1"], out: ["end"]}
		skip: {in: ["p1"], out: ["end"]}
	}
}
`

func compileCUE(t *testing.T, src string) cue.Value {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return v
}

func TestCompileNetBasic(t *testing.T) {
	v := compileCUE(t, orderCUE)

	net, err := CompileNet(v.LookupPath(cue.ParsePath("net.order")))
	require.NoError(t, err)

	assert.Equal(t, "order", net.Name())
	assert.Equal(t, petri.Stats{Places: 3, Transitions: 3, Arcs: 6, Invisible: 1}, net.Stats())
	assert.Equal(t, map[string]int{"start": 1}, net.Initial().Named(net))
	assert.Equal(t, map[string]int{"end": 1}, net.Final().Named(net))
	assert.Equal(t, "p1", net.Place(1).Name, "declaration order is kept")
	assert.True(t, net.Transition(2).Invisible())
}

func TestCompileNets(t *testing.T) {
	v := compileCUE(t, orderCUE+`
net: other: {
	places: {a: initial: 1, b: final: 1}
	transitions: x: {label: "x", in: ["a"], out: ["b"]}
}
`)
	nets, err := CompileNets(v)
	require.NoError(t, err)
	require.Len(t, nets, 2)
	assert.Equal(t, "order", nets[0].Name())
	assert.Equal(t, "other", nets[1].Name())
}

func TestCompileNetsMissingNetField(t *testing.T) {
	v := compileCUE(t, `model: {}`)
	_, err := CompileNets(v)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "net", ce.Field)
}

func TestCompileNetMissingPlaces(t *testing.T) {
	v := compileCUE(t, `net: bad: transitions: {}`)
	_, err := CompileNet(v.LookupPath(cue.ParsePath("net.bad")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "places are required")
}

func TestCompileNetMissingTransitions(t *testing.T) {
	v := compileCUE(t, `net: bad: places: {p: {}}`)
	_, err := CompileNet(v.LookupPath(cue.ParsePath("net.bad")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "transitions are required")
}

func TestCompileNetTypeErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{
			name:  "string token count",
			src:   `net: n: {places: p: initial: "one", transitions: {}}`,
			field: "initial",
		},
		{
			name:  "numeric label",
			src:   `net: n: {places: p: {}, transitions: t: {label: 3}}`,
			field: "label",
		},
		{
			name:  "in is not a list",
			src:   `net: n: {places: p: {}, transitions: t: {in: "p"}}`,
			field: "in",
		},
		{
			name:  "out holds a number",
			src:   `net: n: {places: p: {}, transitions: t: {out: [1]}}`,
			field: "out",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := compileCUE(t, tt.src)
			_, err := CompileNet(v.LookupPath(cue.ParsePath("net.n")))

			var ce *CompileError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCompileNetModelErrors(t *testing.T) {
	v := compileCUE(t, `net: n: {
	places: {p: {}, q: initial: -1}
	transitions: t: {label: "t", in: ["ghost"], out: ["p"]}
}`)
	_, err := CompileNet(v.LookupPath(cue.ParsePath("net.n")))

	require.Error(t, err)
	assert.True(t, petri.HasCode(err, petri.ErrCodeUnknownNode))
	assert.True(t, petri.HasCode(err, petri.ErrCodeNegativeTokens))
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{
		Field:   "places",
		Message: "places are required",
	}
	assert.Equal(t, "places: places are required", err.Error())
}

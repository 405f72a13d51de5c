package petri

import (
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/tokenreplay/internal/ir"
)

// Direction tells which end of an arc is the place.
type Direction int

const (
	// PlaceToTransition is an input arc of the transition.
	PlaceToTransition Direction = iota
	// TransitionToPlace is an output arc of the transition.
	TransitionToPlace
)

func (d Direction) String() string {
	if d == TransitionToPlace {
		return "transition->place"
	}
	return "place->transition"
}

// Place is a token-holding node.
type Place struct {
	Name string
}

// Transition is an activity node. An empty Label marks an invisible model
// transition: no trace activity resolves to it.
type Transition struct {
	Name  string
	Label string
}

// Invisible reports whether the transition has no visible label.
func (t Transition) Invisible() bool {
	return t.Label == ""
}

// Arc connects exactly one place and one transition.
type Arc struct {
	Place      int
	Transition int
	Dir        Direction
}

// Stats summarizes the size of a net.
type Stats struct {
	Places      int `json:"places"`
	Transitions int `json:"transitions"`
	Arcs        int `json:"arcs"`
	Invisible   int `json:"invisible"`
}

// Net is an immutable place/transition graph with initial and final markings.
// Use Builder to construct one.
type Net struct {
	name        string
	places      []Place
	transitions []Transition
	arcs        []Arc

	inputs  [][]int // transition -> input places, arc declaration order
	outputs [][]int // transition -> output places, arc declaration order

	placeIndex map[string]int
	transIndex map[string]int
	labels     map[string][]int // normalized label -> transitions, declaration order

	initial Marking
	final   Marking
}

// NormalizeLabel returns the form under which labels are indexed.
// Labels from different sources (PNML, CSV, XES) may disagree on Unicode
// composition; NFC makes them compare equal.
func NormalizeLabel(label string) string {
	return norm.NFC.String(label)
}

// Name returns the net's name (may be empty).
func (n *Net) Name() string { return n.name }

// NumPlaces returns the number of places.
func (n *Net) NumPlaces() int { return len(n.places) }

// NumTransitions returns the number of transitions.
func (n *Net) NumTransitions() int { return len(n.transitions) }

// Place returns the place at index i.
func (n *Net) Place(i int) Place { return n.places[i] }

// Transition returns the transition at index i.
func (n *Net) Transition(i int) Transition { return n.transitions[i] }

// Arcs returns a copy of the arcs in declaration order.
func (n *Net) Arcs() []Arc {
	out := make([]Arc, len(n.arcs))
	copy(out, n.arcs)
	return out
}

// Inputs returns the input place indices of transition t.
// The slice is shared with the net and must not be modified.
func (n *Net) Inputs(t int) []int { return n.inputs[t] }

// Outputs returns the output place indices of transition t.
// The slice is shared with the net and must not be modified.
func (n *Net) Outputs(t int) []int { return n.outputs[t] }

// Initial returns a fresh copy of the initial marking.
func (n *Net) Initial() Marking { return n.initial.Clone() }

// Final returns a fresh copy of the final marking.
func (n *Net) Final() Marking { return n.final.Clone() }

// PlaceIndex looks up a place by name.
func (n *Net) PlaceIndex(name string) (int, bool) {
	i, ok := n.placeIndex[name]
	return i, ok
}

// TransitionIndex looks up a transition by name.
func (n *Net) TransitionIndex(name string) (int, bool) {
	i, ok := n.transIndex[name]
	return i, ok
}

// Resolve returns every transition carrying label, in declaration order.
// Invisible transitions are never returned.
func (n *Net) Resolve(label string) []int {
	return n.labels[NormalizeLabel(label)]
}

// Lookup returns the first transition carrying label.
func (n *Net) Lookup(label string) (int, bool) {
	ts := n.Resolve(label)
	if len(ts) == 0 {
		return 0, false
	}
	return ts[0], true
}

// Labels returns the distinct visible labels, sorted.
func (n *Net) Labels() []string {
	out := make([]string, 0, len(n.labels))
	for l := range n.labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Stats returns node and arc counts.
func (n *Net) Stats() Stats {
	s := Stats{
		Places:      len(n.places),
		Transitions: len(n.transitions),
		Arcs:        len(n.arcs),
	}
	for _, t := range n.transitions {
		if t.Invisible() {
			s.Invisible++
		}
	}
	return s
}

// Digest returns a content hash of the net's structure and markings.
// The net name is not part of the digest.
func (n *Net) Digest() (string, error) {
	places := make([]any, len(n.places))
	for i, p := range n.places {
		places[i] = p.Name
	}
	transitions := make([]any, len(n.transitions))
	for i, t := range n.transitions {
		transitions[i] = map[string]any{"name": t.Name, "label": t.Label}
	}
	arcs := make([]any, len(n.arcs))
	for i, a := range n.arcs {
		arcs[i] = map[string]any{
			"place":      n.places[a.Place].Name,
			"transition": n.transitions[a.Transition].Name,
			"dir":        a.Dir.String(),
		}
	}
	return ir.Digest(ir.DomainNet, map[string]any{
		"places":      places,
		"transitions": transitions,
		"arcs":        arcs,
		"initial":     n.initial.Named(n),
		"final":       n.final.Named(n),
	})
}

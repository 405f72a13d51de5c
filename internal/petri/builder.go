package petri

import "fmt"

type nodeKind int

const (
	kindPlace nodeKind = iota + 1
	kindTransition
)

type arcKey struct {
	place, transition int
	dir               Direction
}

// Builder accumulates places, transitions, arcs and markings, and validates
// them all at once in Build.
//
//	b := petri.NewBuilder("order")
//	b.Place("start")
//	b.Place("end")
//	b.Transition("t1", "register")
//	b.Arc("start", "t1")
//	b.Arc("t1", "end")
//	b.Initial("start", 1)
//	b.Final("end", 1)
//	net, err := b.Build()
type Builder struct {
	name        string
	places      []Place
	transitions []Transition
	nodes       map[string]nodeKind
	arcs        [][2]string
	initial     []tokenSpec
	final       []tokenSpec
	errs        ModelErrors
}

type tokenSpec struct {
	place  string
	tokens int
}

// NewBuilder starts a net with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:  name,
		nodes: make(map[string]nodeKind),
	}
}

// Place declares a place.
func (b *Builder) Place(name string) *Builder {
	if b.declare(name, kindPlace) {
		b.places = append(b.places, Place{Name: name})
	}
	return b
}

// Transition declares a transition. An empty label makes it invisible.
func (b *Builder) Transition(name, label string) *Builder {
	if b.declare(name, kindTransition) {
		b.transitions = append(b.transitions, Transition{Name: name, Label: NormalizeLabel(label)})
	}
	return b
}

// Arc connects src to dst. One of them must be a place and the other a
// transition; the direction follows from which is which. Endpoints may be
// declared after the arc.
func (b *Builder) Arc(src, dst string) *Builder {
	b.arcs = append(b.arcs, [2]string{src, dst})
	return b
}

// Initial sets the initial token count of a place.
func (b *Builder) Initial(place string, tokens int) *Builder {
	b.initial = append(b.initial, tokenSpec{place, tokens})
	return b
}

// Final sets the final token count of a place.
func (b *Builder) Final(place string, tokens int) *Builder {
	b.final = append(b.final, tokenSpec{place, tokens})
	return b
}

func (b *Builder) declare(name string, kind nodeKind) bool {
	if name == "" {
		b.fail(ErrCodeEmptyName, "", "node name must not be empty")
		return false
	}
	if _, dup := b.nodes[name]; dup {
		b.fail(ErrCodeDuplicateNode, name, "node declared more than once")
		return false
	}
	b.nodes[name] = kind
	return true
}

func (b *Builder) fail(code ModelErrorCode, node, format string, args ...any) {
	b.errs = append(b.errs, &ModelError{Code: code, Node: node, Message: fmt.Sprintf(format, args...)})
}

// Build validates everything declared so far and returns the net.
// All problems are reported together as ModelErrors. Build may be called
// again after further declarations.
func (b *Builder) Build() (*Net, error) {
	base := len(b.errs)
	defer func() { b.errs = b.errs[:base] }()

	n := &Net{
		name:        b.name,
		places:      append([]Place(nil), b.places...),
		transitions: append([]Transition(nil), b.transitions...),
		inputs:      make([][]int, len(b.transitions)),
		outputs:     make([][]int, len(b.transitions)),
		placeIndex:  make(map[string]int, len(b.places)),
		transIndex:  make(map[string]int, len(b.transitions)),
		labels:      make(map[string][]int),
		initial:     NewMarking(len(b.places)),
		final:       NewMarking(len(b.places)),
	}
	for i, p := range n.places {
		n.placeIndex[p.Name] = i
	}
	for i, t := range n.transitions {
		n.transIndex[t.Name] = i
		if !t.Invisible() {
			n.labels[t.Label] = append(n.labels[t.Label], i)
		}
	}

	seen := make(map[arcKey]bool, len(b.arcs))
	for _, a := range b.arcs {
		arc, ok := b.resolveArc(n, a[0], a[1])
		if !ok {
			continue
		}
		key := arcKey{arc.Place, arc.Transition, arc.Dir}
		if seen[key] {
			b.fail(ErrCodeDuplicateArc, a[0]+"->"+a[1], "arc declared more than once")
			continue
		}
		seen[key] = true
		n.arcs = append(n.arcs, arc)
		if arc.Dir == PlaceToTransition {
			n.inputs[arc.Transition] = append(n.inputs[arc.Transition], arc.Place)
		} else {
			n.outputs[arc.Transition] = append(n.outputs[arc.Transition], arc.Place)
		}
	}

	b.applyTokens(n, n.initial, b.initial, "initial")
	b.applyTokens(n, n.final, b.final, "final")

	if len(b.errs) > 0 {
		return nil, append(ModelErrors(nil), b.errs...)
	}
	return n, nil
}

func (b *Builder) resolveArc(n *Net, src, dst string) (Arc, bool) {
	srcKind, srcOK := b.nodes[src]
	dstKind, dstOK := b.nodes[dst]
	if !srcOK {
		b.fail(ErrCodeUnknownNode, src, "arc source is not declared in the net")
	}
	if !dstOK {
		b.fail(ErrCodeUnknownNode, dst, "arc target is not declared in the net")
	}
	if !srcOK || !dstOK {
		return Arc{}, false
	}
	switch {
	case srcKind == kindPlace && dstKind == kindTransition:
		return Arc{Place: n.placeIndex[src], Transition: n.transIndex[dst], Dir: PlaceToTransition}, true
	case srcKind == kindTransition && dstKind == kindPlace:
		return Arc{Place: n.placeIndex[dst], Transition: n.transIndex[src], Dir: TransitionToPlace}, true
	default:
		b.fail(ErrCodeBadArc, src+"->"+dst, "arc must join a place and a transition")
		return Arc{}, false
	}
}

func (b *Builder) applyTokens(n *Net, m Marking, specs []tokenSpec, which string) {
	for _, s := range specs {
		p, ok := n.placeIndex[s.place]
		if !ok {
			b.fail(ErrCodeUnknownNode, s.place, "%s marking references an undeclared place", which)
			continue
		}
		if s.tokens < 0 {
			b.fail(ErrCodeNegativeTokens, s.place, "%s marking has %d tokens", which, s.tokens)
			continue
		}
		m[p] = s.tokens
	}
}

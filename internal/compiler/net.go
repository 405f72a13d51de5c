package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/tokenreplay/internal/petri"
)

// CompileNets compiles every net declared under the top-level "net" field,
// in declaration order.
func CompileNets(v cue.Value) ([]*petri.Net, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	netsVal := v.LookupPath(cue.ParsePath("net"))
	if !netsVal.Exists() {
		return nil, &CompileError{
			Field:   "net",
			Message: "no nets defined (expected a top-level net field)",
			Pos:     v.Pos(),
		}
	}
	iter, err := netsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var nets []*petri.Net
	for iter.Next() {
		net, err := CompileNet(iter.Value())
		if err != nil {
			return nil, err
		}
		nets = append(nets, net)
	}
	if len(nets) == 0 {
		return nil, &CompileError{Field: "net", Message: "no nets defined", Pos: netsVal.Pos()}
	}
	return nets, nil
}

// CompileNet parses a CUE value into a Net. The net is named after the
// value's last path selector.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(src)
//	net, err := CompileNet(v.LookupPath(cue.ParsePath("net.order")))
func CompileNet(v cue.Value) (*petri.Net, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	var name string
	if sels := v.Path().Selectors(); len(sels) > 0 {
		sel := sels[len(sels)-1]
		if sel.LabelType() == cue.StringLabel {
			name = sel.Unquoted()
		} else {
			name = sel.String()
		}
	}
	b := petri.NewBuilder(name)

	placesVal := v.LookupPath(cue.ParsePath("places"))
	if !placesVal.Exists() {
		return nil, &CompileError{Field: "places", Message: "places are required", Pos: v.Pos()}
	}
	places, err := placesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for places.Next() {
		place := places.Label()
		b.Place(place)
		initial, err := optionalInt(places.Value(), "initial")
		if err != nil {
			return nil, err
		}
		if initial != 0 {
			b.Initial(place, initial)
		}
		final, err := optionalInt(places.Value(), "final")
		if err != nil {
			return nil, err
		}
		if final != 0 {
			b.Final(place, final)
		}
	}

	transVal := v.LookupPath(cue.ParsePath("transitions"))
	if !transVal.Exists() {
		return nil, &CompileError{Field: "transitions", Message: "transitions are required", Pos: v.Pos()}
	}
	transitions, err := transVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for transitions.Next() {
		if err := compileTransition(b, transitions.Label(), transitions.Value()); err != nil {
			return nil, err
		}
	}

	return b.Build()
}

func compileTransition(b *petri.Builder, name string, v cue.Value) error {
	var label string
	if lv := v.LookupPath(cue.ParsePath("label")); lv.Exists() {
		s, err := lv.String()
		if err != nil {
			return &CompileError{Field: "label", Message: "label must be a string", Pos: lv.Pos()}
		}
		label = s
	}
	b.Transition(name, label)

	in, err := stringList(v, "in")
	if err != nil {
		return err
	}
	for _, p := range in {
		b.Arc(p, name)
	}
	out, err := stringList(v, "out")
	if err != nil {
		return err
	}
	for _, p := range out {
		b.Arc(name, p)
	}
	return nil
}

// optionalInt reads an optional integer field; absent means zero.
func optionalInt(v cue.Value, field string) (int, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return 0, nil
	}
	n, err := f.Int64()
	if err != nil {
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s must be an integer token count", field),
			Pos:     f.Pos(),
		}
	}
	return int(n), nil
}

// stringList reads an optional list of place names.
func stringList(v cue.Value, field string) ([]string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return nil, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: field + " must be a list of place names", Pos: f.Pos()}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Field: field, Message: field + " must be a list of place names", Pos: iter.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

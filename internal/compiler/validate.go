package compiler

import (
	"fmt"

	"github.com/roach88/tokenreplay/internal/petri"
)

// Lint codes (W200-W299). None of them stop a replay; they flag nets whose
// replay results are likely to surprise.
const (
	WarnNoInitialMarking = "W201" // nothing can fire without forcing
	WarnNoFinalMarking   = "W202" // every token left is reported as remaining
	WarnSourceTransition = "W203" // transition without input places
	WarnSinkTransition   = "W204" // transition without output places
	WarnIsolatedPlace    = "W205" // place on no arc
	WarnDuplicateLabel   = "W206" // label carried by several transitions
	WarnMarkerIsLabel    = "W207" // silent marker shadows a visible label
)

// ValidationError is one lint finding.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate lints a built net. All findings are returned, in net order.
// silentMarker may be empty to skip the marker check.
func Validate(net *petri.Net, silentMarker string) []ValidationError {
	var errs []ValidationError

	if net.Initial().Total() == 0 {
		errs = append(errs, ValidationError{
			Field:   "initial",
			Message: "initial marking is empty",
			Code:    WarnNoInitialMarking,
		})
	}
	if net.Final().Total() == 0 {
		errs = append(errs, ValidationError{
			Field:   "final",
			Message: "final marking is empty",
			Code:    WarnNoFinalMarking,
		})
	}

	onArc := make([]bool, net.NumPlaces())
	for _, a := range net.Arcs() {
		onArc[a.Place] = true
	}
	for i, used := range onArc {
		if !used {
			errs = append(errs, ValidationError{
				Field:   "places." + net.Place(i).Name,
				Message: "place is not connected to any transition",
				Code:    WarnIsolatedPlace,
			})
		}
	}

	for i := 0; i < net.NumTransitions(); i++ {
		t := net.Transition(i)
		field := "transitions." + t.Name
		if len(net.Inputs(i)) == 0 {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "transition has no input places and is always enabled",
				Code:    WarnSourceTransition,
			})
		}
		if len(net.Outputs(i)) == 0 {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "transition has no output places",
				Code:    WarnSinkTransition,
			})
		}
	}

	for _, label := range net.Labels() {
		if ts := net.Resolve(label); len(ts) > 1 {
			errs = append(errs, ValidationError{
				Field:   "label." + label,
				Message: fmt.Sprintf("label is carried by %d transitions; replay fires the first enabled one", len(ts)),
				Code:    WarnDuplicateLabel,
			})
		}
	}

	if silentMarker != "" {
		if _, ok := net.Lookup(silentMarker); ok {
			errs = append(errs, ValidationError{
				Field:   "label." + silentMarker,
				Message: "silent marker is also a transition label; trace entries with it are treated as silent",
				Code:    WarnMarkerIsLabel,
			})
		}
	}

	return errs
}

// Package petri holds the place/transition graph that replay runs against.
//
// A Net is immutable once built. Places and transitions are dense indices
// into slices owned by the Net; arcs are stored as (place, transition,
// direction) triples and the per-transition input/output place lists are
// precomputed at Build time, as is the label index used to resolve trace
// activities to transitions.
//
// Marking is the only mutable state: a token count per place index.
//
// Validation happens once, in Builder.Build. Nothing downstream re-checks
// the structure.
package petri

package engine

import "github.com/roach88/tokenreplay/internal/petri"

// Report is the unconformity diagnostic: accumulated missing and remaining
// tokens per place name. It is a snapshot; later replay does not change it.
type Report struct {
	Missing   map[string]int `json:"missing"`
	Remaining map[string]int `json:"remaining"`
}

func newReport(net *petri.Net, missing, remaining []int) Report {
	return Report{
		Missing:   named(net, missing),
		Remaining: named(net, remaining),
	}
}

func named(net *petri.Net, counts []int) map[string]int {
	out := make(map[string]int)
	for p, n := range counts {
		if n != 0 {
			out[net.Place(p).Name] = n
		}
	}
	return out
}

// Empty reports whether neither map has entries.
func (r Report) Empty() bool {
	return len(r.Missing) == 0 && len(r.Remaining) == 0
}

// Dimensions are the raw replay counters.
type Dimensions struct {
	Consumed  int `json:"consumed"`
	Produced  int `json:"produced"`
	Missing   int `json:"missing"`
	Remaining int `json:"remaining"`
}

// Fitness computes
//
//	0.5 * (1 - missing/consumed) + 0.5 * (1 - remaining/produced)
//
// A term whose denominator is zero counts as 1. Each term is clamped to
// [0, 1] because consumed and produced count firings, not tokens, and a
// single forced firing can leave more missing tokens than firings.
func (d Dimensions) Fitness() float64 {
	return 0.5*term(d.Missing, d.Consumed) + 0.5*term(d.Remaining, d.Produced)
}

func term(lost, total int) float64 {
	if total == 0 {
		return 1
	}
	v := 1 - float64(lost)/float64(total)
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// TraceResult is the outcome of replaying one trace.
type TraceResult struct {
	Case           string         `json:"case"`
	Dimensions     Dimensions     `json:"dimensions"`
	Fitness        float64        `json:"fitness"`
	Missing        map[string]int `json:"missing,omitempty"`
	Remaining      map[string]int `json:"remaining,omitempty"`
	Skipped        []string       `json:"skipped,omitempty"`
	OrphanedSilent int            `json:"orphaned_silent,omitempty"`
}

// Fits reports whether the trace replayed without any missing or remaining
// token.
func (t TraceResult) Fits() bool {
	return t.Dimensions.Missing == 0 && t.Dimensions.Remaining == 0
}

// LogResult is the outcome of replaying a whole log in one session.
type LogResult struct {
	Session    string        `json:"session"`
	Dimensions Dimensions    `json:"dimensions"`
	Fitness    float64       `json:"fitness"`
	Report     Report        `json:"unconformity"`
	Traces     []TraceResult `json:"traces"`
}

// FittingTraces counts traces with no diagnostics.
func (l LogResult) FittingTraces() int {
	n := 0
	for _, t := range l.Traces {
		if t.Fits() {
			n++
		}
	}
	return n
}

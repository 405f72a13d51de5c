package eventlog

import (
	"sort"

	"github.com/roach88/tokenreplay/internal/ir"
)

// Trace is one case's ordered activities.
type Trace struct {
	Case       string   `json:"case" yaml:"case"`
	Activities []string `json:"activities" yaml:"activities"`
}

// Log is an ordered sequence of traces.
type Log struct {
	Name   string  `json:"name" yaml:"name"`
	Traces []Trace `json:"traces" yaml:"traces"`
}

// FromActivities builds a log from bare activity sequences. Cases are
// numbered from 1, as ReadXES does for unnamed traces.
func FromActivities(name string, traces [][]string) Log {
	log := Log{Name: name, Traces: make([]Trace, len(traces))}
	for i, acts := range traces {
		log.Traces[i] = Trace{Case: ordinal(i), Activities: append([]string(nil), acts...)}
	}
	return log
}

// Events returns the total number of events.
func (l Log) Events() int {
	n := 0
	for _, t := range l.Traces {
		n += len(t.Activities)
	}
	return n
}

// Activities returns the distinct activity labels, sorted.
func (l Log) Activities() []string {
	seen := make(map[string]struct{})
	for _, t := range l.Traces {
		for _, a := range t.Activities {
			seen[a] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Case returns the first trace with the given case id.
func (l Log) Case(id string) (Trace, bool) {
	for _, t := range l.Traces {
		if t.Case == id {
			return t, true
		}
	}
	return Trace{}, false
}

// Digest identifies the log by content. The name is not included.
func (l Log) Digest() (string, error) {
	cases := make([]string, len(l.Traces))
	acts := make([][]string, len(l.Traces))
	for i, t := range l.Traces {
		cases[i] = t.Case
		acts[i] = t.Activities
		if acts[i] == nil {
			acts[i] = []string{}
		}
	}
	return ir.LogDigest(cases, acts)
}

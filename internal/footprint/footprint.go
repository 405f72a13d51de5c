// Package footprint builds footprint matrices from event logs and compares
// them. A footprint records, for every ordered pair of activities, how they
// relate under the directly-follows relation of the log.
package footprint

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/tokenreplay/internal/eventlog"
)

// Relation is one footprint cell.
type Relation string

const (
	// Causal: a is directly followed by b, never the reverse.
	Causal Relation = "->"
	// Reverse: b is directly followed by a, never the reverse.
	Reverse Relation = "<-"
	// Parallel: both orders occur.
	Parallel Relation = "||"
	// Unrelated: neither order occurs.
	Unrelated Relation = "#"
)

type pair struct{ a, b string }

// Matrix is a footprint over a set of activities.
type Matrix struct {
	activities []string
	follows    map[pair]bool
}

// FromLog computes the footprint of a log. Duplicate traces contribute
// once; the relation only depends on which sequences occur.
func FromLog(log eventlog.Log) *Matrix {
	m := &Matrix{follows: make(map[pair]bool)}
	seen := make(map[string]bool)
	acts := make(map[string]bool)
	for _, t := range log.Traces {
		key := strings.Join(t.Activities, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		for i, a := range t.Activities {
			acts[a] = true
			if i+1 < len(t.Activities) {
				m.follows[pair{a, t.Activities[i+1]}] = true
			}
		}
	}
	for a := range acts {
		m.activities = append(m.activities, a)
	}
	sortNatural(m.activities)
	return m
}

// sortNatural orders strings with embedded numbers by value: a2 before a10.
func sortNatural(s []string) {
	collate.New(language.Und, collate.Numeric).SortStrings(s)
}

// Activities returns the matrix's activities in natural order.
func (m *Matrix) Activities() []string {
	return append([]string(nil), m.activities...)
}

// Relation returns the cell for (a, b). Activities outside the matrix are
// unrelated to everything.
func (m *Matrix) Relation(a, b string) Relation {
	ab, ba := m.follows[pair{a, b}], m.follows[pair{b, a}]
	switch {
	case ab && ba:
		return Parallel
	case ab:
		return Causal
	case ba:
		return Reverse
	}
	return Unrelated
}

// Rows returns the matrix as relation strings, row-major over Activities.
func (m *Matrix) Rows() [][]string {
	rows := make([][]string, len(m.activities))
	for i, a := range m.activities {
		rows[i] = make([]string, len(m.activities))
		for j, b := range m.activities {
			rows[i][j] = string(m.Relation(a, b))
		}
	}
	return rows
}

// WriteText prints the matrix as an aligned table.
func (m *Matrix) WriteText(w io.Writer) error {
	width := 2
	for _, a := range m.activities {
		width = max(width, len(a))
	}
	cell := func(s string) string { return fmt.Sprintf("%-*s", width, s) }

	header := []string{cell("")}
	for _, a := range m.activities {
		header = append(header, cell(a))
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(header, " | "), " ")); err != nil {
		return err
	}
	for i, row := range m.Rows() {
		line := []string{cell(m.activities[i])}
		for _, r := range row {
			line = append(line, cell(r))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(line, " | "), " ")); err != nil {
			return err
		}
	}
	return nil
}

// Conformance compares two footprints: one minus the share of differing
// cells over the union of both activity sets. An activity missing from one
// matrix is unrelated to everything there. Two empty matrices conform fully.
func Conformance(a, b *Matrix) float64 {
	union := make(map[string]bool)
	for _, x := range a.activities {
		union[x] = true
	}
	for _, x := range b.activities {
		union[x] = true
	}
	if len(union) == 0 {
		return 1
	}

	var diff int
	for x := range union {
		for y := range union {
			if a.Relation(x, y) != b.Relation(x, y) {
				diff++
			}
		}
	}
	return 1 - float64(diff)/float64(len(union)*len(union))
}

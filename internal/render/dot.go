// Package render draws nets as Graphviz DOT, annotated with the
// diagnostics of a replay.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/tokenreplay/internal/engine"
	"github.com/roach88/tokenreplay/internal/petri"
)

// Fill colors for places with diagnostics.
const (
	ColorRemaining = "orange"
	ColorMissing   = "red"
	ColorBoth      = "purple"
)

const tokenDot = "\u25cf"

// DOT writes net as a left-to-right DOT digraph. Places show their initial
// tokens and, when report has entries for them, "+remaining" and
// "-missing" counts with a fill color. Invisible transitions are drawn as
// small black boxes. A zero report draws the bare net.
func DOT(w io.Writer, net *petri.Net, report engine.Report) error {
	bw := bufio.NewWriter(w)
	initial := net.Initial()

	fmt.Fprintf(bw, "digraph %s {\n", quote(net.Name()))
	bw.WriteString("  rankdir=\"LR\";\n")
	bw.WriteString("  node [fontname=\"Helvetica\"];\n")

	for i := 0; i < net.NumPlaces(); i++ {
		name := net.Place(i).Name
		lines := []string{name}
		if tok := tokenLabel(initial[i]); tok != "" {
			lines = append(lines, tok)
		}
		remaining, missing := report.Remaining[name], report.Missing[name]
		if diag := diagnosticLabel(remaining, missing); diag != "" {
			lines = append(lines, diag)
		}
		attrs := fmt.Sprintf("shape=circle, label=%s", quote(strings.Join(lines, "\\n")))
		if color := fillColor(remaining, missing); color != "" {
			attrs += fmt.Sprintf(", style=\"filled\", fillcolor=%q", color)
		}
		fmt.Fprintf(bw, "  %s [%s];\n", quote(placeID(name)), attrs)
	}

	for i := 0; i < net.NumTransitions(); i++ {
		t := net.Transition(i)
		if t.Invisible() {
			fmt.Fprintf(bw, "  %s [shape=box, label=\"\", style=\"filled\", fillcolor=\"black\", width=0.15];\n",
				quote(transitionID(t.Name)))
			continue
		}
		fmt.Fprintf(bw, "  %s [shape=box, label=%s];\n", quote(transitionID(t.Name)), quote(t.Label))
	}

	for _, a := range net.Arcs() {
		p := quote(placeID(net.Place(a.Place).Name))
		t := quote(transitionID(net.Transition(a.Transition).Name))
		if a.Dir == petri.PlaceToTransition {
			fmt.Fprintf(bw, "  %s -> %s;\n", p, t)
		} else {
			fmt.Fprintf(bw, "  %s -> %s;\n", t, p)
		}
	}

	bw.WriteString("}\n")
	return bw.Flush()
}

func placeID(name string) string      { return "p:" + name }
func transitionID(name string) string { return "t:" + name }

func tokenLabel(n int) string {
	switch {
	case n <= 0:
		return ""
	case n == 1:
		return tokenDot
	default:
		return strconv.Itoa(n)
	}
}

func diagnosticLabel(remaining, missing int) string {
	var parts []string
	if remaining > 0 {
		parts = append(parts, "+"+strconv.Itoa(remaining))
	}
	if missing > 0 {
		parts = append(parts, "-"+strconv.Itoa(missing))
	}
	return strings.Join(parts, " ")
}

func fillColor(remaining, missing int) string {
	switch {
	case remaining > 0 && missing > 0:
		return ColorBoth
	case remaining > 0:
		return ColorRemaining
	case missing > 0:
		return ColorMissing
	}
	return ""
}

// quote makes a DOT double-quoted string. Backslash sequences already in
// s (such as the \n line breaks built above) pass through.
func quote(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}

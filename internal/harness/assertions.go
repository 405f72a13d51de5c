package harness

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
)

// fitnessTolerance absorbs float rounding in hand-written expectations.
const fitnessTolerance = 1e-6

// AssertionError is returned when an expectation fails.
type AssertionError struct {
	Field    string // expect field being checked
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Expectation failed: %s\n", e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateExpect checks every set field of expect against result and
// returns one message per failure, in field order.
func EvaluateExpect(result *Result, expect Expect) []string {
	var errs []string
	fail := func(field string, want, got any) {
		errs = append(errs, (&AssertionError{
			Field:    field,
			Expected: fmt.Sprint(want),
			Actual:   fmt.Sprint(got),
		}).Error())
	}

	r := result.Replay
	if expect.Fitness != nil && math.Abs(*expect.Fitness-r.Fitness) > fitnessTolerance {
		fail("fitness", *expect.Fitness, r.Fitness)
	}
	if expect.Consumed != nil && *expect.Consumed != r.Dimensions.Consumed {
		fail("consumed", *expect.Consumed, r.Dimensions.Consumed)
	}
	if expect.Produced != nil && *expect.Produced != r.Dimensions.Produced {
		fail("produced", *expect.Produced, r.Dimensions.Produced)
	}
	if expect.Missing != nil && !sameCounts(expect.Missing, r.Report.Missing) {
		fail("missing", formatCounts(expect.Missing), formatCounts(r.Report.Missing))
	}
	if expect.Remaining != nil && !sameCounts(expect.Remaining, r.Report.Remaining) {
		fail("remaining", formatCounts(expect.Remaining), formatCounts(r.Report.Remaining))
	}
	if expect.FittingTraces != nil && *expect.FittingTraces != r.FittingTraces() {
		fail("fitting_traces", *expect.FittingTraces, r.FittingTraces())
	}
	if expect.Skipped != nil {
		got := skippedActivities(result)
		if !reflect.DeepEqual(expect.Skipped, got) {
			fail("skipped", expect.Skipped, got)
		}
	}
	return errs
}

// sameCounts compares two place count maps, ignoring zero entries.
func sameCounts(want, got map[string]int) bool {
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	for k, v := range got {
		if want[k] != v {
			return false
		}
	}
	return true
}

// formatCounts prints a count map with sorted keys.
func formatCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s:%d", k, m[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// skippedActivities returns the distinct unknown activities of the run,
// sorted.
func skippedActivities(result *Result) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, t := range result.Replay.Traces {
		for _, a := range t.Skipped {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
		}
	}
	sort.Strings(out)
	return out
}

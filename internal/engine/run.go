package engine

import (
	"github.com/roach88/tokenreplay/internal/petri"
)

// Run replays a single trace. It owns its marking and counters until End
// merges them into the session.
//
// A Run must be used from one goroutine only. Once End has run, the run is
// frozen: Fire fails and Step and StepSilent change nothing.
type Run struct {
	engine  *Engine
	session *Session
	caseID  string
	marking petri.Marking
	tally   Tally

	skipped []string
	orphans int

	ended  bool
	result TraceResult
}

// Case returns the case identifier the run was started with.
func (r *Run) Case() string { return r.caseID }

// Marking returns a copy of the live marking.
func (r *Run) Marking() petri.Marking { return r.marking.Clone() }

// Dimensions returns the run's own counters so far.
func (r *Run) Dimensions() Dimensions { return r.tally.Dimensions() }

// resolve picks the transition for label: the first enabled transition
// carrying it, otherwise the first one declared. known is false when no
// transition carries the label.
func (r *Run) resolve(label string) (t int, enabled, known bool) {
	candidates := r.engine.net.Resolve(label)
	if len(candidates) == 0 {
		return 0, false, false
	}
	for _, c := range candidates {
		if r.enabled(c) {
			return c, true, true
		}
	}
	return candidates[0], false, true
}

func (r *Run) enabled(t int) bool {
	for _, p := range r.engine.net.Inputs(t) {
		if r.marking.Get(p) == 0 {
			return false
		}
	}
	return true
}

// Known reports whether some transition carries label.
func (r *Run) Known(label string) bool {
	return len(r.engine.net.Resolve(label)) > 0
}

// CanFire reports whether a transition labelled label exists and every one
// of its input places holds a token. Unknown and disabled labels both
// report false.
func (r *Run) CanFire(label string) bool {
	_, enabled, _ := r.resolve(label)
	return enabled
}

// Fire fires label's transition without forcing. It fails, changing
// nothing, when the label is unknown or the transition is disabled.
func (r *Run) Fire(label string) error {
	if r.ended {
		return newFireError(ErrCodeRunEnded, label, nil)
	}
	t, enabled, known := r.resolve(label)
	if !known {
		return newFireError(ErrCodeUnknownActivity, label, nil)
	}
	if !enabled {
		return newFireError(ErrCodeNotEnabled, label, r.emptyInputs(t))
	}
	r.fire(label, t)
	return nil
}

// Step replays one activity the way the replay loop does: unknown labels
// are skipped, enabled transitions fire, disabled ones are force-fired.
// On an ended run nothing happens and the empty StepKind is returned.
func (r *Run) Step(label string) StepKind {
	if r.ended {
		return ""
	}
	t, enabled, known := r.resolve(label)
	switch {
	case !known:
		r.skipped = append(r.skipped, label)
		r.record(StepSkip, label, "", nil)
		return StepSkip
	case enabled:
		r.fire(label, t)
		return StepFire
	default:
		r.forceFire(label, t)
		return StepForced
	}
}

func (r *Run) fire(label string, t int) {
	net := r.engine.net
	for _, p := range net.Inputs(t) {
		r.marking.Take(p)
	}
	for _, p := range net.Outputs(t) {
		r.marking.Add(p, 1)
	}
	r.tally.Consumed++
	r.tally.Produced++
	r.record(StepFire, label, net.Transition(t).Name, nil)
}

// forceFire fires t even though some input places are empty. Each empty
// input place gets one missing token and stays at zero.
func (r *Run) forceFire(label string, t int) {
	net := r.engine.net
	var lacking []string
	for _, p := range net.Inputs(t) {
		if !r.marking.Take(p) {
			r.tally.Missing[p]++
			lacking = append(lacking, net.Place(p).Name)
		}
	}
	for _, p := range net.Outputs(t) {
		r.marking.Add(p, 1)
	}
	r.tally.Consumed++
	r.tally.Produced++
	r.record(StepForced, label, net.Transition(t).Name, lacking)
}

func (r *Run) emptyInputs(t int) []string {
	var out []string
	for _, p := range r.engine.net.Inputs(t) {
		if r.marking.Get(p) == 0 {
			out = append(out, r.engine.net.Place(p).Name)
		}
	}
	return out
}

// Replay replays activities in order, handling silent markers.
func (r *Run) Replay(activities []string) {
	for i := 0; i < len(activities); {
		if r.isSilent(activities[i]) {
			i += r.StepSilent(activities, i)
			continue
		}
		r.Step(activities[i])
		i++
	}
}

// End reconciles the marking against the net's final marking, merges the
// run into its session and returns the trace result. Calling End again
// returns the same result without merging twice.
func (r *Run) End() TraceResult {
	if r.ended {
		return r.result
	}
	r.ended = true

	final := r.engine.net.Final()
	for p := range r.marking {
		diff := r.marking.Get(p) - final.Get(p)
		switch {
		case diff > 0:
			r.tally.Remaining[p] += diff
		case diff < 0:
			r.tally.Missing[p] -= diff
		}
	}
	r.record(StepReconcile, "", "", nil)

	r.session.close(r)
	r.session.Merge(r.tally)

	dims := r.tally.Dimensions()
	report := newReport(r.engine.net, r.tally.Missing, r.tally.Remaining)
	r.result = TraceResult{
		Case:           r.caseID,
		Dimensions:     dims,
		Fitness:        dims.Fitness(),
		Missing:        report.Missing,
		Remaining:      report.Remaining,
		Skipped:        r.skipped,
		OrphanedSilent: r.orphans,
	}

	r.engine.logger.Debug("trace replayed",
		"session", r.session.ID(),
		"case", r.caseID,
		"consumed", dims.Consumed,
		"missing", dims.Missing,
		"remaining", dims.Remaining,
		"fitness", r.result.Fitness,
	)
	return r.result
}

func (r *Run) record(kind StepKind, activity, transition string, lacking []string) {
	if r.engine.recorder == nil {
		return
	}
	r.engine.recorder.record(Step{
		Session:    r.session.ID(),
		Case:       r.caseID,
		Kind:       kind,
		Activity:   activity,
		Transition: transition,
		Lacking:    lacking,
	})
}

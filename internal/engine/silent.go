package engine

import "github.com/roach88/tokenreplay/internal/petri"

func (r *Run) isSilent(label string) bool {
	return petri.NormalizeLabel(label) == r.engine.silent
}

// StepSilent handles the silent marker at activities[i] and returns how many
// positions were consumed.
//
// The marker is paired with activities[i+1]. When that activity resolves to
// a transition, the pair is applied as two firing events: the silent step
// adds one to consumed and produced without touching the marking, then the
// activity goes through Step (fired or force-fired) and 2 is returned.
//
// Otherwise (end of trace, another marker, or an unknown label) nothing
// changes at all and 1 is returned, so the following position is replayed
// on its own. An ended run only advances by 1.
func (r *Run) StepSilent(activities []string, i int) int {
	if r.ended {
		return 1
	}
	if i+1 >= len(activities) {
		r.orphan(activities, i)
		return 1
	}
	next := activities[i+1]
	if r.isSilent(next) || !r.Known(next) {
		r.orphan(activities, i)
		return 1
	}

	r.tally.Consumed++
	r.tally.Produced++
	r.record(StepSilent, activities[i], "", nil)
	r.Step(next)
	return 2
}

func (r *Run) orphan(activities []string, i int) {
	r.orphans++
	r.record(StepOrphan, activities[i], "", nil)
}

package engine

import "sync"

// StepKind classifies a recorded replay step.
type StepKind string

const (
	StepFire      StepKind = "fire"      // enabled transition fired
	StepForced    StepKind = "forced"    // disabled transition force-fired
	StepSilent    StepKind = "silent"    // silent marker accepted
	StepSkip      StepKind = "skip"      // unknown activity ignored
	StepOrphan    StepKind = "orphan"    // silent marker with nothing to pair
	StepReconcile StepKind = "reconcile" // end of trace
)

// Step is one recorded replay event.
type Step struct {
	Seq        int64    `json:"seq"`
	Session    string   `json:"session"`
	Case       string   `json:"case"`
	Kind       StepKind `json:"kind"`
	Activity   string   `json:"activity,omitempty"`
	Transition string   `json:"transition,omitempty"`
	Lacking    []string `json:"lacking,omitempty"`
}

// Recorder collects replay steps for tracing and golden tests.
//
// Thread-safety: safe for concurrent use.
type Recorder struct {
	clock *Clock

	mu    sync.Mutex
	steps []Step
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{clock: NewClock()}
}

func (r *Recorder) record(s Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Seq = r.clock.Next()
	r.steps = append(r.steps, s)
}

// Steps returns a copy of every step in sequence order.
func (r *Recorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}

// ForCase returns the steps recorded for one case.
func (r *Recorder) ForCase(caseID string) []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Step
	for _, s := range r.steps {
		if s.Case == caseID {
			out = append(out, s)
		}
	}
	return out
}

package engine

import (
	"sync"

	"github.com/roach88/tokenreplay/internal/petri"
)

// Tally holds the four replay counters for one trace or a whole session.
// Missing and Remaining are indexed by place.
type Tally struct {
	Consumed  int
	Produced  int
	Missing   []int
	Remaining []int
}

func newTally(places int) Tally {
	return Tally{
		Missing:   make([]int, places),
		Remaining: make([]int, places),
	}
}

func (t *Tally) add(other Tally) {
	t.Consumed += other.Consumed
	t.Produced += other.Produced
	for p, n := range other.Missing {
		t.Missing[p] += n
	}
	for p, n := range other.Remaining {
		t.Remaining[p] += n
	}
}

// Dimensions returns the raw counters with the per-place maps summed.
func (t Tally) Dimensions() Dimensions {
	return Dimensions{
		Consumed:  t.Consumed,
		Produced:  t.Produced,
		Missing:   sum(t.Missing),
		Remaining: sum(t.Remaining),
	}
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

// Session accumulates replay counters across a whole log. Counters only
// grow: they are never reset per trace.
//
// Thread-safety: all methods are safe for concurrent use. Finish also
// requires that no goroutine is still stepping the runs it reconciles.
type Session struct {
	id  string
	net *petri.Net

	mu      sync.Mutex
	tally   Tally
	traces  int
	pending []*Run // started but not yet ended, in start order
}

func newSession(id string, net *petri.Net) *Session {
	return &Session{
		id:    id,
		net:   net,
		tally: newTally(net.NumPlaces()),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Traces returns how many traces have been merged into the session.
func (s *Session) Traces() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traces
}

// Merge adds a finished trace's tally. Merging is commutative, so the order
// in which concurrent runs finish does not matter.
func (s *Session) Merge(t Tally) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tally.add(t)
	s.traces++
}

// Dimensions returns the session's raw counters. This is the hook used to
// compare against a reference conformance checker.
func (s *Session) Dimensions() Dimensions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tally.Dimensions()
}

// Fitness reduces the session counters to a score in [0, 1].
func (s *Session) Fitness() float64 {
	return s.Dimensions().Fitness()
}

// Unconformity returns a snapshot of the accumulated missing and remaining
// tokens keyed by place name. Places with no diagnostics are omitted.
func (s *Session) Unconformity() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newReport(s.net, s.tally.Missing, s.tally.Remaining)
}

// Finish is the end-of-log reconciliation. The global reconciliation is
// folded into each run's End, so only runs that were started but never
// ended are reconciled against the final marking and merged here. Runs that
// already ended are not reconciled a second time.
//
// Finish ends runs it does not own: the caller must make sure no other
// goroutine is still stepping a pending run. ReplayLog and
// ReplayLogConcurrent never call it.
func (s *Session) Finish() []TraceResult {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	results := make([]TraceResult, 0, len(pending))
	for _, r := range pending {
		results = append(results, r.End())
	}
	return results
}

func (s *Session) open(r *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, r)
}

func (s *Session) close(r *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.pending {
		if p == r {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

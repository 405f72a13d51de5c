package engine

import (
	"io"
	"log/slog"

	"github.com/roach88/tokenreplay/internal/petri"
)

// DefaultSilentMarker is the activity label that denotes a silent step.
const DefaultSilentMarker = "tau"

// DefaultWorkers is the default concurrency of ReplayLogConcurrent.
const DefaultWorkers = 1

// Engine replays traces against one net.
//
// Thread-safety model:
//   - Engine: immutable after New, safe from any goroutine
//   - Session: safe from any goroutine (internal mutex)
//   - Run: owned by exactly one goroutine
type Engine struct {
	net      *petri.Net
	silent   string
	workers  int
	logger   *slog.Logger
	ids      SessionIDGenerator
	recorder *Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithSilentMarker sets the reserved silent-step label.
func WithSilentMarker(marker string) Option {
	return func(e *Engine) {
		e.silent = petri.NormalizeLabel(marker)
	}
}

// WithWorkers sets how many traces ReplayLogConcurrent replays at once.
// Values below 1 are treated as 1.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSessionIDs sets the generator used by NewSession.
// Default: UUIDv7Generator. Tests use FixedGenerator.
func WithSessionIDs(g SessionIDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.ids = g
		}
	}
}

// WithRecorder records every replay step into r.
func WithRecorder(r *Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// New creates an Engine for net.
func New(net *petri.Net, opts ...Option) *Engine {
	e := &Engine{
		net:     net,
		silent:  DefaultSilentMarker,
		workers: DefaultWorkers,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		ids:     UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Net returns the net being replayed.
func (e *Engine) Net() *petri.Net { return e.net }

// SilentMarker returns the reserved silent-step label.
func (e *Engine) SilentMarker() string { return e.silent }

// NewSession creates an empty session with a fresh ID.
func (e *Engine) NewSession() *Session {
	return newSession(e.ids.Generate(), e.net)
}

// Start begins replaying one trace in session s. The returned Run's marking
// is a copy of the net's initial marking.
func (e *Engine) Start(s *Session, caseID string) *Run {
	r := &Run{
		engine:  e,
		session: s,
		caseID:  caseID,
		marking: e.net.Initial(),
		tally:   newTally(e.net.NumPlaces()),
	}
	s.open(r)
	return r
}

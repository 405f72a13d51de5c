// Package engine implements token-based replay of event logs on a petri.Net.
//
// ARCHITECTURE:
//
// Engine is stateless apart from its configuration. All diagnostic state
// lives in a Session, which the caller creates and passes in explicitly, so
// independent sessions (e.g. one per candidate model) can coexist.
//
// A Run replays one trace. It owns a private Marking seeded from the net's
// initial marking and a private Tally of counters. Run.End reconciles the
// marking against the final marking and merges the tally into the session
// under the session's mutex. Because every merge is a plain addition, runs
// for different traces may execute concurrently (ReplayLogConcurrent).
//
// Replay Flow per activity:
//  1. Silent marker: paired with the following activity (silent.go)
//  2. Unknown label: skipped, nothing recorded
//  3. Enabled transition: fired
//  4. Disabled transition: force-fired, each empty input place counted missing
//
// Every firing, forced or not, and every accepted silent step adds exactly
// one to consumed and produced.
//
// INVARIANTS:
//   - Marking counts never go below zero
//   - Session counters and per-place maps only grow
//   - Nothing during replay returns an error; non-conformance is measured
package engine

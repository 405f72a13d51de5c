package engine

import "sync/atomic"

// Clock is a monotonic logical clock. The Recorder stamps every step with
// Clock.Next so a recorded replay has a total order even when traces run
// concurrently. Wall-clock time is never used.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

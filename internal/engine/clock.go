package engine

import "sync/atomic"

// Clock is the monotonic logical clock of an editing session.
//
// Every object definition and command is stamped with a strictly increasing
// seq from this clock, so a journal replays in exactly the order it was
// written regardless of wall time.
//
// Clock is safe for concurrent use, although only the engine's single
// writer normally calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after start.
// Used to continue a journaled session.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// Advance moves the clock forward to seq if it is behind. Replayed entries
// carry their journaled seq and the clock must never hand it out again.
func (c *Clock) Advance(seq int64) {
	for {
		cur := c.seq.Load()
		if cur >= seq || c.seq.CompareAndSwap(cur, seq) {
			return
		}
	}
}

package engine

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Clock is a monotonic logical clock for analytics event ordering.
//
// Every terminal event is stamped with a strictly increasing seq from this
// clock, so event order never depends on wall-clock time. A clock that
// writes into a persisted log must start after the log's last seq; use
// ResumeClock for that.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose next seq is start+1.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// SeqSource reports the highest seq already persisted in an event log.
// *store.Store implements it.
type SeqSource interface {
	MaxSeq(ctx context.Context) (int64, error)
}

// ResumeClock returns a clock that continues numbering after the last event
// in src, so events from successive processes sharing one log keep a single
// increasing seq order.
func ResumeClock(ctx context.Context, src SeqSource) (*Clock, error) {
	last, err := src.MaxSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("resume clock: %w", err)
	}
	if last < 0 {
		return nil, fmt.Errorf("resume clock: negative max seq %d", last)
	}
	return NewClockAt(last), nil
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last sequence number handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

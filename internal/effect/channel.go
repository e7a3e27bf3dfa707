package effect

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrChannelClosed is returned by Publish after Close.
var ErrChannelClosed = errors.New("effect channel closed")

// DefaultChannelBuffer is the Channel buffer size used when none is given.
const DefaultChannelBuffer = 64

// Publisher accepts effects for presentation.
type Publisher interface {
	Publish(ctx context.Context, e Effect) error
}

// Channel carries effects from any number of resolving goroutines to one
// draining presentation goroutine.
type Channel struct {
	ch        chan Effect
	done      chan struct{}
	closeOnce sync.Once
}

// NewChannel creates a channel with the given buffer. buffer <= 0 uses
// DefaultChannelBuffer.
func NewChannel(buffer int) *Channel {
	if buffer <= 0 {
		buffer = DefaultChannelBuffer
	}
	return &Channel{
		ch:   make(chan Effect, buffer),
		done: make(chan struct{}),
	}
}

// Publish enqueues e, blocking while the buffer is full.
func (c *Channel) Publish(ctx context.Context, e Effect) error {
	if e == nil {
		return errors.New("nil effect")
	}
	select {
	case <-c.done:
		return ErrChannelClosed
	default:
	}
	select {
	case c.ch <- e:
		return nil
	case <-c.done:
		return ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting effects. Effects already buffered are still
// delivered by Drain.
func (c *Channel) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Drain delivers effects to sink in publish order until ctx is cancelled or
// the channel is closed and empty. It must run on the presentation
// goroutine; sink is never called concurrently.
func (c *Channel) Drain(ctx context.Context, sink Sink) error {
	for {
		select {
		case e := <-c.ch:
			c.deliver(sink, e)
		case <-c.done:
			for {
				select {
				case e := <-c.ch:
					c.deliver(sink, e)
				default:
					return nil
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Channel) deliver(sink Sink, e Effect) {
	if err := Dispatch(sink, e); err != nil {
		slog.Warn("effect dropped", "kind", e.Kind(), "error", err)
	}
}

package testutil

import (
	"context"
	"sync"

	"github.com/roach88/actionroute/internal/analytics"
	"github.com/roach88/actionroute/internal/effect"
)

// RecordingRecorder keeps every analytics event. Err, when set, is returned
// from every Record call after the event is kept.
type RecordingRecorder struct {
	mu     sync.Mutex
	events []analytics.Event
	Err    error
}

// Record implements analytics.Recorder.
func (r *RecordingRecorder) Record(_ context.Context, e analytics.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.Err
}

// Events returns a copy of the recorded events.
func (r *RecordingRecorder) Events() []analytics.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]analytics.Event(nil), r.events...)
}

// Decisions returns the decision of each recorded event.
func (r *RecordingRecorder) Decisions() []analytics.Decision {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]analytics.Decision, len(r.events))
	for i, e := range r.events {
		out[i] = e.Decision
	}
	return out
}

// RecordingPublisher keeps every published effect.
type RecordingPublisher struct {
	mu      sync.Mutex
	effects []effect.Effect
}

// Publish implements effect.Publisher.
func (p *RecordingPublisher) Publish(_ context.Context, e effect.Effect) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.effects = append(p.effects, e)
	return nil
}

// Effects returns a copy of the published effects.
func (p *RecordingPublisher) Effects() []effect.Effect {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]effect.Effect(nil), p.effects...)
}

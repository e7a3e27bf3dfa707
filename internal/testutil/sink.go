package testutil

import (
	"sync"

	"github.com/roach88/actionroute/internal/effect"
)

// SinkCall is one recorded Sink invocation.
type SinkCall struct {
	Method  string
	URL     string
	Payload effect.Payload
	Flow    effect.PresentCompoundFlow
	Message string
}

// RecordingSink records every Sink call in order.
//
// Thread-safety: safe for concurrent use.
type RecordingSink struct {
	mu    sync.Mutex
	calls []SinkCall
}

// PresentNavigation implements effect.Sink.
func (s *RecordingSink) PresentNavigation(url string) {
	s.add(SinkCall{Method: "PresentNavigation", URL: url})
}

// PresentUI implements effect.Sink.
func (s *RecordingSink) PresentUI(p effect.Payload) {
	s.add(SinkCall{Method: "PresentUI", Payload: p})
}

// PresentCompoundFlow implements effect.Sink.
func (s *RecordingSink) PresentCompoundFlow(f effect.PresentCompoundFlow) {
	s.add(SinkCall{Method: "PresentCompoundFlow", Flow: f})
}

// ShowTransientError implements effect.Sink.
func (s *RecordingSink) ShowTransientError(message string) {
	s.add(SinkCall{Method: "ShowTransientError", Message: message})
}

func (s *RecordingSink) add(c SinkCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

// Calls returns a copy of the recorded calls.
func (s *RecordingSink) Calls() []SinkCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SinkCall(nil), s.calls...)
}

// Methods returns the method names of the recorded calls.
func (s *RecordingSink) Methods() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.Method
	}
	return out
}

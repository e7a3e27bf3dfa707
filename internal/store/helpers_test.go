package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/actionroute/internal/analytics"
	"github.com/roach88/actionroute/internal/ir"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEvent creates an event with a content-addressed ID.
func createTestEvent(resolutionID, actionID string, d analytics.Decision, seq int64) analytics.Event {
	return analytics.Event{
		ID:              ir.MustEventID(resolutionID, actionID, string(d), seq),
		ResolutionID:    resolutionID,
		Seq:             seq,
		ActionID:        actionID,
		Decision:        d,
		EffectKind:      "navigate",
		CurrentMode:     ir.ModeMail,
		RequiredMode:    ir.ModeMail,
		CardMode:        ir.ModeMail,
		CardID:          "card-1",
		ContextPresence: map[string]bool{"trackingNumber": true},
		Priority:        10,
	}
}

package store

import (
	"context"
	"fmt"

	"github.com/roach88/actionroute/internal/analytics"
)

// WriteEvent inserts an analytics event and reports whether a new row was
// written. Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs
// are silently ignored.
func (s *Store) WriteEvent(ctx context.Context, e analytics.Event) (bool, error) {
	if e.ID == "" {
		return false, fmt.Errorf("write event: empty id")
	}
	presence, err := marshalPresence(e.ContextPresence)
	if err != nil {
		return false, fmt.Errorf("write event: %w", err)
	}
	missing, err := marshalKeys(e.MissingKeys)
	if err != nil {
		return false, fmt.Errorf("write event: %w", err)
	}
	filled, err := marshalKeys(e.FilledKeys)
	if err != nil {
		return false, fmt.Errorf("write event: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO analytics_events
		(id, resolution_id, seq, action_id, decision, effect_kind,
		 current_mode, required_mode, card_mode, card_id,
		 context_presence, simulated, priority, missing_keys, filled_keys,
		 is_compound, url_source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		e.ID,
		e.ResolutionID,
		e.Seq,
		e.ActionID,
		string(e.Decision),
		e.EffectKind,
		string(e.CurrentMode),
		string(e.RequiredMode),
		string(e.CardMode),
		e.CardID,
		presence,
		boolToInt(e.Simulated),
		e.Priority,
		missing,
		filled,
		boolToInt(e.IsCompound),
		e.URLSource,
	)
	if err != nil {
		return false, fmt.Errorf("write event: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write event: rows affected: %w", err)
	}
	return n > 0, nil
}

// Record implements analytics.Recorder.
func (s *Store) Record(ctx context.Context, e analytics.Event) error {
	_, err := s.WriteEvent(ctx, e)
	return err
}

var _ analytics.Recorder = (*Store)(nil)

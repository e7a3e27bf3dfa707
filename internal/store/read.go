package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/actionroute/internal/analytics"
	"github.com/roach88/actionroute/internal/ir"
)

const eventColumns = `id, resolution_id, seq, action_id, decision, effect_kind,
	current_mode, required_mode, card_mode, card_id,
	context_presence, simulated, priority, missing_keys, filled_keys,
	is_compound, url_source`

// Filter narrows ReadEvents. Zero fields match everything.
type Filter struct {
	ActionID     string
	Decision     analytics.Decision
	ResolutionID string

	// AfterSeq keeps events with seq strictly greater than it.
	AfterSeq int64

	// Limit caps the number of events; 0 means no limit.
	Limit int
}

func (f Filter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.ActionID != "" {
		clauses = append(clauses, "action_id = ?")
		args = append(args, f.ActionID)
	}
	if f.Decision != "" {
		clauses = append(clauses, "decision = ?")
		args = append(args, string(f.Decision))
	}
	if f.ResolutionID != "" {
		clauses = append(clauses, "resolution_id = ?")
		args = append(args, f.ResolutionID)
	}
	if f.AfterSeq > 0 {
		clauses = append(clauses, "seq > ?")
		args = append(args, f.AfterSeq)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// ReadEvents returns the events matching f ordered by seq ASC, id ASC.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadEvents(ctx context.Context, f Filter) ([]analytics.Event, error) {
	where, args := f.where()
	query := "SELECT " + eventColumns + " FROM analytics_events " + where +
		" ORDER BY seq ASC, id COLLATE BINARY ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []analytics.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// ReadEvent retrieves a single event by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadEvent(ctx context.Context, id string) (analytics.Event, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM analytics_events WHERE id = ?", id)
	return scanEvent(row)
}

// CountDecisions returns the number of events per decision. An empty
// actionID counts every action.
func (s *Store) CountDecisions(ctx context.Context, actionID string) (map[analytics.Decision]int, error) {
	query := "SELECT decision, COUNT(*) FROM analytics_events"
	var args []any
	if actionID != "" {
		query += " WHERE action_id = ?"
		args = append(args, actionID)
	}
	query += " GROUP BY decision ORDER BY decision"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count decisions: %w", err)
	}
	defer rows.Close()

	out := make(map[analytics.Decision]int)
	for rows.Next() {
		var d string
		var n int
		if err := rows.Scan(&d, &n); err != nil {
			return nil, fmt.Errorf("scan decision count: %w", err)
		}
		out[analytics.Decision(d)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decision counts: %w", err)
	}
	return out, nil
}

// MaxSeq returns the highest persisted seq, or 0 for an empty log.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM analytics_events").Scan(&seq); err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (analytics.Event, error) {
	var (
		e                                   analytics.Event
		decision                            string
		currentMode, requiredMode, cardMode string
		presence, missing, filled           string
		simulated, compound                 int
	)
	err := row.Scan(
		&e.ID, &e.ResolutionID, &e.Seq, &e.ActionID, &decision, &e.EffectKind,
		&currentMode, &requiredMode, &cardMode, &e.CardID,
		&presence, &simulated, &e.Priority, &missing, &filled,
		&compound, &e.URLSource,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return analytics.Event{}, err
	}
	if err != nil {
		return analytics.Event{}, fmt.Errorf("scan event: %w", err)
	}

	e.Decision = analytics.Decision(decision)
	e.CurrentMode = ir.Mode(currentMode)
	e.RequiredMode = ir.Mode(requiredMode)
	e.CardMode = ir.Mode(cardMode)
	e.Simulated = simulated != 0
	e.IsCompound = compound != 0

	if e.ContextPresence, err = unmarshalPresence(presence); err != nil {
		return analytics.Event{}, err
	}
	if e.MissingKeys, err = unmarshalKeys(missing); err != nil {
		return analytics.Event{}, err
	}
	if e.FilledKeys, err = unmarshalKeys(filled); err != nil {
		return analytics.Event{}, err
	}
	return e, nil
}

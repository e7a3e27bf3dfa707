// Package analytics defines the structured event emitted once per terminal
// resolution decision and the recorders that consume it.
package analytics

import (
	"context"
	"errors"

	"github.com/roach88/actionroute/internal/ir"
)

// Decision classifies how a resolution ended.
type Decision string

const (
	DecisionSuccess         Decision = "success"
	DecisionSimulated       Decision = "simulated"
	DecisionModeMismatch    Decision = "mode_mismatch"
	DecisionNotFound        Decision = "not_found"
	DecisionMissingContext  Decision = "missing_context"
	DecisionInvalidCompound Decision = "invalid_compound"
)

// ValidDecisions defines the allowed decision strings.
var ValidDecisions = map[Decision]bool{
	DecisionSuccess:         true,
	DecisionSimulated:       true,
	DecisionModeMismatch:    true,
	DecisionNotFound:        true,
	DecisionMissingContext:  true,
	DecisionInvalidCompound: true,
}

// IsError reports whether the decision surfaced an error to the user.
func (d Decision) IsError() bool {
	switch d {
	case DecisionSuccess, DecisionSimulated:
		return false
	default:
		return true
	}
}

// Event is one terminal decision.
type Event struct {
	// ID is content-addressed over (resolution, action, decision, seq).
	ID           string   `json:"id"`
	ResolutionID string   `json:"resolution_id"`
	Seq          int64    `json:"seq"`
	ActionID     string   `json:"action_id"`
	Decision     Decision `json:"decision"`
	EffectKind   string   `json:"effect_kind"`

	CurrentMode  ir.Mode `json:"current_mode"`
	RequiredMode ir.Mode `json:"required_mode,omitempty"`
	CardMode     ir.Mode `json:"card_mode"`
	CardID       string  `json:"card_id,omitempty"`

	// ContextPresence maps each required key (or every key when the action
	// config is unknown) to whether the caller supplied it.
	ContextPresence map[string]bool `json:"context_presence"`

	Simulated   bool     `json:"simulated"`
	Priority    int      `json:"priority"`
	MissingKeys []string `json:"missing_keys,omitempty"`
	FilledKeys  []string `json:"filled_keys,omitempty"`
	IsCompound  bool     `json:"is_compound,omitempty"`
	URLSource   string   `json:"url_source,omitempty"`
}

// Canonical returns the event as a canonical-JSON-ready map.
func (e Event) Canonical() map[string]any {
	m := map[string]any{
		"id":               e.ID,
		"resolution_id":    e.ResolutionID,
		"seq":              e.Seq,
		"action_id":        e.ActionID,
		"decision":         string(e.Decision),
		"effect_kind":      e.EffectKind,
		"current_mode":     string(e.CurrentMode),
		"card_mode":        string(e.CardMode),
		"context_presence": presenceOrEmpty(e.ContextPresence),
		"simulated":        e.Simulated,
		"priority":         e.Priority,
	}
	if e.RequiredMode != "" {
		m["required_mode"] = string(e.RequiredMode)
	}
	if e.CardID != "" {
		m["card_id"] = e.CardID
	}
	if len(e.MissingKeys) > 0 {
		m["missing_keys"] = e.MissingKeys
	}
	if len(e.FilledKeys) > 0 {
		m["filled_keys"] = e.FilledKeys
	}
	if e.IsCompound {
		m["is_compound"] = true
	}
	if e.URLSource != "" {
		m["url_source"] = e.URLSource
	}
	return m
}

func presenceOrEmpty(m map[string]bool) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	return m
}

// Recorder consumes analytics events. Record must be safe for concurrent
// use; a failing recorder never changes the resolution outcome.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, e Event) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// Discard drops every event.
var Discard Recorder = RecorderFunc(func(context.Context, Event) error { return nil })

// Multi fans an event out to every recorder. All recorders run even when
// some fail; the errors are joined.
type Multi []Recorder

// Record implements Recorder.
func (m Multi) Record(ctx context.Context, e Event) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

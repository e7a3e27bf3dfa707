package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/actionroute/internal/analytics"
	"github.com/roach88/actionroute/internal/effect"
	"github.com/roach88/actionroute/internal/ir"
)

// record emits the single analytics event of a terminal decision. Recorder
// failures are logged and never change the resolution.
func (e *Engine) record(ctx context.Context, st *state) {
	req, res := st.req, &st.res
	cfg, known := st.cfg, st.known

	ev := analytics.Event{
		ResolutionID:    res.ID,
		Seq:             e.clock.Next(),
		ActionID:        req.Action.ID,
		Decision:        res.Decision,
		EffectKind:      string(res.Effect.Kind()),
		CurrentMode:     req.currentMode(),
		ContextPresence: presence(req.Action.Context, cfg, known),
		Simulated:       res.Simulated,
		Priority:        priorityOf(req.Action, cfg),
		MissingKeys:     res.MissingKeys,
		FilledKeys:      res.FilledKeys,
		IsCompound:      req.Action.IsCompound,
	}
	if known {
		ev.RequiredMode = cfg.RequiredMode
	}
	if req.Card != nil {
		ev.CardMode = req.Card.Mode
		ev.CardID = req.Card.ID
	}
	if nav, ok := res.Effect.(effect.Navigate); ok {
		ev.URLSource = string(nav.Source)
	}

	id, err := ir.EventID(ev.ResolutionID, ev.ActionID, string(ev.Decision), ev.Seq)
	if err != nil {
		slog.WarnContext(ctx, "event id failed", "resolution_id", res.ID, "error", err)
	}
	ev.ID = id
	res.Event = &ev

	if err := e.recorder.Record(ctx, ev); err != nil {
		slog.WarnContext(ctx, "analytics event not recorded",
			"code", logCodeRecordFailed,
			"resolution_id", res.ID,
			"action_id", ev.ActionID,
			"error", err,
		)
	}
}

// presence maps each required key to whether the caller supplied a non-empty
// value. Without a config every supplied key is reported.
func presence(ctx ir.Context, cfg ir.ActionConfig, known bool) map[string]bool {
	out := make(map[string]bool)
	if known && len(cfg.RequiredContextKeys) > 0 {
		for _, k := range cfg.RequiredContextKeys {
			_, ok := ctx.Lookup(k)
			out[k] = ok
		}
		return out
	}
	for _, k := range ctx.Keys() {
		_, ok := ctx.Lookup(k)
		out[k] = ok
	}
	return out
}

func priorityOf(a ir.Action, cfg ir.ActionConfig) int {
	if a.Priority != nil {
		return *a.Priority
	}
	return cfg.Priority
}

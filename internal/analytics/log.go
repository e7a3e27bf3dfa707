package analytics

import (
	"context"
	"log/slog"
)

// LogRecorder writes each event as one structured log line.
type LogRecorder struct {
	logger *slog.Logger
}

// NewLogRecorder creates a LogRecorder. A nil logger uses slog.Default().
func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogRecorder{logger: logger}
}

// Record implements Recorder. Error decisions log at warn level.
func (r *LogRecorder) Record(ctx context.Context, e Event) error {
	level := slog.LevelInfo
	if e.Decision.IsError() {
		level = slog.LevelWarn
	}
	r.logger.Log(ctx, level, "action resolved",
		"resolution_id", e.ResolutionID,
		"seq", e.Seq,
		"action_id", e.ActionID,
		"decision", string(e.Decision),
		"effect", e.EffectKind,
		"current_mode", string(e.CurrentMode),
		"required_mode", string(e.RequiredMode),
		"card_mode", string(e.CardMode),
		"simulated", e.Simulated,
		"priority", e.Priority,
		"missing_keys", e.MissingKeys,
		"filled_keys", e.FilledKeys,
	)
	return nil
}

package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/actionroute/internal/analytics"
	"github.com/roach88/actionroute/internal/engine"
	"github.com/roach88/actionroute/internal/registry"
	"github.com/roach88/actionroute/internal/store"
	"github.com/roach88/actionroute/internal/uidef"
)

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger for engine decisions. Runs are silent by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a freshly loaded registry and a fresh in-memory
// event store. A step with ReloadRegistry swaps the registry in place; a
// failed reload is reported and the previous registry stays active.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	reg, err := registry.OpenReloadable(scenario.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	engineOpts := []engine.Option{
		engine.WithRecorder(analytics.Multi{st, analytics.NewLogRecorder(cfg.logger)}),
		engine.WithIDGenerator(&engine.SequenceGenerator{Prefix: "res"}),
		engine.WithClock(engine.NewClock()),
	}
	if scenario.UIDir != "" {
		loader, err := uidef.NewDirLoader(scenario.UIDir, uidef.DefaultCacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to open ui definitions: %w", err)
		}
		engineOpts = append(engineOpts, engine.WithUILoader(loader))
	}
	eng := engine.New(reg, engineOpts...)

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Steps {
		card := &scenario.Card
		if step.Card != nil {
			card = step.Card
		}
		if step.ReloadRegistry != "" {
			if err := reg.ReloadFrom(step.ReloadRegistry); err != nil {
				result.AddError(fmt.Sprintf("step %d: %v", i, err))
			}
		}
		res := eng.Resolve(ctx, engine.Request{
			Action:    step.Action,
			Card:      card,
			Mode:      step.Mode,
			Confirmed: step.Confirmed,
		})

		ts := TraceStep{
			Step:      i,
			ActionID:  res.ActionID,
			Decision:  res.Decision,
			Effect:    res.Effect,
			Simulated: res.Simulated,
			Terminal:  res.Terminal,
		}
		if res.Event != nil {
			ts.Seq = res.Event.Seq
		}
		result.Trace = append(result.Trace, ts)

		if step.Expect != nil {
			for _, msg := range checkExpect(i, step.Expect, res) {
				result.AddError(msg)
			}
		}
		cfg.logger.Debug("scenario step completed",
			"scenario", scenario.Name,
			"step", i,
			"action", step.Action.ID,
			"effect", string(res.Effect.Kind()),
		)
	}

	events, err := st.ReadEvents(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	result.Events = events

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

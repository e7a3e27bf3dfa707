package cli

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/roach88/actionroute/internal/analytics"
	"github.com/roach88/actionroute/internal/config"
	"github.com/roach88/actionroute/internal/effect"
	"github.com/roach88/actionroute/internal/engine"
	"github.com/roach88/actionroute/internal/placeholder"
	"github.com/roach88/actionroute/internal/registry"
	"github.com/roach88/actionroute/internal/store"
	"github.com/roach88/actionroute/internal/uidef"
)

// runtime is the engine and its collaborators built from one Config.
type runtime struct {
	registry *registry.Reloadable
	store    *store.Store // nil when no events database is configured
	engine   *engine.Engine
}

// newRuntime wires an engine from cfg. publisher may be nil. With an events
// database the engine clock resumes after the last persisted seq.
func newRuntime(ctx context.Context, cfg *config.Config, publisher effect.Publisher) (*runtime, error) {
	reg, err := registry.OpenReloadable(cfg.RegistryDir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load registry", err)
	}

	recorders := analytics.Multi{analytics.NewLogRecorder(slog.Default())}
	metrics, err := analytics.NewMetricsRecorder(otel.Meter(analytics.MeterName))
	if err != nil {
		return nil, fmt.Errorf("decision metrics: %w", err)
	}
	recorders = append(recorders, metrics)

	rt := &runtime{registry: reg}
	if cfg.EventsDB != "" {
		st, err := store.Open(cfg.EventsDB)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open events database", err)
		}
		rt.store = st
		recorders = append(recorders, st)
	}
	clock := engine.NewClock()
	if rt.store != nil {
		if clock, err = engine.ResumeClock(ctx, rt.store); err != nil {
			rt.Close()
			return nil, WrapExitError(ExitCommandError, "failed to read events database", err)
		}
	}

	opts := []engine.Option{
		engine.WithRecorder(recorders),
		engine.WithClock(clock),
		engine.WithFallbackURL(cfg.FallbackURL),
		engine.WithPlaceholders(placeholder.New(
			placeholder.WithAttachmentBaseURL(cfg.AttachmentBaseURL),
			placeholder.WithSynthesis(cfg.Synthesis),
		)),
	}
	if publisher != nil {
		opts = append(opts, engine.WithPublisher(publisher))
	}
	if cfg.UIDir != "" {
		loader, err := uidef.NewDirLoader(cfg.UIDir, cfg.UICacheSize)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("ui definitions: %w", err)
		}
		opts = append(opts, engine.WithUILoader(loader))
	}
	rt.engine = engine.New(reg, opts...)
	return rt, nil
}

// Close releases the events database.
func (r *runtime) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}

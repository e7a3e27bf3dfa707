package engine

import (
	"context"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/actionroute/internal/analytics"
	"github.com/roach88/actionroute/internal/effect"
	"github.com/roach88/actionroute/internal/ir"
	"github.com/roach88/actionroute/internal/placeholder"
	"github.com/roach88/actionroute/internal/registry"
	"github.com/roach88/actionroute/internal/uidef"
)

// TracerName is the instrumentation scope of resolution spans.
const TracerName = "github.com/roach88/actionroute/internal/engine"

// Request is one call to the entry point.
type Request struct {
	Action ir.Action
	Card   *ir.Card

	// Mode is the current mode. Empty means the card's mode.
	Mode ir.Mode

	// Confirmed marks the follow-up call after a preview; it skips the
	// preview gate.
	Confirmed bool
}

// currentMode returns the mode the gate compares against.
func (r Request) currentMode() ir.Mode {
	if r.Mode != "" {
		return r.Mode
	}
	if r.Card != nil {
		return r.Card.Mode
	}
	return ""
}

// Resolution is the outcome of one Resolve call.
type Resolution struct {
	ID       string
	ActionID string
	Effect   effect.Effect
	Decision analytics.Decision

	// Terminal is false for previews.
	Terminal bool

	Simulated   bool
	MissingKeys []string
	FilledKeys  []string
	Placeholder *ir.PlaceholderContent

	// Err is the *ResolutionError behind a ShowError effect.
	Err error

	// Event is the analytics event recorded for a terminal decision.
	Event *analytics.Event
}

// Engine is the action resolution and routing engine.
//
// Thread-safety: an Engine is immutable after New. Resolve may be called
// from any number of goroutines; each call pins one registry snapshot.
type Engine struct {
	registry     registry.ActionRegistry
	compounds    registry.CompoundRegistry
	placeholders *placeholder.Resolver
	uiLoader     uidef.Loader
	recorder     analytics.Recorder
	publisher    effect.Publisher
	ids          IDGenerator
	clock        *Clock
	tracer       trace.Tracer
	fallbackURL  string
}

// Option configures an Engine.
type Option func(*Engine)

// WithCompounds sets the compound registry. Without it, a pinned registry
// snapshot that also serves compounds is used.
func WithCompounds(c registry.CompoundRegistry) Option {
	return func(e *Engine) {
		e.compounds = c
	}
}

// WithPlaceholders replaces the placeholder resolver.
func WithPlaceholders(r *placeholder.Resolver) Option {
	return func(e *Engine) {
		e.placeholders = r
	}
}

// WithUILoader enables data-driven UI definitions.
func WithUILoader(l uidef.Loader) Option {
	return func(e *Engine) {
		e.uiLoader = l
	}
}

// WithRecorder sets the analytics recorder.
func WithRecorder(r analytics.Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithPublisher hands every effect to p after it is decided.
func WithPublisher(p effect.Publisher) Option {
	return func(e *Engine) {
		e.publisher = p
	}
}

// WithIDGenerator sets the resolution ID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithClock sets the logical clock used for event seq numbers.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithTracer sets the tracer used for resolution spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithFallbackURL sets the last-resort navigation URL.
func WithFallbackURL(u string) Option {
	return func(e *Engine) {
		if u != "" {
			e.fallbackURL = u
		}
	}
}

// New creates an Engine over reg.
func New(reg registry.ActionRegistry, opts ...Option) *Engine {
	e := &Engine{
		registry:     reg,
		placeholders: placeholder.New(),
		recorder:     analytics.Discard,
		ids:          UUIDv7Generator{},
		clock:        NewClock(),
		tracer:       otel.Tracer(TracerName),
		fallbackURL:  DefaultFallbackURL,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// pinned is the registry view for one resolution.
type pinned struct {
	actions   registry.ActionRegistry
	compounds registry.CompoundRegistry
}

func (e *Engine) pin() pinned {
	p := pinned{actions: e.registry, compounds: e.compounds}
	if pr, ok := e.registry.(registry.Pinner); ok {
		p.actions = pr.Pin()
	}
	if p.compounds == nil {
		if c, ok := p.actions.(registry.CompoundRegistry); ok {
			p.compounds = c
		}
	}
	return p
}

// Resolve decides the effect for one action. It always returns exactly one
// effect; fatal conditions become ShowError. Terminal decisions are
// recorded once; previews are not recorded.
func (e *Engine) Resolve(ctx context.Context, req Request) Resolution {
	ctx, span := e.tracer.Start(ctx, "engine.Resolve", trace.WithAttributes(
		attribute.String("action.id", req.Action.ID),
		attribute.Bool("action.compound", req.Action.IsCompound),
		attribute.Bool("confirmed", req.Confirmed),
	))
	defer span.End()

	st := e.resolve(ctx, req)
	res := &st.res

	span.SetAttributes(
		attribute.String("decision", string(res.Decision)),
		attribute.String("effect", string(res.Effect.Kind())),
		attribute.Bool("simulated", res.Simulated),
	)
	if res.Err != nil {
		span.SetStatus(codes.Error, res.Err.Error())
	}

	if res.Terminal {
		e.record(ctx, st)
	}
	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, res.Effect); err != nil {
			slog.Warn("effect not published",
				"code", logCodePublishFailed,
				"resolution_id", res.ID,
				"action_id", res.ActionID,
				"error", err,
			)
		}
	}
	return *res
}

// state carries one resolution through the pipeline.
type state struct {
	req    Request
	reg    pinned
	cfg    ir.ActionConfig
	known  bool
	merged ir.Context
	res    Resolution
}

func (e *Engine) resolve(ctx context.Context, req Request) *state {
	st := &state{
		req:    req,
		reg:    e.pin(),
		merged: req.Action.Context,
		res: Resolution{
			ID:       e.ids.Generate(),
			ActionID: req.Action.ID,
			Terminal: true,
		},
	}

	if req.Action.IsCompound {
		e.dispatchCompound(st)
		return st
	}

	cfg, ok := st.reg.actions.ActionConfig(req.Action.ID)
	if !ok {
		e.fail(st, analytics.DecisionNotFound, NewNotFoundError(req.Action.ID))
		return st
	}
	st.cfg, st.known = cfg, true

	current := req.currentMode()
	if !st.reg.actions.IsValidForMode(cfg, current) {
		e.fail(st, analytics.DecisionModeMismatch, NewModeMismatchError(cfg.ID, string(cfg.RequiredMode), string(current)))
		return st
	}

	if vr := st.reg.actions.Validate(cfg, req.Action.Context); !vr.IsValid {
		if !e.fill(ctx, st, vr) {
			return st
		}
	}

	switch e.kindOf(req.Action, cfg) {
	case ir.KindInApp:
		e.dispatchInApp(ctx, st)
	default:
		e.dispatchGoTo(st)
	}
	return st
}

// fill runs the placeholder tiers and re-validates. It reports false when
// the resolution ended in MISSING_CONTEXT.
func (e *Engine) fill(ctx context.Context, st *state, initial ir.ValidationResult) bool {
	result := e.placeholders.Fill(st.cfg, st.req.Action.Context, st.req.Card)
	after := st.reg.actions.Validate(st.cfg, result.Context)
	if !after.IsValid {
		st.res.MissingKeys = after.MissingKeys
		st.res.FilledKeys = result.Filled
		e.fail(st, analytics.DecisionMissingContext, NewMissingContextError(st.cfg.ID, after.MissingKeys))
		return false
	}

	slog.DebugContext(ctx, "context simulated",
		"resolution_id", st.res.ID,
		"action_id", st.cfg.ID,
		"missing", initial.MissingKeys,
		"structural", result.Structural,
		"synthesized", result.Synthesized,
	)
	st.merged = result.Context
	st.res.Simulated = true
	st.res.MissingKeys = initial.MissingKeys
	st.res.FilledKeys = result.Filled
	content := e.placeholders.Content(st.cfg.ID, result.Context, st.req.Card, result.Filled)
	st.res.Placeholder = &content
	return true
}

// kindOf picks the dispatch path: the action's own kind, then the
// registry's, then InApp when a terminal UI is configured.
func (e *Engine) kindOf(a ir.Action, cfg ir.ActionConfig) ir.ActionKind {
	switch {
	case a.Kind != "":
		return a.Kind
	case cfg.Kind != "":
		return cfg.Kind
	case cfg.TerminalUIID != "" || cfg.DataDrivenUIRef != "":
		return ir.KindInApp
	default:
		return ir.KindGoTo
	}
}

func (e *Engine) succeed(st *state, eff effect.Effect) {
	st.res.Effect = eff
	st.res.Decision = analytics.DecisionSuccess
	if st.res.Simulated {
		st.res.Decision = analytics.DecisionSimulated
	}
}

func (e *Engine) fail(st *state, d analytics.Decision, err *ResolutionError) {
	st.res.Decision = d
	st.res.Err = err
	st.res.Effect = effect.ShowError{Code: string(err.Code), Message: err.UserMessage()}
	st.res.Simulated = false
	slog.Info("action rejected",
		"resolution_id", st.res.ID,
		"action_id", err.ActionID,
		"code", string(err.Code),
		"reason", err.Message,
	)
}

func (e *Engine) dispatchCompound(st *state) {
	a := st.req.Action
	steps := slices.Clone(a.CompoundSteps)

	var end *ir.EndBehavior
	if st.reg.compounds != nil {
		if c, ok := st.reg.compounds.CompoundAction(a.ID); ok {
			end = c.EndBehavior
			if len(steps) == 0 {
				steps = slices.Clone(c.Steps)
			}
		}
	}

	if len(steps) == 0 {
		e.fail(st, analytics.DecisionInvalidCompound, NewInvalidCompoundError(a.ID))
		return
	}
	e.succeed(st, effect.PresentCompoundFlow{
		ActionID:    a.ID,
		Steps:       steps,
		Context:     a.Context,
		EndBehavior: end,
	})
}

func (e *Engine) dispatchGoTo(st *state) {
	id := st.cfg.ID
	if !st.req.Confirmed && previewReady(id, st.req.Action.Context) {
		variant, _ := effect.PreviewVariant(id)
		st.res.Terminal = false
		e.succeed(st, effect.PresentPreview{
			ActionID: id,
			Payload:  e.payload(st, variant),
		})
		return
	}

	u, source := e.resolveURL(id, st.merged, st.req.Card)
	e.succeed(st, effect.Navigate{URL: u, Source: source})
}

func (e *Engine) dispatchInApp(ctx context.Context, st *state) {
	if ref := st.cfg.DataDrivenUIRef; ref != "" && e.uiLoader != nil {
		def, err := e.uiLoader.Load(ref)
		if err == nil {
			view := def.Bind(st.merged)
			p := e.payload(st, effect.VariantGeneric)
			p.View = &view
			p.Fields = viewFields(view)
			e.succeed(st, effect.PresentUI{Payload: p})
			return
		}
		slog.WarnContext(ctx, "ui definition unavailable, using static mapping",
			"code", logCodeUIDefinition,
			"resolution_id", st.res.ID,
			"action_id", st.cfg.ID,
			"definition", ref,
			"error", err,
		)
	}

	variant := effect.VariantFor(st.cfg.TerminalUIID)
	e.succeed(st, effect.PresentUI{Payload: e.payload(st, variant)})
}

func (e *Engine) payload(st *state, v effect.Variant) effect.Payload {
	p := effect.Payload{
		Variant:     v,
		Fields:      effect.Extract(v, st.merged, st.req.Card),
		Simulated:   st.res.Simulated,
		Placeholder: st.res.Placeholder,
	}
	if st.req.Card != nil {
		p.CardID = st.req.Card.ID
	}
	return p
}

func viewFields(v uidef.View) map[string]string {
	out := make(map[string]string, len(v.Fields))
	for _, f := range v.Fields {
		if f.Key != "" && f.Value != "" {
			out[f.Key] = f.Value
		}
	}
	return out
}

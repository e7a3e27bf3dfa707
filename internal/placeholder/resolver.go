package placeholder

import (
	"slices"

	"github.com/roach88/actionroute/internal/ir"
)

// Resolver applies the structural and synthesis tiers. It holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	attachmentBaseURL string
	synthesis         bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAttachmentBaseURL sets the base for attachment-derived document URLs.
func WithAttachmentBaseURL(base string) Option {
	return func(r *Resolver) {
		r.attachmentBaseURL = base
	}
}

// WithSynthesis enables or disables the content-synthesis tier for every
// action. Disabled synthesis behaves like the structural policy.
func WithSynthesis(enabled bool) Option {
	return func(r *Resolver) {
		r.synthesis = enabled
	}
}

// New creates a Resolver with synthesis enabled.
func New(opts ...Option) *Resolver {
	r := &Resolver{synthesis: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of Fill.
type Result struct {
	// Context is the merged context. It is the caller's context when nothing
	// was filled.
	Context ir.Context

	// Filled lists every key the resolver supplied, in required-key order.
	Filled []string

	// Structural and Synthesized split Filled by tier.
	Structural  []string
	Synthesized []string
}

// Simulated reports whether any value was filled.
func (r Result) Simulated() bool {
	return len(r.Filled) > 0
}

// Fill supplies values for the required keys of cfg that are absent or empty
// in ctx. Present values are never replaced. Keys the allowed tiers cannot
// produce stay missing so the caller's re-validation fails.
func (r *Resolver) Fill(cfg ir.ActionConfig, ctx ir.Context, card *ir.Card) Result {
	res := Result{Context: ctx}
	policy := cfg.Policy()
	if policy == ir.PlaceholderNone {
		return res
	}

	missing := missingKeys(cfg.RequiredContextKeys, ctx)
	if len(missing) == 0 {
		return res
	}

	out := ctx
	var remaining []string
	for _, key := range missing {
		if v := r.structuralValue(cfg.ID, key, ctx, card); v != "" {
			out = out.With(key, v)
			res.Structural = append(res.Structural, key)
			continue
		}
		remaining = append(remaining, key)
	}

	if policy == ir.PlaceholderFull && r.synthesis && len(remaining) > 0 {
		a := Analyze(card)
		for _, key := range remaining {
			if IsURLKey(key) {
				continue
			}
			out = out.With(key, synthesize(key, a, card))
			res.Synthesized = append(res.Synthesized, key)
		}
	}

	for _, key := range missing {
		if slices.Contains(res.Structural, key) || slices.Contains(res.Synthesized, key) {
			res.Filled = append(res.Filled, key)
		}
	}
	res.Context = out
	return res
}

// DocumentURL returns the attachment-derived document URL for card.
func (r *Resolver) DocumentURL(card *ir.Card) (string, bool) {
	return AttachmentURL(r.attachmentBaseURL, card)
}

func missingKeys(required []string, ctx ir.Context) []string {
	var missing []string
	for _, key := range required {
		if _, ok := ctx.Lookup(key); ok || slices.Contains(missing, key) {
			continue
		}
		missing = append(missing, key)
	}
	return missing
}

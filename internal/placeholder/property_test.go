package placeholder

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/roach88/actionroute/internal/ir"
)

// TestFillNeverOverwrites verifies present values survive every fill.
// Property: Lookup(k) before fill == Lookup(k) after fill for present k
func TestFillNeverOverwrites(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	keys := []string{"trackingNumber", "carrier", "amount", "merchant", "title", "customKey"}
	cfg := ir.ActionConfig{ID: "track_package", RequiredContextKeys: keys}

	properties.Property("present values are never replaced", prop.ForAll(
		func(values []string, body string) bool {
			m := make(map[string]string)
			for i := 0; i < len(keys) && i < len(values); i++ {
				m[keys[i]] = values[i]
			}
			ctx := ir.NewContext(m)
			res := New().Fill(cfg, ctx, &ir.Card{Title: body, BodyText: body})

			for _, k := range ctx.PresentKeys() {
				if res.Context.Value(k) != ctx.Value(k) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// TestFillCompletes verifies the full policy satisfies every display key.
// Property: after fill, every required non-URL key is present and non-empty
func TestFillCompletes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("full fill leaves no display key missing", prop.ForAll(
		func(key, title, body string) bool {
			if key == "" || IsURLKey(key) {
				return true
			}
			cfg := ir.ActionConfig{ID: "anything", RequiredContextKeys: []string{key, "amount"}}
			res := New().Fill(cfg, ir.Context{}, &ir.Card{Title: title, BodyText: body})

			for _, k := range cfg.RequiredContextKeys {
				v, ok := res.Context.Lookup(k)
				if !ok || strings.TrimSpace(v) == "" {
					return false
				}
			}
			return true
		},
		gen.Identifier(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// TestFillIdempotent verifies a second fill is a no-op.
// Property: Fill(Fill(ctx)) == Fill(ctx)
func TestFillIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	cfg := ir.ActionConfig{ID: "pay_invoice", RequiredContextKeys: []string{"amount", "merchant", "paymentLink", "dueDate"}}

	properties.Property("fill is idempotent", prop.ForAll(
		func(amount, body string) bool {
			card := &ir.Card{BodyText: body}
			first := New().Fill(cfg, ir.ContextOf("amount", amount), card)
			second := New().Fill(cfg, first.Context, card)
			return second.Context.Equal(first.Context) && len(second.Filled) == 0
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

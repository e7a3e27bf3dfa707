package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/actionroute/internal/analytics"
	"github.com/roach88/actionroute/internal/effect"
	"github.com/roach88/actionroute/internal/ir"
	"github.com/roach88/actionroute/internal/registry"
	"github.com/roach88/actionroute/internal/testutil"
	"github.com/roach88/actionroute/internal/uidef"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *testutil.RecordingRecorder) {
	t.Helper()
	rec := &testutil.RecordingRecorder{}
	base := []Option{
		WithRecorder(rec),
		WithIDGenerator(&SequenceGenerator{Prefix: "res"}),
	}
	return New(testutil.Registry(), append(base, opts...)...), rec
}

func goTo(id string, kv ...string) ir.Action {
	return ir.Action{ID: id, Kind: ir.KindGoTo, Context: ir.ContextOf(kv...)}
}

func inApp(id string, kv ...string) ir.Action {
	return ir.Action{ID: id, Kind: ir.KindInApp, Context: ir.ContextOf(kv...)}
}

func TestResolve_ActionNotFound(t *testing.T) {
	e, rec := newTestEngine(t)

	res := e.Resolve(context.Background(), Request{Action: goTo("teleport"), Card: testutil.ShippingCard()})

	assert.Equal(t, effect.ShowError{Code: "ACTION_NOT_FOUND", Message: "This action isn't available."}, res.Effect)
	assert.Equal(t, analytics.DecisionNotFound, res.Decision)
	assert.True(t, IsNotFound(res.Err))
	assert.True(t, res.Terminal)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "teleport", events[0].ActionID)
	assert.Equal(t, string(effect.KindShowError), events[0].EffectKind)
	assert.Equal(t, ir.ModeMail, events[0].CurrentMode)
	assert.Empty(t, events[0].RequiredMode)
}

func TestResolve_ModeMismatch(t *testing.T) {
	e, rec := newTestEngine(t)

	res := e.Resolve(context.Background(), Request{
		Action: inApp("claim_offer", "promoCode", "SPRING20"),
		Card:   testutil.ShippingCard(),
	})

	assert.Equal(t, effect.KindShowError, res.Effect.Kind())
	assert.True(t, IsModeMismatch(res.Err))
	assert.Equal(t, analytics.DecisionModeMismatch, res.Decision)

	var re *ResolutionError
	require.True(t, errors.As(res.Err, &re))
	assert.Equal(t, map[string]string{"required_mode": "ads", "current_mode": "mail"}, re.Details)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, ir.ModeMail, events[0].CurrentMode)
	assert.Equal(t, ir.ModeAds, events[0].RequiredMode)
	assert.Equal(t, ir.ModeMail, events[0].CardMode)
}

func TestResolve_RequestModeOverridesCardMode(t *testing.T) {
	e, _ := newTestEngine(t)

	res := e.Resolve(context.Background(), Request{
		Action: inApp("claim_offer", "promoCode", "SPRING20"),
		Card:   testutil.ShippingCard(),
		Mode:   ir.ModeAds,
	})

	assert.Equal(t, effect.KindPresentUI, res.Effect.Kind())
}

func TestResolve_NavigateWithCarrierGenerator(t *testing.T) {
	e, rec := newTestEngine(t)

	res := e.Resolve(context.Background(), Request{
		Action:    goTo("track_package", "trackingNumber", "1Z999", "carrier", "UPS"),
		Card:      testutil.ShippingCard(),
		Confirmed: true,
	})

	assert.Equal(t, effect.Navigate{URL: "https://www.ups.com/track?tracknum=1Z999", Source: effect.SourceGenerator}, res.Effect)
	assert.Equal(t, analytics.DecisionSuccess, res.Decision)
	assert.False(t, res.Simulated)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "generator", events[0].URLSource)
	assert.Equal(t, map[string]bool{"trackingNumber": true, "carrier": true}, events[0].ContextPresence)
	assert.Equal(t, 10, events[0].Priority)
	assert.Len(t, events[0].ID, 64)
}

func TestResolve_PreviewThenConfirm(t *testing.T) {
	pub := &testutil.RecordingPublisher{}
	e, rec := newTestEngine(t, WithPublisher(pub))
	action := goTo("track_package", "trackingNumber", "1Z999", "carrier", "UPS")
	card := testutil.ShippingCard()

	first := e.Resolve(context.Background(), Request{Action: action, Card: card})

	preview, ok := first.Effect.(effect.PresentPreview)
	require.True(t, ok, "first call should preview, got %T", first.Effect)
	assert.Equal(t, effect.VariantTrackPackagePreview, preview.Payload.Variant)
	assert.Equal(t, "1Z999", preview.Payload.Fields["trackingNumber"])
	assert.Equal(t, "card-ship", preview.Payload.CardID)
	assert.False(t, first.Terminal)
	assert.Nil(t, first.Event)
	assert.Empty(t, rec.Events(), "previews are not terminal decisions")

	second := e.Resolve(context.Background(), Request{Action: action, Card: card, Confirmed: true})
	assert.Equal(t, effect.KindNavigate, second.Effect.Kind())
	assert.Len(t, rec.Events(), 1)

	effects := pub.Effects()
	require.Len(t, effects, 2)
	assert.Equal(t, effect.KindPreview, effects[0].Kind())
	assert.Equal(t, effect.KindNavigate, effects[1].Kind())
}

func TestResolve_PreviewGatedIDs(t *testing.T) {
	e, _ := newTestEngine(t)
	tests := []struct {
		action  ir.Action
		variant effect.Variant
	}{
		{goTo("track_package", "trackingNumber", "1Z999", "carrier", "UPS"), effect.VariantTrackPackagePreview},
		{goTo("pay_invoice", "amountDue", "$5.00", "amount", "$5.00", "merchant", "Acme"), effect.VariantPayInvoicePreview},
		{goTo("write_review", "productName", "Kettle"), effect.VariantWriteReviewPreview},
		{goTo("check_in_flight", "flightNumber", "UA123"), effect.VariantCheckInFlightPreview},
	}
	for _, tt := range tests {
		t.Run(tt.action.ID, func(t *testing.T) {
			assert.True(t, IsPreviewGated(tt.action.ID))
			res := e.Resolve(context.Background(), Request{Action: tt.action, Card: testutil.ShippingCard()})
			p, ok := res.Effect.(effect.PresentPreview)
			require.True(t, ok, "got %T", res.Effect)
			assert.Equal(t, tt.variant, p.Payload.Variant)
		})
	}
	assert.False(t, IsPreviewGated("view_order"))
}

func TestResolve_URLLadder(t *testing.T) {
	e, _ := newTestEngine(t)
	resolve := func(a ir.Action) effect.Navigate {
		t.Helper()
		res := e.Resolve(context.Background(), Request{Action: a, Card: testutil.ShippingCard(), Confirmed: true})
		nav, ok := res.Effect.(effect.Navigate)
		require.True(t, ok, "got %T", res.Effect)
		return nav
	}

	t.Run("generic url wins over semantic key", func(t *testing.T) {
		nav := resolve(goTo("track_package",
			"url", "https://a.example/track",
			"trackingUrl", "https://b.example/track",
			"trackingNumber", "1Z999", "carrier", "UPS"))
		assert.Equal(t, effect.Navigate{URL: "https://a.example/track", Source: effect.SourceGeneric}, nav)
	})

	t.Run("semantic keys in order", func(t *testing.T) {
		nav := resolve(goTo("pay_invoice",
			"amount", "$1", "merchant", "Acme",
			"invoiceUrl", "https://c.example/invoice",
			"paymentLink", "https://b.example/pay"))
		assert.Equal(t, effect.Navigate{URL: "https://b.example/pay", Source: effect.SourceSemantic}, nav)
	})

	t.Run("malformed urls fall through", func(t *testing.T) {
		nav := resolve(goTo("track_package",
			"url", "not a url",
			"trackingUrl", "javascript:alert(1)",
			"trackingNumber", "1Z999", "carrier", "FedEx"))
		assert.Equal(t, effect.Navigate{URL: "https://www.fedex.com/fedextrack/?trknbr=1Z999", Source: effect.SourceGenerator}, nav)
	})

	t.Run("link key after semantic keys", func(t *testing.T) {
		nav := resolve(goTo("view_order", "link", "https://acme.example/orders/1"))
		assert.Equal(t, effect.Navigate{URL: "https://acme.example/orders/1", Source: effect.SourceSemantic}, nav)
	})

	t.Run("unknown carrier falls back to search", func(t *testing.T) {
		nav := resolve(goTo("track_package", "trackingNumber", "XYZ", "carrier", "acme-post"))
		assert.Equal(t, effect.SourceGenerator, nav.Source)
		assert.Contains(t, nav.URL, "XYZ")
		assert.Contains(t, nav.URL, "google.com/search")
	})

	t.Run("structural default", func(t *testing.T) {
		nav := resolve(goTo("view_order"))
		assert.Equal(t, effect.Navigate{URL: "https://www.google.com/search?q=order+status", Source: effect.SourceStructural}, nav)
	})

	t.Run("mailto and tel are navigable", func(t *testing.T) {
		assert.Equal(t, "mailto:help@acme.example", resolve(goTo("view_order", "url", "mailto:help@acme.example")).URL)
		assert.Equal(t, "tel:+15551234", resolve(goTo("view_order", "url", "tel:+15551234")).URL)
	})
}

func TestResolve_FallbackLink(t *testing.T) {
	snap := registry.NewSnapshot("1.0.0", []ir.ActionConfig{{ID: "odd link", RequiredMode: ir.ModeMail, Kind: ir.KindGoTo}}, nil)

	e := New(snap, WithFallbackURL("https://fallback.example/go"))
	res := e.Resolve(context.Background(), Request{Action: goTo("odd link"), Card: testutil.ShippingCard()})
	assert.Equal(t, effect.Navigate{URL: "https://fallback.example/go?action=odd+link", Source: effect.SourceFallback}, res.Effect)

	e = New(snap, WithFallbackURL("https://fallback.example/go?src=mail"))
	res = e.Resolve(context.Background(), Request{Action: goTo("odd link"), Card: testutil.ShippingCard()})
	assert.Equal(t, "https://fallback.example/go?src=mail&action=odd+link", res.Effect.(effect.Navigate).URL)

	e = New(snap)
	res = e.Resolve(context.Background(), Request{Action: goTo("odd link"), Card: testutil.ShippingCard()})
	assert.Equal(t, DefaultFallbackURL+"?action=odd+link", res.Effect.(effect.Navigate).URL)
}

func TestResolve_SimulatedContext(t *testing.T) {
	e, rec := newTestEngine(t)
	action := goTo("track_package", "trackingNumber", "1Z999")
	card := testutil.ShippingCard()

	// Preview wins when the strict field is real, even though carrier was
	// simulated.
	first := e.Resolve(context.Background(), Request{Action: action, Card: card})
	preview, ok := first.Effect.(effect.PresentPreview)
	require.True(t, ok, "got %T", first.Effect)
	assert.True(t, preview.Payload.Simulated)
	assert.Equal(t, "UPS", preview.Payload.Fields["carrier"])
	require.NotNil(t, preview.Payload.Placeholder)
	assert.Equal(t, "Track your package", preview.Payload.Placeholder.Title)

	second := e.Resolve(context.Background(), Request{Action: action, Card: card, Confirmed: true})
	assert.Equal(t, effect.Navigate{URL: "https://www.ups.com/track?tracknum=1Z999", Source: effect.SourceGenerator}, second.Effect)
	assert.Equal(t, analytics.DecisionSimulated, second.Decision)
	assert.Equal(t, []string{"carrier"}, second.FilledKeys)
	assert.Equal(t, []string{"carrier"}, second.MissingKeys)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.True(t, events[0].Simulated)
	assert.Equal(t, map[string]bool{"trackingNumber": true, "carrier": false}, events[0].ContextPresence)

	// The caller's context is untouched.
	assert.False(t, action.Context.Has(ir.FieldCarrier))
}

func TestResolve_PreviewSkippedWhenStrictFieldFilled(t *testing.T) {
	e, rec := newTestEngine(t)

	res := e.Resolve(context.Background(), Request{
		Action: goTo("track_package", "carrier", "UPS"),
		Card:   testutil.ShippingCard(),
	})

	assert.Equal(t, effect.KindNavigate, res.Effect.Kind())
	assert.Equal(t, analytics.DecisionSimulated, res.Decision)
	assert.Equal(t, []string{"trackingNumber"}, res.FilledKeys)
	assert.Len(t, rec.Events(), 1)
}

func TestResolve_MissingContextAfterFill(t *testing.T) {
	e, rec := newTestEngine(t)

	res := e.Resolve(context.Background(), Request{Action: inApp("sign_lease"), Card: testutil.ShippingCard()})

	assert.Equal(t, effect.KindShowError, res.Effect.Kind())
	assert.True(t, IsMissingContext(res.Err))
	assert.Equal(t, []string{"signUrl"}, res.MissingKeys)
	assert.False(t, res.Simulated)
	assert.Equal(t, []analytics.Decision{analytics.DecisionMissingContext}, rec.Decisions())
}

func TestResolve_InAppStaticMapping(t *testing.T) {
	e, _ := newTestEngine(t)

	t.Run("mapped variant", func(t *testing.T) {
		res := e.Resolve(context.Background(), Request{Action: inApp("claim_offer", "promoCode", "SPRING20"), Card: testutil.PromoCard()})
		ui, ok := res.Effect.(effect.PresentUI)
		require.True(t, ok, "got %T", res.Effect)
		assert.Equal(t, effect.VariantClaimOffer, ui.Payload.Variant)
		assert.Equal(t, map[string]string{"merchant": "Shoe Barn", "code": "SPRING20"}, ui.Payload.Fields)
		assert.Equal(t, "card-promo", ui.Payload.CardID)
	})

	t.Run("unmapped terminal ui id", func(t *testing.T) {
		res := e.Resolve(context.Background(), Request{Action: inApp("mystery_widget"), Card: testutil.ShippingCard()})
		ui, ok := res.Effect.(effect.PresentUI)
		require.True(t, ok)
		assert.Equal(t, effect.VariantViewDetails, ui.Payload.Variant)
		assert.Equal(t, "Your Acme order has shipped", ui.Payload.Fields["title"])
	})

	t.Run("kind from registry", func(t *testing.T) {
		action := ir.Action{ID: "add_to_calendar", Context: ir.ContextOf("eventTitle", "Standup", "eventDate", "Mon")}
		res := e.Resolve(context.Background(), Request{Action: action, Card: testutil.ShippingCard()})
		ui, ok := res.Effect.(effect.PresentUI)
		require.True(t, ok)
		assert.Equal(t, effect.VariantAddToCalendar, ui.Payload.Variant)
		assert.Equal(t, "Standup", ui.Payload.Fields["title"])
	})
}

func TestResolve_DataDrivenUI(t *testing.T) {
	def := &uidef.Definition{
		Name:    "invoice_form",
		Version: 1,
		Components: []uidef.Component{
			{Type: uidef.ComponentAmount, Label: "Amount", Bind: "amount", Required: true},
			{Type: uidef.ComponentDate, Label: "Due", Bind: "dueDate"},
		},
	}

	t.Run("definition loads", func(t *testing.T) {
		e, _ := newTestEngine(t, WithUILoader(uidef.StaticLoader{"invoice_form": def}))
		res := e.Resolve(context.Background(), Request{Action: inApp("invoice_form", "amount", "$10"), Card: testutil.ShippingCard()})

		ui, ok := res.Effect.(effect.PresentUI)
		require.True(t, ok)
		assert.Equal(t, effect.VariantGeneric, ui.Payload.Variant)
		require.NotNil(t, ui.Payload.View)
		assert.Equal(t, "invoice_form", ui.Payload.View.Name)
		assert.Equal(t, map[string]string{"amount": "$10"}, ui.Payload.Fields)
	})

	t.Run("load failure falls back to static mapping", func(t *testing.T) {
		e, rec := newTestEngine(t, WithUILoader(uidef.StaticLoader{}))
		res := e.Resolve(context.Background(), Request{Action: inApp("invoice_form", "amount", "$10"), Card: testutil.ShippingCard()})

		ui, ok := res.Effect.(effect.PresentUI)
		require.True(t, ok)
		assert.Equal(t, effect.VariantPayInvoice, ui.Payload.Variant)
		assert.Equal(t, "$10", ui.Payload.Fields["amount"])
		assert.Equal(t, []analytics.Decision{analytics.DecisionSuccess}, rec.Decisions())
	})

	t.Run("no loader uses static mapping", func(t *testing.T) {
		e, _ := newTestEngine(t)
		res := e.Resolve(context.Background(), Request{Action: inApp("invoice_form", "amount", "$10"), Card: testutil.ShippingCard()})
		assert.Equal(t, effect.VariantPayInvoice, res.Effect.(effect.PresentUI).Payload.Variant)
	})
}

func TestResolve_Compound(t *testing.T) {
	e, rec := newTestEngine(t)

	t.Run("own steps with registry end behavior", func(t *testing.T) {
		a := ir.Action{
			ID:            "order_followup",
			Kind:          ir.KindGoTo,
			IsCompound:    true,
			CompoundSteps: []string{"view_order", "write_review"},
			Context:       ir.ContextOf("orderNumber", "A1"),
		}
		res := e.Resolve(context.Background(), Request{Action: a, Card: testutil.PromoCard()})

		flow, ok := res.Effect.(effect.PresentCompoundFlow)
		require.True(t, ok, "got %T", res.Effect)
		assert.Equal(t, []string{"view_order", "write_review"}, flow.Steps)
		assert.Equal(t, &ir.EndBehavior{Type: ir.EndShowMessage, Value: "All done"}, flow.EndBehavior)
		assert.Equal(t, "A1", flow.Context.Get(ir.FieldOrderNumber))
	})

	t.Run("ad hoc compound without registry entry", func(t *testing.T) {
		a := ir.Action{ID: "adhoc", IsCompound: true, CompoundSteps: []string{"track_package"}}
		res := e.Resolve(context.Background(), Request{Action: a, Card: testutil.ShippingCard()})
		flow, ok := res.Effect.(effect.PresentCompoundFlow)
		require.True(t, ok)
		assert.Nil(t, flow.EndBehavior)
	})

	t.Run("steps from compound registry", func(t *testing.T) {
		a := ir.Action{ID: "order_followup", IsCompound: true}
		res := e.Resolve(context.Background(), Request{Action: a, Card: testutil.ShippingCard()})
		flow, ok := res.Effect.(effect.PresentCompoundFlow)
		require.True(t, ok)
		assert.Equal(t, []string{"view_order", "write_review"}, flow.Steps)
	})

	t.Run("no steps anywhere", func(t *testing.T) {
		for _, id := range []string{"archive_after", "nothing", "track_package"} {
			res := e.Resolve(context.Background(), Request{Action: ir.Action{ID: id, IsCompound: true}, Card: testutil.ShippingCard()})
			assert.Equal(t, effect.KindShowError, res.Effect.Kind(), id)
			assert.True(t, IsInvalidCompound(res.Err), id)
		}
	})

	for _, ev := range rec.Events() {
		assert.True(t, ev.IsCompound)
	}
}

// Compound routing happens before the action lookup and the mode gate: an
// id unknown to both registries still unfolds when it carries steps, and
// each step is gated only when it is resolved on its own.
func TestResolve_CompoundRoutesBeforeLookup(t *testing.T) {
	e, rec := newTestEngine(t)
	a := ir.Action{
		ID:            "weekend_bundle",
		IsCompound:    true,
		CompoundSteps: []string{"claim_offer", "view_order"},
	}

	res := e.Resolve(context.Background(), Request{Action: a, Card: testutil.ShippingCard()})

	flow, ok := res.Effect.(effect.PresentCompoundFlow)
	require.True(t, ok, "got %T", res.Effect)
	assert.Equal(t, []string{"claim_offer", "view_order"}, flow.Steps)
	assert.Nil(t, flow.EndBehavior)
	assert.NoError(t, res.Err)
	assert.False(t, IsNotFound(res.Err))
	assert.Equal(t, analytics.DecisionSuccess, res.Decision)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "weekend_bundle", events[0].ActionID)
	assert.True(t, events[0].IsCompound)
	assert.Empty(t, events[0].RequiredMode)

	// The same id without the compound flag is an ordinary registry miss.
	res = e.Resolve(context.Background(), Request{Action: goTo("weekend_bundle"), Card: testutil.ShippingCard()})
	assert.True(t, IsNotFound(res.Err))

	// The first step fails its own mode gate once resolved on its own.
	res = e.Resolve(context.Background(), Request{Action: inApp("claim_offer", "promoCode", "X"), Card: testutil.ShippingCard()})
	assert.True(t, IsModeMismatch(res.Err))
}

func TestResolve_RecorderFailureDoesNotChangeOutcome(t *testing.T) {
	rec := &testutil.RecordingRecorder{Err: errors.New("disk full")}
	e := New(testutil.Registry(), WithRecorder(rec))

	res := e.Resolve(context.Background(), Request{Action: goTo("view_order"), Card: testutil.ShippingCard()})

	assert.Equal(t, effect.KindNavigate, res.Effect.Kind())
	assert.Len(t, rec.Events(), 1)
}

func TestResolve_EventSeqAndPriority(t *testing.T) {
	e, rec := newTestEngine(t, WithClock(NewClockAt(41)))
	prio := 99
	a := goTo("view_order")
	a.Priority = &prio

	e.Resolve(context.Background(), Request{Action: a, Card: testutil.ShippingCard()})
	e.Resolve(context.Background(), Request{Action: goTo("view_order"), Card: testutil.ShippingCard()})

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, int64(42), events[0].Seq)
	assert.Equal(t, int64(43), events[1].Seq)
	assert.Equal(t, 99, events[0].Priority)
	assert.Equal(t, 5, events[1].Priority)
	assert.Equal(t, "res-1", events[0].ResolutionID)
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestResolve_HotReload(t *testing.T) {
	reg := registry.NewReloadable(testutil.Registry())
	e := New(reg)

	req := Request{Action: goTo("teleport"), Card: testutil.ShippingCard()}
	assert.True(t, IsNotFound(e.Resolve(context.Background(), req).Err))

	reg.Swap(registry.NewSnapshot("1.0.0", []ir.ActionConfig{{ID: "teleport", RequiredMode: ir.ModeMail, Kind: ir.KindGoTo}}, nil))
	assert.Equal(t, effect.KindNavigate, e.Resolve(context.Background(), req).Effect.Kind())
}

func TestResolve_Concurrent(t *testing.T) {
	reg := registry.NewReloadable(testutil.Registry())
	rec := &testutil.RecordingRecorder{}
	e := New(reg, WithRecorder(rec))

	const goroutines = 32
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%8 == 0 {
				reg.Swap(testutil.Registry())
			}
			res := e.Resolve(context.Background(), Request{
				Action:    goTo("track_package", "trackingNumber", "1Z999", "carrier", "UPS"),
				Card:      testutil.ShippingCard(),
				Confirmed: true,
			})
			assert.Equal(t, effect.KindNavigate, res.Effect.Kind())
		}(i)
	}
	wg.Wait()

	events := rec.Events()
	assert.Len(t, events, goroutines)
	seen := make(map[int64]bool)
	for _, ev := range events {
		assert.False(t, seen[ev.Seq], "seq %d reused", ev.Seq)
		seen[ev.Seq] = true
	}
}

func TestResolve_ChannelHandOff(t *testing.T) {
	ch := effect.NewChannel(4)
	e, _ := newTestEngine(t, WithPublisher(ch))
	sink := &testutil.RecordingSink{}

	e.Resolve(context.Background(), Request{Action: goTo("view_order"), Card: testutil.ShippingCard()})
	e.Resolve(context.Background(), Request{Action: goTo("teleport"), Card: testutil.ShippingCard()})
	ch.Close()

	require.NoError(t, ch.Drain(context.Background(), sink))
	assert.Equal(t, []string{"PresentNavigation", "ShowTransientError"}, sink.Methods())
}

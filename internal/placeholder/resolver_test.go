package placeholder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/actionroute/internal/ir"
)

func trackConfig() ir.ActionConfig {
	return ir.ActionConfig{
		ID:                  "track_package",
		RequiredMode:        ir.ModeMail,
		RequiredContextKeys: []string{"trackingNumber", "carrier"},
	}
}

func shippingCard() *ir.Card {
	return &ir.Card{
		ID:           "card-1",
		Mode:         ir.ModeMail,
		Organization: ir.Organization{Name: "Acme Store"},
		Title:        "Your Acme order has shipped",
		BodyText:     "Your package is on its way with FedEx. Order #A12345 total $42.00.",
	}
}

func TestFill_ValidContextUnchanged(t *testing.T) {
	r := New()
	ctx := ir.ContextOf("trackingNumber", "1Z999", "carrier", "UPS")

	res := r.Fill(trackConfig(), ctx, shippingCard())

	assert.True(t, res.Context.Equal(ctx))
	assert.Empty(t, res.Filled)
	assert.False(t, res.Simulated())
}

func TestFill_Idempotent(t *testing.T) {
	r := New()
	ctx := ir.ContextOf("trackingNumber", "1Z999")

	first := r.Fill(trackConfig(), ctx, shippingCard())
	second := r.Fill(trackConfig(), first.Context, shippingCard())

	assert.True(t, second.Context.Equal(first.Context))
	assert.Empty(t, second.Filled)
}

func TestFill_OnlyMissingKeys(t *testing.T) {
	r := New()
	ctx := ir.ContextOf("trackingNumber", "1Z999")

	res := r.Fill(trackConfig(), ctx, shippingCard())

	assert.Equal(t, []string{"carrier"}, res.Filled)
	assert.Equal(t, "1Z999", res.Context.Get(ir.FieldTrackingNumber))
	assert.Equal(t, "FedEx", res.Context.Get(ir.FieldCarrier))
	assert.Equal(t, []string{"carrier", "trackingNumber"}, res.Context.Keys())

	// The caller's context is not mutated.
	assert.False(t, ctx.Has(ir.FieldCarrier))
}

func TestFill_EmptyValueCountsAsMissing(t *testing.T) {
	r := New()
	ctx := ir.ContextOf("trackingNumber", "1Z999", "carrier", "  ")

	res := r.Fill(trackConfig(), ctx, shippingCard())

	assert.Equal(t, []string{"carrier"}, res.Filled)
	assert.Equal(t, "FedEx", res.Context.Get(ir.FieldCarrier))
}

func TestFill_StructuralTier(t *testing.T) {
	r := New(WithAttachmentBaseURL("https://files.example.com/"))

	t.Run("tracking url from number and carrier", func(t *testing.T) {
		cfg := ir.ActionConfig{ID: "track_package", RequiredContextKeys: []string{"trackingUrl"}}
		res := r.Fill(cfg, ir.ContextOf("trackingNumber", "1Z999", "carrier", "UPS"), nil)

		assert.Equal(t, []string{"trackingUrl"}, res.Structural)
		assert.Equal(t, "https://www.ups.com/track?tracknum=1Z999", res.Context.Get(ir.FieldTrackingURL))
	})

	t.Run("tracking url without number uses canned default", func(t *testing.T) {
		cfg := ir.ActionConfig{ID: "track_package", RequiredContextKeys: []string{"trackingUrl"}}
		res := r.Fill(cfg, ir.Context{}, nil)

		assert.Equal(t, "https://www.google.com/search?q=track+my+package", res.Context.Get(ir.FieldTrackingURL))
	})

	t.Run("document url from attachment", func(t *testing.T) {
		card := &ir.Card{ID: "msg-9", Attachments: []ir.Attachment{{ID: "att 1", Filename: "lease.pdf", OwningMessageID: "msg-7"}}}
		cfg := ir.ActionConfig{ID: "view_document", RequiredContextKeys: []string{"documentUrl", "documentName"}}
		res := r.Fill(cfg, ir.Context{}, card)

		assert.Equal(t, []string{"documentUrl", "documentName"}, res.Structural)
		assert.Equal(t, "https://files.example.com/msg-7/att%201", res.Context.Get(ir.FieldDocumentURL))
		assert.Equal(t, "lease.pdf", res.Context.Get(ir.FieldDocumentName))
	})

	t.Run("named structural field", func(t *testing.T) {
		cfg := ir.ActionConfig{ID: "join_meeting", RequiredContextKeys: []string{"meetingUrl", "provider"}}
		res := r.Fill(cfg, ir.Context{}, nil)

		assert.Equal(t, "https://meet.google.com", res.Context.Get(ir.FieldMeetingURL))
		assert.Equal(t, "Google Meet", res.Context.Get(ir.FieldProvider))
	})
}

func TestFill_SynthesisNeverEmpty(t *testing.T) {
	r := New()
	cfg := ir.ActionConfig{
		ID:                  "pay_invoice",
		RequiredContextKeys: []string{"amount", "merchant", "dueDate", "invoiceId", "loyaltyTier"},
	}
	card := &ir.Card{
		Sender:   ir.Sender{Name: "Billing Team", Address: "billing@example.com"},
		Title:    "Invoice INV-2201",
		BodyText: "Amount due: $129.99 by Oct 31, 2026. Order #INV-2201.",
	}

	res := r.Fill(cfg, ir.Context{}, card)

	require.Equal(t, cfg.RequiredContextKeys, res.Filled)
	assert.Equal(t, "$129.99", res.Context.Get(ir.FieldAmount))
	assert.Equal(t, "Billing Team", res.Context.Get(ir.FieldMerchant))
	assert.Equal(t, "Oct 31, 2026", res.Context.Get(ir.FieldDueDate))
	assert.Equal(t, "INV-2201", res.Context.Get(ir.FieldInvoiceID))
	assert.Equal(t, "Sample loyalty tier", res.Context.Value("loyaltyTier"))
}

func TestFill_SynthesisWithoutCard(t *testing.T) {
	r := New()
	cfg := ir.ActionConfig{ID: "mystery", RequiredContextKeys: []string{"amount", "merchant", "summary", "flightNumber"}}

	res := r.Fill(cfg, ir.Context{}, nil)

	require.Len(t, res.Filled, 4)
	for _, k := range cfg.RequiredContextKeys {
		v, ok := res.Context.Lookup(k)
		assert.True(t, ok, k)
		assert.NotEmpty(t, strings.TrimSpace(v), k)
	}
}

func TestFill_SynthesisSkipsURLKeys(t *testing.T) {
	r := New()
	cfg := ir.ActionConfig{ID: "mystery", RequiredContextKeys: []string{"portalUrl", "title"}}

	res := r.Fill(cfg, ir.Context{}, &ir.Card{Title: "Welcome"})

	assert.Equal(t, []string{"title"}, res.Filled)
	_, ok := res.Context.Lookup("portalUrl")
	assert.False(t, ok)
}

func TestFill_Policies(t *testing.T) {
	r := New()
	base := ir.ActionConfig{ID: "track_package", RequiredContextKeys: []string{"trackingUrl", "carrier"}}

	t.Run("none", func(t *testing.T) {
		cfg := base
		cfg.Placeholder = ir.PlaceholderNone
		res := r.Fill(cfg, ir.Context{}, shippingCard())
		assert.Empty(t, res.Filled)
		assert.Equal(t, 0, res.Context.Len())
	})

	t.Run("structural", func(t *testing.T) {
		cfg := base
		cfg.Placeholder = ir.PlaceholderStructural
		res := r.Fill(cfg, ir.Context{}, shippingCard())
		assert.Equal(t, []string{"trackingUrl"}, res.Filled)
		assert.Empty(t, res.Synthesized)
	})

	t.Run("full", func(t *testing.T) {
		res := r.Fill(base, ir.Context{}, shippingCard())
		assert.Equal(t, []string{"trackingUrl", "carrier"}, res.Filled)
		assert.Equal(t, []string{"carrier"}, res.Synthesized)
	})

	t.Run("synthesis disabled", func(t *testing.T) {
		res := New(WithSynthesis(false)).Fill(base, ir.Context{}, shippingCard())
		assert.Equal(t, []string{"trackingUrl"}, res.Filled)
	})
}

func TestAttachmentURL(t *testing.T) {
	card := &ir.Card{ID: "msg-1", Attachments: []ir.Attachment{{ID: "", Filename: "x"}, {ID: "a2", Filename: "y.pdf"}}}

	u, ok := AttachmentURL("https://files.example.com", card)
	require.True(t, ok)
	assert.Equal(t, "https://files.example.com/msg-1/a2", u)

	_, ok = AttachmentURL("", card)
	assert.False(t, ok)
	_, ok = AttachmentURL("https://files.example.com", &ir.Card{})
	assert.False(t, ok)
}

func TestIsURLKey(t *testing.T) {
	for _, k := range []string{"url", "trackingUrl", "paymentLink", "checkInUrl", "HREF"} {
		assert.True(t, IsURLKey(k), k)
	}
	for _, k := range []string{"carrier", "amount", "urlencoded"} {
		assert.False(t, IsURLKey(k), k)
	}
}

func TestContent(t *testing.T) {
	r := New()
	ctx := ir.ContextOf("trackingNumber", "1Z999", "carrier", "FedEx")

	c := r.Content("track_package", ctx, shippingCard(), []string{"carrier"})

	assert.Equal(t, "Track your package", c.Title)
	assert.Equal(t, "FedEx · 1Z999", c.Subtitle)
	assert.Equal(t, "Your order from Acme Store is on its way.", c.Body)
	assert.Equal(t, "shippingbox", c.IconRef)
	assert.Equal(t, map[string]string{"carrier": "FedEx"}, c.ContextFields)
}

func TestContent_DefaultTemplate(t *testing.T) {
	r := New()
	card := &ir.Card{Sender: ir.Sender{Name: "Dana"}, Title: "Lunch?", BodyText: "Are you free Friday? Let me know."}

	c := r.Content("brand_new_action", ir.Context{}, card, nil)

	assert.Equal(t, "Lunch?", c.Title)
	assert.Equal(t, "Dana", c.Subtitle)
	assert.Equal(t, "Are you free Friday?", c.Body)
	assert.Equal(t, "sparkles", c.IconRef)
	assert.Nil(t, c.ContextFields)
}

func TestContent_NilCardNeverEmpty(t *testing.T) {
	r := New()
	for _, id := range []string{"track_package", "pay_invoice", "check_in_flight", "unknown"} {
		c := r.Content(id, ir.Context{}, nil, nil)
		assert.NotEmpty(t, c.Title, id)
		assert.NotEmpty(t, c.Subtitle, id)
		assert.NotEmpty(t, c.Body, id)
		assert.NotEmpty(t, c.IconRef, id)
	}
}

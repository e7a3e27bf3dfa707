package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/actionroute/internal/ir"
)

func TestVariantFor_MappedIDsAreDistinct(t *testing.T) {
	ids := TerminalUIIDs()
	require.GreaterOrEqual(t, len(ids), 40)

	seen := make(map[Variant]string)
	for _, id := range ids {
		v := VariantFor(id)
		assert.NotEqual(t, VariantViewDetails, v, id)
		if other, dup := seen[v]; dup {
			t.Fatalf("terminal ui ids %q and %q share variant %q", other, id, v)
		}
		seen[v] = id
	}
}

func TestVariantFor_UnknownIsViewDetails(t *testing.T) {
	for _, id := range []string{"", "unknown", "TRACK_PACKAGE", " track_package", "view_details", "generic"} {
		assert.Equal(t, VariantViewDetails, VariantFor(id), "%q", id)
		assert.False(t, IsMapped(id))
	}
}

func TestEveryMappedVariantHasFields(t *testing.T) {
	for _, id := range TerminalUIIDs() {
		v := VariantFor(id)
		assert.NotEmpty(t, variantFields[v], "variant %q has no field rules", v)
	}
}

func TestPreviewVariant(t *testing.T) {
	v, ok := PreviewVariant("track_package")
	require.True(t, ok)
	assert.Equal(t, VariantTrackPackagePreview, v)

	_, ok = PreviewVariant("view_order")
	assert.False(t, ok)
}

func TestExtract(t *testing.T) {
	card := &ir.Card{
		ID:           "c1",
		Sender:       ir.Sender{Name: "Billing", Address: "bills@example.com"},
		Organization: ir.Organization{Name: "Acme Utilities"},
		Title:        "March statement",
		BodyText:     "Your statement is ready.",
	}

	t.Run("amount falls back to amountDue", func(t *testing.T) {
		got := Extract(VariantPayInvoice, ir.ContextOf("amountDue", "$12.00", "paymentLink", "https://pay.example.com"), card)
		assert.Equal(t, map[string]string{
			"amount":   "$12.00",
			"merchant": "Acme Utilities",
			"url":      "https://pay.example.com",
		}, got)
	})

	t.Run("context wins over card", func(t *testing.T) {
		got := Extract(VariantPayInvoice, ir.ContextOf("amount", "$1", "amountDue", "$2", "merchant", "Acme Pay"), card)
		assert.Equal(t, "$1", got["amount"])
		assert.Equal(t, "Acme Pay", got["merchant"])
	})

	t.Run("preview uses terminal fields", func(t *testing.T) {
		ctx := ir.ContextOf("trackingNumber", "1Z999", "carrier", "UPS")
		assert.Equal(t, Extract(VariantTrackPackage, ctx, card), Extract(VariantTrackPackagePreview, ctx, card))
	})

	t.Run("view details from card", func(t *testing.T) {
		got := Extract(VariantViewDetails, ir.Context{}, card)
		assert.Equal(t, map[string]string{
			"title":   "March statement",
			"sender":  "Acme Utilities",
			"summary": "Your statement is ready.",
		}, got)
	})

	t.Run("unknown variant and nil card", func(t *testing.T) {
		got := Extract(Variant("nope"), ir.ContextOf("title", "Hi"), nil)
		assert.Equal(t, map[string]string{"title": "Hi"}, got)
	})
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   Effect
		want string
	}{
		{"nil", nil, ""},
		{"navigate", Navigate{URL: "https://a.example/x?y=1&z=2", Source: SourceSemantic},
			`{"kind":"navigate","source":"semantic","url":"https://a.example/x?y=1&z=2"}`},
		{"error", ShowError{Code: "MODE_MISMATCH", Message: "nope"},
			`{"code":"MODE_MISMATCH","kind":"show_error","message":"nope"}`},
		{"ui", PresentUI{Payload: Payload{Variant: VariantClaimOffer, CardID: "c1", Fields: map[string]string{"code": "X"}}},
			`{"kind":"present_ui","payload":{"card_id":"c1","fields":{"code":"X"},"variant":"claim_offer"}}`},
		{"flow", PresentCompoundFlow{ActionID: "f", Steps: []string{"a", "b"}, EndBehavior: &ir.EndBehavior{Type: ir.EndArchive}},
			`{"action_id":"f","context":{},"end_behavior":{"type":"archive"},"kind":"present_compound_flow","steps":["a","b"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Canonical(tt.in)
			if tt.in == nil {
				assert.Nil(t, m)
				return
			}
			data, err := ir.MarshalCanonical(m)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

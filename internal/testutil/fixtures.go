package testutil

import (
	"github.com/roach88/actionroute/internal/ir"
	"github.com/roach88/actionroute/internal/registry"
)

// Registry returns the action registry used across engine tests.
func Registry() *registry.Snapshot {
	return registry.NewSnapshot("1.0.0",
		[]ir.ActionConfig{
			{ID: "track_package", RequiredMode: ir.ModeMail, Kind: ir.KindGoTo, RequiredContextKeys: []string{"trackingNumber", "carrier"}, TerminalUIID: "track_package", Priority: 10},
			{ID: "pay_invoice", RequiredMode: ir.ModeMail, Kind: ir.KindGoTo, RequiredContextKeys: []string{"amount", "merchant"}, TerminalUIID: "pay_invoice", Priority: 9},
			{ID: "check_in_flight", RequiredMode: ir.ModeMail, Kind: ir.KindGoTo, RequiredContextKeys: []string{"flightNumber"}, Priority: 9},
			{ID: "write_review", RequiredMode: ir.ModeMail, Kind: ir.KindGoTo, RequiredContextKeys: []string{"productName"}, Priority: 3},
			{ID: "view_order", RequiredMode: ir.ModeMail, Kind: ir.KindGoTo, Priority: 5},
			{ID: "view_document", RequiredMode: ir.ModeMail, Kind: ir.KindGoTo, Priority: 5},
			{ID: "unsubscribe", RequiredMode: ir.ModeAds, Kind: ir.KindGoTo, Priority: 1},
			{ID: "claim_offer", RequiredMode: ir.ModeAds, Kind: ir.KindInApp, RequiredContextKeys: []string{"promoCode"}, TerminalUIID: "claim_offer", Priority: 4},
			{ID: "add_to_calendar", RequiredMode: ir.ModeMail, Kind: ir.KindInApp, RequiredContextKeys: []string{"eventTitle", "eventDate"}, TerminalUIID: "add_to_calendar", Priority: 7},
			{ID: "invoice_form", RequiredMode: ir.ModeMail, Kind: ir.KindInApp, RequiredContextKeys: []string{"amount"}, TerminalUIID: "pay_invoice", DataDrivenUIRef: "invoice_form", Priority: 6},
			{ID: "sign_lease", RequiredMode: ir.ModeMail, Kind: ir.KindInApp, RequiredContextKeys: []string{"signUrl"}, TerminalUIID: "sign_document", Placeholder: ir.PlaceholderNone},
			{ID: "mystery_widget", RequiredMode: ir.ModeMail, Kind: ir.KindInApp, TerminalUIID: "brand_new_widget"},
		},
		[]ir.CompoundAction{
			{ID: "order_followup", Steps: []string{"view_order", "write_review"}, EndBehavior: &ir.EndBehavior{Type: ir.EndShowMessage, Value: "All done"}},
			{ID: "archive_after", EndBehavior: &ir.EndBehavior{Type: ir.EndArchive}},
		},
	)
}

// ShippingCard is a primary-mail card about a shipped order.
func ShippingCard() *ir.Card {
	return &ir.Card{
		ID:           "card-ship",
		Mode:         ir.ModeMail,
		Sender:       ir.Sender{Name: "Acme Orders", Address: "orders@acme.example"},
		Organization: ir.Organization{Name: "Acme"},
		Title:        "Your Acme order has shipped",
		BodyText:     "Your package is on its way with UPS. Order #A12345 total $42.00.",
	}
}

// PromoCard is a promotional card.
func PromoCard() *ir.Card {
	return &ir.Card{
		ID:           "card-promo",
		Mode:         ir.ModeAds,
		Organization: ir.Organization{Name: "Shoe Barn"},
		Title:        "20% off everything this weekend",
		BodyText:     "Use code SPRING20 at checkout.",
	}
}

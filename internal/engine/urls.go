package engine

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/roach88/actionroute/internal/effect"
	"github.com/roach88/actionroute/internal/ir"
	"github.com/roach88/actionroute/internal/placeholder"
)

// DefaultFallbackURL is the last rung of the URL ladder. The action id is
// appended as a query parameter so fallback navigations are observable.
const DefaultFallbackURL = "https://example.com/actions/fallback"

// semanticURLKeys lists, per action id, the context keys tried after the
// generic "url" key.
var semanticURLKeys = map[string][]string{
	"track_package":       {"trackingUrl"},
	"pay_invoice":         {"paymentLink", "paymentUrl", "invoiceUrl"},
	"check_in_flight":     {"checkInUrl", "flightUrl"},
	"write_review":        {"reviewUrl", "reviewLink"},
	"view_order":          {"orderUrl"},
	"return_item":         {"returnUrl", "orderUrl"},
	"unsubscribe":         {"unsubscribeUrl"},
	"join_meeting":        {"meetingUrl"},
	"schedule_meeting":    {"meetingUrl", "bookingUrl"},
	"book_appointment":    {"bookingUrl"},
	"sign_document":       {"signUrl", "documentUrl"},
	"view_document":       {"documentUrl", "attachmentUrl"},
	"reset_password":      {"resetUrl"},
	"verify_account":      {"verifyUrl"},
	"get_directions":      {"mapsUrl", "directionsUrl"},
	"view_reservation":    {"reservationUrl"},
	"view_itinerary":      {"itineraryUrl", "flightUrl"},
	"donate":              {"donationUrl"},
	"claim_offer":         {"offerUrl"},
	"promo_code":          {"offerUrl"},
	"view_statement":      {"statementUrl"},
	"contact_support":     {"supportUrl"},
	"cancel_subscription": {"cancelUrl", "manageUrl"},
	"renew_subscription":  {"renewUrl", "manageUrl"},
}

// trackingGenerators and documentGenerators enable the special-cased URL
// generators per action id.
var (
	trackingGenerators = map[string]bool{
		"track_package":  true,
		"view_order":     true,
		"return_item":    true,
		"pickup_details": true,
	}
	documentGenerators = map[string]bool{
		"view_document": true,
		"sign_document": true,
	}
)

// allowedSchemes are the URL schemes a navigation may use.
var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
	"tel":    true,
}

// validURL reports whether raw is a navigable absolute URL.
func validURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\n") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || !allowedSchemes[strings.ToLower(u.Scheme)] {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	default:
		return u.Opaque != "" || u.Path != ""
	}
}

// resolveURL walks the ladder and returns the first valid URL:
// generic "url", per-action semantic keys, generators, structural default,
// then the fallback link.
func (e *Engine) resolveURL(actionID string, ctx ir.Context, card *ir.Card) (string, effect.URLSource) {
	try := func(raw string, rung effect.URLSource) bool {
		if validURL(raw) {
			return true
		}
		if strings.TrimSpace(raw) != "" {
			slog.Debug("url ladder fall through",
				"code", logCodeMalformedURL,
				"action_id", actionID,
				"rung", string(rung),
				"url", raw,
			)
		}
		return false
	}

	if v, ok := ctx.Lookup(string(ir.FieldURL)); ok && try(v, effect.SourceGeneric) {
		return strings.TrimSpace(v), effect.SourceGeneric
	}

	keys := append(append([]string(nil), semanticURLKeys[actionID]...), string(ir.FieldLink))
	for _, k := range keys {
		if v, ok := ctx.Lookup(k); ok && try(v, effect.SourceSemantic) {
			return strings.TrimSpace(v), effect.SourceSemantic
		}
	}

	if trackingGenerators[actionID] {
		if v, ok := placeholder.TrackingURL(ctx.Get(ir.FieldTrackingNumber), ctx.Get(ir.FieldCarrier)); ok && try(v, effect.SourceGenerator) {
			return v, effect.SourceGenerator
		}
	}
	if documentGenerators[actionID] {
		if v, ok := e.placeholders.DocumentURL(card); ok && try(v, effect.SourceGenerator) {
			return v, effect.SourceGenerator
		}
	}

	if v, ok := placeholder.StructuralURL(actionID); ok && try(v, effect.SourceStructural) {
		return v, effect.SourceStructural
	}

	return e.fallbackLink(actionID), effect.SourceFallback
}

// fallbackLink appends the action id to the configured fallback URL.
func (e *Engine) fallbackLink(actionID string) string {
	base := e.fallbackURL
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "action=" + url.QueryEscape(actionID)
}

package placeholder

import (
	"regexp"
	"strings"

	"github.com/roach88/actionroute/internal/ir"
)

// template is the per-action shape of synthesized display content.
// Placeholders are written {key} and resolve against the merged context,
// then against the synthesis tier.
type template struct {
	title, subtitle, body, icon string
}

var defaultTemplate = template{
	title:    "{title}",
	subtitle: "{merchant}",
	body:     "{summary}",
	icon:     "sparkles",
}

var templates = map[string]template{
	"track_package": {
		title:    "Track your package",
		subtitle: "{carrier} · {trackingNumber}",
		body:     "Your order from {merchant} is on its way.",
		icon:     "shippingbox",
	},
	"pay_invoice": {
		title:    "Pay {merchant}",
		subtitle: "{amount} due {dueDate}",
		body:     "Review and pay invoice {invoiceId}.",
		icon:     "creditcard",
	},
	"check_in_flight": {
		title:    "Check in for {flightNumber}",
		subtitle: "{airline}",
		body:     "Departs {departureTime}. Check in to get your boarding pass.",
		icon:     "airplane",
	},
	"write_review": {
		title:    "Review {productName}",
		subtitle: "{merchant}",
		body:     "Share how your purchase went.",
		icon:     "star",
	},
	"view_order": {
		title:    "Order {orderNumber}",
		subtitle: "{merchant}",
		body:     "Order total {orderTotal}.",
		icon:     "bag",
	},
	"add_to_calendar": {
		title:    "{eventTitle}",
		subtitle: "{eventDate}",
		body:     "{location}",
		icon:     "calendar",
	},
	"rsvp": {
		title:    "RSVP: {eventTitle}",
		subtitle: "{eventDate}",
		body:     "Hosted by {organizer}.",
		icon:     "envelope.open",
	},
	"sign_document": {
		title:    "Sign {documentName}",
		subtitle: "{merchant}",
		body:     "A document is waiting for your signature.",
		icon:     "signature",
	},
	"claim_offer": {
		title:    "Offer from {merchant}",
		subtitle: "{discount} off",
		body:     "Use code {promoCode} before {expiresAt}.",
		icon:     "tag",
	},
	"join_meeting": {
		title:    "Join {eventTitle}",
		subtitle: "{startTime}",
		body:     "Hosted on {provider}.",
		icon:     "video",
	},
}

// aliases are tried before synthesis when a template key is absent.
var aliases = map[string][]string{
	"amount":     {"amountDue", "orderTotal"},
	"amountDue":  {"amount"},
	"merchant":   {"organizer", "serviceName"},
	"eventTitle": {"title"},
	"eventDate":  {"startTime", "dateTime"},
}

var slotRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Content builds display content for a simulated resolution. filled lists
// the keys the resolver supplied; their merged values become ContextFields.
func (r *Resolver) Content(actionID string, ctx ir.Context, card *ir.Card, filled []string) ir.PlaceholderContent {
	tpl, ok := templates[actionID]
	if !ok {
		tpl = defaultTemplate
	}
	a := Analyze(card)
	expand := func(s string) string {
		out := slotRe.ReplaceAllStringFunc(s, func(slot string) string {
			return slotValue(slot[1:len(slot)-1], ctx, a, card)
		})
		return strings.TrimSpace(out)
	}

	content := ir.PlaceholderContent{
		Title:    or(expand(tpl.title), humanize(actionID)),
		Subtitle: or(expand(tpl.subtitle), card.DisplayName()),
		Body:     or(expand(tpl.body), summarize(card)),
		IconRef:  tpl.icon,
	}
	if len(filled) > 0 {
		content.ContextFields = make(map[string]string, len(filled))
		for _, k := range filled {
			if v, ok := ctx.Lookup(k); ok {
				content.ContextFields[k] = v
			}
		}
	}
	return content
}

func slotValue(key string, ctx ir.Context, a Analysis, card *ir.Card) string {
	if v, ok := ctx.Lookup(key); ok {
		return v
	}
	if _, v, ok := ctx.FirstOf(aliases[key]...); ok {
		return v
	}
	return synthesize(key, a, card)
}

package effect

import (
	"strings"

	"github.com/roach88/actionroute/internal/ir"
)

// fieldRule extracts one payload field: the first present context key in
// Keys wins, then the card fallback if any.
type fieldRule struct {
	Name string
	Keys []string
	Card func(*ir.Card) string
}

func field(name string, keys ...string) fieldRule {
	if len(keys) == 0 {
		keys = []string{name}
	}
	return fieldRule{Name: name, Keys: keys}
}

func (r fieldRule) orCard(f func(*ir.Card) string) fieldRule {
	r.Card = f
	return r
}

func displayName(c *ir.Card) string { return c.DisplayName() }

func cardTitle(c *ir.Card) string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Title)
}

func senderAddress(c *ir.Card) string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Sender.Address)
}

func senderName(c *ir.Card) string {
	if c == nil {
		return ""
	}
	if n := strings.TrimSpace(c.Sender.Name); n != "" {
		return n
	}
	return c.DisplayName()
}

func cardBody(c *ir.Card) string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.BodyText)
}

func firstAttachment(c *ir.Card) string {
	if c == nil || len(c.Attachments) == 0 {
		return ""
	}
	return c.Attachments[0].Filename
}

var (
	merchantRule = field("merchant", "merchant", "serviceName").orCard(displayName)
	amountRule   = field("amount", "amount", "amountDue", "orderTotal")
	titleRule    = field("title", "eventTitle", "title").orCard(cardTitle)
	dateRule     = field("date", "eventDate", "startTime", "dateTime")
)

// variantFields lists the minimal fields each variant displays.
var variantFields = map[Variant][]fieldRule{
	VariantTrackPackage: {
		field("trackingNumber"),
		field("carrier"),
		field("url", "trackingUrl", "url"),
		merchantRule,
	},
	VariantPayInvoice: {
		amountRule,
		merchantRule,
		field("invoiceId"),
		field("dueDate"),
		field("url", "paymentLink", "paymentUrl", "invoiceUrl", "url"),
	},
	VariantCheckInFlight: {
		field("flightNumber"),
		field("airline").orCard(displayName),
		field("departureTime", "departureTime", "dateTime"),
		field("confirmationCode"),
		field("url", "checkInUrl", "flightUrl", "url"),
	},
	VariantWriteReview: {
		field("productName", "productName", "title").orCard(cardTitle),
		merchantRule,
		field("url", "reviewUrl", "reviewLink", "url"),
	},
	VariantAddToCalendar: {titleRule, dateRule, field("endTime"), field("location")},
	VariantRSVP:          {titleRule, dateRule, field("location"), field("organizer").orCard(displayName)},
	VariantScheduleMeeting: {
		titleRule,
		field("organizer").orCard(senderName),
		field("url", "meetingUrl", "url"),
	},
	VariantJoinMeeting: {
		titleRule,
		field("startTime", "startTime", "dateTime", "eventDate"),
		field("provider"),
		field("url", "meetingUrl", "url"),
	},
	VariantSignDocument: {
		field("documentName").orCard(firstAttachment),
		field("sender", "organizer", "merchant").orCard(displayName),
		field("url", "signUrl", "documentUrl", "url"),
	},
	VariantViewDocument: {
		field("documentName").orCard(firstAttachment),
		field("url", "documentUrl", "attachmentUrl", "url"),
	},
	VariantQuickReply: {
		field("to", "email").orCard(senderAddress),
		field("subject", "title").orCard(cardTitle),
	},
	VariantSaveContact: {
		field("name").orCard(senderName),
		field("email").orCard(senderAddress),
		field("phone"),
		field("address"),
	},
	VariantUnsubscribe: {
		field("sender", "merchant").orCard(displayName),
		field("url", "unsubscribeUrl", "url"),
	},
	VariantAddToWallet: {
		titleRule,
		field("code", "code", "confirmationCode"),
		dateRule,
	},
	VariantViewReservation: {
		field("confirmationCode"),
		merchantRule,
		dateRule,
		field("location"),
	},
	VariantCancelSubscription: {
		field("serviceName", "serviceName", "merchant").orCard(displayName),
		field("renewalDate"),
		field("url", "url"),
	},
	VariantRenewSubscription: {
		field("serviceName", "serviceName", "merchant").orCard(displayName),
		field("renewalDate", "renewalDate", "expiresAt"),
		amountRule,
	},
	VariantReturnItem: {
		field("orderNumber"),
		field("productName").orCard(cardTitle),
		merchantRule,
	},
	VariantViewOrder: {
		field("orderNumber"),
		field("orderTotal", "orderTotal", "amount"),
		merchantRule,
		field("url", "orderUrl", "url"),
	},
	VariantResetPassword: {
		field("serviceName", "serviceName").orCard(displayName),
		field("url", "url"),
	},
	VariantVerifyAccount: {
		field("serviceName", "serviceName").orCard(displayName),
		field("code"),
	},
	VariantSplitBill: {amountRule, merchantRule},
	VariantSetReminder: {
		titleRule,
		field("dateTime", "dateTime", "dueDate", "eventDate"),
	},
	VariantReadAloud: {
		field("title").orCard(cardTitle),
		field("body", "summary").orCard(cardBody),
	},
	VariantSummarize: {
		field("title").orCard(cardTitle),
		field("summary").orCard(cardBody),
	},
	VariantShoppingList: {
		field("title").orCard(cardTitle),
		merchantRule,
	},
	VariantViewItinerary: {
		field("confirmationCode"),
		field("flightNumber"),
		dateRule,
		field("location"),
	},
	VariantBookAppointment: {
		field("provider", "provider", "merchant").orCard(displayName),
		field("url", "url"),
	},
	VariantConfirmAppointment: {
		field("provider", "provider", "merchant").orCard(displayName),
		field("dateTime", "dateTime", "eventDate", "startTime"),
		field("location"),
	},
	VariantPickupDetails: {
		field("orderNumber"),
		field("location", "location", "address"),
		field("dateTime", "dateTime", "eventDate"),
	},
	VariantPermissionSlip: {
		titleRule,
		field("organizer").orCard(displayName),
		field("dueDate"),
	},
	VariantViewGrade: {
		field("title").orCard(cardTitle),
		field("organizer").orCard(displayName),
	},
	VariantDonate: {
		field("organization", "merchant", "organizer").orCard(displayName),
		amountRule,
	},
	VariantNewsletter: {
		field("title").orCard(cardTitle),
		field("sender", "merchant").orCard(displayName),
		field("summary").orCard(cardBody),
	},
	VariantClaimOffer: {
		merchantRule,
		field("discount"),
		field("code", "promoCode", "code"),
		field("expiresAt"),
	},
	VariantPromoCode: {
		field("code", "promoCode", "code"),
		field("discount"),
		merchantRule,
		field("expiresAt"),
	},
	VariantViewStatement: {
		merchantRule,
		amountRule,
		field("dueDate"),
	},
	VariantDisputeCharge: {
		amountRule,
		merchantRule,
		field("date", "dateTime", "dueDate"),
	},
	VariantJobApplication: {
		field("title").orCard(cardTitle),
		field("organization", "organizer", "merchant").orCard(displayName),
	},
	VariantGetDirections: {
		field("location", "location", "address"),
		field("title", "eventTitle", "title").orCard(cardTitle),
	},
	VariantContactSupport: {
		field("serviceName", "serviceName", "merchant").orCard(displayName),
		field("email").orCard(senderAddress),
		field("phone"),
	},
	VariantOutageNotice: {
		field("serviceName", "serviceName", "provider").orCard(displayName),
		field("summary").orCard(cardBody),
	},
	VariantViewDetails: {
		field("title", "title", "eventTitle", "productName").orCard(cardTitle),
		field("sender").orCard(displayName),
		field("summary").orCard(cardBody),
	},
}

var previewBase = map[Variant]Variant{
	VariantTrackPackagePreview:  VariantTrackPackage,
	VariantPayInvoicePreview:    VariantPayInvoice,
	VariantWriteReviewPreview:   VariantWriteReview,
	VariantCheckInFlightPreview: VariantCheckInFlight,
}

// Extract builds the payload fields for variant from ctx and card. Preview
// variants use the fields of their terminal variant; unknown variants use
// the view details fields. Fields with no value in either are omitted.
func Extract(v Variant, ctx ir.Context, card *ir.Card) map[string]string {
	if base, ok := previewBase[v]; ok {
		v = base
	}
	rules, ok := variantFields[v]
	if !ok {
		rules = variantFields[VariantViewDetails]
	}
	out := make(map[string]string, len(rules))
	for _, r := range rules {
		if _, val, ok := ctx.FirstOf(r.Keys...); ok {
			out[r.Name] = val
			continue
		}
		if r.Card != nil {
			if val := r.Card(card); val != "" {
				out[r.Name] = val
			}
		}
	}
	return out
}

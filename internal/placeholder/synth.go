package placeholder

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/actionroute/internal/ir"
)

// maxSummaryRunes bounds synthesized summaries.
const maxSummaryRunes = 140

var airlines = []struct{ match, name string }{
	{"united", "United Airlines"},
	{"delta", "Delta Air Lines"},
	{"american airlines", "American Airlines"},
	{"southwest", "Southwest Airlines"},
	{"jetblue", "JetBlue"},
	{"alaska air", "Alaska Airlines"},
	{"lufthansa", "Lufthansa"},
	{"british airways", "British Airways"},
	{"air canada", "Air Canada"},
}

// synthesize produces flavor text for key. Preference order: a detected
// entity, card data, keywords, then fixed filler. The result is never empty.
func synthesize(key string, a Analysis, card *ir.Card) string {
	if v := synthesizeKnown(ir.Field(key), a, card); v != "" {
		return v
	}
	return "Sample " + humanize(key)
}

func synthesizeKnown(f ir.Field, a Analysis, card *ir.Card) string {
	switch f {
	case ir.FieldAmount, ir.FieldAmountDue, ir.FieldOrderTotal, ir.FieldDiscount:
		return firstOr(a.Amounts, "$0.00")
	case ir.FieldTrackingNumber:
		return firstOr(a.TrackingNumbers, "Pending")
	case ir.FieldCarrier:
		return or(a.Carrier, "Carrier")
	case ir.FieldFlightNumber:
		return firstOr(a.FlightNumbers, "Flight")
	case ir.FieldAirline:
		if name := detectAirline(card); name != "" {
			return name
		}
		return or(card.DisplayName(), "Airline")
	case ir.FieldOrderNumber, ir.FieldInvoiceID, ir.FieldConfirmation, ir.FieldCode:
		return firstOr(a.OrderNumbers, "Pending")
	case ir.FieldDueDate, ir.FieldEventDate, ir.FieldDepartureTime, ir.FieldStartTime,
		ir.FieldEndTime, ir.FieldDateTime, ir.FieldRenewalDate, ir.FieldExpiresAt:
		return firstOr(a.Dates, "Upcoming")
	case ir.FieldMerchant, ir.FieldOrganizer, ir.FieldServiceName, ir.FieldProvider, ir.FieldName:
		if name := card.DisplayName(); name != "" {
			return name
		}
		return titleKeywords(a.Keywords, 1, "Sender")
	case ir.FieldProductName, ir.FieldDocumentName, ir.FieldTitle, ir.FieldEventTitle:
		if card != nil && strings.TrimSpace(card.Title) != "" {
			return strings.TrimSpace(card.Title)
		}
		return titleKeywords(a.Keywords, 3, "Untitled")
	case ir.FieldSummary:
		return summarize(card)
	case ir.FieldPromoCode:
		return "SAVE10"
	case ir.FieldLocation, ir.FieldAddress:
		return "See message for details"
	case ir.FieldEmail:
		if card != nil && card.Sender.Address != "" {
			return card.Sender.Address
		}
		return "Not provided"
	case ir.FieldPhone:
		return "Not provided"
	}
	return ""
}

func detectAirline(card *ir.Card) string {
	if card == nil {
		return ""
	}
	folded := fold(card.Title + " " + card.BodyText + " " + card.DisplayName())
	for _, al := range airlines {
		if strings.Contains(folded, al.match) {
			return al.name
		}
	}
	return ""
}

var sentenceEnd = regexp.MustCompile(`[.!?](\s|$)`)

// summarize returns the first sentence of the body, truncated.
func summarize(card *ir.Card) string {
	if card == nil {
		return "No details available"
	}
	body := strings.Join(strings.Fields(card.BodyText), " ")
	if body == "" {
		return or(strings.TrimSpace(card.Title), "No details available")
	}
	if loc := sentenceEnd.FindStringIndex(body); loc != nil {
		body = body[:loc[0]+1]
	}
	if utf8.RuneCountInString(body) > maxSummaryRunes {
		runes := []rune(body)
		body = strings.TrimSpace(string(runes[:maxSummaryRunes-1])) + "…"
	}
	return body
}

func titleKeywords(keywords []string, n int, fallback string) string {
	if len(keywords) == 0 {
		return fallback
	}
	if len(keywords) < n {
		n = len(keywords)
	}
	words := make([]string, n)
	for i, w := range keywords[:n] {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// humanize turns "loyaltyTier" or "loyalty_tier" into "loyalty tier".
func humanize(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
		case unicode.IsUpper(r) && i > 0:
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	if out == "" {
		return "value"
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func firstOr(values []string, fallback string) string {
	if len(values) > 0 {
		return values[0]
	}
	return fallback
}

func or(v, fallback string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

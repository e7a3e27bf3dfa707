package placeholder

import (
	"net/url"
	"strings"

	"github.com/roach88/actionroute/internal/ir"
)

// structuralEntry is the static default set for one action id. URL fills any
// missing URL-shaped key; Fields fill named keys.
type structuralEntry struct {
	URL    string
	Fields map[string]string
}

var structuralDefaults = map[string]structuralEntry{
	"track_package":       {URL: "https://www.google.com/search?q=track+my+package"},
	"pay_invoice":         {URL: "https://www.paypal.com/myaccount/summary"},
	"check_in_flight":     {URL: "https://www.google.com/travel/flights"},
	"write_review":        {URL: "https://www.google.com/search?q=write+a+review"},
	"view_order":          {URL: "https://www.google.com/search?q=order+status"},
	"return_item":         {URL: "https://www.google.com/search?q=start+a+return"},
	"unsubscribe":         {URL: "https://www.google.com/search?q=unsubscribe"},
	"reset_password":      {URL: "https://www.google.com/search?q=reset+password"},
	"verify_account":      {URL: "https://www.google.com/search?q=verify+account"},
	"sign_document":       {URL: "https://www.docusign.com"},
	"view_document":       {URL: "https://drive.google.com"},
	"join_meeting":        {URL: "https://meet.google.com", Fields: map[string]string{"provider": "Google Meet"}},
	"get_directions":      {URL: "https://maps.google.com"},
	"view_reservation":    {URL: "https://www.opentable.com"},
	"view_itinerary":      {URL: "https://www.google.com/travel/trips"},
	"donate":              {URL: "https://www.google.com/search?q=donate"},
	"claim_offer":         {URL: "https://www.google.com/search?q=offers"},
	"promo_code":          {URL: "https://www.google.com/search?q=promo+code"},
	"view_statement":      {URL: "https://www.google.com/search?q=view+statement"},
	"contact_support":     {URL: "https://www.google.com/search?q=contact+support"},
	"cancel_subscription": {URL: "https://www.google.com/search?q=cancel+subscription"},
	"renew_subscription":  {URL: "https://www.google.com/search?q=renew+subscription"},
	"book_appointment":    {URL: "https://calendar.google.com"},
	"add_to_calendar": {Fields: map[string]string{
		"duration": "60",
	}},
	"schedule_meeting": {URL: "https://calendar.google.com", Fields: map[string]string{
		"duration": "30",
	}},
	"rsvp": {Fields: map[string]string{
		"response": "pending",
	}},
}

// StructuralURL returns the canned URL for actionID, if it has one.
func StructuralURL(actionID string) (string, bool) {
	e, ok := structuralDefaults[actionID]
	if !ok || e.URL == "" {
		return "", false
	}
	return e.URL, true
}

// IsURLKey reports whether a context key names a link rather than display
// text. The synthesis tier never fills these.
func IsURLKey(key string) bool {
	k := strings.ToLower(key)
	return k == "url" || k == "href" || strings.HasSuffix(k, "url") || strings.HasSuffix(k, "link")
}

// AttachmentURL builds a document URL from the card's first attachment.
// ok is false when the card has no usable attachment or base is empty.
func AttachmentURL(base string, card *ir.Card) (string, bool) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" || card == nil {
		return "", false
	}
	for _, att := range card.Attachments {
		if strings.TrimSpace(att.ID) == "" {
			continue
		}
		owner := att.OwningMessageID
		if owner == "" {
			owner = card.ID
		}
		return base + "/" + url.PathEscape(owner) + "/" + url.PathEscape(att.ID), true
	}
	return "", false
}

// structuralValue returns the structural-tier value for key, or "" when the
// tier has nothing for it.
func (r *Resolver) structuralValue(actionID, key string, ctx ir.Context, card *ir.Card) string {
	switch ir.Field(key) {
	case ir.FieldTrackingURL:
		if u, ok := TrackingURL(ctx.Get(ir.FieldTrackingNumber), ctx.Get(ir.FieldCarrier)); ok {
			return u
		}
	case ir.FieldDocumentURL, ir.FieldAttachmentURL:
		if u, ok := AttachmentURL(r.attachmentBaseURL, card); ok {
			return u
		}
	case ir.FieldDocumentName:
		if card != nil && len(card.Attachments) > 0 && card.Attachments[0].Filename != "" {
			return card.Attachments[0].Filename
		}
	case ir.FieldAttachmentID:
		if card != nil && len(card.Attachments) > 0 && card.Attachments[0].ID != "" {
			return card.Attachments[0].ID
		}
	}

	e, ok := structuralDefaults[actionID]
	if !ok {
		return ""
	}
	if v, ok := e.Fields[key]; ok {
		return v
	}
	if IsURLKey(key) {
		return e.URL
	}
	return ""
}

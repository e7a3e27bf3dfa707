package placeholder

import (
	"net/url"
	"strings"
)

// carrier is one entry of the tracking URL table.
type carrier struct {
	match   string // case-folded substring matched against the carrier value
	name    string // display name
	baseURL string // tracking number is appended query-escaped
}

// carriers is checked in order; the first substring match wins.
var carriers = []carrier{
	{match: "ups", name: "UPS", baseURL: "https://www.ups.com/track?tracknum="},
	{match: "fedex", name: "FedEx", baseURL: "https://www.fedex.com/fedextrack/?trknbr="},
	{match: "usps", name: "USPS", baseURL: "https://tools.usps.com/go/TrackConfirmAction?tLabels="},
	{match: "dhl", name: "DHL", baseURL: "https://www.dhl.com/en/express/tracking.html?AWB="},
	{match: "amazon", name: "Amazon", baseURL: "https://www.amazon.com/progress-tracker/package/?trackingId="},
	{match: "ontrac", name: "OnTrac", baseURL: "https://www.ontrac.com/tracking/?number="},
	{match: "lasership", name: "LaserShip", baseURL: "https://www.lasership.com/track/"},
	{match: "canada post", name: "Canada Post", baseURL: "https://www.canadapost-postescanada.ca/track-reperage/en#/search?searchFor="},
	{match: "royal mail", name: "Royal Mail", baseURL: "https://www.royalmail.com/track-your-item#/tracking-results/"},
}

// genericTrackingURL is used when the carrier is not in the table.
const genericTrackingURL = "https://www.google.com/search?q="

// TrackingURL builds a carrier tracking URL for number. The carrier string is
// matched case-insensitively by substring against a fixed table; unknown or
// empty carriers produce a search URL containing the number. ok is false only
// when number is empty.
func TrackingURL(number, carrierName string) (string, bool) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", false
	}
	if c, found := lookupCarrier(carrierName); found {
		return c.baseURL + url.QueryEscape(number), true
	}
	return genericTrackingURL + url.QueryEscape("track package "+number), true
}

// CarrierName returns the display name of the carrier matching s.
func CarrierName(s string) (string, bool) {
	c, ok := lookupCarrier(s)
	return c.name, ok
}

func lookupCarrier(s string) (carrier, bool) {
	folded := fold(s)
	if folded == "" {
		return carrier{}, false
	}
	for _, c := range carriers {
		if strings.Contains(folded, c.match) {
			return c, true
		}
	}
	return carrier{}, false
}

// detectCarrier finds the first carrier mentioned anywhere in folded text.
// Short matches must sit on word boundaries so "groups" is not UPS.
func detectCarrier(folded string) (string, bool) {
	for _, c := range carriers {
		if containsWord(folded, c.match) {
			return c.name, true
		}
	}
	return "", false
}

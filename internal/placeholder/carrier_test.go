package placeholder

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingURL_KnownCarriers(t *testing.T) {
	tests := []struct {
		carrier string
		host    string
	}{
		{"UPS", "www.ups.com"},
		{"ups ground", "www.ups.com"},
		{"FedEx Express", "www.fedex.com"},
		{"USPS", "tools.usps.com"},
		{"DHL", "www.dhl.com"},
		{"Amazon Logistics", "www.amazon.com"},
		{"OnTrac", "www.ontrac.com"},
		{"LaserShip", "www.lasership.com"},
		{"Canada Post", "www.canadapost-postescanada.ca"},
		{"Royal Mail", "www.royalmail.com"},
	}
	for _, tt := range tests {
		t.Run(tt.carrier, func(t *testing.T) {
			raw, ok := TrackingURL("1Z999", tt.carrier)
			require.True(t, ok)
			u, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.host, u.Host)
			assert.Contains(t, raw, "1Z999")
		})
	}
}

func TestTrackingURL_UnknownCarrierFallsBackToSearch(t *testing.T) {
	raw, ok := TrackingURL("XYZ", "acme-post")
	require.True(t, ok)

	assert.True(t, strings.HasPrefix(raw, "https://www.google.com/search?q="))
	assert.Contains(t, raw, "XYZ")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "track package XYZ", u.Query().Get("q"))
}

func TestTrackingURL_EmptyCarrier(t *testing.T) {
	raw, ok := TrackingURL("ABC123", "")
	require.True(t, ok)
	assert.Contains(t, raw, "ABC123")
	assert.Contains(t, raw, "google.com/search")
}

func TestTrackingURL_EmptyNumber(t *testing.T) {
	_, ok := TrackingURL("  ", "UPS")
	assert.False(t, ok)
}

func TestTrackingURL_EscapesNumber(t *testing.T) {
	raw, ok := TrackingURL("A B&C", "fedex")
	require.True(t, ok)
	assert.Equal(t, "https://www.fedex.com/fedextrack/?trknbr=A+B%26C", raw)
}

func TestCarrierName(t *testing.T) {
	name, ok := CarrierName("shipped via fedex home")
	require.True(t, ok)
	assert.Equal(t, "FedEx", name)

	_, ok = CarrierName("pigeon")
	assert.False(t, ok)
}

func TestDetectCarrier_WordBoundary(t *testing.T) {
	_, ok := detectCarrier("our support groups meet weekly")
	assert.False(t, ok)

	name, ok := detectCarrier("your ups package is out for delivery")
	require.True(t, ok)
	assert.Equal(t, "UPS", name)
}

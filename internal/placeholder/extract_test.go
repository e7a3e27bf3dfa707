package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/actionroute/internal/ir"
)

func TestKeywords_RankingAndFiltering(t *testing.T) {
	got := Keywords("Your invoice is ready. Invoice total due soon; please pay the invoice today. Total!")
	assert.Equal(t, []string{"invoice", "total", "ready", "soon", "today"}, got)
}

func TestKeywords_NormalizesAndFolds(t *testing.T) {
	// Fullwidth letters normalize under NFKC; case folding merges STRASSE.
	got := Keywords("ＦＬＩＧＨＴ flight Strasse STRASSE")
	assert.Equal(t, []string{"flight", "strasse"}, got)
}

func TestKeywords_Limit(t *testing.T) {
	got := Keywords("alpha bravo charlie delta echoes foxtrot golfer hotel india juliet")
	assert.Len(t, got, maxKeywords)
	assert.Equal(t, "alpha", got[0])
}

func TestAnalyze_Entities(t *testing.T) {
	card := &ir.Card{
		Title:    "Your flight UA 1234 on March 3, 2026",
		BodyText: "Order #A12345-9 total $1,234.56. Tracking 1Z999AA10123456784 via UPS. Also due 04/15/2026.",
	}
	a := Analyze(card)

	assert.Equal(t, []string{"$1,234.56"}, a.Amounts)
	assert.Equal(t, []string{"UA1234"}, a.FlightNumbers)
	assert.Equal(t, []string{"March 3, 2026", "04/15/2026"}, a.Dates)
	assert.Equal(t, []string{"A12345-9"}, a.OrderNumbers)
	assert.Equal(t, []string{"1Z999AA10123456784"}, a.TrackingNumbers)
	assert.Equal(t, "UPS", a.Carrier)
}

func TestAnalyze_OrderWithoutDigitsIgnored(t *testing.T) {
	a := Analyze(&ir.Card{BodyText: "Thanks for your order confirmation request"})
	assert.Empty(t, a.OrderNumbers)
}

func TestAnalyze_NilAndEmpty(t *testing.T) {
	assert.Equal(t, Analysis{}, Analyze(nil))
	assert.Equal(t, Analysis{}, Analyze(&ir.Card{}))
}

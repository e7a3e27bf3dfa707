package placeholder

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/actionroute/internal/ir"
)

// maxKeywords bounds the keyword list kept per card.
const maxKeywords = 8

var (
	amountRe = regexp.MustCompile(`\$\s?\d+(?:,\d{3})*(?:\.\d{2})?`)

	flightRe = regexp.MustCompile(`\b([A-Z]{2}|[A-Z]\d|\d[A-Z])\s?(\d{2,4})\b`)

	monthDateRe = regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?\b`)
	numericDate = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}/\d{1,2}/\d{2,4}\b`)

	orderRe = regexp.MustCompile(`(?i)\border\s*(?:#|no\.?|number)?\s*:?\s*#?\s*([a-z0-9][a-z0-9-]{3,})`)

	upsTrackingRe = regexp.MustCompile(`\b1Z[0-9A-Z]{16}\b`)
)

var stopWords = map[string]struct{}{
	"about": {}, "after": {}, "again": {}, "also": {}, "been": {}, "before": {},
	"being": {}, "below": {}, "between": {}, "could": {}, "dear": {}, "does": {},
	"each": {}, "from": {}, "have": {}, "having": {}, "here": {}, "hello": {},
	"into": {}, "just": {}, "more": {}, "most": {}, "only": {}, "other": {},
	"over": {}, "please": {}, "regards": {}, "same": {}, "should": {}, "some": {},
	"such": {}, "than": {}, "thank": {}, "thanks": {}, "that": {}, "their": {},
	"them": {}, "then": {}, "there": {}, "these": {}, "they": {}, "this": {},
	"those": {}, "through": {}, "under": {}, "until": {}, "very": {}, "were": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "while": {}, "will": {},
	"with": {}, "would": {}, "your": {}, "yours": {},
}

// Analysis is what the synthesis tier knows about a card's text.
type Analysis struct {
	Keywords        []string
	Amounts         []string
	FlightNumbers   []string
	Dates           []string
	OrderNumbers    []string
	TrackingNumbers []string
	Carrier         string
}

// Analyze extracts keywords and entities from the card title and body.
// A nil card yields an empty Analysis.
func Analyze(card *ir.Card) Analysis {
	if card == nil {
		return Analysis{}
	}
	text := strings.TrimSpace(card.Title + "\n" + card.BodyText)
	if text == "" {
		return Analysis{}
	}
	text = norm.NFKC.String(text)
	folded := fold(text)

	a := Analysis{
		Keywords:        Keywords(text),
		Amounts:         uniqueMatches(amountRe, text),
		FlightNumbers:   flightNumbers(text),
		Dates:           append(uniqueMatches(monthDateRe, text), uniqueMatches(numericDate, text)...),
		OrderNumbers:    orderNumbers(text),
		TrackingNumbers: uniqueMatches(upsTrackingRe, text),
	}
	if name, ok := detectCarrier(folded); ok {
		a.Carrier = name
	} else if len(a.TrackingNumbers) > 0 {
		a.Carrier = "UPS"
	}
	return a
}

// Keywords tokenizes text into case-folded alphanumeric runs longer than
// three runes, drops stop words, and ranks by frequency then first
// occurrence.
func Keywords(text string) []string {
	tokens := strings.FieldsFunc(fold(norm.NFKC.String(text)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	counts := make(map[string]int)
	var order []string
	for _, tok := range tokens {
		if len([]rune(tok)) <= 3 || isNumeric(tok) {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	first := make(map[string]int, len(order))
	for i, tok := range order {
		first[tok] = i
	}
	slices.SortStableFunc(order, func(a, b string) int {
		if counts[a] != counts[b] {
			return counts[b] - counts[a]
		}
		return first[a] - first[b]
	})
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}

// flightNumbers skips candidates glued to an order or reference number
// ("#A12345-9").
func flightNumbers(text string) []string {
	var out []string
	for _, m := range flightRe.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > 0 && text[m[0]-1] == '#' || m[1] < len(text) && text[m[1]] == '-' {
			continue
		}
		n := text[m[2]:m[3]] + text[m[4]:m[5]]
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// orderNumbers keeps only candidates containing a digit so "order
// confirmation" is not read as an order number.
func orderNumbers(text string) []string {
	var out []string
	for _, m := range orderRe.FindAllStringSubmatch(text, -1) {
		n := strings.ToUpper(strings.TrimRight(m[1], "-"))
		if !strings.ContainsFunc(n, unicode.IsDigit) || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func uniqueMatches(re *regexp.Regexp, text string) []string {
	var out []string
	for _, m := range re.FindAllString(text, -1) {
		s := strings.TrimSpace(m)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// fold returns the case-folded form of s. A Caser is not safe for
// concurrent use, so each call builds its own.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// containsWord reports whether word appears in s bounded by non-alphanumeric
// runes or the ends of s.
func containsWord(s, word string) bool {
	for i := 0; ; {
		j := strings.Index(s[i:], word)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(word)
		if boundaryBefore(s, start) && boundaryAfter(s, end) {
			return true
		}
		i = start + 1
	}
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

package engine

import "github.com/roach88/actionroute/internal/ir"

// previewStrict lists, per preview-gated action id, the field groups that
// must all be present in the caller's original context before a preview is
// shown. Any key in a group satisfies it.
var previewStrict = map[string][][]string{
	"track_package":   {{"trackingNumber"}},
	"pay_invoice":     {{"amount", "amountDue"}},
	"write_review":    {{"productName"}},
	"check_in_flight": {{"flightNumber"}},
}

// IsPreviewGated reports whether actionID shows a preview before navigating.
func IsPreviewGated(actionID string) bool {
	_, ok := previewStrict[actionID]
	return ok
}

// previewReady reports whether the strict context satisfies the preview
// gate. Placeholder-filled values never count.
func previewReady(actionID string, strict ir.Context) bool {
	groups, ok := previewStrict[actionID]
	if !ok {
		return false
	}
	for _, group := range groups {
		if _, _, found := strict.FirstOf(group...); !found {
			return false
		}
	}
	return true
}

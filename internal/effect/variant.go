package effect

import "slices"

// Variant is one of the closed set of UI flows a resolution can present.
type Variant string

// Terminal UI variants. Each terminal UI id in the static table maps to
// exactly one of these.
const (
	VariantTrackPackage       Variant = "track_package"
	VariantPayInvoice         Variant = "pay_invoice"
	VariantCheckInFlight      Variant = "check_in_flight"
	VariantWriteReview        Variant = "write_review"
	VariantAddToCalendar      Variant = "add_to_calendar"
	VariantRSVP               Variant = "rsvp"
	VariantScheduleMeeting    Variant = "schedule_meeting"
	VariantSignDocument       Variant = "sign_document"
	VariantViewDocument       Variant = "view_document"
	VariantQuickReply         Variant = "quick_reply"
	VariantSaveContact        Variant = "save_contact"
	VariantUnsubscribe        Variant = "unsubscribe"
	VariantAddToWallet        Variant = "add_to_wallet"
	VariantViewReservation    Variant = "view_reservation"
	VariantCancelSubscription Variant = "cancel_subscription"
	VariantReturnItem         Variant = "return_item"
	VariantViewOrder          Variant = "view_order"
	VariantResetPassword      Variant = "reset_password"
	VariantVerifyAccount      Variant = "verify_account"
	VariantSplitBill          Variant = "split_bill"
	VariantSetReminder        Variant = "set_reminder"
	VariantReadAloud          Variant = "read_aloud"
	VariantSummarize          Variant = "summarize"
	VariantShoppingList       Variant = "shopping_list"
	VariantViewItinerary      Variant = "view_itinerary"
	VariantBookAppointment    Variant = "book_appointment"
	VariantPickupDetails      Variant = "pickup_details"
	VariantPermissionSlip     Variant = "permission_slip"
	VariantViewGrade          Variant = "view_grade"
	VariantRenewSubscription  Variant = "renew_subscription"
	VariantDonate             Variant = "donate"
	VariantNewsletter         Variant = "newsletter"
	VariantClaimOffer         Variant = "claim_offer"
	VariantPromoCode          Variant = "promo_code"
	VariantViewStatement      Variant = "view_statement"
	VariantDisputeCharge      Variant = "dispute_charge"
	VariantJobApplication     Variant = "job_application"
	VariantConfirmAppointment Variant = "confirm_appointment"
	VariantGetDirections      Variant = "get_directions"
	VariantContactSupport     Variant = "contact_support"
	VariantOutageNotice       Variant = "outage_notice"
	VariantJoinMeeting        Variant = "join_meeting"

	// VariantGeneric renders a data-driven UI definition.
	VariantGeneric Variant = "generic"

	// VariantViewDetails is the catch-all for unmapped terminal UI ids.
	VariantViewDetails Variant = "view_details"
)

// Preview variants shown before a preview-gated navigation.
const (
	VariantTrackPackagePreview  Variant = "track_package_preview"
	VariantPayInvoicePreview    Variant = "pay_invoice_preview"
	VariantWriteReviewPreview   Variant = "write_review_preview"
	VariantCheckInFlightPreview Variant = "check_in_flight_preview"
)

// terminalVariants maps terminal UI ids to variants. The mapping is
// injective; anything absent resolves to VariantViewDetails.
var terminalVariants = map[string]Variant{}

// previewVariants maps preview-gated action ids to their preview variant.
var previewVariants = map[string]Variant{
	"track_package":   VariantTrackPackagePreview,
	"pay_invoice":     VariantPayInvoicePreview,
	"write_review":    VariantWriteReviewPreview,
	"check_in_flight": VariantCheckInFlightPreview,
}

func init() {
	for _, v := range []Variant{
		VariantTrackPackage, VariantPayInvoice, VariantCheckInFlight, VariantWriteReview,
		VariantAddToCalendar, VariantRSVP, VariantScheduleMeeting, VariantSignDocument,
		VariantViewDocument, VariantQuickReply, VariantSaveContact, VariantUnsubscribe,
		VariantAddToWallet, VariantViewReservation, VariantCancelSubscription, VariantReturnItem,
		VariantViewOrder, VariantResetPassword, VariantVerifyAccount, VariantSplitBill,
		VariantSetReminder, VariantReadAloud, VariantSummarize, VariantShoppingList,
		VariantViewItinerary, VariantBookAppointment, VariantPickupDetails, VariantPermissionSlip,
		VariantViewGrade, VariantRenewSubscription, VariantDonate, VariantNewsletter,
		VariantClaimOffer, VariantPromoCode, VariantViewStatement, VariantDisputeCharge,
		VariantJobApplication, VariantConfirmAppointment, VariantGetDirections, VariantContactSupport,
		VariantOutageNotice, VariantJoinMeeting,
	} {
		terminalVariants[string(v)] = v
	}
}

// VariantFor maps a terminal UI id to its variant. It is total: empty and
// unknown ids map to VariantViewDetails.
func VariantFor(terminalUIID string) Variant {
	if v, ok := terminalVariants[terminalUIID]; ok {
		return v
	}
	return VariantViewDetails
}

// IsMapped reports whether terminalUIID has its own variant.
func IsMapped(terminalUIID string) bool {
	_, ok := terminalVariants[terminalUIID]
	return ok
}

// TerminalUIIDs returns every mapped terminal UI id, sorted.
func TerminalUIIDs() []string {
	ids := make([]string, 0, len(terminalVariants))
	for id := range terminalVariants {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// PreviewVariant returns the preview variant for a preview-gated action id.
func PreviewVariant(actionID string) (Variant, bool) {
	v, ok := previewVariants[actionID]
	return v, ok
}

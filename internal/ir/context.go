package ir

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// Field is a well-known context key. Fields get compile-time names on the
// common resolution paths; anything else the backend sends lands in the
// extension map and is still reachable through Lookup.
type Field string

// Well-known context fields. Keys are case-sensitive.
const (
	FieldURL            Field = "url"
	FieldLink           Field = "link"
	FieldTrackingNumber Field = "trackingNumber"
	FieldCarrier        Field = "carrier"
	FieldTrackingURL    Field = "trackingUrl"
	FieldAmount         Field = "amount"
	FieldAmountDue      Field = "amountDue"
	FieldMerchant       Field = "merchant"
	FieldInvoiceID      Field = "invoiceId"
	FieldDueDate        Field = "dueDate"
	FieldPaymentLink    Field = "paymentLink"
	FieldPaymentURL     Field = "paymentUrl"
	FieldInvoiceURL     Field = "invoiceUrl"
	FieldFlightNumber   Field = "flightNumber"
	FieldAirline        Field = "airline"
	FieldDepartureTime  Field = "departureTime"
	FieldCheckInURL     Field = "checkInUrl"
	FieldFlightURL      Field = "flightUrl"
	FieldOrderNumber    Field = "orderNumber"
	FieldOrderURL       Field = "orderUrl"
	FieldOrderTotal     Field = "orderTotal"
	FieldProductName    Field = "productName"
	FieldReviewURL      Field = "reviewUrl"
	FieldReviewLink     Field = "reviewLink"
	FieldDocumentURL    Field = "documentUrl"
	FieldDocumentName   Field = "documentName"
	FieldAttachmentURL  Field = "attachmentUrl"
	FieldAttachmentID   Field = "attachmentId"
	FieldSignURL        Field = "signUrl"
	FieldEventTitle     Field = "eventTitle"
	FieldEventDate      Field = "eventDate"
	FieldStartTime      Field = "startTime"
	FieldEndTime        Field = "endTime"
	FieldLocation       Field = "location"
	FieldOrganizer      Field = "organizer"
	FieldTitle          Field = "title"
	FieldSummary        Field = "summary"
	FieldCode           Field = "code"
	FieldPromoCode      Field = "promoCode"
	FieldDiscount       Field = "discount"
	FieldExpiresAt      Field = "expiresAt"
	FieldUnsubscribeURL Field = "unsubscribeUrl"
	FieldMeetingURL     Field = "meetingUrl"
	FieldConfirmation   Field = "confirmationCode"
	FieldServiceName    Field = "serviceName"
	FieldRenewalDate    Field = "renewalDate"
	FieldName           Field = "name"
	FieldEmail          Field = "email"
	FieldPhone          Field = "phone"
	FieldAddress        Field = "address"
	FieldDateTime       Field = "dateTime"
	FieldProvider       Field = "provider"
)

var wellKnownFields = map[Field]struct{}{
	FieldURL: {}, FieldLink: {}, FieldTrackingNumber: {}, FieldCarrier: {},
	FieldTrackingURL: {}, FieldAmount: {}, FieldAmountDue: {}, FieldMerchant: {},
	FieldInvoiceID: {}, FieldDueDate: {}, FieldPaymentLink: {}, FieldPaymentURL: {},
	FieldInvoiceURL: {}, FieldFlightNumber: {}, FieldAirline: {}, FieldDepartureTime: {},
	FieldCheckInURL: {}, FieldFlightURL: {}, FieldOrderNumber: {}, FieldOrderURL: {},
	FieldOrderTotal: {}, FieldProductName: {}, FieldReviewURL: {}, FieldReviewLink: {},
	FieldDocumentURL: {}, FieldDocumentName: {}, FieldAttachmentURL: {}, FieldAttachmentID: {},
	FieldSignURL: {}, FieldEventTitle: {}, FieldEventDate: {}, FieldStartTime: {},
	FieldEndTime: {}, FieldLocation: {}, FieldOrganizer: {}, FieldTitle: {},
	FieldSummary: {}, FieldCode: {}, FieldPromoCode: {}, FieldDiscount: {},
	FieldExpiresAt: {}, FieldUnsubscribeURL: {}, FieldMeetingURL: {}, FieldConfirmation: {},
	FieldServiceName: {}, FieldRenewalDate: {}, FieldName: {}, FieldEmail: {},
	FieldPhone: {}, FieldAddress: {}, FieldDateTime: {}, FieldProvider: {},
}

// IsWellKnown reports whether key is one of the well-known fields.
func IsWellKnown(key string) bool {
	_, ok := wellKnownFields[Field(key)]
	return ok
}

// Context is the data payload of an action.
//
// Context is an immutable value: the zero value is an empty context, and With
// returns a modified copy. Empty values are retained (so a caller's context
// round-trips unchanged) but count as absent for Has and Lookup.
type Context struct {
	known map[Field]string
	ext   map[string]string
}

// NewContext builds a Context from a flat key/value map.
func NewContext(m map[string]string) Context {
	var c Context
	for k, v := range m {
		c = c.set(k, v)
	}
	return c
}

// ContextOf builds a Context from alternating key/value pairs.
// A trailing key with no value is ignored.
func ContextOf(kv ...string) Context {
	var c Context
	for i := 0; i+1 < len(kv); i += 2 {
		c = c.set(kv[i], kv[i+1])
	}
	return c
}

// set writes in place; callers must own the maps.
func (c Context) set(key, value string) Context {
	if _, ok := wellKnownFields[Field(key)]; ok {
		if c.known == nil {
			c.known = make(map[Field]string)
		}
		c.known[Field(key)] = value
		return c
	}
	if c.ext == nil {
		c.ext = make(map[string]string)
	}
	c.ext[key] = value
	return c
}

// Get returns the value of a well-known field, or "" if absent.
func (c Context) Get(f Field) string {
	return c.known[f]
}

// Has reports whether a well-known field carries a non-empty value.
func (c Context) Has(f Field) bool {
	return strings.TrimSpace(c.known[f]) != ""
}

// Lookup returns the value for any key (well-known or extension) when it is
// present and non-empty.
func (c Context) Lookup(key string) (string, bool) {
	var v string
	if _, ok := wellKnownFields[Field(key)]; ok {
		v = c.known[Field(key)]
	} else {
		v = c.ext[key]
	}
	if strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Value is Lookup without the presence flag.
func (c Context) Value(key string) string {
	v, _ := c.Lookup(key)
	return v
}

// FirstOf returns the first key in keys with a non-empty value.
func (c Context) FirstOf(keys ...string) (key, value string, ok bool) {
	for _, k := range keys {
		if v, found := c.Lookup(k); found {
			return k, v, true
		}
	}
	return "", "", false
}

// With returns a copy of c with key set to value.
func (c Context) With(key, value string) Context {
	out := Context{known: maps.Clone(c.known), ext: maps.Clone(c.ext)}
	return out.set(key, value)
}

// FillFrom returns a copy of c where every key that is absent or empty in c
// takes its value from other. Present values in c are never overwritten.
func (c Context) FillFrom(other Context) Context {
	out := Context{known: maps.Clone(c.known), ext: maps.Clone(c.ext)}
	for _, k := range other.Keys() {
		if _, ok := out.Lookup(k); ok {
			continue
		}
		v, ok := other.Lookup(k)
		if !ok {
			continue
		}
		out = out.set(k, v)
	}
	return out
}

// Keys returns all keys, including empty-valued ones, sorted.
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c.known)+len(c.ext))
	for k := range c.known {
		keys = append(keys, string(k))
	}
	for k := range c.ext {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// PresentKeys returns keys with non-empty values, sorted.
func (c Context) PresentKeys() []string {
	var keys []string
	for _, k := range c.Keys() {
		if _, ok := c.Lookup(k); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Len returns the number of keys, including empty-valued ones.
func (c Context) Len() int {
	return len(c.known) + len(c.ext)
}

// Extensions returns a copy of the keys that are not well-known fields.
func (c Context) Extensions() map[string]string {
	return maps.Clone(c.ext)
}

// Map flattens the context into a new map.
func (c Context) Map() map[string]string {
	m := make(map[string]string, c.Len())
	for k, v := range c.known {
		m[string(k)] = v
	}
	for k, v := range c.ext {
		m[k] = v
	}
	return m
}

// Equal reports whether both contexts hold the same keys and values.
func (c Context) Equal(other Context) bool {
	return maps.Equal(c.Map(), other.Map())
}

// MarshalJSON encodes the context as a flat object.
func (c Context) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}

// UnmarshalJSON decodes a flat object of strings.
func (c *Context) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*c = NewContext(m)
	return nil
}

// MarshalYAML encodes the context as a flat mapping.
func (c Context) MarshalYAML() (interface{}, error) {
	return c.Map(), nil
}

// UnmarshalYAML decodes a flat mapping of strings.
func (c *Context) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var m map[string]string
	if err := unmarshal(&m); err != nil {
		return err
	}
	*c = NewContext(m)
	return nil
}

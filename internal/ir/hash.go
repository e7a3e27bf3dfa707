package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainEvent = "actionroute/event/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EventID computes the content-addressed ID of an analytics event.
// The same resolution, action, decision and seq always produce the same ID,
// so re-recording an event is idempotent.
func EventID(resolutionID, actionID, decision string, seq int64) (string, error) {
	obj := map[string]any{
		"resolution_id": resolutionID,
		"action_id":     actionID,
		"decision":      decision,
		"seq":           seq,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EventID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// MustEventID is EventID that panics on error. EventID only fails on
// unsupported types, which its fixed string/int inputs cannot produce.
func MustEventID(resolutionID, actionID, decision string, seq int64) string {
	id, err := EventID(resolutionID, actionID, decision, seq)
	if err != nil {
		panic(err)
	}
	return id
}

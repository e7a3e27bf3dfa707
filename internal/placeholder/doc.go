// Package placeholder fills missing action context so a resolution can stay
// functional when upstream classification omitted data.
//
// Two tiers run in order:
//
//   - The structural tier is deterministic: fixed per-action defaults, carrier
//     tracking URLs built from a tracking number, and attachment-derived
//     document URLs.
//   - The synthesis tier derives flavor text from the card's title and body
//     (keywords plus regex entities) and never returns an empty value.
//
// Fill only touches keys that are absent or empty. Values the caller sent are
// never overwritten, and filling an already-valid context is a no-op.
package placeholder

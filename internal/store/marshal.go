package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/actionroute/internal/ir"
)

// marshalPresence converts the context presence map to canonical JSON TEXT.
func marshalPresence(m map[string]bool) (string, error) {
	if m == nil {
		m = map[string]bool{}
	}
	data, err := ir.MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("marshal context presence: %w", err)
	}
	return string(data), nil
}

// marshalKeys converts a key list to canonical JSON TEXT. Order is kept.
func marshalKeys(keys []string) (string, error) {
	if keys == nil {
		keys = []string{}
	}
	data, err := ir.MarshalCanonical(keys)
	if err != nil {
		return "", fmt.Errorf("marshal keys: %w", err)
	}
	return string(data), nil
}

func unmarshalPresence(data string) (map[string]bool, error) {
	m := map[string]bool{}
	if data == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("unmarshal context presence: %w", err)
	}
	return m, nil
}

// unmarshalKeys returns nil for an empty list so events read back match
// events that never carried keys.
func unmarshalKeys(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var keys []string
	if err := json.Unmarshal([]byte(data), &keys); err != nil {
		return nil, fmt.Errorf("unmarshal keys: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	return keys, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

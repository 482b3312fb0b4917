package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Stats is an open-ended set of named numeric counters (gold, xp, level, ...).
// Stored as a jsonb document.
type Stats map[string]float64

// StatTypeError reports a stat whose value is not a JSON number.
type StatTypeError struct {
	Key   string
	Value string
}

func (e *StatTypeError) Error() string {
	return fmt.Sprintf("stat %q must be a number, got %s", e.Key, e.Value)
}

// MergeAdd adds every delta onto base. Keys missing from base start at zero.
// base is modified in place (allocated when nil) and returned.
func MergeAdd(base, deltas Stats) Stats {
	if base == nil {
		base = make(Stats, len(deltas))
	}
	for key, delta := range deltas {
		base[key] += delta
	}
	return base
}

// MergeReplace overwrites base with every value in updates.
func MergeReplace(base, updates Stats) Stats {
	if base == nil {
		base = make(Stats, len(updates))
	}
	for key, value := range updates {
		base[key] = value
	}
	return base
}

// Clone returns an independent copy. A nil map clones to an empty one.
func (s Stats) Clone() Stats {
	out := make(Stats, len(s))
	for key, value := range s {
		out[key] = value
	}
	return out
}

// UnmarshalJSON rejects anything but numbers instead of coercing.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}
	out := make(Stats, len(raw))
	for key, value := range raw {
		var n float64
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return &StatTypeError{Key: key, Value: "null"}
		}
		if err := json.Unmarshal(value, &n); err != nil {
			return &StatTypeError{Key: key, Value: string(value)}
		}
		out[key] = n
	}
	*s = out
	return nil
}

// Value implements driver.Valuer.
func (s Stats) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]float64(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *Stats) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("stats: unsupported scan type %T", value)
	}
}

package message

import (
	"fmt"
	"math"
	"time"
)

// Well-known fields of an observation message. Every other field is a
// feature value keyed by feature name.
const (
	FieldTimestamp   = "timestamp"
	FieldReplication = "replication"
)

// DynamicMessage is one observation: a JSON object of feature values plus
// optional metadata fields.
type DynamicMessage map[string]any

// GetFloat64 returns the numeric value of key. Missing keys, nulls and
// non-numeric values report false.
func (dm DynamicMessage) GetFloat64(key string) (float64, bool) {
	val, exists := dm[key]
	if !exists || val == nil {
		return 0, false
	}
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// GetInt returns the value of key when it is a whole number that fits in an
// int. Fractional values report false.
func (dm DynamicMessage) GetInt(key string) (int, bool) {
	f, ok := dm.GetFloat64(key)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int(f), true
}

// HasNonNull checks if a key exists and its value is not explicitly null.
func (dm DynamicMessage) HasNonNull(key string) bool {
	val, exists := dm[key]
	return exists && val != nil
}

var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// GetTime parses key as a timestamp string.
func (dm DynamicMessage) GetTime(key string) (time.Time, bool) {
	s, ok := dm[key].(string)
	if !ok {
		return time.Time{}, false
	}
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Timestamp returns the observation time carried by the message, or fallback.
func (dm DynamicMessage) Timestamp(fallback time.Time) time.Time {
	if t, ok := dm.GetTime(FieldTimestamp); ok {
		return t
	}
	return fallback
}

// GetFieldSnippet returns a string snippet of a field's value, useful for logging.
func (dm DynamicMessage) GetFieldSnippet(fieldName string, maxLength int) string {
	value, exists := dm[fieldName]
	if !exists {
		return "<missing>"
	}
	if maxLength <= 0 {
		return "..."
	}
	s := fmt.Sprintf("%v", value)
	if len(s) > maxLength {
		return s[:maxLength] + "..."
	}
	return s
}

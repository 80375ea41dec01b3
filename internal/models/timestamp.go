package models

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ISO-8601 layouts with a numeric offset lacking the colon
var offsetLayouts = []string{
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05-0700",
}

// naive ISO-8601 layouts without a zone, as written by older tooling
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp marshals as RFC 3339 and also reads zone-less ISO-8601 values
// (interpreted in local time). Values in any other format are kept verbatim
// and written back unchanged, so foreign records survive a load/save cycle.
type Timestamp struct {
	time.Time
	raw string
}

// Raw returns the stored JSON text of a value that could not be parsed as a
// time, or "" when the value parsed.
func (t Timestamp) Raw() string {
	return t.raw
}

// Now returns the current time as a Timestamp
func Now() Timestamp {
	return Timestamp{Time: time.Now()}
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.raw != "" && t.IsZero() {
		return []byte(t.raw), nil
	}
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler. It never fails: unparsable
// values are retained as raw JSON.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		t.raw = string(data)
		return nil
	}
	parsed, err := ParseTimestamp(text)
	if err != nil {
		t.raw = string(data)
		return nil
	}
	t.Time = parsed
	return nil
}

// ParseTimestamp accepts RFC 3339, ISO-8601 with a "+0000" style offset and
// zone-less ISO-8601. An empty string
// yields the zero time.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts, nil
	}
	for _, layout := range offsetLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	var lastErr error
	for _, layout := range naiveLayouts {
		ts, err := time.ParseInLocation(layout, raw, time.Local)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Zone-less layouts the backend emits for LocalDateTime values.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDateInput parses a wire date that is either an ISO-8601 string or an
// array of components [year, month, day, hour?, minute?, second?, nanos?].
// Month is 1-based. JSON null and the empty string yield the zero time.
// Zone-less values are interpreted in loc, or UTC when loc is nil.
func ParseDateInput(raw []byte, loc *time.Location) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.UTC
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, fmt.Errorf("date string: %w", err)
		}
		return parseDateString(s, loc)
	case '[':
		var parts []int64
		if err := json.Unmarshal(raw, &parts); err != nil {
			return time.Time{}, fmt.Errorf("date array: %w", err)
		}
		return parseDateArray(parts, loc)
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %s", string(raw))
	}
}

func parseDateString(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func parseDateArray(parts []int64, loc *time.Location) (time.Time, error) {
	if len(parts) < 3 || len(parts) > 7 {
		return time.Time{}, fmt.Errorf("date array needs 3 to 7 components, got %d", len(parts))
	}
	c := [7]int64{}
	copy(c[:], parts)

	if c[1] < 1 || c[1] > 12 {
		return time.Time{}, fmt.Errorf("month %d out of range", c[1])
	}
	if c[2] < 1 || c[2] > 31 || c[3] < 0 || c[3] > 23 || c[4] < 0 || c[4] > 59 || c[5] < 0 || c[5] > 60 {
		return time.Time{}, fmt.Errorf("date components out of range: %v", parts)
	}

	return time.Date(int(c[0]), time.Month(c[1]), int(c[2]), int(c[3]), int(c[4]), int(c[5]), int(c[6]), loc), nil
}

// Timestamp is a time.Time that accepts every DateInput shape on decode and
// encodes as RFC 3339. Zone-less values decode as UTC.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDateInput(data, time.UTC)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

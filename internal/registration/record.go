// Package registration defines the event registration record and the pure
// operations on it: intake parsing and normalization, CSV export, statistics
// and sample data generation.
package registration

import (
	"errors"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Record.Timestamp is ISO-8601 local time with no zone offset. Microseconds
// are appended unless they are zero, as Python's isoformat does.
const (
	TimestampLayout        = "2006-01-02T15:04:05.000000"
	TimestampSecondsLayout = "2006-01-02T15:04:05"
)

// Record is a single event registration.
// Field order matches the persisted JSON layout.
type Record struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Year      string `json:"year"`
	Branch    string `json:"branch"`
	Timestamp string `json:"timestamp"`
}

// UnmarshalJSON decodes a persisted record. Scalar values of any JSON type
// are accepted for every field and kept in their textual form, so files
// written by clients that sent numeric years still load.
func (r *Record) UnmarshalJSON(data []byte) error {
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return errors.New("registration record must be a JSON object")
	}

	*r = Record{
		Name:      doc.Get("name").String(),
		Email:     doc.Get("email").String(),
		Phone:     doc.Get("phone").String(),
		Year:      doc.Get("year").String(),
		Branch:    doc.Get("branch").String(),
		Timestamp: doc.Get("timestamp").String(),
	}
	return nil
}

// EmailKey returns the case-insensitive uniqueness key of the record.
func (r Record) EmailKey() string {
	return strings.ToLower(r.Email)
}

// Stamp returns a copy of the record with Timestamp set to t.
func (r Record) Stamp(t time.Time) Record {
	r.Timestamp = FormatTimestamp(t)
	return r
}

// FormatTimestamp formats t the way registration timestamps are persisted.
func FormatTimestamp(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(TimestampSecondsLayout)
	}
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a persisted timestamp, with or without microseconds, in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	// the seconds layout also accepts a trailing fraction when parsing
	return time.ParseInLocation(TimestampSecondsLayout, s, loc)
}

// ContainsEmail reports whether any record in records has the same
// case-insensitive email as email.
func ContainsEmail(records []Record, email string) bool {
	key := strings.ToLower(email)
	for _, r := range records {
		if r.EmailKey() == key {
			return true
		}
	}
	return false
}

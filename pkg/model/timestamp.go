package model

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// timestampLayout is ISO 8601 with millisecond precision, e.g.
// 2025-01-01T09:00:00.000Z
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is a createdOn/updatedOn value.
//
// RFC 3339 text is parsed into Time. The empty string and null decode as the
// zero Timestamp, which is written back as "". Any other string or number is
// kept verbatim and written back unchanged, so records stamped by older
// tooling survive a load and save.
type Timestamp struct {
	time.Time
	raw []byte
}

// NewTimestamp wraps t
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// Raw returns the stored text of a value that is not RFC 3339, or nil.
func (t Timestamp) Raw() []byte {
	return t.raw
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.raw != nil {
		return t.raw, nil
	}
	if t.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.Time.Format(timestampLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		return fmt.Errorf("timestamp must be a string, got %s", data)
	}

	var s string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
			t.Time = parsed
			return nil
		}
	}

	t.raw = append([]byte(nil), data...)
	return nil
}

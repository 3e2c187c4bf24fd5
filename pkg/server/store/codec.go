package store

import (
	"bytes"
	"errors"

	"github.com/goccy/go-json"
)

// DecodeRecords parses a persisted collection. Anything other than a JSON
// array, including null, is rejected.
func DecodeRecords[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("collection is not a JSON array")
	}

	records := []T{}
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EncodeRecords renders a collection as a JSON array indented with two
// spaces. A nil slice is written as an empty array.
func EncodeRecords[T any](records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

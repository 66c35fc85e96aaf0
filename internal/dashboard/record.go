package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStorageUnavailable wraps any failure of the storage read.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrCorruptedData is returned when the stored collection cannot be decoded
	// or holds a record with an invalid type, amount or date.
	ErrCorruptedData = errors.New("corrupted data")
	// ErrNoTransactionsInCategory reports that a category has no records, so it
	// has no last transaction date.
	ErrNoTransactionsInCategory = errors.New("no transactions in category")
	// ErrSuperseded is returned to the caller of a load that finished after a
	// newer load had been triggered. Its result was discarded.
	ErrSuperseded = errors.New("load superseded by a newer trigger")
)

// Record is a transaction as stored under the collection key.
type Record struct {
	ID       string     `json:"id"`
	Name     string     `json:"name,omitempty"`
	Type     string     `json:"type"`
	Amount   FlexString `json:"amount"`
	Category string     `json:"category,omitempty"`
	Date     string     `json:"date"`
}

// FlexString decodes from a JSON string or a JSON number. Numbers keep their
// literal text so no float conversion happens.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("amount must be a string or number: %w", err)
		}
		*f = FlexString(n.String())
		return nil
	}
}

// Decode parses the serialized collection. Empty input is an empty collection.
func Decode(raw string) ([]Record, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptedData, err)
	}
	return records, nil
}

// Encode serializes records in the stored format.
func Encode(records []Record) (string, error) {
	if records == nil {
		records = []Record{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

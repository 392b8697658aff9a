// Package models contains domain models for flowcheck.
package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// ErrInvalidPayload is returned when a claim result payload is not valid JSON.
var ErrInvalidPayload = errors.New("result payload is not valid JSON")

// Payload holds the raw JSON document returned by the fact lookup service.
// It is stored verbatim and implements sql.Scanner and driver.Valuer.
// Scanning never validates; callers check Valid before trusting stored data.
type Payload []byte

// Valid reports whether the payload is a non-empty, parseable JSON document.
func (p Payload) Valid() bool {
	return len(p) > 0 && json.Valid(p)
}

// MarshalJSON implements json.Marshaler. The payload is emitted as-is.
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	if !json.Valid(p) {
		return nil, ErrInvalidPayload
	}
	return p, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Payload) UnmarshalJSON(data []byte) error {
	*p = append((*p)[0:0], data...)
	return nil
}

// Value implements driver.Valuer.
func (p Payload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return string(p), nil
}

// Scan implements sql.Scanner.
func (p *Payload) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*p = nil
	case []byte:
		*p = append(Payload(nil), v...)
	case string:
		*p = Payload(v)
	default:
		return fmt.Errorf("scan payload: unsupported type %T", value)
	}
	return nil
}

// Claim is a fact-check query together with the result it produced.
// NormalizedText is derived on demand and never persisted.
type Claim struct {
	RawText        string  `json:"raw_text"`
	NormalizedText string  `json:"normalized_text,omitempty"`
	CreatedAt      string  `json:"created_at"`
	ResultPayload  Payload `json:"result_payload"`
	ID             int64   `json:"id"`
	CreatedAtEpoch int64   `json:"created_at_epoch"`
}

// CreatedTime returns the creation time of the claim.
func (c *Claim) CreatedTime() time.Time {
	return time.UnixMilli(c.CreatedAtEpoch)
}

package claimcache

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned for a blank query.
	ErrEmptyQuery = errors.New("claim query is empty")
	// ErrClaimMissing is returned when a matched claim can no longer be read.
	ErrClaimMissing = errors.New("matched claim not found")
)

// DataIntegrityError reports a stored claim whose payload cannot be served.
type DataIntegrityError struct {
	Err     error
	ClaimID int64
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("claim %d: stored result is unusable: %v", e.ClaimID, e.Err)
}

func (e *DataIntegrityError) Unwrap() error {
	return e.Err
}

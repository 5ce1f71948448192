package types

import (
	"encoding/json"
	"errors"
)

// Table is an upsert-only key-value store for one record kind.
// There is no delete and no listing.
type Table[T any] interface {
	// Get retrieves the record stored under id.
	// Returns ErrRecordNotFound if nothing is stored under id.
	Get(id uint64) (T, error)

	// Set stores record under id, silently replacing any previous record.
	Set(id uint64, record T) error
}

// Counter issues identifiers. The first call to Next returns 1 and every
// later call returns a strictly greater value.
type Counter interface {
	// Next increments the counter and returns the new value.
	// Returns ErrIDSpaceExhausted when the counter is at math.MaxUint64.
	Next() (uint64, error)

	// Current returns the last issued value, or 0 if none was issued.
	Current() (uint64, error)
}

// Store errors returned by Table and Counter implementations.
var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrIDSpaceExhausted = errors.New("identifier space exhausted")
)

// MaxRecordSize caps the encoded size in bytes of one stored record.
// Every backend rejects larger records with ErrRecordTooLarge.
const MaxRecordSize = 1024

// ErrRecordTooLarge is returned by Set when the encoded record exceeds
// MaxRecordSize.
var ErrRecordTooLarge = errors.New("record exceeds maximum encoded size")

// CheckRecordSize returns ErrRecordTooLarge when the JSON encoding of record
// exceeds MaxRecordSize.
func CheckRecordSize(record any) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if len(encoded) > MaxRecordSize {
		return ErrRecordTooLarge
	}
	return nil
}

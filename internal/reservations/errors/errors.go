package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	// ErrDuplicateKey is the storage-level uniqueness rejection on the
	// idempotency key, the second line of defense behind the lease.
	ErrDuplicateKey = errors.New("reservation violates a uniqueness constraint")
)

package errors

import "errors"

var (
	ErrNotFound = errors.New("table not found")

	ErrInvalidID = errors.New("invalid table ID format")

	ErrDuplicateName = errors.New("table name already in use")
)

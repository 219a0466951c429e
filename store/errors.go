package store

import "errors"

// Common store errors.
var (
	// ErrUnreachable indicates the store itself cannot be reached. Callers
	// treat this as fatal for the whole run; any other store error is local
	// to one record and the batch continues.
	ErrUnreachable = errors.New("document store unreachable")
)

// Unreachable reports whether err means the store is down rather than a
// single operation having failed.
func Unreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}

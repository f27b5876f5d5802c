package qotd

import "errors"

// Error kinds per the taxonomy: validation errors decline the operation
// with a reason, not-found/empty conditions are expected negative results,
// anything else is internal.
var (
	ErrInvalid   = errors.New("invalid request")
	ErrNotFound  = errors.New("not found")
	ErrNoLive    = errors.New("no live question")
	ErrNoPending = errors.New("no pending question")

	// ErrStale means the service generation changed under an in-flight
	// operation (cache reset); the operation must not commit.
	ErrStale = errors.New("stale service generation")
)

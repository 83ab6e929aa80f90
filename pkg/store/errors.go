package store

import "errors"

var (
	// ErrUnknownHandle reports a handle that doesn't address a live span:
	// never created, already removed, or swept.
	ErrUnknownHandle = errors.New("store: unknown span handle")

	// ErrMissingKey reports a meta/metrics key absent from the span.
	ErrMissingKey = errors.New("store: missing key")
)

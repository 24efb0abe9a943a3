package domain

import "errors"

var (
	// ErrNotFound signals a missing item.
	ErrNotFound = errors.New("not found")
	// ErrInvalidConfiguration signals a malformed similarity configuration
	// (field spec, weights, threshold, delimiter) or one that cannot be serialized for key derivation.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrCacheUnavailable signals that the result cache backend cannot be reached.
	ErrCacheUnavailable = errors.New("cache unavailable")
	// ErrInvalidItem signals an item that cannot be stored (missing kind or id).
	ErrInvalidItem = errors.New("invalid item")
	// ErrUnknownEvent signals a mutation event name the service does not track.
	ErrUnknownEvent = errors.New("unknown event")
)

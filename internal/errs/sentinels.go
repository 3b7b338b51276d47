// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across storage/session/api layers.
var (
	// ErrNotFound indicates the requested key or remote entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the remote service rejected the credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates a temporary local login lock.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidArgument indicates input rejected before any network call.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCorrupt indicates a persisted entry that can no longer be read back.
	ErrCorrupt = errors.New("corrupt entry")
)

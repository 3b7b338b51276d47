// Package storage defines the client-local key/value state behind the session layer.
package storage

import "context"

// Keys of the persisted session state. Each entry is independent of the others.
const (
	KeyAccessToken = "accessToken"
	KeyRole        = "role"
	KeyUser        = "user"
)

// Store persists string values under string keys.
type Store interface {
	// Get returns the stored value or errs.ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key; removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

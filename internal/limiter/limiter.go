// Package limiter defines local login lockout after repeated rejected attempts.
package limiter

import (
	"context"
	"time"
)

// Limiter controls login attempts and temporary lockouts per account key.
type Limiter interface {
	// Allow reports whether login is currently allowed and optional retry-after.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
	// Success resets counters after a successful login.
	Success(ctx context.Context, key string) error
	// Failure records a failed attempt; may place a temporary block.
	Failure(ctx context.Context, key string) (bool, time.Duration, error)
}

package pipeline

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Deps are the services the standard chain works with.
type Deps struct {
	Sessions  Sessions
	Busy      Indicator
	Notices   Notifier
	Navigator Navigator
	Limiter   *rate.Limiter
	Log       *zap.Logger
}

// New wraps base with the standard chain, outermost first:
// request id, logging, busy, failures, recover, rate limit, bearer.
// Failures sits outside recover and rate limit so a recovered panic or a
// failed throttle wait is notified like any other terminal error.
func New(base http.RoundTripper, d Deps) http.RoundTripper {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return Chain(base,
		RequestID(),
		Logging(log),
		Busy(d.Busy),
		Failures(d.Sessions, d.Notices, d.Navigator, log),
		Recover(log),
		RateLimit(d.Limiter),
		Bearer(d.Sessions),
	)
}

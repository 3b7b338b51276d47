package pipeline

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit paces outbound requests. A nil limiter disables pacing.
func RateLimit(l *rate.Limiter) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if l == nil {
			return next
		}
		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			if err := l.Wait(req.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(req)
		})
	}
}

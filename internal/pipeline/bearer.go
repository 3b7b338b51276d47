package pipeline

import (
	"context"
	"net/http"
)

// TokenSource yields the current credential, if any.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// Bearer attaches "Authorization: Bearer <token>" when a credential is present.
// Requests without a credential pass through unchanged.
func Bearer(src TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			tok, ok := src.Token(req.Context())
			if !ok {
				return next.RoundTrip(req)
			}
			r := req.Clone(req.Context())
			r.Header.Set("Authorization", "Bearer "+tok)
			return next.RoundTrip(r)
		})
	}
}

// Package guard decides whether a protected view may be entered.
package guard

import (
	"context"
	"net/http"

	"github.com/and161185/attendance-client/internal/notify"
)

// LoginPath is where denied navigations are sent.
const LoginPath = "/login"

// DeniedMessage is shown when a protected view is requested without a session.
const DeniedMessage = "Please log in to access the dashboard."

// TokenSource yields the current credential, if any.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// Notifier shows a user-facing notice.
type Notifier interface {
	Show(text string, kind notify.Kind) notify.Message
}

// Decision is the outcome of a single check.
type Decision struct {
	Allowed  bool
	Redirect string
}

// Guard is stateless; every check consults the token source afresh.
type Guard struct {
	tokens  TokenSource
	notices Notifier
}

// New constructs a Guard.
func New(tokens TokenSource, notices Notifier) *Guard {
	return &Guard{tokens: tokens, notices: notices}
}

// Check allows entry when a credential is present. Otherwise it raises an
// info notice and asks for a redirect to the login view.
func (g *Guard) Check(ctx context.Context) Decision {
	if _, ok := g.tokens.Token(ctx); ok {
		return Decision{Allowed: true}
	}
	g.notices.Show(DeniedMessage, notify.KindInfo)
	return Decision{Redirect: LoginPath}
}

// Middleware applies Check in front of a route handler.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Check(r.Context())
		if !d.Allowed {
			http.Redirect(w, r, d.Redirect, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

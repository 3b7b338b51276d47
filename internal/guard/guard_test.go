package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/and161185/attendance-client/internal/notify"
)

type fakeTokens struct {
	token string
	calls int
}

func (f *fakeTokens) Token(context.Context) (string, bool) {
	f.calls++
	return f.token, f.token != ""
}

var _ TokenSource = (*fakeTokens)(nil)

func newSurface() *notify.Surface {
	return notify.New(notify.WithScheduler(func(time.Duration, func()) {}))
}

func TestCheck_DeniedWithoutToken(t *testing.T) {
	t.Parallel()
	var shown []notify.Message
	s := newSurface()
	s.Watch(func(m *notify.Message) {
		if m != nil {
			shown = append(shown, *m)
		}
	})
	g := New(&fakeTokens{}, s)

	d := g.Check(context.Background())
	if d.Allowed || d.Redirect != LoginPath {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if len(shown) != 1 {
		t.Fatalf("want exactly one notice, got %d", len(shown))
	}
	if shown[0].Text != DeniedMessage || shown[0].Kind != notify.KindInfo {
		t.Fatalf("unexpected notice: %+v", shown[0])
	}
}

func TestCheck_AllowedWithToken(t *testing.T) {
	t.Parallel()
	s := newSurface()
	g := New(&fakeTokens{token: "t"}, s)

	d := g.Check(context.Background())
	if !d.Allowed || d.Redirect != "" {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("no notice expected when allowed")
	}
}

func TestCheck_NeverCached(t *testing.T) {
	t.Parallel()
	tok := &fakeTokens{token: "t"}
	g := New(tok, newSurface())

	if !g.Check(context.Background()).Allowed {
		t.Fatalf("first check must pass")
	}
	tok.token = ""
	if g.Check(context.Background()).Allowed {
		t.Fatalf("second check must see the cleared token")
	}
	if tok.calls != 2 {
		t.Fatalf("token source consulted %d times, want 2", tok.calls)
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	tok := &fakeTokens{}
	g := New(tok, newSurface())
	reached := false
	h := g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if reached || rec.Code != http.StatusFound || rec.Header().Get("Location") != LoginPath {
		t.Fatalf("want redirect to login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	tok.token = "t"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if !reached {
		t.Fatalf("handler not reached with token")
	}
}

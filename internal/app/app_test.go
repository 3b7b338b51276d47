package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/attendance-client/internal/config"
	"github.com/and161185/attendance-client/internal/guard"
	"github.com/and161185/attendance-client/internal/notify"
	"github.com/and161185/attendance-client/internal/router"
	"github.com/and161185/attendance-client/internal/session"
	"github.com/and161185/attendance-client/internal/storage"
)

var now = time.Unix(1_700_000_000, 0)

func token(exp int64) string {
	seg := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"sub":"5","exp":%d}`, exp)))
	return "eyJhbGciOiJIUzI1NiJ9." + seg + ".sig"
}

// fakeService is a tiny stand-in for the attendance REST service.
type fakeService struct {
	token        string
	rejectTokens atomic.Bool
	lastAuth     atomic.Value
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.lastAuth.Store(r.Header.Get("Authorization"))
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/api/auth/login":
		b, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(b), `"password":"secret"`) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
			return
		}
		_, _ = fmt.Fprintf(w, `{"accessToken":%q,"role":"instructor","user":{"id":5,"email":"t@school"}}`, f.token)
	case f.rejectTokens.Load() || r.Header.Get("Authorization") != "Bearer "+f.token:
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Token expired"}`)
	case r.URL.Path == "/api/classes/instructor/5":
		_, _ = io.WriteString(w, `{"classes":[{"id":1,"name":"Math"}]}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newApp(t *testing.T, srv *httptest.Server, st storage.Store) *App {
	t.Helper()
	cfg := config.FromEnv()
	cfg.APIBaseURL = srv.URL + "/api"
	cfg.HTTP.RateLimit = 0
	cfg.UI.DefaultSessionDuration = 60
	a, err := New(context.Background(), cfg, zaptest.NewLogger(t),
		WithStore(st),
		WithTransport(srv.Client().Transport),
		WithNotifyOptions(notify.WithScheduler(func(time.Duration, func()) {})),
		WithSessionOptions(session.WithClock(func() time.Time { return now })),
	)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestScenario_LoginDashboardThenForcedLogout(t *testing.T) {
	t.Parallel()
	fs := &fakeService{token: token(now.Unix() + 3600)}
	srv := httptest.NewServer(fs)
	defer srv.Close()
	st := storage.NewMemory()
	a := newApp(t, srv, st)
	ctx := context.Background()

	loc, err := a.Router.Navigate(ctx, "/dashboard")
	require.NoError(t, err)
	require.Equal(t, router.RouteLogin, loc.Route)
	m, _ := a.Notices.Current()
	require.Equal(t, guard.DeniedMessage, m.Text)

	_, err = a.Sessions.Login(ctx, "t@school", "secret")
	require.NoError(t, err)
	user, err := st.Get(ctx, storage.KeyUser)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":5,"email":"t@school","role":"instructor"}`, user)
	require.Equal(t, "", fs.lastAuth.Load(), "no credential before login")

	loc, err = a.Router.Navigate(ctx, "/dashboard")
	require.NoError(t, err)
	require.Equal(t, router.RouteDashboard, loc.Route)

	d, err := a.Attendance.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, "Instructor Dashboard", d.Title)
	require.Len(t, d.Classes, 1)
	require.Equal(t, "Bearer "+fs.token, fs.lastAuth.Load())
	require.False(t, a.Busy.Busy())

	fs.rejectTokens.Store(true)
	_, err = a.Attendance.Dashboard(ctx)
	require.Error(t, err)

	_, ok := a.Sessions.Token(ctx)
	require.False(t, ok, "401 must end the session")
	require.Zero(t, st.Len())
	require.Equal(t, router.RouteLogin, a.Router.Current().Route)
	m, _ = a.Notices.Current()
	require.Equal(t, "Token expired", m.Text)
	require.Equal(t, notify.KindError, m.Kind)
	require.False(t, a.Busy.Busy())
}

func TestScenario_BadPasswordKeepsSession(t *testing.T) {
	t.Parallel()
	fs := &fakeService{token: token(now.Unix() + 3600)}
	srv := httptest.NewServer(fs)
	defer srv.Close()
	st := storage.NewMemory()
	a := newApp(t, srv, st)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, storage.KeyAccessToken, "previous"))
	_, err := a.Sessions.Login(ctx, "t@school", "wrong")
	require.Error(t, err)

	tok, ok := a.Sessions.Token(ctx)
	require.True(t, ok, "a 401 from the login endpoint must not log out")
	require.Equal(t, "previous", tok)
	m, _ := a.Notices.Current()
	require.Equal(t, "Invalid credentials", m.Text)
}

func TestScenario_ExpiredTokenIsGuarded(t *testing.T) {
	t.Parallel()
	fs := &fakeService{token: token(now.Unix() - 1)}
	srv := httptest.NewServer(fs)
	defer srv.Close()
	st := storage.NewMemory()
	a := newApp(t, srv, st)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, storage.KeyAccessToken, fs.token))
	require.NoError(t, st.Set(ctx, storage.KeyRole, "instructor"))

	loc, err := a.Router.Navigate(ctx, router.ClassPath(1))
	require.NoError(t, err)
	require.Equal(t, router.RouteLogin, loc.Route)
	require.Zero(t, st.Len(), "expired session purged")
	m, _ := a.Notices.Current()
	require.Equal(t, notify.KindInfo, m.Kind)
}

func TestNew_StoreSelection(t *testing.T) {
	t.Parallel()
	cfg := config.FromEnv()

	cfg.State = config.StateConfig{Store: config.StoreFile, Dir: t.TempDir(), Passphrase: "pw"}
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	_, sealed := a.Store.(*storage.Sealed)
	require.True(t, sealed)
	a.Close()
	a.Close()

	cfg.State = config.StateConfig{Store: config.StoreMemory}
	a, err = New(context.Background(), cfg, nil)
	require.NoError(t, err)
	_, mem := a.Store.(*storage.Memory)
	require.True(t, mem)

	cfg.State = config.StateConfig{Store: "floppy"}
	_, err = New(context.Background(), cfg, nil)
	require.Error(t, err)

	cfg.State = config.StateConfig{Store: config.StorePostgres}
	_, err = New(context.Background(), cfg, nil)
	require.Error(t, err)
}

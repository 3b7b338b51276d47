package router

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/attendance-client/internal/guard"
	"github.com/and161185/attendance-client/internal/notify"
)

type tokens struct{ token string }

func (t *tokens) Token(context.Context) (string, bool) { return t.token, t.token != "" }

func newRouter(t *testing.T, tok *tokens) (*Router, *notify.Surface) {
	t.Helper()
	s := notify.New(notify.WithScheduler(func(time.Duration, func()) {}))
	g := guard.New(tok, s)
	return New(g.Middleware, zaptest.NewLogger(t)), s
}

func TestNavigate_RootAndUnknownGoToLogin(t *testing.T) {
	t.Parallel()
	rt, s := newRouter(t, &tokens{token: "t"})

	for _, p := range []string{"/", "/nope", "/dashboard/class"} {
		loc, err := rt.Navigate(context.Background(), p)
		require.NoError(t, err)
		require.Equal(t, RouteLogin, loc.Route, p)
		require.Equal(t, LoginPath, loc.Path)
	}
	_, shown := s.Current()
	require.False(t, shown, "public redirects must not notify")
}

func TestNavigate_GuardedWithoutToken(t *testing.T) {
	t.Parallel()
	rt, s := newRouter(t, &tokens{})

	loc, err := rt.Navigate(context.Background(), "/dashboard")
	require.NoError(t, err)
	require.Equal(t, RouteLogin, loc.Route)

	m, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, guard.DeniedMessage, m.Text)
	require.Equal(t, notify.KindInfo, m.Kind)
	require.Equal(t, loc, rt.Current())
}

func TestNavigate_ParamsAndQuery(t *testing.T) {
	t.Parallel()
	rt, _ := newRouter(t, &tokens{token: "t"})

	cases := []struct {
		path   string
		route  string
		params map[string]string
	}{
		{"/dashboard", RouteDashboard, map[string]string{}},
		{ClassPath(3), RouteClass, map[string]string{"classId": "3"}},
		{SessionPath(3, 9), RouteSession, map[string]string{"classId": "3", "sessionId": "9"}},
		{TakeAttendancePath(3, 9), RouteTakeAttendance, map[string]string{"classId": "3", "sessionId": "9"}},
		{StudentPath(3, 12), RouteStudent, map[string]string{"classId": "3", "studentId": "12"}},
	}
	for _, tc := range cases {
		loc, err := rt.Navigate(context.Background(), tc.path+"?name=Math")
		require.NoError(t, err)
		require.Equal(t, tc.route, loc.Route, tc.path)
		require.Equal(t, tc.path, loc.Path)
		require.Equal(t, tc.params, loc.Params)
		require.Equal(t, "Math", loc.Query.Get("name"))
	}
	require.Len(t, rt.History(), len(cases))
}

func TestNavigate_NoGuard(t *testing.T) {
	t.Parallel()
	rt := New(nil, nil)
	loc, err := rt.Navigate(context.Background(), "/dashboard")
	require.NoError(t, err)
	require.Equal(t, RouteDashboard, loc.Route)
}

// Package router resolves client view paths against the route table.
package router

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Route names.
const (
	RouteLogin          = "login"
	RouteDashboard      = "dashboard"
	RouteClass          = "class"
	RouteSession        = "session"
	RouteTakeAttendance = "take-attendance"
	RouteStudent        = "student"
)

// LoginPath is the fallback for unknown paths.
const LoginPath = "/login"

const maxRedirects = 8

// Location is a resolved navigation target.
type Location struct {
	Route  string
	Path   string
	Params map[string]string
	Query  url.Values
}

// Param returns a path parameter or "".
func (l Location) Param(name string) string { return l.Params[name] }

// Router owns the route table and the current location.
type Router struct {
	mux *chi.Mux
	log *zap.Logger

	mu      sync.Mutex
	current Location
	history []Location
}

// New builds the route table. guard runs in front of every dashboard route.
func New(guard func(http.Handler) http.Handler, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	rt := &Router{mux: chi.NewRouter(), log: log}

	rt.mux.Get("/", redirectTo(LoginPath))
	rt.mux.Get("/login", view(RouteLogin))
	rt.mux.Group(func(r chi.Router) {
		if guard != nil {
			r.Use(guard)
		}
		r.Get("/dashboard", view(RouteDashboard))
		r.Get("/dashboard/class/{classId}", view(RouteClass))
		r.Get("/dashboard/class/{classId}/session/{sessionId}", view(RouteSession))
		r.Get("/dashboard/class/{classId}/session/{sessionId}/take-attendance", view(RouteTakeAttendance))
		r.Get("/dashboard/class/{classId}/student/{studentId}", view(RouteStudent))
	})
	rt.mux.NotFound(redirectTo(LoginPath))
	rt.mux.MethodNotAllowed(redirectTo(LoginPath))
	return rt
}

// Navigate resolves target, following redirects issued by the table or the
// guard, and records the final location as current.
func (rt *Router) Navigate(ctx context.Context, target string) (Location, error) {
	for hop := 0; hop < maxRedirects; hop++ {
		u, err := url.Parse(target)
		if err != nil {
			return Location{}, fmt.Errorf("router: parse %q: %w", target, err)
		}
		m := &match{}
		req, err := http.NewRequestWithContext(context.WithValue(ctx, matchKey{}, m), http.MethodGet, u.RequestURI(), nil)
		if err != nil {
			return Location{}, fmt.Errorf("router: %w", err)
		}
		out := &outcome{header: http.Header{}}
		rt.mux.ServeHTTP(out, req)

		if out.status >= 300 && out.status < 400 {
			next := out.header.Get("Location")
			rt.log.Debug("redirect", zap.String("from", u.Path), zap.String("to", next))
			target = next
			continue
		}
		if m.route == "" {
			return Location{}, fmt.Errorf("router: no view for %q", u.Path)
		}
		loc := Location{Route: m.route, Path: u.Path, Params: m.params, Query: u.Query()}
		rt.mu.Lock()
		rt.current = loc
		rt.history = append(rt.history, loc)
		rt.mu.Unlock()
		return loc, nil
	}
	return Location{}, fmt.Errorf("router: too many redirects resolving %q", target)
}

// Current returns the last resolved location.
func (rt *Router) Current() Location {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.current
}

// History returns every location resolved so far, oldest first.
func (rt *Router) History() []Location {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return append([]Location(nil), rt.history...)
}

// ClassPath is the path of a class view.
func ClassPath(classID int64) string {
	return "/dashboard/class/" + strconv.FormatInt(classID, 10)
}

// SessionPath is the path of a session view.
func SessionPath(classID, sessionID int64) string {
	return ClassPath(classID) + "/session/" + strconv.FormatInt(sessionID, 10)
}

// TakeAttendancePath is the path of the attendance-taking view.
func TakeAttendancePath(classID, sessionID int64) string {
	return SessionPath(classID, sessionID) + "/take-attendance"
}

// StudentPath is the path of a student's history within a class.
func StudentPath(classID, studentID int64) string {
	return ClassPath(classID) + "/student/" + strconv.FormatInt(studentID, 10)
}

type matchKey struct{}

type match struct {
	route  string
	params map[string]string
}

func view(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, _ := r.Context().Value(matchKey{}).(*match)
		if m == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		m.route = name
		m.params = map[string]string{}
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			for i, k := range rctx.URLParams.Keys {
				if k == "*" {
					continue
				}
				m.params[k] = rctx.URLParams.Values[i]
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}

func redirectTo(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, path, http.StatusFound)
	}
}

// outcome is a minimal ResponseWriter; only status and headers matter.
type outcome struct {
	header http.Header
	status int
}

func (o *outcome) Header() http.Header { return o.header }

func (o *outcome) Write(b []byte) (int, error) {
	if o.status == 0 {
		o.status = http.StatusOK
	}
	return len(b), nil
}

func (o *outcome) WriteHeader(status int) {
	if o.status == 0 {
		o.status = status
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/and161185/attendance-client/internal/app"
	"github.com/and161185/attendance-client/internal/model"
	"github.com/and161185/attendance-client/internal/router"
)

var (
	errUnknownCommand = errors.New("unknown command")
	errLoginRequired  = errors.New("login required")
)

// run dispatches a subcommand against a wired application.
func run(ctx context.Context, a *app.App, cmd string, args []string) error {
	switch cmd {
	case "login":
		return cmdLogin(ctx, a, args)
	case "register":
		return cmdRegister(ctx, a, args)
	case "logout":
		a.Sessions.Logout(ctx)
		if _, err := a.Router.Navigate(ctx, router.LoginPath); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "ok")
		return nil
	case "whoami":
		return cmdWhoami(ctx, a)
	case "open":
		if len(args) != 1 {
			return errors.New("need <path>")
		}
		loc, err := a.Router.Navigate(ctx, args[0])
		if err != nil {
			return err
		}
		printJSON(loc)
		return nil
	case "classes":
		return cmdClasses(ctx, a)
	case "sessions":
		return cmdSessions(ctx, a, args)
	case "students":
		return cmdStudents(ctx, a, args)
	case "summary":
		return cmdSummary(ctx, a, args)
	case "add-session":
		return cmdAddSession(ctx, a, args)
	case "mark":
		return cmdMark(ctx, a, args)
	case "session-attendance":
		return cmdSessionAttendance(ctx, a, args)
	case "history":
		return cmdHistory(ctx, a, args)
	}
	return fmt.Errorf("%w: %s", errUnknownCommand, cmd)
}

// enter navigates to a view and fails when the guard sends us to login.
func enter(ctx context.Context, a *app.App, path string) (router.Location, error) {
	loc, err := a.Router.Navigate(ctx, path)
	if err != nil {
		return loc, err
	}
	if loc.Route == router.RouteLogin {
		return loc, errLoginRequired
	}
	return loc, nil
}

func cmdLogin(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := a.Sessions.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if _, err := a.Router.Navigate(ctx, "/dashboard"); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "ok role=%s\n", s.Role)
	return nil
}

func cmdRegister(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	role := fs.String("role", model.RoleStudent, "student|instructor")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := a.Sessions.Register(ctx, *email, *password, *role)
	if err != nil {
		return err
	}
	if s.AccessToken == "" {
		fmt.Fprintln(stdout, "registered; log in to continue")
		return nil
	}
	fmt.Fprintf(stdout, "ok role=%s\n", s.Role)
	return nil
}

func cmdWhoami(ctx context.Context, a *app.App) error {
	if _, ok := a.Sessions.Token(ctx); !ok {
		return errLoginRequired
	}
	role, _ := a.Sessions.Role(ctx)
	user, _ := a.Sessions.User(ctx)
	printJSON(struct {
		Role     string         `json:"role"`
		Identity any            `json:"identity"`
		User     map[string]any `json:"user,omitempty"`
	}{role, user.Identity(role), user})
	return nil
}

func cmdClasses(ctx context.Context, a *app.App) error {
	if _, err := enter(ctx, a, "/dashboard"); err != nil {
		return err
	}
	d, err := a.Attendance.Dashboard(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, d.Title)
	if len(d.Classes) == 0 {
		fmt.Fprintln(stdout, d.EmptyMessage)
		return nil
	}
	printJSON(d.Classes)
	return nil
}

func cmdSessions(ctx context.Context, a *app.App, args []string) error {
	ids, err := parseIDs("sessions", args, "class")
	if err != nil {
		return err
	}
	if _, err := enter(ctx, a, router.ClassPath(ids["class"])); err != nil {
		return err
	}
	sessions, err := a.Attendance.ClassSessions(ctx, ids["class"])
	if err != nil {
		return err
	}
	printJSON(sessions)
	return nil
}

func cmdStudents(ctx context.Context, a *app.App, args []string) error {
	ids, err := parseIDs("students", args, "class")
	if err != nil {
		return err
	}
	if _, err := enter(ctx, a, router.ClassPath(ids["class"])); err != nil {
		return err
	}
	students, err := a.Attendance.ClassStudents(ctx, ids["class"])
	if err != nil {
		return err
	}
	printJSON(students)
	return nil
}

func cmdSummary(ctx context.Context, a *app.App, args []string) error {
	ids, err := parseIDs("summary", args, "class")
	if err != nil {
		return err
	}
	if _, err := enter(ctx, a, router.ClassPath(ids["class"])); err != nil {
		return err
	}
	sum, err := a.Attendance.AttendanceSummary(ctx, ids["class"])
	if err != nil {
		return err
	}
	printJSON(sum)
	return nil
}

func cmdAddSession(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("add-session", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	classID := fs.Int64("class", 0, "class id")
	name := fs.String("name", "", "session name")
	desc := fs.String("description", "", "description")
	date := fs.String("date", "", "session date (YYYY-MM-DD)")
	start := fs.String("time", "", "start time (HH:MM)")
	duration := fs.Int("duration", 0, "duration in minutes (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := enter(ctx, a, router.ClassPath(*classID)); err != nil {
		return err
	}
	res, err := a.Attendance.AddSession(ctx, model.AddSessionRequest{
		ClassID:     *classID,
		Name:        *name,
		Description: *desc,
		SessionDate: *date,
		Duration:    *duration,
		StartTime:   *start,
	})
	if err != nil {
		return err
	}
	if _, err := enter(ctx, a, router.TakeAttendancePath(*classID, res.SessionID)); err != nil {
		return err
	}
	printJSON(res)
	return nil
}

func cmdMark(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("mark", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	classID := fs.Int64("class", 0, "class id")
	sessionID := fs.Int64("session", 0, "session id")
	present := fs.String("present", "", "comma-separated ids of present students")
	if err := fs.Parse(args); err != nil {
		return err
	}
	presentIDs, err := parseIDList(*present)
	if err != nil {
		return err
	}
	if _, err := enter(ctx, a, router.TakeAttendancePath(*classID, *sessionID)); err != nil {
		return err
	}
	students, err := a.Attendance.ClassStudents(ctx, *classID)
	if err != nil {
		return err
	}
	res, err := a.Attendance.MarkAttendance(ctx, *sessionID, students, presentIDs)
	if err != nil {
		return err
	}
	if _, err := enter(ctx, a, router.SessionPath(*classID, *sessionID)); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s. Updated records: %d\n", res.Message, res.InsertedOrUpdated)
	return nil
}

func cmdSessionAttendance(ctx context.Context, a *app.App, args []string) error {
	ids, err := parseIDs("session-attendance", args, "class", "session")
	if err != nil {
		return err
	}
	if _, err := enter(ctx, a, router.SessionPath(ids["class"], ids["session"])); err != nil {
		return err
	}
	res, err := a.Attendance.SessionAttendance(ctx, ids["session"])
	if err != nil {
		return err
	}
	printJSON(res)
	return nil
}

func cmdHistory(ctx context.Context, a *app.App, args []string) error {
	ids, err := parseIDs("history", args, "class", "student")
	if err != nil {
		return err
	}
	if _, err := enter(ctx, a, router.StudentPath(ids["class"], ids["student"])); err != nil {
		return err
	}
	h, err := a.Attendance.StudentHistory(ctx, ids["class"], ids["student"])
	if err != nil {
		return err
	}
	printJSON(h)
	return nil
}

// parseIDs parses required positive int64 flags.
func parseIDs(name string, args []string, flags ...string) (map[string]int64, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	vals := make(map[string]*int64, len(flags))
	for _, f := range flags {
		vals[f] = fs.Int64(f, 0, f+" id")
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(flags))
	for _, f := range flags {
		if *vals[f] <= 0 {
			return nil, fmt.Errorf("need -%s", f)
		}
		out[f] = *vals[f]
	}
	return out, nil
}

func parseIDList(s string) ([]int64, error) {
	var out []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", part, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

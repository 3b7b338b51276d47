// Package api is the typed REST client of the attendance service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/and161185/attendance-client/internal/errs"
	"github.com/and161185/attendance-client/internal/model"
)

// Error is a non-2xx response from the service.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
}

// Unwrap maps well-known statuses onto sentinels.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return errs.ErrUnauthorized
	case http.StatusNotFound:
		return errs.ErrNotFound
	}
	return nil
}

// Client talks to {base}/... over hc. hc's transport is expected to be the request pipeline.
type Client struct {
	base string
	hc   *http.Client
}

// New constructs a Client. A nil hc means http.DefaultClient.
func New(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(base, "/"), hc: hc}
}

// Login posts credentials to /auth/login.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.AuthPayload, error) {
	var out model.AuthPayload
	err := c.do(ctx, http.MethodPost, "/auth/login", req, &out)
	return out, err
}

// Register posts a new account to /auth/register.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.AuthPayload, error) {
	var out model.AuthPayload
	err := c.do(ctx, http.MethodPost, "/auth/register", req, &out)
	return out, err
}

// User fetches a user profile.
func (c *Client) User(ctx context.Context, userID string) (model.UserProfileResponse, error) {
	var out model.UserProfileResponse
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID), nil, &out)
	return out, err
}

// InstructorClasses lists the classes taught by an instructor.
func (c *Client) InstructorClasses(ctx context.Context, instructorID string) ([]model.ClassItem, error) {
	var out model.ClassListResponse
	err := c.do(ctx, http.MethodGet, "/classes/instructor/"+url.PathEscape(instructorID), nil, &out)
	return out.Classes, err
}

// StudentClasses lists the classes a student is enrolled in.
func (c *Client) StudentClasses(ctx context.Context, studentID string) ([]model.ClassItem, error) {
	var out model.ClassListResponse
	err := c.do(ctx, http.MethodGet, "/classes/student/"+url.PathEscape(studentID), nil, &out)
	return out.Classes, err
}

// Sessions lists the sessions of a class.
func (c *Client) Sessions(ctx context.Context, classID int64) ([]model.SessionItem, error) {
	var out model.SessionListResponse
	err := c.do(ctx, http.MethodGet, "/sessions/"+id(classID), nil, &out)
	return out.Sessions, err
}

// AddSession creates a session.
func (c *Client) AddSession(ctx context.Context, req model.AddSessionRequest) (model.AddSessionResponse, error) {
	var out model.AddSessionResponse
	err := c.do(ctx, http.MethodPost, "/sessions", req, &out)
	return out, err
}

// ClassStudents lists the students of a class.
func (c *Client) ClassStudents(ctx context.Context, classID int64) ([]model.ClassStudentItem, error) {
	var out model.ClassStudentsResponse
	err := c.do(ctx, http.MethodGet, "/classes/"+id(classID)+"/students", nil, &out)
	return out.Students, err
}

// AttendanceSummary fetches per-student attendance totals of a class.
func (c *Client) AttendanceSummary(ctx context.Context, classID int64) (model.ClassAttendanceSummaryResponse, error) {
	var out model.ClassAttendanceSummaryResponse
	err := c.do(ctx, http.MethodGet, "/classes/"+id(classID)+"/attendance-summary", nil, &out)
	return out, err
}

// BulkAttendance upserts the marks of one session.
func (c *Client) BulkAttendance(ctx context.Context, req model.BulkAttendanceRequest) (model.BulkAttendanceResponse, error) {
	var out model.BulkAttendanceResponse
	err := c.do(ctx, http.MethodPost, "/attendance/bulk", req, &out)
	return out, err
}

// SessionAttendance fetches who attended a session.
func (c *Client) SessionAttendance(ctx context.Context, sessionID int64) (model.SessionAttendanceSummaryResponse, error) {
	var out model.SessionAttendanceSummaryResponse
	err := c.do(ctx, http.MethodGet, "/attendance/session/"+id(sessionID), nil, &out)
	return out, err
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	e := &Error{Status: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var er model.ErrorResponse
	if json.Unmarshal(b, &er) == nil {
		e.Message = er.Message
	}
	return e
}

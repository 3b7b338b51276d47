// Package service contains the attendance use cases built on the REST client and the local session.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/and161185/attendance-client/internal/errs"
	"github.com/and161185/attendance-client/internal/model"
	"github.com/and161185/attendance-client/internal/session"
)

// Backend is the subset of the REST client the service calls.
type Backend interface {
	InstructorClasses(ctx context.Context, instructorID string) ([]model.ClassItem, error)
	StudentClasses(ctx context.Context, studentID string) ([]model.ClassItem, error)
	Sessions(ctx context.Context, classID int64) ([]model.SessionItem, error)
	AddSession(ctx context.Context, req model.AddSessionRequest) (model.AddSessionResponse, error)
	ClassStudents(ctx context.Context, classID int64) ([]model.ClassStudentItem, error)
	AttendanceSummary(ctx context.Context, classID int64) (model.ClassAttendanceSummaryResponse, error)
	BulkAttendance(ctx context.Context, req model.BulkAttendanceRequest) (model.BulkAttendanceResponse, error)
	SessionAttendance(ctx context.Context, sessionID int64) (model.SessionAttendanceSummaryResponse, error)
}

// Identity exposes who is signed in.
type Identity interface {
	Role(ctx context.Context) (string, bool)
	User(ctx context.Context) (session.Profile, bool)
}

// AttendanceService defines the views' data operations.
type AttendanceService interface {
	// Dashboard loads the class list for the signed-in user.
	Dashboard(ctx context.Context) (Dashboard, error)
	// ClassSessions lists a class's sessions, newest first.
	ClassSessions(ctx context.Context, classID int64) ([]model.SessionItem, error)
	// ClassStudents lists a class's students.
	ClassStudents(ctx context.Context, classID int64) ([]model.ClassStudentItem, error)
	// AttendanceSummary returns per-student totals of a class.
	AttendanceSummary(ctx context.Context, classID int64) (model.ClassAttendanceSummaryResponse, error)
	// SessionAttendance returns who attended a session.
	SessionAttendance(ctx context.Context, sessionID int64) (model.SessionAttendanceSummaryResponse, error)
	// AddSession creates a session in a class.
	AddSession(ctx context.Context, req model.AddSessionRequest) (model.AddSessionResponse, error)
	// MarkAttendance submits present/absent marks for a session.
	MarkAttendance(ctx context.Context, sessionID int64, students []model.ClassStudentItem, presentIDs []int64) (model.BulkAttendanceResponse, error)
	// StudentHistory splits a class's sessions into attended and missed for one student.
	StudentHistory(ctx context.Context, classID, studentID int64) (StudentHistory, error)
}

// Dashboard is the landing view's data.
type Dashboard struct {
	Identity     session.Identity
	Title        string
	EmptyMessage string
	// Source is the role whose class list was loaded, or "" when none was.
	Source  string
	Classes []model.ClassItem
}

// StudentHistory is one student's record within a class.
type StudentHistory struct {
	ClassID   int64
	StudentID int64
	// Summary is nil when the class summary did not list the student.
	Summary  *model.ClassAttendanceSummaryStudent
	Fullname string
	Attended []model.SessionItem
	Missed   []model.SessionItem
}

// DefaultStudentName is used when the summary does not name the student.
const DefaultStudentName = "Student"

type AttendanceServiceImpl struct {
	api             Backend
	who             Identity
	defaultDuration int
	log             *zap.Logger
}

// NewAttendanceService constructs AttendanceService. defaultDuration is in minutes.
func NewAttendanceService(api Backend, who Identity, defaultDuration int, log *zap.Logger) *AttendanceServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AttendanceServiceImpl{api: api, who: who, defaultDuration: defaultDuration, log: log}
}

// Dashboard prefers the role's own class list and falls back to the other
// role's list once when the first is unavailable or empty.
func (s *AttendanceServiceImpl) Dashboard(ctx context.Context) (Dashboard, error) {
	prof, _ := s.who.User(ctx)
	stored, _ := s.who.Role(ctx)
	id := prof.Identity(stored)

	d := Dashboard{Identity: id, Title: "Student Dashboard", EmptyMessage: "No classes yet. Join a class to get started."}
	if id.Role == model.RoleInstructor {
		d.Title = "Instructor Dashboard"
		d.EmptyMessage = "No classes yet. Add your first class."
	}

	var err error
	switch {
	case id.Role == model.RoleInstructor || (id.InstructorID != "" && id.StudentID == ""):
		err = s.loadClasses(ctx, &d, model.RoleInstructor, true)
	case id.Role == model.RoleStudent || id.StudentID != "":
		err = s.loadClasses(ctx, &d, model.RoleStudent, true)
	}
	return d, err
}

func (s *AttendanceServiceImpl) loadClasses(ctx context.Context, d *Dashboard, role string, fallback bool) error {
	own, other := d.Identity.StudentID, d.Identity.InstructorID
	fetch, otherRole := s.api.StudentClasses, model.RoleInstructor
	if role == model.RoleInstructor {
		own, other = other, own
		fetch, otherRole = s.api.InstructorClasses, model.RoleStudent
	}
	canFallback := fallback && other != ""

	if own == "" {
		if canFallback {
			return s.loadClasses(ctx, d, otherRole, false)
		}
		return nil
	}

	classes, err := fetch(ctx, own)
	if err != nil {
		s.log.Debug("dashboard classes", zap.String("role", role), zap.Error(err))
		if canFallback {
			return s.loadClasses(ctx, d, otherRole, false)
		}
		return err
	}
	if len(classes) == 0 && canFallback {
		return s.loadClasses(ctx, d, otherRole, false)
	}
	d.Source = role
	d.Classes = classes
	return nil
}

func (s *AttendanceServiceImpl) ClassSessions(ctx context.Context, classID int64) ([]model.SessionItem, error) {
	if classID <= 0 {
		return nil, invalid("invalid class id")
	}
	sessions, err := s.api.Sessions(ctx, classID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessionTime(sessions[i]).After(sessionTime(sessions[j]))
	})
	return sessions, nil
}

func (s *AttendanceServiceImpl) ClassStudents(ctx context.Context, classID int64) ([]model.ClassStudentItem, error) {
	if classID <= 0 {
		return nil, invalid("invalid class id")
	}
	return s.api.ClassStudents(ctx, classID)
}

func (s *AttendanceServiceImpl) AttendanceSummary(ctx context.Context, classID int64) (model.ClassAttendanceSummaryResponse, error) {
	if classID <= 0 {
		return model.ClassAttendanceSummaryResponse{}, invalid("invalid class id")
	}
	return s.api.AttendanceSummary(ctx, classID)
}

func (s *AttendanceServiceImpl) SessionAttendance(ctx context.Context, sessionID int64) (model.SessionAttendanceSummaryResponse, error) {
	if sessionID <= 0 {
		return model.SessionAttendanceSummaryResponse{}, invalid("invalid session id")
	}
	return s.api.SessionAttendance(ctx, sessionID)
}

// AddSession fills in the default duration when none is given.
func (s *AttendanceServiceImpl) AddSession(ctx context.Context, req model.AddSessionRequest) (model.AddSessionResponse, error) {
	if req.ClassID <= 0 {
		return model.AddSessionResponse{}, invalid("invalid class id")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.SessionDate == "" {
		return model.AddSessionResponse{}, invalid("session name and date are required")
	}
	if req.Duration <= 0 {
		req.Duration = s.defaultDuration
	}
	return s.api.AddSession(ctx, req)
}

// MarkAttendance marks every student in presentIDs PRESENT and the rest ABSENT.
func (s *AttendanceServiceImpl) MarkAttendance(ctx context.Context, sessionID int64, students []model.ClassStudentItem, presentIDs []int64) (model.BulkAttendanceResponse, error) {
	if sessionID <= 0 {
		return model.BulkAttendanceResponse{}, invalid("invalid or missing session id")
	}
	present := make(map[int64]bool, len(presentIDs))
	for _, id := range presentIDs {
		present[id] = true
	}

	req := model.BulkAttendanceRequest{SessionID: sessionID, Attendance: make([]model.AttendanceMark, 0, len(students))}
	var absent []model.AttendanceMark
	for _, st := range students {
		if present[st.ID] {
			req.Attendance = append(req.Attendance, model.AttendanceMark{StudentID: st.ID, Status: model.StatusPresent})
			continue
		}
		absent = append(absent, model.AttendanceMark{StudentID: st.ID, Status: model.StatusAbsent})
	}
	req.Attendance = append(req.Attendance, absent...)
	return s.api.BulkAttendance(ctx, req)
}

// StudentHistory tolerates a failing summary and failing per-session lookups;
// a session whose attendance cannot be read counts as missed.
func (s *AttendanceServiceImpl) StudentHistory(ctx context.Context, classID, studentID int64) (StudentHistory, error) {
	if classID <= 0 {
		return StudentHistory{}, invalid("invalid class id")
	}
	if studentID <= 0 {
		return StudentHistory{}, invalid("invalid student id")
	}
	h := StudentHistory{ClassID: classID, StudentID: studentID, Fullname: DefaultStudentName}

	if sum, err := s.api.AttendanceSummary(ctx, classID); err != nil {
		s.log.Debug("attendance summary", zap.Int64("class_id", classID), zap.Error(err))
	} else {
		for i := range sum.Students {
			if int64(sum.Students[i].StudentID) == studentID {
				st := sum.Students[i]
				h.Summary = &st
				if st.Fullname != "" {
					h.Fullname = st.Fullname
				}
				break
			}
		}
	}

	sessions, err := s.api.Sessions(ctx, classID)
	if err != nil {
		return h, fmt.Errorf("load sessions: %w", err)
	}

	attended := make([]bool, len(sessions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, sess := range sessions {
		g.Go(func() error {
			res, err := s.api.SessionAttendance(gctx, sess.ID)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}
			for _, name := range res.Present {
				if name == h.Fullname {
					attended[i] = true
					break
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return h, err
	}

	for i, sess := range sessions {
		if attended[i] {
			h.Attended = append(h.Attended, sess)
		} else {
			h.Missed = append(h.Missed, sess)
		}
	}
	return h, nil
}

func sessionTime(s model.SessionItem) time.Time {
	if s.SessionDate == nil {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, *s.SessionDate); err == nil {
			return t
		}
	}
	return time.Time{}
}

func invalid(msg string) error {
	return fmt.Errorf("%s: %w", msg, errs.ErrInvalidArgument)
}

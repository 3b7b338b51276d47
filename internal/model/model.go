// Package model defines request/response shapes exchanged with the attendance API.
package model

// Roles the remote service is expected to return. Not enforced locally.
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AuthPayload is the loosely shaped identity response
// ({accessToken?, role?, user?|userInfo?|profile?, ...}).
type AuthPayload map[string]any

// Session is what a successful login/registration leaves behind locally.
type Session struct {
	AccessToken string
	Role        string
	User        map[string]any // nil when the response carried no profile
}

// ErrorResponse is the structured error body returned by the API.
type ErrorResponse struct {
	Message string `json:"message"`
}

// UserProfileResponse is returned by GET /users/{id}.
type UserProfileResponse struct {
	ID      FlexString      `json:"id,omitempty"`
	UserID  FlexString      `json:"userId,omitempty"`
	Role    string          `json:"role,omitempty"`
	Classes []UserClassTile `json:"classes,omitempty"`
}

// UserClassTile is one class entry of a user profile.
type UserClassTile struct {
	Name      string `json:"name,omitempty"`
	ClassName string `json:"className,omitempty"`
	Title     string `json:"title,omitempty"`
}

// ClassItem is a class as listed for an instructor or a student.
type ClassItem struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Subject          *string `json:"subject"`
	InstructorID     int64   `json:"instructor_id"`
	InstructorUserID int64   `json:"instructor_user_id"`
	InstructorName   string  `json:"instructor_name"`
}

// ClassListResponse wraps a class list.
type ClassListResponse struct {
	Classes []ClassItem `json:"classes"`
}

// SessionItem is one class session.
type SessionItem struct {
	ID          int64   `json:"id"`
	ClassID     int64   `json:"class_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	SessionDate *string `json:"session_date"`
	Duration    int     `json:"duration"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
}

// SessionListResponse wraps a session list.
type SessionListResponse struct {
	Sessions []SessionItem `json:"sessions"`
}

// ClassStudentItem is a student enrolled in a class.
type ClassStudentItem struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Fullname string `json:"fullname"`
	PhoneNo  string `json:"phone_no"`
	Email    string `json:"email"`
}

// ClassStudentsResponse wraps a student list.
type ClassStudentsResponse struct {
	Students []ClassStudentItem `json:"students"`
}

// ClassAttendanceSummaryStudent is one row of a class attendance summary.
// Counters arrive either as numbers or numeric strings.
type ClassAttendanceSummaryStudent struct {
	StudentID                   FlexInt   `json:"student_id"`
	Fullname                    string    `json:"fullname"`
	Email                       string    `json:"email"`
	PhoneNo                     string    `json:"phone_no"`
	AttendedSessions            FlexFloat `json:"attended_sessions"`
	TotalSessions               FlexFloat `json:"total_sessions"`
	PresentAttendancePercentage FlexFloat `json:"present_attendance_percentage"`
}

// ClassAttendanceSummaryResponse is returned by GET /classes/{id}/attendance-summary.
type ClassAttendanceSummaryResponse struct {
	ClassID  int64                           `json:"class_id"`
	Students []ClassAttendanceSummaryStudent `json:"students"`
}

// AddSessionRequest is the body of POST /sessions.
type AddSessionRequest struct {
	ClassID     int64  `json:"class_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SessionDate string `json:"session_date"`
	Duration    int    `json:"duration"`
	StartTime   string `json:"start_time,omitempty"`
}

// AddSessionResponse is returned by POST /sessions.
type AddSessionResponse struct {
	Message   string `json:"message"`
	SessionID int64  `json:"session_id"`
}

// AttendanceStatus is the per-student mark of a session.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "PRESENT"
	StatusAbsent  AttendanceStatus = "ABSENT"
	StatusLate    AttendanceStatus = "LATE"
)

// AttendanceMark is one entry of a bulk attendance request.
type AttendanceMark struct {
	StudentID int64            `json:"student_id"`
	Status    AttendanceStatus `json:"status"`
}

// BulkAttendanceRequest is the body of POST /attendance/bulk.
type BulkAttendanceRequest struct {
	SessionID  int64            `json:"session_id"`
	Attendance []AttendanceMark `json:"attendance"`
}

// BulkAttendanceResponse is returned by POST /attendance/bulk.
type BulkAttendanceResponse struct {
	Message           string `json:"message"`
	SessionID         int64  `json:"session_id"`
	InsertedOrUpdated int    `json:"inserted_or_updated"`
}

// SessionAttendanceSummaryResponse is returned by GET /attendance/session/{id}.
type SessionAttendanceSummaryResponse struct {
	SessionID    int64       `json:"session_id"`
	Session      SessionItem `json:"session"`
	Present      []string    `json:"present"`
	Absent       []string    `json:"absent"`
	PresentCount int         `json:"present_count"`
	AbsentCount  int         `json:"absent_count"`
}

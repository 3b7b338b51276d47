package model

import (
	"encoding/json"
	"testing"
)

func TestFlexNumbers_AcceptStringsAndNumbers(t *testing.T) {
	t.Parallel()

	in := `[
		{"student_id": 7, "attended_sessions": "3", "total_sessions": 4, "present_attendance_percentage": "75.00"},
		{"student_id": "8", "attended_sessions": null, "total_sessions": "", "present_attendance_percentage": 0}
	]`
	var rows []ClassAttendanceSummaryStudent
	if err := json.Unmarshal([]byte(in), &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rows[0].StudentID != 7 || rows[0].AttendedSessions != 3 || rows[0].TotalSessions != 4 || rows[0].PresentAttendancePercentage != 75 {
		t.Fatalf("row0 mismatch: %+v", rows[0])
	}
	if rows[1].StudentID != 8 || rows[1].AttendedSessions != 0 || rows[1].TotalSessions != 0 {
		t.Fatalf("row1 mismatch: %+v", rows[1])
	}

	var bad FlexInt
	if err := json.Unmarshal([]byte(`"seven"`), &bad); err == nil {
		t.Fatalf("want error on non-numeric string")
	}
}

func TestFlexString_NumberOrString(t *testing.T) {
	t.Parallel()

	var p UserProfileResponse
	if err := json.Unmarshal([]byte(`{"id": 42, "userId": "u-1", "role": "student"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ID != "42" || p.UserID != "u-1" {
		t.Fatalf("ids mismatch: %+v", p)
	}
	if err := json.Unmarshal([]byte(`{"id": true}`), &p); err == nil {
		t.Fatalf("want error on bool id")
	}
}

package attendance

import (
	"time"

	"classtrack/internal/classroom"
)

// Status is a student's recorded state for one session.
type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusAbsent  Status = "ABSENT"
	StatusLate    Status = "LATE"
	StatusExcused Status = "EXCUSED"
)

// Valid returns true when the status is a supported value.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	default:
		return false
	}
}

// Statuses lists every supported status, in reporting order.
func Statuses() []Status {
	return []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused}
}

// Session is a single scheduled class meeting. Date is "YYYY-MM-DD" and the
// time fields are "HH:MM" wall-clock strings.
type Session struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"classId"`
	Date      string    `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Topic     string    `json:"topic,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Attendance is one student's mark for one session. At most one row exists
// per (session, student) pair.
type Attendance struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	StudentID string    `json:"studentId"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RosterEntry pairs an enrolled student with their mark for a session, if any.
type RosterEntry struct {
	Student    classroom.Student `json:"student"`
	Attendance *Attendance       `json:"attendance,omitempty"`
}

// MarkEntry is one (student, status) pair in a bulk request.
type MarkEntry struct {
	StudentID string `json:"studentId"`
	Status    Status `json:"status"`
	Notes     string `json:"notes,omitempty"`
}

// Summary tallies marks by status across a set of sessions.
type Summary struct {
	TotalSessions int `json:"totalSessions"`
	Present       int `json:"present"`
	Absent        int `json:"absent"`
	Late          int `json:"late"`
	Excused       int `json:"excused"`
}

// add buckets a single status into the summary.
func (s *Summary) add(status Status, n int) {
	switch status {
	case StatusPresent:
		s.Present += n
	case StatusAbsent:
		s.Absent += n
	case StatusLate:
		s.Late += n
	case StatusExcused:
		s.Excused += n
	}
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

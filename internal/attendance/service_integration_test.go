package attendance

import (
	"context"
	"database/sql"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"classtrack/internal/apperr"
	"classtrack/internal/auth"
	"classtrack/internal/classroom"
	"classtrack/internal/metrics"
	"classtrack/internal/testutil"
)

var (
	teacher  = auth.Actor{ID: "t1", Role: auth.RoleTeacher}
	stranger = auth.Actor{ID: "t2", Role: auth.RoleTeacher}
	admin    = auth.Actor{ID: "adm", Role: auth.RoleAdmin}
)

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := NewService(NewRepository(db), classroom.NewRepository(db), nil, 0, time.UTC)
	return svc, db
}

// seedClass creates two teachers, a class for the first with three students,
// and one session.
func seedClass(t *testing.T, db *sql.DB) (classID, sessionID string) {
	t.Helper()
	testutil.CreateTestUser(t, db, "t1", "t1@test.com", "TEACHER")
	testutil.CreateTestUser(t, db, "t2", "t2@test.com", "TEACHER")
	testutil.CreateTestUser(t, db, "adm", "adm@test.com", "ADMIN")
	testutil.CreateTestClass(t, db, "c1", "TC-1", "t1")
	testutil.CreateTestStudent(t, db, "s1", "John", "Doe", "c1")
	testutil.CreateTestStudent(t, db, "s2", "Ada", "Byron", "c1")
	testutil.CreateTestStudent(t, db, "s3", "Mary", "Able", "c1")
	testutil.CreateTestSession(t, db, "x1", "c1", "2024-01-10", "09:00", "10:00")
	return "c1", "x1"
}

func TestMarkUpsertKeepsOneRecord(t *testing.T) {
	svc, db := newTestService(t)
	_, sessionID := seedClass(t, db)
	ctx := context.Background()

	first, err := svc.Mark(ctx, teacher, sessionID, "s1", StatusPresent, "On time")
	if err != nil {
		t.Fatalf("first mark failed: %v", err)
	}
	if first.Status != StatusPresent {
		t.Errorf("status = %q, want PRESENT", first.Status)
	}

	second, err := svc.Mark(ctx, teacher, sessionID, "s1", StatusLate, "Arrived 10 minutes late")
	if err != nil {
		t.Fatalf("second mark failed: %v", err)
	}
	if second.Status != StatusLate {
		t.Errorf("status = %q, want LATE", second.Status)
	}
	if second.ID != first.ID {
		t.Errorf("upsert created a new record: %q vs %q", second.ID, first.ID)
	}
	if n := testutil.CountRows(t, db, "attendance", "session_id = $1 AND student_id = $2", sessionID, "s1"); n != 1 {
		t.Errorf("attendance rows = %d, want 1", n)
	}
}

func TestMarkValidation(t *testing.T) {
	svc, db := newTestService(t)
	_, sessionID := seedClass(t, db)
	ctx := context.Background()

	if _, err := svc.Mark(ctx, teacher, sessionID, "s1", "INVALID_STATUS", ""); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("invalid status: got %v", err)
	}
	if _, err := svc.Mark(ctx, teacher, "", "s1", StatusPresent, ""); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("missing sessionId: got %v", err)
	}
	if _, err := svc.Mark(ctx, teacher, "no-such", "s1", StatusPresent, ""); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("unknown session: got %v", err)
	}
	if _, err := svc.Mark(ctx, teacher, sessionID, "no-such", StatusPresent, ""); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("unknown student: got %v", err)
	}

	// A student from someone else's class is a validation failure, not a 404.
	testutil.CreateTestClass(t, db, "c2", "TC-2", "t2")
	testutil.CreateTestStudent(t, db, "other", "Out", "Sider", "c2")
	if _, err := svc.Mark(ctx, teacher, sessionID, "other", StatusPresent, ""); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("outsider student: got %v", err)
	}
}

func TestMarkBulk(t *testing.T) {
	svc, db := newTestService(t)
	_, sessionID := seedClass(t, db)
	ctx := context.Background()

	res, err := svc.MarkBulk(ctx, teacher, sessionID, []MarkEntry{
		{StudentID: "s1", Status: StatusPresent},
		{StudentID: "s2", Status: StatusAbsent, Notes: "sick"},
	})
	if err != nil {
		t.Fatalf("bulk failed: %v", err)
	}
	if res.Count != 2 || len(res.Results) != 2 {
		t.Errorf("count = %d, results = %d, want 2", res.Count, len(res.Results))
	}
	if res.Results[0].StudentID != "s1" || res.Results[1].StudentID != "s2" {
		t.Errorf("results out of order: %+v", res.Results)
	}
	if n := testutil.CountRows(t, db, "attendance", "session_id = $1", sessionID); n != 2 {
		t.Errorf("attendance rows = %d, want 2", n)
	}
}

func TestMarkBulkIsAtomic(t *testing.T) {
	svc, db := newTestService(t)
	_, sessionID := seedClass(t, db)
	testutil.CreateTestClass(t, db, "c2", "TC-2", "t2")
	testutil.CreateTestStudent(t, db, "other", "Out", "Sider", "c2")
	ctx := context.Background()

	_, err := svc.MarkBulk(ctx, teacher, sessionID, []MarkEntry{
		{StudentID: "s1", Status: StatusPresent},
		{StudentID: "other", Status: StatusPresent},
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if n := testutil.CountRows(t, db, "attendance", "session_id = $1", sessionID); n != 0 {
		t.Errorf("attendance rows = %d, want 0 after rollback", n)
	}
}

func TestRolledBackBulkDoesNotCountMarks(t *testing.T) {
	svc, db := newTestService(t)
	_, sessionID := seedClass(t, db)
	ctx := context.Background()

	before := promtestutil.ToFloat64(metrics.MarksRecorded.WithLabelValues(string(StatusPresent)))
	_, err := svc.MarkBulk(ctx, teacher, sessionID, []MarkEntry{
		{StudentID: "s1", Status: StatusPresent},
		{StudentID: "no-such", Status: StatusPresent},
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	after := promtestutil.ToFloat64(metrics.MarksRecorded.WithLabelValues(string(StatusPresent)))
	if after != before {
		t.Errorf("marks counter moved from %v to %v on a rolled-back bulk", before, after)
	}
}

func TestQuickMark(t *testing.T) {
	svc, db := newTestService(t)
	classID, _ := seedClass(t, db)
	svc.now = func() time.Time { return time.Date(2024, 1, 10, 12, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	res, err := svc.QuickMark(ctx, teacher, QuickMarkInput{
		ClassID: classID,
		Topic:   "Quick Session",
		Entries: []MarkEntry{{StudentID: "s1", Status: StatusPresent}},
	})
	if err != nil {
		t.Fatalf("quick mark failed: %v", err)
	}
	if res.Session.Date != "2024-01-10" {
		t.Errorf("date = %q, want today", res.Session.Date)
	}
	if res.Session.StartTime != "12:30" || res.Session.EndTime != "12:30" {
		t.Errorf("time window = %q-%q, want 12:30-12:30", res.Session.StartTime, res.Session.EndTime)
	}
	if len(res.Attendances) != 1 || res.Attendances[0].Status != StatusPresent {
		t.Errorf("unexpected attendances: %+v", res.Attendances)
	}
}

func TestQuickMarkRollsBackSession(t *testing.T) {
	svc, db := newTestService(t)
	classID, _ := seedClass(t, db)
	testutil.CreateTestClass(t, db, "c2", "TC-2", "t2")
	testutil.CreateTestStudent(t, db, "other", "Out", "Sider", "c2")
	ctx := context.Background()

	before := testutil.CountRows(t, db, "sessions", "class_id = $1", classID)
	_, err := svc.QuickMark(ctx, teacher, QuickMarkInput{
		ClassID: classID,
		Entries: []MarkEntry{{StudentID: "other", Status: StatusPresent}},
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	after := testutil.CountRows(t, db, "sessions", "class_id = $1", classID)
	if after != before {
		t.Errorf("session persisted despite failed bulk step: %d -> %d", before, after)
	}
}

func TestSessionRoster(t *testing.T) {
	svc, db := newTestService(t)
	_, sessionID := seedClass(t, db)
	ctx := context.Background()

	if _, err := svc.Mark(ctx, teacher, sessionID, "s1", StatusPresent, ""); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	sess, roster, err := svc.SessionRoster(ctx, teacher, sessionID)
	if err != nil {
		t.Fatalf("roster failed: %v", err)
	}
	if sess.ID != sessionID {
		t.Errorf("session id = %q", sess.ID)
	}
	if len(roster) != 3 {
		t.Fatalf("roster size = %d, want 3", len(roster))
	}
	// Ordered by surname: Able, Byron, Doe.
	if roster[0].Student.LastName != "Able" || roster[1].Student.LastName != "Byron" || roster[2].Student.LastName != "Doe" {
		t.Errorf("roster out of order: %v %v %v",
			roster[0].Student.LastName, roster[1].Student.LastName, roster[2].Student.LastName)
	}
	unset := 0
	for _, e := range roster {
		if e.Attendance == nil {
			unset++
		} else if e.Student.ID != "s1" {
			t.Errorf("unexpected mark for %s", e.Student.ID)
		}
	}
	if unset != 2 {
		t.Errorf("unset entries = %d, want 2", unset)
	}
}

func TestListSessions(t *testing.T) {
	svc, db := newTestService(t)
	classID, _ := seedClass(t, db)
	testutil.CreateTestSession(t, db, "x2", classID, "2024-01-12", "09:00", "10:00")
	testutil.CreateTestSession(t, db, "x3", classID, "2024-01-08", "09:00", "10:00")
	ctx := context.Background()

	sessions, err := svc.ListSessions(ctx, teacher, classID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("sessions = %d, want 3", len(sessions))
	}
	if sessions[0].Date != "2024-01-12" || sessions[2].Date != "2024-01-08" {
		t.Errorf("sessions not ordered by date desc: %v %v %v",
			sessions[0].Date, sessions[1].Date, sessions[2].Date)
	}

	if _, err := svc.ListSessions(ctx, teacher, ""); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("missing classId: got %v", err)
	}
}

func TestCreateSession(t *testing.T) {
	svc, db := newTestService(t)
	classID, _ := seedClass(t, db)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, teacher, CreateSessionInput{
		ClassID: classID, Date: "2024-02-01", StartTime: "08:15", EndTime: "09:45", Topic: "Fractions",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if sess.ID == "" || sess.CreatedAt.IsZero() {
		t.Errorf("missing generated fields: %+v", sess)
	}
	if sess.StartTime != "08:15" || sess.Date != "2024-02-01" {
		t.Errorf("unexpected session: %+v", sess)
	}

	_, err = svc.CreateSession(ctx, teacher, CreateSessionInput{
		ClassID: "no-such", Date: "2024-02-01", StartTime: "08:15", EndTime: "09:45",
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("unknown class: got %v", err)
	}
}

func TestTodaySummary(t *testing.T) {
	svc, db := newTestService(t)
	classID, _ := seedClass(t, db)
	svc.now = func() time.Time { return time.Date(2024, 1, 10, 12, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	// The seeded session is dated 2024-01-10; add a later one plus one on
	// another day that must not count.
	testutil.CreateTestSession(t, db, "x2", classID, "2024-01-10", "11:00", "12:00")
	testutil.CreateTestSession(t, db, "old", classID, "2024-01-09", "09:00", "10:00")

	for _, m := range []struct {
		session, student string
		status           Status
	}{
		{"x1", "s1", StatusPresent},
		{"x1", "s2", StatusLate},
		{"x2", "s1", StatusPresent},
		{"x2", "s3", StatusExcused},
		{"old", "s1", StatusAbsent},
	} {
		if _, err := svc.Mark(ctx, teacher, m.session, m.student, m.status, ""); err != nil {
			t.Fatalf("mark %s/%s failed: %v", m.session, m.student, err)
		}
	}

	report, err := svc.TodaySummary(ctx, teacher)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if report.Summary.TotalSessions != 2 || len(report.Sessions) != 2 {
		t.Errorf("totalSessions = %d, sessions = %d, want 2", report.Summary.TotalSessions, len(report.Sessions))
	}
	if report.Sessions[0].StartTime != "09:00" || report.Sessions[1].StartTime != "11:00" {
		t.Errorf("sessions not ordered by start time: %+v", report.Sessions)
	}
	got := report.Summary
	if got.Present != 2 || got.Late != 1 || got.Excused != 1 || got.Absent != 0 {
		t.Errorf("unexpected buckets: %+v", got)
	}
	marksToday := testutil.CountRows(t, db, "attendance", "session_id IN ('x1','x2')")
	if sum := got.Present + got.Absent + got.Late + got.Excused; sum != marksToday {
		t.Errorf("bucket sum %d != marks %d", sum, marksToday)
	}

	// Another teacher sees nothing; an admin sees the same sessions.
	other, err := svc.TodaySummary(ctx, stranger)
	if err != nil {
		t.Fatalf("stranger summary failed: %v", err)
	}
	if other.Summary.TotalSessions != 0 {
		t.Errorf("stranger totalSessions = %d, want 0", other.Summary.TotalSessions)
	}
	all, err := svc.TodaySummary(ctx, admin)
	if err != nil {
		t.Fatalf("admin summary failed: %v", err)
	}
	if all.Summary.TotalSessions != 2 {
		t.Errorf("admin totalSessions = %d, want 2", all.Summary.TotalSessions)
	}
}

func TestOwnershipEnforced(t *testing.T) {
	svc, db := newTestService(t)
	classID, sessionID := seedClass(t, db)
	ctx := context.Background()

	if _, err := svc.ListSessions(ctx, stranger, classID); apperr.KindOf(err) != apperr.KindAccessDenied {
		t.Errorf("ListSessions: got %v", err)
	}
	if _, _, err := svc.SessionRoster(ctx, stranger, sessionID); apperr.KindOf(err) != apperr.KindAccessDenied {
		t.Errorf("SessionRoster: got %v", err)
	}
	if _, err := svc.Mark(ctx, stranger, sessionID, "s1", StatusPresent, ""); apperr.KindOf(err) != apperr.KindAccessDenied {
		t.Errorf("Mark: got %v", err)
	}
	if _, err := svc.MarkBulk(ctx, stranger, sessionID, []MarkEntry{{StudentID: "s1", Status: StatusPresent}}); apperr.KindOf(err) != apperr.KindAccessDenied {
		t.Errorf("MarkBulk: got %v", err)
	}
	if _, err := svc.QuickMark(ctx, stranger, QuickMarkInput{
		ClassID: classID,
		Date:    "2024-01-10", StartTime: "09:00", EndTime: "10:00",
		Entries: []MarkEntry{{StudentID: "s1", Status: StatusPresent}},
	}); apperr.KindOf(err) != apperr.KindAccessDenied {
		t.Errorf("QuickMark: got %v", err)
	}

	// Admin passes the same checks.
	if _, err := svc.Mark(ctx, admin, sessionID, "s1", StatusPresent, ""); err != nil {
		t.Errorf("admin mark failed: %v", err)
	}
}

package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"classtrack/internal/apperr"
	"classtrack/internal/auth"
	"classtrack/internal/classroom"
	"classtrack/internal/metrics"
	"classtrack/internal/store"
)

// Service implements session lifecycle, attendance marking and the same-day
// summary. Every method takes the authenticated actor explicitly and checks
// ownership of the class behind the touched resource before reading or
// writing.
type Service struct {
	repo     *Repository
	classes  *classroom.Repository
	cache    *store.Redis
	cacheTTL time.Duration
	loc      *time.Location
	now      func() time.Time
}

// NewService creates a service. cache may be nil; loc governs what "today"
// means for quick sessions and the daily summary.
func NewService(repo *Repository, classes *classroom.Repository, cache *store.Redis, cacheTTL time.Duration, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:     repo,
		classes:  classes,
		cache:    cache,
		cacheTTL: cacheTTL,
		loc:      loc,
		now:      time.Now,
	}
}

// CreateSessionInput carries the fields for a new session.
type CreateSessionInput struct {
	ClassID   string `json:"classId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Topic     string `json:"topic"`
}

func (in CreateSessionInput) validate() error {
	if in.ClassID == "" {
		return apperr.Validation("Class ID required")
	}
	if in.Date == "" || in.StartTime == "" || in.EndTime == "" {
		return apperr.Validation("date, startTime and endTime required")
	}
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return apperr.Validation("date must be YYYY-MM-DD")
	}
	if _, err := time.Parse(timeLayout, in.StartTime); err != nil {
		return apperr.Validation("startTime must be HH:MM")
	}
	if _, err := time.Parse(timeLayout, in.EndTime); err != nil {
		return apperr.Validation("endTime must be HH:MM")
	}
	return nil
}

// CreateSession persists a new session for a class the actor owns.
func (s *Service) CreateSession(ctx context.Context, actor auth.Actor, in CreateSessionInput) (Session, error) {
	if err := in.validate(); err != nil {
		return Session{}, err
	}
	if _, err := s.ownedClass(ctx, actor, in.ClassID); err != nil {
		return Session{}, err
	}
	sess, err := s.repo.InsertSession(ctx, s.repo.DB(), in.ClassID, in.Date, in.StartTime, in.EndTime, in.Topic)
	if err != nil {
		return Session{}, err
	}
	metrics.SessionsCreated.Inc()
	slog.Info("session created", "session_id", sess.ID, "class_id", sess.ClassID, "date", sess.Date)
	return sess, nil
}

// ListSessions returns a class's sessions, most recent date first.
func (s *Service) ListSessions(ctx context.Context, actor auth.Actor, classID string) ([]Session, error) {
	if classID == "" {
		return nil, apperr.Validation("Class ID required")
	}
	if _, err := s.ownedClass(ctx, actor, classID); err != nil {
		return nil, err
	}
	return s.repo.ListSessions(ctx, classID)
}

// SessionRoster returns a session plus every student in its class, each
// paired with their mark for the session when one exists.
func (s *Service) SessionRoster(ctx context.Context, actor auth.Actor, sessionID string) (Session, []RosterEntry, error) {
	sess, _, err := s.ownedSession(ctx, actor, sessionID)
	if err != nil {
		return Session{}, nil, err
	}
	roster, err := s.repo.Roster(ctx, sess.ID, sess.ClassID)
	if err != nil {
		return Session{}, nil, err
	}
	return sess, roster, nil
}

// Mark upserts one student's status for a session. Calling it again for the
// same pair overwrites the previous mark instead of duplicating it.
func (s *Service) Mark(ctx context.Context, actor auth.Actor, sessionID, studentID string, status Status, notes string) (Attendance, error) {
	if sessionID == "" || studentID == "" {
		return Attendance{}, apperr.Validation("sessionId and studentId required")
	}
	if !status.Valid() {
		return Attendance{}, apperr.Validation("invalid status %q", status)
	}
	sess, cls, err := s.ownedSession(ctx, actor, sessionID)
	if err != nil {
		return Attendance{}, err
	}
	student, err := s.classes.GetStudent(ctx, studentID)
	if err != nil {
		return Attendance{}, err
	}
	if student == nil {
		return Attendance{}, apperr.NotFound("Student")
	}
	if student.ClassID != sess.ClassID {
		return Attendance{}, apperr.Validation("student %s is not enrolled in this class", studentID)
	}

	mark, err := s.repo.UpsertMark(ctx, s.repo.DB(), sess.ID, studentID, status, notes)
	if err != nil {
		return Attendance{}, err
	}
	metrics.MarksRecorded.WithLabelValues(string(status)).Inc()
	s.invalidateSummary(ctx, sess.Date, cls.TeacherID)
	return mark, nil
}

// BulkResult is what a bulk marking call returns.
type BulkResult struct {
	Results []Attendance `json:"attendances"`
	Count   int          `json:"count"`
}

// MarkBulk applies the upsert to each entry inside one transaction. An entry
// referencing a student outside the session's class fails the whole call and
// nothing is persisted.
func (s *Service) MarkBulk(ctx context.Context, actor auth.Actor, sessionID string, entries []MarkEntry) (BulkResult, error) {
	if sessionID == "" {
		return BulkResult{}, apperr.Validation("sessionId required")
	}
	if err := validateEntries(entries); err != nil {
		return BulkResult{}, err
	}
	sess, cls, err := s.ownedSession(ctx, actor, sessionID)
	if err != nil {
		return BulkResult{}, err
	}

	tx, err := s.repo.DB().BeginTx(ctx, nil)
	if err != nil {
		return BulkResult{}, err
	}
	defer tx.Rollback()

	results, err := s.markAllTx(ctx, tx, sess.ID, sess.ClassID, entries)
	if err != nil {
		metrics.BulkRollbacks.Inc()
		return BulkResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return BulkResult{}, err
	}
	countMarks(entries)
	s.invalidateSummary(ctx, sess.Date, cls.TeacherID)
	slog.Info("bulk marks recorded", "session_id", sess.ID, "count", len(results))
	return BulkResult{Results: results, Count: len(results)}, nil
}

// QuickMarkInput carries the fields for a combined create-and-mark call.
// Omitted date and times default to "now" in the configured zone.
type QuickMarkInput struct {
	ClassID   string      `json:"classId"`
	Topic     string      `json:"topic"`
	Date      string      `json:"date"`
	StartTime string      `json:"startTime"`
	EndTime   string      `json:"endTime"`
	Entries   []MarkEntry `json:"attendances"`
}

// QuickResult is what a quick marking call returns.
type QuickResult struct {
	Session     Session      `json:"session"`
	Attendances []Attendance `json:"attendances"`
}

// QuickMark creates a session and records its marks as one atomic unit. If
// any mark is rejected the session does not persist either.
func (s *Service) QuickMark(ctx context.Context, actor auth.Actor, in QuickMarkInput) (QuickResult, error) {
	now := s.now().In(s.loc)
	create := CreateSessionInput{
		ClassID:   in.ClassID,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Topic:     in.Topic,
	}
	if create.Date == "" {
		create.Date = now.Format(dateLayout)
	}
	if create.StartTime == "" {
		create.StartTime = now.Format(timeLayout)
	}
	if create.EndTime == "" {
		create.EndTime = now.Format(timeLayout)
	}
	if err := create.validate(); err != nil {
		return QuickResult{}, err
	}
	if err := validateEntries(in.Entries); err != nil {
		return QuickResult{}, err
	}
	cls, err := s.ownedClass(ctx, actor, in.ClassID)
	if err != nil {
		return QuickResult{}, err
	}

	tx, err := s.repo.DB().BeginTx(ctx, nil)
	if err != nil {
		return QuickResult{}, err
	}
	defer tx.Rollback()

	sess, err := s.repo.InsertSession(ctx, tx, create.ClassID, create.Date, create.StartTime, create.EndTime, create.Topic)
	if err != nil {
		return QuickResult{}, err
	}
	results, err := s.markAllTx(ctx, tx, sess.ID, sess.ClassID, in.Entries)
	if err != nil {
		metrics.BulkRollbacks.Inc()
		return QuickResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return QuickResult{}, err
	}
	metrics.SessionsCreated.Inc()
	countMarks(in.Entries)
	s.invalidateSummary(ctx, sess.Date, cls.TeacherID)
	slog.Info("quick session recorded", "session_id", sess.ID, "class_id", sess.ClassID, "count", len(results))
	return QuickResult{Session: sess, Attendances: results}, nil
}

// TodayReport is the same-day attendance overview for an actor's classes.
type TodayReport struct {
	Sessions []Session `json:"sessions"`
	Summary  Summary   `json:"summary"`
}

// TodaySummary tallies marks across every session dated today within the
// actor's scope. Sessions are ordered by start time; empty statuses report
// zero.
func (s *Service) TodaySummary(ctx context.Context, actor auth.Actor) (TodayReport, error) {
	today := s.now().In(s.loc).Format(dateLayout)
	owner := actor.ID
	if actor.Elevated() {
		owner = ""
	}

	key := summaryKey(today, owner)
	if cached := s.cache.GetCached(ctx, key); cached != "" {
		var report TodayReport
		if err := json.Unmarshal([]byte(cached), &report); err == nil {
			return report, nil
		}
	}

	sessions, err := s.repo.SessionsOnDate(ctx, today, owner)
	if err != nil {
		return TodayReport{}, err
	}
	counts, err := s.repo.StatusCountsOnDate(ctx, today, owner)
	if err != nil {
		return TodayReport{}, err
	}

	report := TodayReport{Sessions: sessions, Summary: Summary{TotalSessions: len(sessions)}}
	for _, status := range Statuses() {
		report.Summary.add(status, counts[status])
	}

	if payload, err := json.Marshal(report); err == nil {
		s.cache.SetCached(ctx, key, string(payload), s.cacheTTL)
	}
	return report, nil
}

// markAllTx validates class membership for every entry and upserts the marks
// through tx. Any rejection aborts the caller's transaction.
func (s *Service) markAllTx(ctx context.Context, tx *sql.Tx, sessionID, classID string, entries []MarkEntry) ([]Attendance, error) {
	enrolled, err := s.repo.StudentIDsInClass(ctx, tx, classID)
	if err != nil {
		return nil, err
	}
	results := make([]Attendance, 0, len(entries))
	for _, e := range entries {
		if !enrolled[e.StudentID] {
			return nil, apperr.Validation("student %s is not enrolled in this class", e.StudentID)
		}
		mark, err := s.repo.UpsertMark(ctx, tx, sessionID, e.StudentID, e.Status, e.Notes)
		if err != nil {
			return nil, err
		}
		results = append(results, mark)
	}
	return results, nil
}

// countMarks bumps the per-status counters once a transaction has committed.
func countMarks(entries []MarkEntry) {
	for _, e := range entries {
		metrics.MarksRecorded.WithLabelValues(string(e.Status)).Inc()
	}
}

// ownedClass fetches a class and checks the actor may act on it.
func (s *Service) ownedClass(ctx context.Context, actor auth.Actor, classID string) (*classroom.Class, error) {
	cls, err := s.classes.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if cls == nil {
		return nil, apperr.NotFound("Class")
	}
	if !actor.CanAccess(cls.TeacherID) {
		return nil, apperr.AccessDenied()
	}
	return cls, nil
}

// ownedSession fetches a session and authorizes the actor via the session's
// class owner.
func (s *Service) ownedSession(ctx context.Context, actor auth.Actor, sessionID string) (Session, *classroom.Class, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return Session{}, nil, err
	}
	if sess == nil {
		return Session{}, nil, apperr.NotFound("Session")
	}
	cls, err := s.classes.GetClass(ctx, sess.ClassID)
	if err != nil {
		return Session{}, nil, err
	}
	if cls == nil {
		return Session{}, nil, apperr.NotFound("Class")
	}
	if !actor.CanAccess(cls.TeacherID) {
		return Session{}, nil, apperr.AccessDenied()
	}
	return *sess, cls, nil
}

func validateEntries(entries []MarkEntry) error {
	if len(entries) == 0 {
		return apperr.Validation("at least one attendance entry required")
	}
	for i, e := range entries {
		if e.StudentID == "" {
			return apperr.Validation("entry %d: studentId required", i)
		}
		if !e.Status.Valid() {
			return apperr.Validation("entry %d: invalid status %q", i, e.Status)
		}
	}
	return nil
}

// invalidateSummary drops the cached reports a write may have changed: the
// owner's view and the admin all-classes view for that date.
func (s *Service) invalidateSummary(ctx context.Context, date, ownerID string) {
	s.cache.Invalidate(ctx, summaryKey(date, ownerID), summaryKey(date, ""))
}

func summaryKey(date, ownerID string) string {
	if ownerID == "" {
		return fmt.Sprintf("classtrack:today:%s:all", date)
	}
	return fmt.Sprintf("classtrack:today:%s:%s", date, ownerID)
}

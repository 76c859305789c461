package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"classtrack/internal/classroom"
)

// querier is satisfied by both *sql.DB and *sql.Tx so repo methods can run
// inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository persists sessions and attendance marks in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertSession writes a new session.
func (r *Repository) InsertSession(ctx context.Context, q querier, classID, date, startTime, endTime, topic string) (Session, error) {
	s := Session{
		ID:        uuid.NewString(),
		ClassID:   classID,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		Topic:     topic,
	}
	row := q.QueryRowContext(ctx, `
		INSERT INTO sessions (id, class_id, session_date, start_time, end_time, topic)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, s.ID, s.ClassID, s.Date, s.StartTime, s.EndTime, s.Topic)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return Session{}, err
	}
	return s, nil
}

// GetSession returns a session by id, or nil if none.
func (r *Repository) GetSession(ctx context.Context, id string) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, class_id, session_date, start_time, end_time, topic, created_at
		FROM sessions WHERE id = $1
	`, id)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// ListSessions returns a class's sessions, most recent date first.
func (r *Repository) ListSessions(ctx context.Context, classID string) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, class_id, session_date, start_time, end_time, topic, created_at
		FROM sessions
		WHERE class_id = $1
		ORDER BY session_date DESC, start_time DESC, created_at DESC
	`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// SessionsOnDate returns sessions on the given date ordered by start time.
// ownerID scopes to classes owned by that teacher; empty means all classes.
func (r *Repository) SessionsOnDate(ctx context.Context, date, ownerID string) ([]Session, error) {
	query := `
		SELECT s.id, s.class_id, s.session_date, s.start_time, s.end_time, s.topic, s.created_at
		FROM sessions s
		JOIN classes c ON c.id = s.class_id
		WHERE s.session_date = $1`
	args := []any{date}
	if ownerID != "" {
		query += ` AND c.teacher_id = $2`
		args = append(args, ownerID)
	}
	query += ` ORDER BY s.start_time, s.created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// StatusCountsOnDate tallies marks by status across all sessions on the given
// date, with the same ownership scoping as SessionsOnDate.
func (r *Repository) StatusCountsOnDate(ctx context.Context, date, ownerID string) (map[Status]int, error) {
	query := `
		SELECT a.status, COUNT(*)
		FROM attendance a
		JOIN sessions s ON s.id = a.session_id
		JOIN classes c ON c.id = s.class_id
		WHERE s.session_date = $1`
	args := []any{date}
	if ownerID != "" {
		query += ` AND c.teacher_id = $2`
		args = append(args, ownerID)
	}
	query += ` GROUP BY a.status`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[Status]int)
	for rows.Next() {
		var status Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// UpsertMark records a student's status for a session. A second mark for the
// same (session, student) pair overwrites status and notes and refreshes the
// timestamp; the unique constraint resolves concurrent inserts of the same
// pair without duplicates.
func (r *Repository) UpsertMark(ctx context.Context, q querier, sessionID, studentID string, status Status, notes string) (Attendance, error) {
	a := Attendance{SessionID: sessionID, StudentID: studentID, Status: status, Notes: notes}
	row := q.QueryRowContext(ctx, `
		INSERT INTO attendance (id, session_id, student_id, status, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (session_id, student_id) DO UPDATE SET
			status     = EXCLUDED.status,
			notes      = EXCLUDED.notes,
			updated_at = NOW()
		RETURNING id, updated_at
	`, uuid.NewString(), sessionID, studentID, string(status), notes)
	if err := row.Scan(&a.ID, &a.UpdatedAt); err != nil {
		return Attendance{}, err
	}
	return a, nil
}

// Roster returns every student in classID paired with their mark for
// sessionID when one exists, ordered by surname then given name.
func (r *Repository) Roster(ctx context.Context, sessionID, classID string) ([]RosterEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT st.id, st.first_name, st.last_name, st.student_no, st.class_id, st.created_at,
		       a.id, a.status, a.notes, a.updated_at
		FROM students st
		LEFT JOIN attendance a ON a.student_id = st.id AND a.session_id = $1
		WHERE st.class_id = $2
		ORDER BY st.last_name, st.first_name
	`, sessionID, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []RosterEntry
	for rows.Next() {
		var st classroom.Student
		var markID, status, notes sql.NullString
		var updatedAt sql.NullTime
		if err := rows.Scan(&st.ID, &st.FirstName, &st.LastName, &st.StudentID, &st.ClassID, &st.CreatedAt,
			&markID, &status, &notes, &updatedAt); err != nil {
			return nil, err
		}
		entry := RosterEntry{Student: st}
		if markID.Valid {
			entry.Attendance = &Attendance{
				ID:        markID.String,
				SessionID: sessionID,
				StudentID: st.ID,
				Status:    Status(status.String),
				Notes:     notes.String,
				UpdatedAt: updatedAt.Time,
			}
		}
		roster = append(roster, entry)
	}
	return roster, rows.Err()
}

// StudentIDsInClass returns the id set of a class's students, queried through
// q so bulk validation sees the transaction's view.
func (r *Repository) StudentIDsInClass(ctx context.Context, q querier, classID string) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, `SELECT id FROM students WHERE class_id = $1`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// DB exposes the handle for transaction control by the service layer.
func (r *Repository) DB() *sql.DB { return r.db }

func scanSession(row *sql.Row) (Session, error) {
	var s Session
	var date time.Time
	err := row.Scan(&s.ID, &s.ClassID, &date, &s.StartTime, &s.EndTime, &s.Topic, &s.CreatedAt)
	if err != nil {
		return Session{}, err
	}
	s.Date = date.Format(dateLayout)
	s.StartTime = trimClock(s.StartTime)
	s.EndTime = trimClock(s.EndTime)
	return s, nil
}

func collectSessions(rows *sql.Rows) ([]Session, error) {
	var res []Session
	for rows.Next() {
		var s Session
		var date time.Time
		if err := rows.Scan(&s.ID, &s.ClassID, &date, &s.StartTime, &s.EndTime, &s.Topic, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Date = date.Format(dateLayout)
		s.StartTime = trimClock(s.StartTime)
		s.EndTime = trimClock(s.EndTime)
		res = append(res, s)
	}
	return res, rows.Err()
}

// trimClock strips the padding CHAR(5) columns carry back.
func trimClock(v string) string {
	if len(v) > 5 {
		return v[:5]
	}
	return v
}

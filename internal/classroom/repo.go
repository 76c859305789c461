package classroom

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Class is a group of students owned by one teacher.
type Class struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	TeacherID string    `json:"teacherId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Student is enrolled in exactly one class.
type Student struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	StudentID string    `json:"studentId"`
	ClassID   string    `json:"classId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository persists classes and students in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertClass writes a new class.
func (r *Repository) InsertClass(ctx context.Context, name, code, teacherID string) (Class, error) {
	c := Class{ID: uuid.NewString(), Name: name, Code: code, TeacherID: teacherID}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO classes (id, name, code, teacher_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, c.ID, c.Name, c.Code, c.TeacherID)
	if err := row.Scan(&c.CreatedAt); err != nil {
		return Class{}, err
	}
	return c, nil
}

// GetClass returns a class by id, or nil if none.
func (r *Repository) GetClass(ctx context.Context, id string) (*Class, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, code, teacher_id, created_at FROM classes WHERE id = $1
	`, id)
	var c Class
	if err := row.Scan(&c.ID, &c.Name, &c.Code, &c.TeacherID, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ClassByCode returns a class by its short code, or nil if none.
func (r *Repository) ClassByCode(ctx context.Context, code string) (*Class, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, code, teacher_id, created_at FROM classes WHERE code = $1
	`, code)
	var c Class
	if err := row.Scan(&c.ID, &c.Name, &c.Code, &c.TeacherID, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ListClasses returns classes owned by teacherID, or every class when
// teacherID is empty.
func (r *Repository) ListClasses(ctx context.Context, teacherID string) ([]Class, error) {
	query := `SELECT id, name, code, teacher_id, created_at FROM classes`
	args := []any{}
	if teacherID != "" {
		query += ` WHERE teacher_id = $1`
		args = append(args, teacherID)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Class
	for rows.Next() {
		var c Class
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.TeacherID, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// DeleteClass removes a class; students, sessions and marks cascade.
func (r *Repository) DeleteClass(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	return err
}

// InsertStudent writes a new student.
func (r *Repository) InsertStudent(ctx context.Context, firstName, lastName, studentNo, classID string) (Student, error) {
	st := Student{ID: uuid.NewString(), FirstName: firstName, LastName: lastName, StudentID: studentNo, ClassID: classID}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO students (id, first_name, last_name, student_no, class_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, st.ID, st.FirstName, st.LastName, st.StudentID, st.ClassID)
	if err := row.Scan(&st.CreatedAt); err != nil {
		return Student{}, err
	}
	return st, nil
}

// GetStudent returns a student by id, or nil if none.
func (r *Repository) GetStudent(ctx context.Context, id string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, student_no, class_id, created_at
		FROM students WHERE id = $1
	`, id)
	var st Student
	if err := row.Scan(&st.ID, &st.FirstName, &st.LastName, &st.StudentID, &st.ClassID, &st.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// ListStudents returns the students of a class ordered by surname then
// given name.
func (r *Repository) ListStudents(ctx context.Context, classID string) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, student_no, class_id, created_at
		FROM students
		WHERE class_id = $1
		ORDER BY last_name, first_name
	`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Student
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.FirstName, &st.LastName, &st.StudentID, &st.ClassID, &st.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	return res, rows.Err()
}

// DeleteStudent removes a student; their marks cascade.
func (r *Repository) DeleteStudent(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	return err
}

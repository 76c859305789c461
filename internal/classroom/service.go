package classroom

import (
	"context"
	"log/slog"
	"strings"

	"classtrack/internal/apperr"
	"classtrack/internal/auth"
	"classtrack/internal/store"
)

// Service enforces ownership over class and student management.
type Service struct {
	repo *Repository
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// CreateClass registers a new class owned by the actor.
func (s *Service) CreateClass(ctx context.Context, actor auth.Actor, name, code string) (Class, error) {
	name, code = strings.TrimSpace(name), strings.TrimSpace(code)
	if name == "" || code == "" {
		return Class{}, apperr.Validation("name and code required")
	}
	existing, err := s.repo.ClassByCode(ctx, code)
	if err != nil {
		return Class{}, err
	}
	if existing != nil {
		return Class{}, apperr.Conflict("class code %q already in use", code)
	}
	c, err := s.repo.InsertClass(ctx, name, code, actor.ID)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return Class{}, apperr.Conflict("class code %q already in use", code)
		}
		return Class{}, err
	}
	slog.Info("class created", "class_id", c.ID, "teacher_id", actor.ID)
	return c, nil
}

// ListClasses returns the actor's classes, or every class for admins.
func (s *Service) ListClasses(ctx context.Context, actor auth.Actor) ([]Class, error) {
	owner := actor.ID
	if actor.Elevated() {
		owner = ""
	}
	return s.repo.ListClasses(ctx, owner)
}

// GetClass fetches one class after an ownership check.
func (s *Service) GetClass(ctx context.Context, actor auth.Actor, id string) (Class, error) {
	if id == "" {
		return Class{}, apperr.Validation("Class ID required")
	}
	c, err := s.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if c == nil {
		return Class{}, apperr.NotFound("Class")
	}
	if !actor.CanAccess(c.TeacherID) {
		return Class{}, apperr.AccessDenied()
	}
	return *c, nil
}

// DeleteClass removes a class and everything enrolled in it.
func (s *Service) DeleteClass(ctx context.Context, actor auth.Actor, id string) error {
	c, err := s.GetClass(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteClass(ctx, c.ID); err != nil {
		return err
	}
	slog.Info("class deleted", "class_id", c.ID)
	return nil
}

// AddStudent enrolls a student into a class the actor owns.
func (s *Service) AddStudent(ctx context.Context, actor auth.Actor, firstName, lastName, studentNo, classID string) (Student, error) {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	studentNo = strings.TrimSpace(studentNo)
	if firstName == "" || lastName == "" || studentNo == "" || classID == "" {
		return Student{}, apperr.Validation("firstName, lastName, studentId and classId required")
	}
	if _, err := s.GetClass(ctx, actor, classID); err != nil {
		return Student{}, err
	}
	return s.repo.InsertStudent(ctx, firstName, lastName, studentNo, classID)
}

// ListStudents returns a class's roster ordered by surname then given name.
func (s *Service) ListStudents(ctx context.Context, actor auth.Actor, classID string) ([]Student, error) {
	if _, err := s.GetClass(ctx, actor, classID); err != nil {
		return nil, err
	}
	return s.repo.ListStudents(ctx, classID)
}

// RemoveStudent drops a student from their class.
func (s *Service) RemoveStudent(ctx context.Context, actor auth.Actor, id string) error {
	if id == "" {
		return apperr.Validation("student id required")
	}
	st, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		return err
	}
	if st == nil {
		return apperr.NotFound("Student")
	}
	if _, err := s.GetClass(ctx, actor, st.ClassID); err != nil {
		return err
	}
	return s.repo.DeleteStudent(ctx, st.ID)
}

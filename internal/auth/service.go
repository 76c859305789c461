package auth

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"classtrack/internal/apperr"
	"classtrack/internal/store"
)

// Service handles account registration and credential checks.
type Service struct {
	repo       *Repository
	bcryptCost int
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, bcryptCost: bcryptCost}
}

// Register creates a new account. Requested roles other than ADMIN collapse
// to TEACHER.
func (s *Service) Register(ctx context.Context, email, password, name, role string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, apperr.Validation("valid email required")
	}
	if len(password) < 6 {
		return User{}, apperr.Validation("password must be at least 6 characters")
	}
	if strings.TrimSpace(name) == "" {
		return User{}, apperr.Validation("name required")
	}
	if role != RoleAdmin {
		role = RoleTeacher
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if existing != nil {
		return User{}, apperr.Validation("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return User{}, err
	}
	u, err := s.repo.CreateUser(ctx, email, string(hash), strings.TrimSpace(name), role)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return User{}, apperr.Validation("email already registered")
		}
		return User{}, err
	}
	slog.Info("user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Login verifies credentials and returns the account.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, apperr.AccessDenied()
	}
	return *u, nil
}

// Profile returns the account behind an actor.
func (s *Service) Profile(ctx context.Context, actor Actor) (User, error) {
	u, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return User{}, err
	}
	if u == nil {
		return User{}, apperr.NotFound("User")
	}
	return *u, nil
}

// UpdateProfile changes the actor's display name.
func (s *Service) UpdateProfile(ctx context.Context, actor Actor, name string) (User, error) {
	if strings.TrimSpace(name) == "" {
		return User{}, apperr.Validation("name required")
	}
	u, err := s.repo.UpdateName(ctx, actor.ID, strings.TrimSpace(name))
	if err != nil {
		return User{}, err
	}
	if u == nil {
		return User{}, apperr.NotFound("User")
	}
	return *u, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, actor Actor, current, next string) error {
	if len(next) < 6 {
		return apperr.Validation("password must be at least 6 characters")
	}
	u, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("User")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return apperr.AccessDenied()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, u.ID, string(hash))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geocoder89/tasktracker/internal/domain/user"
	"github.com/geocoder89/tasktracker/internal/repo"
	"github.com/geocoder89/tasktracker/internal/security"
)

type RegistrationService struct {
	users  repo.UserStore
	hasher *security.Hasher
	log    *slog.Logger
}

func NewRegistrationService(users repo.UserStore, hasher *security.Hasher, log *slog.Logger) *RegistrationService {
	return &RegistrationService{users: users, hasher: hasher, log: log}
}

// Register creates a regular account. The password is stored only as a bcrypt hash.
func (s *RegistrationService) Register(ctx context.Context, req user.RegisterRequest) (user.User, error) {
	return s.create(ctx, req, false)
}

// EnsureStaff creates a staff account unless the username is already registered.
// It reports whether a new account was created.
func (s *RegistrationService) EnsureStaff(ctx context.Context, req user.RegisterRequest) (bool, error) {
	_, err := s.users.GetUserByUsername(ctx, req.Username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return false, fmt.Errorf("lookup staff user: %w", err)
	}

	if _, err := s.create(ctx, req, true); err != nil {
		var verr *ValidationError
		// another instance seeded it first
		if errors.As(err, &verr) && verr.Field == "username" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *RegistrationService) create(ctx context.Context, req user.RegisterRequest, staff bool) (user.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return user.User{}, invalid("username", msgBlank)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.CreateUser(ctx, user.New(username, strings.TrimSpace(req.Email), hash, staff))
	if errors.Is(err, user.ErrUsernameTaken) {
		return user.User{}, invalid("username", msgUsernameTaken)
	}
	if err != nil {
		return user.User{}, err
	}

	s.log.InfoContext(ctx, "user registered", "user_id", created.ID, "staff", staff)
	return created, nil
}

// Authenticate returns the user whose credentials match. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *RegistrationService) Authenticate(ctx context.Context, username, password string) (user.User, error) {
	u, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, user.ErrNotFound) {
		return user.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return user.User{}, err
	}

	if err := s.hasher.Check(u.PasswordHash, password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, err
	}
	return u, nil
}

package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/tasktracker/internal/domain/user"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, email, password_hash, is_staff, created_at`

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	err := s.observe("users.create", func() error {
		_, err := s.q.Exec(ctx,
			`INSERT INTO users (id, username, email, password_hash, is_staff, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			u.ID, u.Username, u.Email, u.PasswordHash, u.IsStaff, u.CreatedAt,
		)
		return err
	})

	if err != nil {
		if violates(err, constraintUsernameUnique) {
			return user.User{}, user.ErrUsernameTaken
		}
		return user.User{}, err
	}

	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return s.getUser(ctx, "users.get_by_id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return s.getUser(ctx, "users.get_by_username", `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (s *Store) getUser(ctx context.Context, op, query string, arg string) (user.User, error) {
	var u user.User

	err := s.observe(op, func() error {
		return s.q.QueryRow(ctx, query, arg).Scan(
			&u.ID,
			&u.Username,
			&u.Email,
			&u.PasswordHash,
			&u.IsStaff,
			&u.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

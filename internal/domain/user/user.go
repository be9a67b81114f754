package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

// Summary is the nested owner shape rendered inside labels and tasks.
type Summary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"omitempty,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Registered is the public view returned by registration; it never carries the hash.
type Registered struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func New(username, email, passwordHash string, staff bool) User {
	return User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsStaff:      staff,
		CreatedAt:    time.Now().UTC(),
	}
}

func (u User) Registered() Registered {
	return Registered{ID: u.ID, Username: u.Username, Email: u.Email}
}

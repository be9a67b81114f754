package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordMismatch = errors.New("password does not match")

// Hasher wraps bcrypt with a fixed cost so tests can run at bcrypt.MinCost.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash hashes a plain text password with bcrypt.
func (h *Hasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Check compares a bcrypt hash with a plaintext password.
func (h *Hasher) Check(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

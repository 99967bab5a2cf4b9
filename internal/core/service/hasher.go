package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

// BcryptHasher derives password hashes with bcrypt at a fixed cost.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.BadRequest("password must be at most 72 bytes")
		}
		return "", err
	}
	return string(hash), nil
}

// Compare returns domain.ErrInvalidCredentials on mismatch.
func (h *BcryptHasher) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return domain.ErrInvalidCredentials
	}
	return nil
}

package service

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("expected the password to be hashed")
	}
	if err := h.Compare(hash, "correct horse"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := h.Compare(hash, "battery staple"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestBcryptHasher_TooLong(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	if _, err := h.Hash(strings.Repeat("a", 73)); !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

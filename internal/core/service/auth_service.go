package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

// AuthService implements sign-up, login and token refresh.
type AuthService struct {
	users  ports.UserService
	tokens ports.TokenIssuer
	hasher ports.PasswordHasher
	logger zerolog.Logger
}

func NewAuthService(users ports.UserService, tokens ports.TokenIssuer, hasher ports.PasswordHasher, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, hasher: hasher, logger: logger}
}

func (s *AuthService) SignUp(ctx context.Context, in ports.CreateUserInput) (*ports.AuthResult, error) {
	user, err := s.users.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Login never reveals whether the email exists: both an unknown email and a
// wrong password yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.Hash, password); err != nil {
		s.logger.Debug().Str("user_id", user.ID.Hex()).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user)
}

// Me reloads the token's user and signs a fresh token for it.
func (s *AuthService) Me(ctx context.Context, payload *domain.TokenPayload) (*ports.AuthResult, error) {
	id, err := primitive.ObjectIDFromHex(payload.User.ID)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("user seems to have been deleted")
		}
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	token, err := s.tokens.Sign(domain.NewTokenUser(user))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &ports.AuthResult{User: user, AccessToken: token}, nil
}

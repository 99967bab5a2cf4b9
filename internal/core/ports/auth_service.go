package ports

import (
	"context"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

// AuthResult is a user together with a freshly signed access token.
type AuthResult struct {
	User        *domain.User
	AccessToken string
}

type AuthService interface {
	SignUp(ctx context.Context, input CreateUserInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, payload *domain.TokenPayload) (*AuthResult, error)
}

type TokenIssuer interface {
	Sign(user domain.TokenUser) (string, error)
	Parse(token string) (*domain.TokenPayload, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// InvitationIssuer signs the tokens that carry instructor invitations. They
// are not accepted as access tokens and vice versa.
type InvitationIssuer interface {
	SignInvitation(inv domain.InstructorInvitation) (string, error)
	ParseInvitation(token string) (*domain.InstructorInvitation, error)
}

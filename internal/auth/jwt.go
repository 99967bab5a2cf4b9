package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

// Claims is the access token body: { user: { _id, role }, iat, exp }.
type Claims struct {
	User domain.TokenUser `json:"user"`
	jwt.RegisteredClaims
}

// invitationAudience marks invitation tokens. Access tokens carry no
// audience, so neither kind parses as the other.
const invitationAudience = "instructor_invitation"

// InvitationTTL bounds how long an instructor invitation can be accepted.
const InvitationTTL = 7 * 24 * time.Hour

// InvitationClaims is the body of an instructor invitation token.
type InvitationClaims struct {
	Invitation domain.InstructorInvitation `json:"invitation"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 access and invitation tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) Sign(user domain.TokenUser) (string, error) {
	now := i.now().UTC()
	claims := Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse verifies token and returns its payload. Any failure is reported as
// domain.ErrInvalidToken.
func (i *Issuer) Parse(token string) (*domain.TokenPayload, error) {
	claims := &Claims{}
	if err := i.parse(token, claims); err != nil {
		return nil, domain.ErrInvalidToken
	}
	if len(claims.Audience) > 0 || claims.User.ID == "" || claims.User.Role == "" {
		return nil, domain.ErrInvalidToken
	}

	payload := &domain.TokenPayload{User: claims.User}
	if claims.IssuedAt != nil {
		payload.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		payload.ExpiresAt = claims.ExpiresAt.Time
	}
	return payload, nil
}

func (i *Issuer) SignInvitation(inv domain.InstructorInvitation) (string, error) {
	now := i.now().UTC()
	claims := InvitationClaims{
		Invitation: inv,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   inv.To.Hex(),
			Audience:  jwt.ClaimStrings{invitationAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(InvitationTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// ParseInvitation verifies an invitation token. Any failure is reported as
// domain.ErrInvalidInvitation.
func (i *Issuer) ParseInvitation(token string) (*domain.InstructorInvitation, error) {
	claims := &InvitationClaims{}
	if err := i.parse(token, claims, jwt.WithAudience(invitationAudience)); err != nil {
		return nil, domain.ErrInvalidInvitation
	}
	inv := claims.Invitation
	if inv.Course.IsZero() || inv.To.IsZero() {
		return nil, domain.ErrInvalidInvitation
	}
	return &inv, nil
}

func (i *Issuer) parse(token string, claims jwt.Claims, opts ...jwt.ParserOption) error {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	tkn, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return err
	}
	if !tkn.Valid {
		return jwt.ErrTokenUnverifiable
	}
	return nil
}

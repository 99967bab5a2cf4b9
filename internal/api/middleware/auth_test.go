package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/omerdemirkan/stem-bound-api/internal/auth"
	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

const testSecret = "secret"

func signed(t *testing.T, secret string, ttl time.Duration, user domain.TokenUser) string {
	t.Helper()
	token, err := auth.NewIssuer(secret, ttl).Sign(user)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func expired(t *testing.T, user domain.TokenUser) string {
	t.Helper()
	past := time.Now().Add(-2 * time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func runTokenMiddleware(t *testing.T, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ExtractTokenPayload(auth.NewIssuer(testSecret, time.Hour))(next)
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestExtractTokenPayload_ValidToken(t *testing.T) {
	user := domain.TokenUser{ID: "64b7f1c2a1b2c3d4e5f60718", Role: domain.RoleInstructor}
	token := signed(t, testSecret, time.Hour, user)

	called := false
	rec := runTokenMiddleware(t, "Bearer "+token, func(c echo.Context) error {
		called = true
		payload, ok := PayloadFromContext(c)
		if !ok {
			t.Fatalf("payload not set")
		}
		if payload.User != user {
			t.Fatalf("expected %+v, got %+v", user, payload.User)
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestExtractTokenPayload_LowercaseScheme(t *testing.T) {
	token := signed(t, testSecret, time.Hour, domain.TokenUser{ID: "admin", Role: domain.RoleAdmin})

	rec := runTokenMiddleware(t, "bearer "+token, func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestExtractTokenPayload_Rejected(t *testing.T) {
	user := domain.TokenUser{ID: "64b7f1c2a1b2c3d4e5f60718", Role: domain.RoleStudent}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Token abc", want: http.StatusUnauthorized},
		{name: "no token", header: "Bearer", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", want: http.StatusForbidden},
		{name: "foreign secret", header: "Bearer " + signed(t, "other", time.Hour, user), want: http.StatusForbidden},
		{name: "expired", header: "Bearer " + expired(t, user), want: http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := runTokenMiddleware(t, tc.header, func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

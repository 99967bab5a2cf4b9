package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Every expected failure wraps exactly one of these so the
// transport layer can pick a status code with errors.Is.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("document not found")
)

// Error is an expected failure carrying a client-safe message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) error { return newError(ErrBadRequest, format, args...) }

func Unauthorized(format string, args ...any) error {
	return newError(ErrUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) error { return newError(ErrForbidden, format, args...) }

func NotFound(format string, args ...any) error { return newError(ErrNotFound, format, args...) }

var (
	ErrInvalidRole        = BadRequest("invalid user role")
	ErrInvalidID          = BadRequest("invalid id")
	ErrEmailTaken         = BadRequest("email is already in use")
	ErrPasswordRequired   = BadRequest("password is required")
	ErrInvalidCredentials = Forbidden("Username or Password Incorrect")
	ErrInvalidToken       = Forbidden("invalid or expired token")
	ErrAlreadySubscribed  = BadRequest("email is already subscribed to the mailing list")
	ErrInvalidInvitation  = Forbidden("invalid or expired invitation")

	ErrUserNotFound     = NotFound("user not found")
	ErrCourseNotFound   = NotFound("course not found")
	ErrSchoolNotFound   = NotFound("school not found")
	ErrChatNotFound     = NotFound("chat not found")
	ErrMessageNotFound  = NotFound("message not found")
	ErrLocationNotFound = NotFound("location not found")
)

// MetadataUpdateError reports a fan-out where at least one target update
// failed. Targets listed in Applied were written and are not rolled back.
type MetadataUpdateError struct {
	Operation string
	Applied   []string
	Failed    map[string]error
}

func (e *MetadataUpdateError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for name := range e.Failed {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Failed[name]))
	}
	return fmt.Sprintf("metadata update %s: %d of %d targets failed (%s)",
		e.Operation, len(e.Failed), len(e.Failed)+len(e.Applied), strings.Join(parts, "; "))
}

func (e *MetadataUpdateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		errs = append(errs, err)
	}
	return errs
}

// Partial reports whether some targets were written before the failure.
func (e *MetadataUpdateError) Partial() bool {
	return len(e.Applied) > 0
}

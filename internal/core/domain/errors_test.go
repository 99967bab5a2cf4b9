package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{ErrInvalidRole, ErrBadRequest},
		{ErrEmailTaken, ErrBadRequest},
		{ErrInvalidCredentials, ErrForbidden},
		{ErrInvalidToken, ErrForbidden},
		{ErrCourseNotFound, ErrNotFound},
		{Unauthorized("no token"), ErrUnauthorized},
		{fmt.Errorf("wrapped: %w", NotFound("school %s", "x")), ErrNotFound},
	}

	for _, tc := range tests {
		if !errors.Is(tc.err, tc.kind) {
			t.Errorf("%v: expected kind %v", tc.err, tc.kind)
		}
	}

	if errors.Is(ErrCourseNotFound, ErrBadRequest) {
		t.Error("kinds must not overlap")
	}
}

func TestMetadataUpdateError(t *testing.T) {
	cause := errors.New("connection reset")
	err := &MetadataUpdateError{
		Operation: "user_deleted",
		Applied:   []string{"chat.users"},
		Failed:    map[string]error{"school.students": cause, "course.students": errors.New("timeout")},
	}

	if !err.Partial() {
		t.Error("expected a partial failure")
	}
	if !errors.Is(err, cause) {
		t.Error("expected the cause to be reachable through errors.Is")
	}

	msg := err.Error()
	if !strings.Contains(msg, "2 of 3 targets failed") {
		t.Errorf("unexpected message: %s", msg)
	}
	if strings.Index(msg, "course.students") > strings.Index(msg, "school.students") {
		t.Errorf("failed targets must be listed in order: %s", msg)
	}

	none := &MetadataUpdateError{Operation: "course_created", Failed: map[string]error{"x": cause}}
	if none.Partial() {
		t.Error("nothing was applied")
	}
}

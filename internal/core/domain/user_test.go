package domain

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewProfile_EmptyArraysAreNonNil(t *testing.T) {
	for _, role := range UserRoles {
		p, err := NewProfile(role)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", role, err)
		}
		if p.role() != role {
			t.Errorf("expected profile of %s, got %s", role, p.role())
		}

		u := &User{Role: role, Profile: p}
		if u.Chats() == nil {
			t.Errorf("%s: chats must be an empty slice", role)
		}
		if role != RoleSchoolOfficial && u.Courses() == nil {
			t.Errorf("%s: courses must be an empty slice", role)
		}
	}
}

func TestNewProfile_RejectsNonUserRoles(t *testing.T) {
	for _, role := range []Role{RoleAdmin, "", "TEACHER"} {
		if _, err := NewProfile(role); !errors.Is(err, ErrInvalidRole) {
			t.Errorf("%q: expected ErrInvalidRole, got %v", role, err)
		}
	}
}

func TestParseUserRole(t *testing.T) {
	if r, err := ParseUserRole("INSTRUCTOR"); err != nil || r != RoleInstructor {
		t.Fatalf("expected INSTRUCTOR, got %q %v", r, err)
	}
	if _, err := ParseUserRole("ADMIN"); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("ADMIN must not be a user role, got %v", err)
	}
	if _, err := ParseUserRole("student"); err == nil {
		t.Fatal("roles are case sensitive")
	}
}

func TestMatchProfile(t *testing.T) {
	name := func(p Profile) string {
		return MatchProfile(p,
			func(*StudentProfile) string { return "student" },
			func(*InstructorProfile) string { return "instructor" },
			func(*SchoolOfficialProfile) string { return "official" },
		)
	}

	tests := map[Role]string{
		RoleStudent:        "student",
		RoleInstructor:     "instructor",
		RoleSchoolOfficial: "official",
	}
	for role, want := range tests {
		p, _ := NewProfile(role)
		if got := name(p); got != want {
			t.Errorf("%s: expected %q, got %q", role, want, got)
		}
	}
	if got := name(nil); got != "" {
		t.Errorf("nil profile: expected zero value, got %q", got)
	}
}

func TestUserSchool(t *testing.T) {
	school := primitive.NewObjectID()

	student, _ := NewProfile(RoleStudent)
	student.(*StudentProfile).Meta.School = school
	if id, ok := (&User{Profile: student}).School(); !ok || id != school {
		t.Errorf("expected student school %s, got %s %v", school.Hex(), id.Hex(), ok)
	}

	instructor, _ := NewProfile(RoleInstructor)
	if _, ok := (&User{Profile: instructor}).School(); ok {
		t.Error("instructors have no school")
	}

	official, _ := NewProfile(RoleSchoolOfficial)
	if _, ok := (&User{Profile: official}).School(); ok {
		t.Error("an unset school must report false")
	}
}

func TestTokenPayload_IsAdmin(t *testing.T) {
	if !(&TokenPayload{User: TokenUser{ID: "admin", Role: RoleAdmin}}).IsAdmin() {
		t.Error("expected admin")
	}
	if (&TokenPayload{User: TokenUser{ID: "x", Role: RoleInstructor}}).IsAdmin() {
		t.Error("instructor is not admin")
	}
}

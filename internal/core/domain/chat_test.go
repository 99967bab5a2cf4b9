package domain

import (
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPrivateChatKey_OrderIndependent(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	ab := PrivateChatKey([]primitive.ObjectID{a, b})
	ba := PrivateChatKey([]primitive.ObjectID{b, a})
	if ab != ba {
		t.Fatalf("expected equal keys, got %q and %q", ab, ba)
	}
	if !strings.Contains(ab, a.Hex()) || !strings.Contains(ab, b.Hex()) {
		t.Errorf("key must contain both ids: %q", ab)
	}
}

func TestUniqueIDs(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	got := UniqueIDs([]primitive.ObjectID{a, b, a, a, b})
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("expected [a b] in first-seen order, got %v", got)
	}
	if got := UniqueIDs(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}

func TestParseChatType(t *testing.T) {
	if _, err := ParseChatType("GROUP"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseChatType("group"); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestValidateMessageText(t *testing.T) {
	tests := []struct {
		name string
		text string
		ok   bool
	}{
		{name: "empty", text: "", ok: false},
		{name: "short", text: "hi", ok: true},
		{name: "at limit in runes", text: strings.Repeat("é", MaxMessageLength), ok: true},
		{name: "over limit", text: strings.Repeat("a", MaxMessageLength+1), ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateMessageText(tc.text)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrBadRequest) {
				t.Fatalf("expected ErrBadRequest, got %v", err)
			}
		})
	}
}

func TestMessageRedacted(t *testing.T) {
	m := Message{Text: "secret", IsDeleted: true}
	if r := m.Redacted(); r.Text != "" {
		t.Errorf("expected redacted text, got %q", r.Text)
	}
	if m.Text != "secret" {
		t.Error("Redacted must not modify the receiver")
	}
	if r := (Message{Text: "visible"}).Redacted(); r.Text != "visible" {
		t.Errorf("expected visible text, got %q", r.Text)
	}
}

func TestMetadataTarget_AppliesTo(t *testing.T) {
	if !StudentCourses.AppliesTo(RoleStudent) || StudentCourses.AppliesTo(RoleInstructor) {
		t.Error("student.courses must only apply to students")
	}
	if !CourseStudents.AppliesTo(RoleAdmin) {
		t.Error("targets without roles apply to every document")
	}
	for _, r := range UserRoles {
		if !UserChats.AppliesTo(r) {
			t.Errorf("user.chats must apply to %s", r)
		}
	}
}

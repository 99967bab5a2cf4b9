package ports

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
)

// MetadataStore applies set semantics to one metadata array across many
// documents. Both calls are idempotent.
type MetadataStore interface {
	AddToSet(ctx context.Context, target domain.MetadataTarget, docIDs, values []primitive.ObjectID) error
	PullAll(ctx context.Context, target domain.MetadataTarget, docIDs, values []primitive.ObjectID) error
}

// MetadataService is the only writer of metadata arrays. Failures are
// reported as *domain.MetadataUpdateError; applied targets stay applied.
type MetadataService interface {
	Link(ctx context.Context, rel domain.Relation, left, right []primitive.ObjectID) error
	Unlink(ctx context.Context, rel domain.Relation, left, right []primitive.ObjectID) error

	OnUserCreated(ctx context.Context, u *domain.User) error
	OnUserDeleted(ctx context.Context, u *domain.User) error
	OnCourseCreated(ctx context.Context, c *domain.Course) error
	OnCourseDeleted(ctx context.Context, c *domain.Course) error
	OnCourseEnroll(ctx context.Context, courseID, studentID primitive.ObjectID) error
	OnCourseDrop(ctx context.Context, courseID, studentID primitive.ObjectID) error
	OnChatCreated(ctx context.Context, c *domain.Chat) error
	OnChatDeleted(ctx context.Context, c *domain.Chat) error
}

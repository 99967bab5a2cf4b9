package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

type CourseRepository struct {
	col *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{col: db.Collection(domain.CollectionCourses)}
}

func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Course
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &c, nil
}

func (r *CourseRepository) Find(ctx context.Context, filter ports.CourseFilter, page ports.Page) ([]*domain.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, courseFilter(filter), findOptions(page))
	if err != nil {
		return nil, fmt.Errorf("find courses: %w", err)
	}
	return decodeAll[domain.Course](ctx, cur)
}

func (r *CourseRepository) Update(ctx context.Context, id primitive.ObjectID, update ports.CourseUpdate) (*domain.Course, error) {
	set := bson.M{}
	setIf(set, "title", update.Title)
	setIf(set, "shortDescription", update.ShortDescription)
	setIf(set, "longDescription", update.LongDescription)
	return r.findOneAndSet(ctx, id, set)
}

func (r *CourseRepository) UpdateVerificationStatus(ctx context.Context, id primitive.ObjectID, status domain.VerificationStatus) (*domain.Course, error) {
	return r.findOneAndSet(ctx, id, bson.M{"verificationStatus": status})
}

func (r *CourseRepository) Delete(ctx context.Context, id primitive.ObjectID) (*domain.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Course
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, fmt.Errorf("delete course: %w", err)
	}
	return &c, nil
}

func (r *CourseRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "meta.school", Value: 1}}},
		{Keys: bson.D{{Key: "meta.instructors", Value: 1}}},
		{Keys: bson.D{{Key: "meta.students", Value: 1}}},
		{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "shortDescription", Value: "text"}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *CourseRepository) findOneAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c domain.Course
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, fmt.Errorf("update course: %w", err)
	}
	return &c, nil
}

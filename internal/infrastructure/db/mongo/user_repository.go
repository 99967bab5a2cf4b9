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

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(domain.CollectionUsers)}
}

// Create inserts u and assigns its id.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, toUserDocument(u)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) Find(ctx context.Context, filter ports.UserFilter, page ports.Page) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, userFilter(filter), findOptions(page))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return decodeUsers(ctx, cur)
}

// FindNear returns users ordered by distance, each with Distance set.
func (r *UserRepository) FindNear(ctx context.Context, near ports.Near, filter ports.UserFilter, page ports.Page) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, geoNearPipeline(near, userFilter(filter), page))
	if err != nil {
		return nil, fmt.Errorf("aggregate users: %w", err)
	}
	return decodeUsers(ctx, cur)
}

func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, update ports.UserUpdate) (*domain.User, error) {
	return r.findOneAndSet(ctx, id, userUpdateSet(update))
}

func (r *UserRepository) UpdateLocation(ctx context.Context, id primitive.ObjectID, loc domain.Location) (*domain.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"location": loc})
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDocument
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return doc.toDomain()
}

// EnsureIndexes creates the indexes the user queries depend on.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: geoKey, Value: "2dsphere"}}},
		{Keys: bson.D{
			{Key: "firstName", Value: "text"},
			{Key: "lastName", Value: "text"},
			{Key: "shortDescription", Value: "text"},
		}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain()
}

func (r *UserRepository) findOneAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toDomain()
}

func userUpdateSet(u ports.UserUpdate) bson.M {
	set := bson.M{}
	setIf(set, "firstName", u.FirstName)
	setIf(set, "lastName", u.LastName)
	setIf(set, "shortDescription", u.ShortDescription)
	setIf(set, "longDescription", u.LongDescription)
	setIf(set, "profilePictureUrl", u.ProfilePictureURL)
	setIf(set, "interests", u.Interests)
	setIf(set, "initialGradeLevel", u.InitialGradeLevel)
	setIf(set, "initialSchoolYear", u.InitialSchoolYear)
	setIf(set, "specialties", u.Specialties)
	setIf(set, "position", u.Position)
	return set
}

func setIf[T any](set bson.M, key string, v *T) {
	if v != nil {
		set[key] = *v
	}
}

func decodeUsers(ctx context.Context, cur *mongo.Cursor) ([]*domain.User, error) {
	defer cur.Close(ctx)

	users := make([]*domain.User, 0)
	for cur.Next(ctx) {
		var doc userDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		u, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	wa "github.com/panyam/webauth"
)

// UsersCollection is the default collection for user documents
const UsersCollection = "users"

// userDocument is how a user is laid out in MongoDB
type userDocument struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Name         string        `bson:"name"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password,omitempty"`
	Role         string        `bson:"role"`
	Provider     string        `bson:"provider"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}

func (d *userDocument) toUser() *wa.User {
	return &wa.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         wa.Role(d.Role),
		Provider:     d.Provider,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// UserStore implements wa.UserStore on a MongoDB collection
type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(UsersCollection)}
}

// EnsureIndexes creates the unique email index
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}
	return nil
}

func (s *UserStore) CreateUser(ctx context.Context, user *wa.User) (*wa.User, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := userDocument{
		ID:           bson.NewObjectID(),
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		Provider:     user.Provider,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if doc.Role == "" {
		doc.Role = string(wa.RoleUser)
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s", wa.ErrDuplicateUser, user.Email)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return doc.toUser(), nil
}

func (s *UserStore) GetUserById(ctx context.Context, userId string) (*wa.User, error) {
	id, err := bson.ObjectIDFromHex(userId)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", wa.ErrUserNotFound, userId)
	}
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}}, userId)
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*wa.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}}, email)
}

func (s *UserStore) findOne(ctx context.Context, filter bson.D, label string) (*wa.User, error) {
	var doc userDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", wa.ErrUserNotFound, label)
		}
		return nil, err
	}
	return doc.toUser(), nil
}

var _ wa.UserStore = (*UserStore)(nil)

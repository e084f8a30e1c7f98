package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tieubaoca/pdfchat/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type UserRepo interface {
	// CreateUser inserts the user and returns the generated id.
	// A taken username yields types.ErrDuplicateUsername.
	CreateUser(ctx context.Context, user *types.User) (string, error)
	GetUser(ctx context.Context, id string) (*types.User, error)
	// GetUserByUsername returns nil, nil when no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)
}

type userRepo struct {
	collection *mongo.Collection
}

func NewUserRepo(db *mongo.Database) UserRepo {
	return &userRepo{
		collection: db.Collection(types.USERS_COLLECTION),
	}
}

// EnsureUserIndexes creates the unique username index. It is idempotent.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(types.USERS_COLLECTION).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}
	return nil
}

func (r *userRepo) CreateUser(ctx context.Context, user *types.User) (string, error) {
	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", types.ErrDuplicateUsername
		}
		return "", err
	}
	id, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	user.ID = id.Hex()
	return user.ID, nil
}

func (r *userRepo) GetUser(ctx context.Context, id string) (*types.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", id, types.ErrInvalidInput)
	}
	var user types.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	var user types.User
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

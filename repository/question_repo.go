package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tieubaoca/pdfchat/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type QuestionRepo interface {
	// CreateQuestion appends a record and returns its id. Records are never
	// updated or deleted.
	CreateQuestion(ctx context.Context, record *types.QuestionRecord) (string, error)
	// ListByUser returns the user's records, oldest first.
	ListByUser(ctx context.Context, userID string) ([]*types.QuestionRecord, error)
}

// questionDoc is the stored shape of a QuestionRecord; user_id references
// the users collection by ObjectID.
type questionDoc struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	UserID       bson.ObjectID `bson:"user_id"`
	QuestionText string        `bson:"question_text"`
	ResponseText string        `bson:"response_text"`
	CreateAt     int64         `bson:"created_at"`
}

type questionRepo struct {
	collection *mongo.Collection
}

func NewQuestionRepo(db *mongo.Database) QuestionRepo {
	collection := db.Collection(types.QUESTIONS_COLLECTION)
	// create the listing index on first use of the collection
	collectionNames, err := db.ListCollectionNames(context.Background(), bson.M{"name": types.QUESTIONS_COLLECTION})
	if err != nil {
		slog.Warn("failed to list collections", "err", err)
	} else if len(collectionNames) == 0 {
		indexes := []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "created_at", Value: 1},
				},
			},
		}
		if _, err := collection.Indexes().CreateMany(context.Background(), indexes); err != nil {
			slog.Warn("failed to create question indexes", "err", err)
		}
	}

	return &questionRepo{
		collection: collection,
	}
}

func (r *questionRepo) CreateQuestion(ctx context.Context, record *types.QuestionRecord) (string, error) {
	userID, err := bson.ObjectIDFromHex(record.UserID)
	if err != nil {
		return "", fmt.Errorf("invalid user id %q: %w", record.UserID, types.ErrInvalidInput)
	}
	doc := questionDoc{
		UserID:       userID,
		QuestionText: record.QuestionText,
		ResponseText: record.ResponseText,
		CreateAt:     record.CreateAt,
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	id, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	record.ID = id.Hex()
	return record.ID, nil
}

func (r *questionRepo) ListByUser(ctx context.Context, userID string) ([]*types.QuestionRecord, error) {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, types.ErrInvalidInput)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": oid}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]*types.QuestionRecord, 0)
	for cursor.Next(ctx) {
		var doc questionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		records = append(records, &types.QuestionRecord{
			ID:           doc.ID.Hex(),
			UserID:       doc.UserID.Hex(),
			QuestionText: doc.QuestionText,
			ResponseText: doc.ResponseText,
			CreateAt:     doc.CreateAt,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

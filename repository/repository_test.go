package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfchat/database"
	"github.com/tieubaoca/pdfchat/types"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// testDatabase connects to MONGODB_TEST_URI and returns a throwaway database
// that is dropped when the test ends.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := database.NewMongoClient(ctx, uri)
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("pdfchat_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx := context.Background()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func TestUserRepo(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	require.NoError(t, EnsureUserIndexes(ctx, db))
	repo := NewUserRepo(db)

	missing, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, missing)

	user := &types.User{Username: "alice", HashedPassword: "hash", CreateAt: time.Now().Unix()}
	id, err := repo.CreateUser(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, user.ID)

	found, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, id, found.ID)
	assert.Equal(t, "hash", found.HashedPassword)

	byID, err := repo.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = repo.CreateUser(ctx, &types.User{Username: "alice", HashedPassword: "other"})
	assert.ErrorIs(t, err, types.ErrDuplicateUsername)

	_, err = repo.GetUser(ctx, "not-an-id")
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestQuestionRepo(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	questions := NewQuestionRepo(db)

	alice, err := users.CreateUser(ctx, &types.User{Username: "alice"})
	require.NoError(t, err)
	bob, err := users.CreateUser(ctx, &types.User{Username: "bob"})
	require.NoError(t, err)

	for i, q := range []string{"first?", "second?"} {
		id, err := questions.CreateQuestion(ctx, &types.QuestionRecord{
			UserID:       alice,
			QuestionText: q,
			ResponseText: "answer " + q,
			CreateAt:     int64(100 + i),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	}

	records, err := questions.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "first?", records[0].QuestionText)
	assert.Equal(t, "second?", records[1].QuestionText)
	assert.Equal(t, alice, records[0].UserID)

	none, err := questions.ListByUser(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = questions.CreateQuestion(ctx, &types.QuestionRecord{UserID: "bad"})
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

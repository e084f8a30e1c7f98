package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/tieubaoca/pdfchat/types"
)

// UserRepo is an in-memory repository.UserRepo.
type UserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*types.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]*types.User)}
}

func (r *UserRepo) CreateUser(_ context.Context, user *types.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return "", types.ErrDuplicateUsername
		}
	}
	r.nextID++
	user.ID = fmt.Sprintf("%024x", r.nextID)
	stored := *user
	r.users[user.ID] = &stored
	return user.ID, nil
}

func (r *UserRepo) GetUser(_ context.Context, id string) (*types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	out := *u
	return &out, nil
}

func (r *UserRepo) GetUserByUsername(_ context.Context, username string) (*types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

// QuestionRepo is an in-memory repository.QuestionRepo. Setting Err makes
// every call fail with it.
type QuestionRepo struct {
	Err error

	mu      sync.Mutex
	records []types.QuestionRecord
}

func NewQuestionRepo() *QuestionRepo {
	return &QuestionRepo{}
}

func (r *QuestionRepo) CreateQuestion(_ context.Context, record *types.QuestionRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	record.ID = fmt.Sprintf("%024x", len(r.records)+1)
	r.records = append(r.records, *record)
	return record.ID, nil
}

func (r *QuestionRepo) ListByUser(_ context.Context, userID string) ([]*types.QuestionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]*types.QuestionRecord, 0)
	for i := range r.records {
		if r.records[i].UserID == userID {
			rec := r.records[i]
			out = append(out, &rec)
		}
	}
	return out, nil
}

// Len returns the number of stored records.
func (r *QuestionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

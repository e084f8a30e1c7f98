package service

import (
	"context"
	"time"

	"github.com/tieubaoca/pdfchat/repository"
	"github.com/tieubaoca/pdfchat/types"
)

// HistoryService records answered questions per user.
type HistoryService interface {
	Record(ctx context.Context, userID, question, answer string) (string, error)
	List(ctx context.Context, userID string) ([]*types.QuestionRecord, error)
}

type historyService struct {
	repo repository.QuestionRepo
}

func NewHistoryService(repo repository.QuestionRepo) HistoryService {
	return &historyService{
		repo: repo,
	}
}

// Record appends one record. Calling it twice stores two records.
func (s *historyService) Record(ctx context.Context, userID, question, answer string) (string, error) {
	return s.repo.CreateQuestion(ctx, &types.QuestionRecord{
		UserID:       userID,
		QuestionText: question,
		ResponseText: answer,
		CreateAt:     time.Now().Unix(),
	})
}

func (s *historyService) List(ctx context.Context, userID string) ([]*types.QuestionRecord, error) {
	return s.repo.ListByUser(ctx, userID)
}

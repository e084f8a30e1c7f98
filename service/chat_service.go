package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tieubaoca/pdfchat/types"
)

// ChatService runs the two pipelines: documents to index, and question to
// answer. Each run is all-or-nothing and runs alone within its session.
type ChatService struct {
	extractor *PDFService
	splitter  *TextSplitter
	indexer   *IndexService
	retriever *Retriever
	answerer  *Answerer
	history   HistoryService
	logger    *slog.Logger
}

// NewChatService wires the pipeline stages. history may be nil, in which
// case answers are never recorded.
func NewChatService(
	extractor *PDFService,
	splitter *TextSplitter,
	indexer *IndexService,
	retriever *Retriever,
	answerer *Answerer,
	history HistoryService,
) *ChatService {
	return &ChatService{
		extractor: extractor,
		splitter:  splitter,
		indexer:   indexer,
		retriever: retriever,
		answerer:  answerer,
		history:   history,
		logger:    slog.Default().With("component", "chat"),
	}
}

// ProcessDocuments extracts, chunks and indexes docs, then points the session
// at the new index.
func (s *ChatService) ProcessDocuments(ctx context.Context, session *Session, docs []types.Document) (*types.ProcessResponse, error) {
	session.action.Lock()
	defer session.action.Unlock()

	extraction, err := s.extractor.Extract(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}
	chunks := s.splitter.Split(extraction.Text)
	s.logger.Info("documents extracted",
		"session", session.ID, "documents", len(docs), "pages", extraction.Pages,
		"skipped_pages", extraction.SkippedPages, "chunks", len(chunks))

	info, err := s.indexer.Build(ctx, chunks)
	if err != nil {
		return nil, err
	}
	session.SetIndexHandle(info)

	return &types.ProcessResponse{
		Documents:    len(docs),
		Pages:        extraction.Pages,
		SkippedPages: extraction.SkippedPages,
		Chunks:       len(chunks),
		Index:        info,
	}, nil
}

// Ask answers question from the session's index. The exchange is recorded
// in history (for signed-in users) and appended to the transcript only once
// every stage has succeeded.
func (s *ChatService) Ask(ctx context.Context, session *Session, question string) (*types.AskResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, types.ErrEmptyQuestion
	}

	session.action.Lock()
	defer session.action.Unlock()

	chunks, err := s.retriever.Retrieve(ctx, session.IndexHandle(), question)
	if err != nil {
		return nil, err
	}
	answer, err := s.answerer.Answer(ctx, question, chunks)
	if err != nil {
		return nil, err
	}

	if s.history != nil && session.UserID != "" {
		if _, err := s.history.Record(ctx, session.UserID, question, answer); err != nil {
			return nil, fmt.Errorf("failed to record history: %w", err)
		}
	}
	session.appendExchange(question, answer)

	return &types.AskResponse{
		Answer:  answer,
		Sources: chunks,
	}, nil
}

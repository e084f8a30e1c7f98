package service

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/tieubaoca/pdfchat/types"
)

// Session is the per-login context: who is asking, what they asked so far,
// and which index build their questions go to.
type Session struct {
	ID       string
	UserID   string
	Username string

	// action serialises pipeline runs within the session
	action sync.Mutex

	mu         sync.RWMutex
	transcript []types.Exchange
	index      *types.IndexInfo
}

// NewSession creates a detached session. An empty userID disables history
// recording.
func NewSession(userID, username string) *Session {
	return &Session{
		ID:       uuid.NewString(),
		UserID:   userID,
		Username: username,
	}
}

func (s *Session) Transcript() []types.Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.transcript)
}

func (s *Session) ClearTranscript() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
}

// IndexHandle returns the index built by this session, or nil.
func (s *Session) IndexHandle() *types.IndexInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// SetIndexHandle points the session at an existing index build.
func (s *Session) SetIndexHandle(info *types.IndexInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = info
}

func (s *Session) appendExchange(question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, types.Exchange{Question: question, Answer: answer})
}

// SessionStore keeps live sessions in memory. Sessions end at logout or
// process exit.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

func (s *SessionStore) Create(user *types.User) *Session {
	session := NewSession(user.ID, user.Username)
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session
}

func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, types.ErrSessionNotFound
	}
	return session, nil
}

// Delete drops the session with its transcript and index handle.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

package types

import "errors"

var (
	// ErrIndexMissing is returned when a question is asked before any index
	// has been built, or when an index build is attempted with no chunks.
	ErrIndexMissing = errors.New("index missing: upload and process documents first")

	// ErrProviderFailure wraps any embedding or generation provider error.
	ErrProviderFailure = errors.New("provider failure")

	// ErrEmbeddingModelMismatch means the persisted index was built with a
	// different embedding model than the one configured for queries.
	ErrEmbeddingModelMismatch = errors.New("embedding model mismatch")

	ErrDuplicateUsername     = errors.New("username already exists")
	ErrAuthenticationFailure = errors.New("invalid username or password")
	ErrSessionNotFound       = errors.New("session not found")

	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyQuestion   = errors.New("question cannot be empty")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

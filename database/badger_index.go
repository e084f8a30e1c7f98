package database

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/google/uuid"
	"github.com/tieubaoca/pdfchat/types"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	indexMetaKey     = "meta"
	indexChunkPrefix = "chunk/"
	manifestFile     = "MANIFEST"
)

// BadgerIndex is a VectorIndex persisted as a badger database in a fixed
// local directory. Search is exact: every stored vector is compared against
// the query using squared L2 distance.
type BadgerIndex struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
	db *badger.DB
	// dir identifies the directory db was opened from
	dir os.FileInfo
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

var _ VectorIndex = (*BadgerIndex)(nil)

func NewBadgerIndex(path string, logger *slog.Logger) *BadgerIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &BadgerIndex{
		path:   path,
		logger: logger.With("component", "badger-index"),
	}
}

func (b *BadgerIndex) badgerOptions(dir string) badger.Options {
	opts := badger.DefaultOptions(dir)
	opts.Logger = &badgerLoggerAdapter{logger: b.logger}
	opts.Compression = options.None
	return opts
}

// Build writes chunks into a fresh database next to the index directory and
// then swaps it into place, replacing the previous index.
func (b *BadgerIndex) Build(ctx context.Context, model string, chunks []types.IndexedChunk) (*types.IndexInfo, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to index: %w", types.ErrIndexMissing)
	}
	dimension := len(chunks[0].Vector)
	if dimension == 0 {
		return nil, fmt.Errorf("chunk 0 has an empty vector: %w", types.ErrInvalidInput)
	}
	for i, chunk := range chunks {
		if len(chunk.Vector) != dimension {
			return nil, fmt.Errorf("chunk %d has dimension %d, expected %d: %w", i, len(chunk.Vector), dimension, types.ErrInvalidInput)
		}
	}

	info := &types.IndexInfo{
		BuildID:   uuid.NewString(),
		Model:     model,
		Dimension: dimension,
		Chunks:    len(chunks),
		BuiltAt:   time.Now().Unix(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	parent := filepath.Dir(b.path)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index parent directory: %w", err)
	}
	tmp, err := os.MkdirTemp(parent, filepath.Base(b.path)+".build-")
	if err != nil {
		return nil, fmt.Errorf("failed to create index build directory: %w", err)
	}
	if err := b.writeIndex(ctx, tmp, info, chunks); err != nil {
		os.RemoveAll(tmp)
		return nil, err
	}

	if err := b.closeLocked(); err != nil {
		b.logger.Warn("failed to close previous index", "err", err)
	}
	if err := os.RemoveAll(b.path); err != nil {
		os.RemoveAll(tmp)
		return nil, fmt.Errorf("failed to remove previous index: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		os.RemoveAll(tmp)
		return nil, fmt.Errorf("failed to move index into place: %w", err)
	}

	b.logger.Info("index built", "path", b.path, "build_id", info.BuildID, "chunks", info.Chunks, "dimension", info.Dimension)
	return info, nil
}

func (b *BadgerIndex) writeIndex(ctx context.Context, dir string, info *types.IndexInfo, chunks []types.IndexedChunk) (err error) {
	db, err := badger.Open(b.badgerOptions(dir))
	if err != nil {
		return fmt.Errorf("failed to open index build database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close index build database: %w", cerr)
		}
	}()

	wb := db.NewWriteBatch()
	defer wb.Cancel()

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk.Position = i
		data, err := bson.Marshal(chunk)
		if err != nil {
			return fmt.Errorf("failed to encode chunk %d: %w", i, err)
		}
		if err := wb.Set(chunkKey(i), data); err != nil {
			return fmt.Errorf("failed to write chunk %d: %w", i, err)
		}
	}

	meta, err := bson.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode index metadata: %w", err)
	}
	if err := wb.Set([]byte(indexMetaKey), meta); err != nil {
		return fmt.Errorf("failed to write index metadata: %w", err)
	}
	return wb.Flush()
}

func chunkKey(position int) []byte {
	return []byte(fmt.Sprintf("%s%08d", indexChunkPrefix, position))
}

// openLocked lazily opens the persisted index. A build by another process
// replaces the directory, so an open handle is only reused while the
// directory on disk is the one it was opened from. Callers must hold b.mu.
func (b *BadgerIndex) openLocked() error {
	current, err := os.Stat(b.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat index: %w", err)
	}
	if b.db != nil {
		if current != nil && os.SameFile(b.dir, current) {
			return nil
		}
		b.logger.Info("index directory replaced on disk, reopening", "path", b.path)
		if err := b.closeLocked(); err != nil {
			b.logger.Warn("failed to close stale index", "err", err)
		}
	}
	if current == nil {
		return types.ErrIndexMissing
	}
	if _, err := os.Stat(filepath.Join(b.path, manifestFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return types.ErrIndexMissing
		}
		return fmt.Errorf("failed to stat index: %w", err)
	}
	db, err := badger.Open(b.badgerOptions(b.path))
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	b.db = db
	b.dir = current
	return nil
}

func (b *BadgerIndex) closeLocked() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	b.dir = nil
	return err
}

func (b *BadgerIndex) readInfo(txn *badger.Txn) (*types.IndexInfo, error) {
	item, err := txn.Get([]byte(indexMetaKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, types.ErrIndexMissing
		}
		return nil, err
	}
	var info types.IndexInfo
	err = item.Value(func(val []byte) error {
		return bson.Unmarshal(val, &info)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode index metadata: %w", err)
	}
	return &info, nil
}

func (b *BadgerIndex) Stat(ctx context.Context) (*types.IndexInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.openLocked(); err != nil {
		return nil, err
	}
	var info *types.IndexInfo
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		info, err = b.readInfo(txn)
		return err
	})
	return info, err
}

func (b *BadgerIndex) Search(ctx context.Context, vector []float32, k int) ([]types.RetrievedChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, types.ErrInvalidInput)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.openLocked(); err != nil {
		return nil, err
	}

	var results []types.RetrievedChunk
	err := b.db.View(func(txn *badger.Txn) error {
		info, err := b.readInfo(txn)
		if err != nil {
			return err
		}
		if len(vector) != info.Dimension {
			return fmt.Errorf("query has dimension %d, index has %d: %w", len(vector), info.Dimension, types.ErrEmbeddingModelMismatch)
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(indexChunkPrefix)
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var chunk types.IndexedChunk
			err := iter.Item().Value(func(val []byte) error {
				return bson.Unmarshal(val, &chunk)
			})
			if err != nil {
				return fmt.Errorf("failed to decode chunk: %w", err)
			}
			results = append(results, types.RetrievedChunk{
				Position: chunk.Position,
				Content:  chunk.Content,
				Distance: squaredL2(vector, chunk.Vector),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stable on position so equal distances keep document order
	slices.SortStableFunc(results, func(a, b types.RetrievedChunk) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (b *BadgerIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeLocked()
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

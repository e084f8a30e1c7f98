package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tieubaoca/pdfchat/config"
	"github.com/tieubaoca/pdfchat/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

// WeaviateIndex is a VectorIndex kept in a single Weaviate class. The class
// is the fixed location: every build drops and recreates it. Vectors are
// supplied by the caller, so the class has no vectorizer.
type WeaviateIndex struct {
	client    *weaviate.Client
	className string
	classes   chunkClassStore
	logger    *slog.Logger
}

// chunkClassStore is the schema and batch surface Build writes through.
type chunkClassStore interface {
	// Reset drops the class if present and creates it again empty.
	Reset(ctx context.Context) error
	Insert(ctx context.Context, objects []*models.Object) error
	Drop(ctx context.Context) error
}

var _ VectorIndex = (*WeaviateIndex)(nil)

func chunkClass(name string) *models.Class {
	return &models.Class{
		Class: name,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "position", DataType: []string{"int"}},
			{Name: "buildId", DataType: []string{"text"}},
			{Name: "model", DataType: []string{"text"}},
			{Name: "dimension", DataType: []string{"int"}},
			{Name: "chunks", DataType: []string{"int"}},
			{Name: "builtAt", DataType: []string{"int"}},
		},
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
}

func NewWeaviateIndex(config config.WeaviateStoreConfig, logger *slog.Logger) (*WeaviateIndex, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var scheme string
	if strings.HasPrefix(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
		cfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     config.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}
	className := config.ClassName
	if className == "" {
		className = "PdfChunk"
	}
	return &WeaviateIndex{
		client:    client,
		className: className,
		classes:   &weaviateClasses{client: client, className: className},
		logger:    logger.With("component", "weaviate-index"),
	}, nil
}

func (s *WeaviateIndex) classExists(ctx context.Context) (bool, error) {
	return classExists(ctx, s.client, s.className)
}

func classExists(ctx context.Context, client *weaviate.Client, className string) (bool, error) {
	exists, err := client.Schema().ClassExistenceChecker().WithClassName(className).Do(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check class %s: %w", className, err)
	}
	return exists, nil
}

// Build replaces the class with chunks. A build that fails after the class
// was reset drops the class, so no partial index is ever served.
func (s *WeaviateIndex) Build(ctx context.Context, model string, chunks []types.IndexedChunk) (*types.IndexInfo, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to index: %w", types.ErrIndexMissing)
	}
	dimension := len(chunks[0].Vector)
	for i, chunk := range chunks {
		if len(chunk.Vector) == 0 || len(chunk.Vector) != dimension {
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

	if err := s.classes.Reset(ctx); err != nil {
		s.dropPartial()
		return nil, err
	}

	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := min(i+BATCH_SIZE, total)
		objects := make([]*models.Object, 0, end-i)
		for j := i; j < end; j++ {
			objects = append(objects, chunkObject(s.className, info, j, chunks[j]))
		}
		if err := s.classes.Insert(ctx, objects); err != nil {
			s.dropPartial()
			return nil, fmt.Errorf("failed to insert batch %d-%d: %w", i, end, err)
		}
		s.logger.Debug("inserted batch", "from", i, "to", end, "total", total)
	}

	s.logger.Info("index built", "class", s.className, "build_id", info.BuildID, "chunks", info.Chunks)
	return info, nil
}

// dropPartial removes a half written class. It runs even when the build's
// context is already done.
func (s *WeaviateIndex) dropPartial() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.classes.Drop(ctx); err != nil {
		s.logger.Error("failed to drop partial index", "class", s.className, "err", err)
	}
}

func chunkObject(className string, info *types.IndexInfo, position int, chunk types.IndexedChunk) *models.Object {
	return &models.Object{
		Class: className,
		Properties: map[string]interface{}{
			"content":   chunk.Content,
			"position":  position,
			"buildId":   info.BuildID,
			"model":     info.Model,
			"dimension": info.Dimension,
			"chunks":    info.Chunks,
			"builtAt":   info.BuiltAt,
		},
		Vector: chunk.Vector,
	}
}

// weaviateClasses is the chunkClassStore backed by a live Weaviate.
type weaviateClasses struct {
	client    *weaviate.Client
	className string
}

func (w *weaviateClasses) Reset(ctx context.Context) error {
	if err := w.Drop(ctx); err != nil {
		return err
	}
	if err := w.client.Schema().ClassCreator().WithClass(chunkClass(w.className)).Do(ctx); err != nil {
		return fmt.Errorf("failed to create class %s: %w", w.className, err)
	}
	return nil
}

func (w *weaviateClasses) Drop(ctx context.Context) error {
	exists, err := classExists(ctx, w.client, w.className)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if err := w.client.Schema().ClassDeleter().WithClassName(w.className).Do(ctx); err != nil {
		return fmt.Errorf("failed to delete class %s: %w", w.className, err)
	}
	return nil
}

func (w *weaviateClasses) Insert(ctx context.Context, objects []*models.Object) error {
	resp, err := w.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return err
	}
	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return fmt.Errorf("%s", r.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

func (s *WeaviateIndex) Stat(ctx context.Context) (*types.IndexInfo, error) {
	exists, err := s.classExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, types.ErrIndexMissing
	}

	result, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(
			graphql.Field{Name: "buildId"},
			graphql.Field{Name: "model"},
			graphql.Field{Name: "dimension"},
			graphql.Field{Name: "chunks"},
			graphql.Field{Name: "builtAt"},
		).
		WithLimit(1).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("stat failed: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("stat failed: %s", result.Errors[0].Message)
	}

	items := resultItems(result.Data, s.className)
	if len(items) == 0 {
		return nil, types.ErrIndexMissing
	}
	return parseIndexInfo(items[0]), nil
}

func (s *WeaviateIndex) Search(ctx context.Context, vector []float32, k int) ([]types.RetrievedChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, types.ErrInvalidInput)
	}
	exists, err := s.classExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, types.ErrIndexMissing
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)
	result, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(
			graphql.Field{Name: "content"},
			graphql.Field{Name: "position"},
			graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
		).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("search failed: %s", result.Errors[0].Message)
	}

	items := resultItems(result.Data, s.className)
	chunks := make([]types.RetrievedChunk, 0, len(items))
	for _, item := range items {
		chunks = append(chunks, parseRetrievedChunk(item))
	}
	return chunks, nil
}

func (s *WeaviateIndex) Close() error {
	return nil
}

// Helper functions
func resultItems(data map[string]models.JSONObject, className string) []map[string]interface{} {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	raw, ok := get[className].([]interface{})
	if !ok {
		return nil
	}
	items := make([]map[string]interface{}, 0, len(raw))
	for _, r := range raw {
		if item, ok := r.(map[string]interface{}); ok {
			items = append(items, item)
		}
	}
	return items
}

func parseRetrievedChunk(item map[string]interface{}) types.RetrievedChunk {
	chunk := types.RetrievedChunk{
		Content:  parseString(item["content"]),
		Position: int(parseNumber(item["position"])),
	}
	if additional, ok := item["_additional"].(map[string]interface{}); ok {
		chunk.Distance = float32(parseNumber(additional["distance"]))
	}
	return chunk
}

func parseIndexInfo(item map[string]interface{}) *types.IndexInfo {
	return &types.IndexInfo{
		BuildID:   parseString(item["buildId"]),
		Model:     parseString(item["model"]),
		Dimension: int(parseNumber(item["dimension"])),
		Chunks:    int(parseNumber(item["chunks"])),
		BuiltAt:   int64(parseNumber(item["builtAt"])),
	}
}

func parseString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func parseNumber(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

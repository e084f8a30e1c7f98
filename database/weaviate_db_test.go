package database

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfchat/config"
	"github.com/tieubaoca/pdfchat/types"
	"github.com/weaviate/weaviate/entities/models"
)

func TestChunkClass(t *testing.T) {
	class := chunkClass("PdfChunk")
	assert.Equal(t, "PdfChunk", class.Class)
	assert.Equal(t, "none", class.Vectorizer)

	names := make([]string, 0, len(class.Properties))
	for _, p := range class.Properties {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, "content")
	assert.Contains(t, names, "position")
	assert.Contains(t, names, "buildId")
	assert.Contains(t, names, "model")
}

func TestResultItems(t *testing.T) {
	data := map[string]models.JSONObject{
		"Get": map[string]interface{}{
			"PdfChunk": []interface{}{
				map[string]interface{}{
					"content":  "first",
					"position": float64(2),
					"_additional": map[string]interface{}{
						"distance": 0.25,
					},
				},
				"garbage",
				map[string]interface{}{
					"content":  "second",
					"position": float64(7),
				},
			},
		},
	}

	items := resultItems(data, "PdfChunk")
	require.Len(t, items, 2)

	first := parseRetrievedChunk(items[0])
	assert.Equal(t, "first", first.Content)
	assert.Equal(t, 2, first.Position)
	assert.InDelta(t, 0.25, first.Distance, 1e-6)

	second := parseRetrievedChunk(items[1])
	assert.Equal(t, 7, second.Position)
	assert.Zero(t, second.Distance)

	assert.Nil(t, resultItems(data, "Other"))
	assert.Nil(t, resultItems(map[string]models.JSONObject{}, "PdfChunk"))
}

func TestParseIndexInfo(t *testing.T) {
	info := parseIndexInfo(map[string]interface{}{
		"buildId":   "b-1",
		"model":     "models/embedding-001",
		"dimension": float64(768),
		"chunks":    float64(12),
		"builtAt":   float64(1700000000),
	})
	assert.Equal(t, "b-1", info.BuildID)
	assert.Equal(t, "models/embedding-001", info.Model)
	assert.Equal(t, 768, info.Dimension)
	assert.Equal(t, 12, info.Chunks)
	assert.Equal(t, int64(1700000000), info.BuiltAt)
}

func TestNewWeaviateIndex_DefaultClass(t *testing.T) {
	idx, err := NewWeaviateIndex(config.WeaviateStoreConfig{Host: "http://localhost:8080"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "PdfChunk", idx.className)
	assert.NoError(t, idx.Close())
}

type fakeClasses struct {
	failOnInsert int
	resets       int
	inserts      int
	drops        int
	objects      []*models.Object
}

func (f *fakeClasses) Reset(ctx context.Context) error {
	f.resets++
	f.objects = nil
	return nil
}

func (f *fakeClasses) Insert(ctx context.Context, objects []*models.Object) error {
	f.inserts++
	if f.inserts == f.failOnInsert {
		return errors.New("batch rejected")
	}
	f.objects = append(f.objects, objects...)
	return nil
}

func (f *fakeClasses) Drop(ctx context.Context) error {
	f.drops++
	f.objects = nil
	return nil
}

func weaviateChunks(n int) []types.IndexedChunk {
	chunks := make([]types.IndexedChunk, n)
	for i := range chunks {
		chunks[i] = types.IndexedChunk{Content: "chunk", Vector: []float32{1, 0}}
	}
	return chunks
}

func TestWeaviateIndex_BuildBatches(t *testing.T) {
	store := &fakeClasses{}
	idx := &WeaviateIndex{className: "PdfChunk", classes: store, logger: slog.Default()}

	info, err := idx.Build(context.Background(), "m", weaviateChunks(450))
	require.NoError(t, err)
	assert.Equal(t, 450, info.Chunks)
	assert.Equal(t, 2, info.Dimension)
	assert.Equal(t, 1, store.resets)
	assert.Equal(t, 3, store.inserts)
	assert.Zero(t, store.drops)

	require.Len(t, store.objects, 450)
	for i, obj := range store.objects {
		props := obj.Properties.(map[string]interface{})
		assert.Equal(t, i, props["position"])
		assert.Equal(t, info.BuildID, props["buildId"])
	}
}

func TestWeaviateIndex_FailedBuildDropsClass(t *testing.T) {
	store := &fakeClasses{failOnInsert: 2}
	idx := &WeaviateIndex{className: "PdfChunk", classes: store, logger: slog.Default()}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := idx.Build(ctx, "m", weaviateChunks(450))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch rejected")

	assert.Equal(t, 1, store.drops)
	assert.Empty(t, store.objects)
	assert.Equal(t, 2, store.inserts)
}

func TestWeaviateIndex_BuildRejectsMixedDimensions(t *testing.T) {
	store := &fakeClasses{}
	idx := &WeaviateIndex{className: "PdfChunk", classes: store, logger: slog.Default()}

	chunks := weaviateChunks(3)
	chunks[2].Vector = []float32{1}
	_, err := idx.Build(context.Background(), "m", chunks)
	assert.ErrorIs(t, err, types.ErrInvalidInput)
	assert.Zero(t, store.resets)
}

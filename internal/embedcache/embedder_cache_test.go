package embedcache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lectern-dev/lectern/internal/ai"
	"github.com/lectern-dev/lectern/internal/model"
)

type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	c.calls++
	return []float32{float32(len(text)), 1, 2}, nil
}

func (c *countingEmbedder) ModelName() string { return "test-model" }

type memCacheStore struct {
	mu    sync.Mutex
	items map[string][]float32
}

func newMemCacheStore() *memCacheStore {
	return &memCacheStore{items: make(map[string][]float32)}
}

func (m *memCacheStore) Get(ctx context.Context, modelName, taskType, contentHash string) ([]float32, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[modelName+"/"+taskType+"/"+contentHash]
	return v, ok, nil
}

func (m *memCacheStore) Save(ctx context.Context, item *model.EmbeddingCache) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ModelName+"/"+item.TaskType+"/"+item.ContentHash] = item.Embedding
	return nil
}

func TestLruEmbedderCachesRepeatCalls(t *testing.T) {
	inner := &countingEmbedder{}
	wrapped := WrapLruCacheToEmbedder(inner, 16, time.Minute)

	first, err := wrapped.Embed(context.Background(), "hello", "retrieval_document")
	require.NoError(t, err)
	second, err := wrapped.Embed(context.Background(), "hello", "retrieval_document")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.calls)

	_, err = wrapped.Embed(context.Background(), "hello", "retrieval_query")
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestLruEmbedderReturnsCopy(t *testing.T) {
	inner := &countingEmbedder{}
	wrapped := WrapLruCacheToEmbedder(inner, 16, time.Minute)

	first, err := wrapped.Embed(context.Background(), "hello", "retrieval_document")
	require.NoError(t, err)
	first[0] = -999

	second, err := wrapped.Embed(context.Background(), "hello", "retrieval_document")
	require.NoError(t, err)
	require.NotEqual(t, float32(-999), second[0])
}

func TestDBEmbedderPersistsAndHits(t *testing.T) {
	inner := &countingEmbedder{}
	store := newMemCacheStore()
	wrapped := WrapDBCacheToEmbedder(inner, store)

	first, err := wrapped.Embed(context.Background(), "some chapter text", "retrieval_document")
	require.NoError(t, err)
	require.Equal(t, 1, inner.calls)

	second, err := wrapped.Embed(context.Background(), "some chapter text", "retrieval_document")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.calls)
}

func TestWrapHelpersPassThroughWhenDisabled(t *testing.T) {
	inner := &countingEmbedder{}
	require.Equal(t, ai.IEmbedder(inner), WrapLruCacheToEmbedder(inner, 0, time.Minute))
	require.Equal(t, ai.IEmbedder(inner), WrapDBCacheToEmbedder(inner, nil))
	require.Nil(t, WrapLruCacheToEmbedder(nil, 16, time.Minute))
}

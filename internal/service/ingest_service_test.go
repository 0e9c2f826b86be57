package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lectern-dev/lectern/internal/chunker"
	"github.com/lectern-dev/lectern/internal/model"
	appErr "github.com/lectern-dev/lectern/internal/pkg/errors"
	"github.com/lectern-dev/lectern/internal/repo"
)

type memChunkStore struct {
	mu      sync.Mutex
	chunks  map[string][]*model.ChapterChunk
	indexes map[string]*model.ChapterIndex
}

func newMemChunkStore() *memChunkStore {
	return &memChunkStore{
		chunks:  make(map[string][]*model.ChapterChunk),
		indexes: make(map[string]*model.ChapterIndex),
	}
}

func (m *memChunkStore) ReplaceForChapter(ctx context.Context, chapterID string, chunks []*model.ChapterChunk, index *model.ChapterIndex) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[chapterID] = chunks
	m.indexes[chapterID] = index
	return nil
}

func (m *memChunkStore) GetIndex(ctx context.Context, chapterID string) (*model.ChapterIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	index, ok := m.indexes[chapterID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return index, nil
}

func (m *memChunkStore) ListIndexes(ctx context.Context) ([]*model.ChapterIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ChapterIndex
	for _, index := range m.indexes {
		out = append(out, index)
	}
	return out, nil
}

func (m *memChunkStore) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]*repo.ChunkMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*repo.ChunkMatch
	for _, chunks := range m.chunks {
		for _, chunk := range chunks {
			out = append(out, &repo.ChunkMatch{Chunk: chunk, Distance: 0.25})
			if len(out) == limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func (m *memChunkStore) ListByChapter(ctx context.Context, chapterID string) ([]*model.ChapterChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chunks[chapterID], nil
}

type stubEmbedder struct {
	err   error
	calls int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 2, 3}, nil
}

func newTestIngest(t *testing.T, chapters map[string]string) (*IngestService, *memChunkStore, *stubEmbedder) {
	splitter, err := chunker.NewSplitter(1000, 200)
	require.NoError(t, err)
	chunks := newMemChunkStore()
	emb := &stubEmbedder{}
	return NewIngestService(&memContent{chapters: chapters}, chunks, splitter, emb), chunks, emb
}

func TestReindexCreatesChunksAndIndex(t *testing.T) {
	svc, chunks, emb := newTestIngest(t, map[string]string{
		"ch-1": "# Intro\n\nFirst paragraph.\n\n## Details\n\nSecond paragraph.",
	})

	res, err := svc.Reindex(context.Background(), "ch-1", false)
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.Equal(t, res.ChunkCount, len(chunks.chunks["ch-1"]))
	require.Greater(t, emb.calls, 0)

	index, err := chunks.GetIndex(context.Background(), "ch-1")
	require.NoError(t, err)
	require.Len(t, index.ContentHash, 32)
	require.Equal(t, res.ChunkCount, index.ChunkCount)
}

func TestReindexSkipsUnchangedContent(t *testing.T) {
	svc, _, emb := newTestIngest(t, map[string]string{"ch-1": "# Intro\n\nBody."})

	_, err := svc.Reindex(context.Background(), "ch-1", false)
	require.NoError(t, err)
	firstCalls := emb.calls

	res, err := svc.Reindex(context.Background(), "ch-1", false)
	require.NoError(t, err)
	require.True(t, res.Skipped)
	require.Equal(t, firstCalls, emb.calls)

	res, err = svc.Reindex(context.Background(), "ch-1", true)
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.Greater(t, emb.calls, firstCalls)
}

func TestReindexKeepsChunksWhenEmbeddingFails(t *testing.T) {
	svc, chunks, emb := newTestIngest(t, map[string]string{"ch-1": "# Intro\n\nBody."})
	emb.err = fmt.Errorf("embedder down")

	res, err := svc.Reindex(context.Background(), "ch-1", false)
	require.NoError(t, err)
	require.Greater(t, res.ChunkCount, 0)
	for _, chunk := range chunks.chunks["ch-1"] {
		require.Nil(t, chunk.Embedding)
	}
}

func TestReindexMissingChapter(t *testing.T) {
	svc, _, _ := newTestIngest(t, map[string]string{})
	_, err := svc.Reindex(context.Background(), "nope", false)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestReindexAllContinuesPastFailures(t *testing.T) {
	svc, _, _ := newTestIngest(t, map[string]string{
		"ch-1": "# One\n\nBody.",
		"ch-2": "# Two\n\nBody.",
	})
	results, err := svc.ReindexAll(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestSearchReturnsScoredMatches(t *testing.T) {
	svc, _, _ := newTestIngest(t, map[string]string{"ch-1": "# Intro\n\nRobot arms move."})
	_, err := svc.Reindex(context.Background(), "ch-1", false)
	require.NoError(t, err)

	matches, err := svc.Search(context.Background(), "robot arm", 5)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	require.Equal(t, "ch-1", matches[0].ChapterID)
	require.InDelta(t, 0.75, matches[0].Score, 0.001)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	svc, _, _ := newTestIngest(t, map[string]string{})
	_, err := svc.Search(context.Background(), "", 5)
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

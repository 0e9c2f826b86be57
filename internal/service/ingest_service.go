package service

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lectern-dev/lectern/internal/chunker"
	"github.com/lectern-dev/lectern/internal/fingerprint"
	"github.com/lectern-dev/lectern/internal/model"
	appErr "github.com/lectern-dev/lectern/internal/pkg/errors"
	"github.com/lectern-dev/lectern/internal/repo"
)

const (
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"
)

type chunkStore interface {
	ReplaceForChapter(ctx context.Context, chapterID string, chunks []*model.ChapterChunk, index *model.ChapterIndex) error
	GetIndex(ctx context.Context, chapterID string) (*model.ChapterIndex, error)
	ListIndexes(ctx context.Context) ([]*model.ChapterIndex, error)
	Search(ctx context.Context, queryEmbedding []float32, limit int) ([]*repo.ChunkMatch, error)
	ListByChapter(ctx context.Context, chapterID string) ([]*model.ChapterChunk, error)
}

type embedder interface {
	Embed(ctx context.Context, text string, taskType string) ([]float32, error)
}

// IngestService chunks chapters and maintains their embeddings. Reindexing
// is hash-gated: a chapter whose content fingerprint matches the stored
// index entry is skipped unless forced.
type IngestService struct {
	store    contentSource
	chunks   chunkStore
	splitter *chunker.Splitter
	ai       embedder
}

func NewIngestService(store contentSource, chunks chunkStore, splitter *chunker.Splitter, ai embedder) *IngestService {
	return &IngestService{store: store, chunks: chunks, splitter: splitter, ai: ai}
}

type ReindexResult struct {
	ChapterID  string `json:"chapter_id"`
	ChunkCount int    `json:"chunk_count"`
	Skipped    bool   `json:"skipped"`
}

func (s *IngestService) Reindex(ctx context.Context, chapterID string, force bool) (*ReindexResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("chapter_id", chapterID))

	raw, err := s.store.Read(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	contentHash := fingerprint.FromContent(raw)

	if !force {
		index, err := s.chunks.GetIndex(ctx, chapterID)
		if err == nil && index.ContentHash == contentHash {
			return &ReindexResult{ChapterID: chapterID, ChunkCount: index.ChunkCount, Skipped: true}, nil
		}
		if err != nil && !appErr.IsNotFound(err) {
			return nil, err
		}
	}

	pieces := s.splitter.Split(string(raw))
	headings := chunker.Headings(raw)
	now := time.Now().Unix()
	chunks := make([]*model.ChapterChunk, 0, len(pieces))
	for _, piece := range pieces {
		embedding, err := s.ai.Embed(ctx, piece.Text, taskTypeDocument)
		if err != nil {
			// Index without the vector rather than dropping the chunk.
			logger.Warn("failed to embed chunk", zap.Int("seq", piece.Index), zap.Error(err))
			embedding = nil
		}
		chunks = append(chunks, &model.ChapterChunk{
			ChapterID: chapterID,
			Seq:       piece.Index,
			Total:     piece.Total,
			Content:   piece.Text,
			Heading:   chunker.NearestHeading(headings, piece.Offset),
			Offset:    piece.Offset,
			Embedding: embedding,
			Ctime:     now,
		})
	}
	index := &model.ChapterIndex{
		ChapterID:   chapterID,
		ContentHash: contentHash,
		ChunkCount:  len(chunks),
		Mtime:       now,
	}
	if err := s.chunks.ReplaceForChapter(ctx, chapterID, chunks, index); err != nil {
		return nil, err
	}
	logger.Info("chapter reindexed", zap.Int("chunks", len(chunks)))
	return &ReindexResult{ChapterID: chapterID, ChunkCount: len(chunks)}, nil
}

// ReindexAll walks every stored chapter. Per-chapter failures are logged and
// skipped so one broken file cannot stall the sweep.
func (s *IngestService) ReindexAll(ctx context.Context, force bool) ([]*ReindexResult, error) {
	ids, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]*ReindexResult, 0, len(ids))
	for _, id := range ids {
		res, err := s.Reindex(ctx, id, force)
		if err != nil {
			logutil.GetLogger(ctx).Error("reindex failed", zap.String("chapter_id", id), zap.Error(err))
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

type SearchMatch struct {
	ChapterID string  `json:"chapter_id"`
	Seq       int     `json:"seq"`
	Heading   string  `json:"heading,omitempty"`
	Content   string  `json:"content"`
	Score     float64 `json:"score"`
}

// Search embeds the query and returns the closest chunks. Score is inverted
// cosine distance so bigger means closer.
func (s *IngestService) Search(ctx context.Context, query string, limit int) ([]*SearchMatch, error) {
	if query == "" {
		return nil, appErr.ErrInvalid
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	embedding, err := s.ai.Embed(ctx, query, taskTypeQuery)
	if err != nil {
		return nil, err
	}
	matches, err := s.chunks.Search(ctx, embedding, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*SearchMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, &SearchMatch{
			ChapterID: m.Chunk.ChapterID,
			Seq:       m.Chunk.Seq,
			Heading:   m.Chunk.Heading,
			Content:   m.Chunk.Content,
			Score:     1 - m.Distance,
		})
	}
	return out, nil
}

func (s *IngestService) Chunks(ctx context.Context, chapterID string) ([]*model.ChapterChunk, error) {
	return s.chunks.ListByChapter(ctx, chapterID)
}

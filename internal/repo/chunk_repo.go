package repo

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"

	"github.com/lectern-dev/lectern/internal/model"
	appErr "github.com/lectern-dev/lectern/internal/pkg/errors"
)

type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// ReplaceForChapter swaps a chapter's chunk set atomically and records the
// index state in the same transaction, so readers never observe a chapter
// that is half reindexed.
func (r *ChunkRepo) ReplaceForChapter(ctx context.Context, chapterID string, chunks []*model.ChapterChunk, index *model.ChapterIndex) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chapter_chunks WHERE chapter_id = $1`, chapterID); err != nil {
		return err
	}
	const insert = `
		INSERT INTO chapter_chunks (chapter_id, seq, total, content, heading, chunk_offset, embedding, ctime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, chunk := range chunks {
		var embedding interface{}
		if len(chunk.Embedding) > 0 {
			embedding = pgvector.NewVector(chunk.Embedding)
		}
		if _, err := tx.ExecContext(ctx, insert,
			chunk.ChapterID, chunk.Seq, chunk.Total, chunk.Content,
			chunk.Heading, chunk.Offset, embedding, chunk.Ctime); err != nil {
			return err
		}
	}
	const upsertIndex = `
		INSERT INTO chapter_index (chapter_id, content_hash, chunk_count, mtime)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chapter_id) DO UPDATE SET
			content_hash = EXCLUDED.content_hash,
			chunk_count = EXCLUDED.chunk_count,
			mtime = EXCLUDED.mtime
	`
	if _, err := tx.ExecContext(ctx, upsertIndex,
		index.ChapterID, index.ContentHash, index.ChunkCount, index.Mtime); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ChunkRepo) GetIndex(ctx context.Context, chapterID string) (*model.ChapterIndex, error) {
	const query = `SELECT chapter_id, content_hash, chunk_count, mtime FROM chapter_index WHERE chapter_id = $1`
	row := r.db.QueryRowContext(ctx, query, chapterID)
	var index model.ChapterIndex
	if err := row.Scan(&index.ChapterID, &index.ContentHash, &index.ChunkCount, &index.Mtime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &index, nil
}

func (r *ChunkRepo) ListIndexes(ctx context.Context) ([]*model.ChapterIndex, error) {
	const query = `SELECT chapter_id, content_hash, chunk_count, mtime FROM chapter_index`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var indexes []*model.ChapterIndex
	for rows.Next() {
		var index model.ChapterIndex
		if err := rows.Scan(&index.ChapterID, &index.ContentHash, &index.ChunkCount, &index.Mtime); err != nil {
			return nil, err
		}
		indexes = append(indexes, &index)
	}
	return indexes, rows.Err()
}

type ChunkMatch struct {
	Chunk    *model.ChapterChunk
	Distance float64
}

// Search ranks chunks by cosine distance to the query embedding.
func (r *ChunkRepo) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]*ChunkMatch, error) {
	const query = `
		SELECT chapter_id, seq, total, content, heading, chunk_offset, embedding <=> $1
		FROM chapter_chunks
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, pgvector.NewVector(queryEmbedding), limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var matches []*ChunkMatch
	for rows.Next() {
		var chunk model.ChapterChunk
		var distance float64
		if err := rows.Scan(&chunk.ChapterID, &chunk.Seq, &chunk.Total,
			&chunk.Content, &chunk.Heading, &chunk.Offset, &distance); err != nil {
			return nil, err
		}
		matches = append(matches, &ChunkMatch{Chunk: &chunk, Distance: distance})
	}
	return matches, rows.Err()
}

func (r *ChunkRepo) ListByChapter(ctx context.Context, chapterID string) ([]*model.ChapterChunk, error) {
	const query = `
		SELECT chapter_id, seq, total, content, heading, chunk_offset
		FROM chapter_chunks
		WHERE chapter_id = $1
		ORDER BY seq
	`
	rows, err := r.db.QueryContext(ctx, query, chapterID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var chunks []*model.ChapterChunk
	for rows.Next() {
		var chunk model.ChapterChunk
		if err := rows.Scan(&chunk.ChapterID, &chunk.Seq, &chunk.Total,
			&chunk.Content, &chunk.Heading, &chunk.Offset); err != nil {
			return nil, err
		}
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}

package repo

import (
	"context"
	"database/sql"

	"github.com/lectern-dev/lectern/internal/model"
	appErr "github.com/lectern-dev/lectern/internal/pkg/errors"
)

type TranslationCacheRepo struct {
	db *sql.DB
}

func NewTranslationCacheRepo(db *sql.DB) *TranslationCacheRepo {
	return &TranslationCacheRepo{db: db}
}

func (r *TranslationCacheRepo) Get(ctx context.Context, chapterID, language, contentHash string) (*model.TranslationCache, error) {
	const query = `
		SELECT id, chapter_id, language, content_hash, content, version, ctime, mtime
		FROM translation_cache
		WHERE chapter_id = $1 AND language = $2 AND content_hash = $3
	`
	row := r.db.QueryRowContext(ctx, query, chapterID, language, contentHash)
	var item model.TranslationCache
	err := row.Scan(&item.ID, &item.ChapterID, &item.Language, &item.ContentHash,
		&item.Content, &item.Version, &item.Ctime, &item.Mtime)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Upsert writes the stored version back into item so callers report the real
// counter after a conflicting regeneration bumped it.
func (r *TranslationCacheRepo) Upsert(ctx context.Context, item *model.TranslationCache) error {
	const query = `
		INSERT INTO translation_cache (chapter_id, language, content_hash, content, version, ctime, mtime)
		VALUES ($1, $2, $3, $4, 1, $5, $6)
		ON CONFLICT (chapter_id, language, content_hash) DO UPDATE SET
			content = EXCLUDED.content,
			version = translation_cache.version + 1,
			mtime = EXCLUDED.mtime
		RETURNING version
	`
	return r.db.QueryRowContext(ctx, query,
		item.ChapterID,
		item.Language,
		item.ContentHash,
		item.Content,
		item.Ctime,
		item.Mtime,
	).Scan(&item.Version)
}

func (r *TranslationCacheRepo) DeleteByChapter(ctx context.Context, chapterID string) (int64, error) {
	const query = `DELETE FROM translation_cache WHERE chapter_id = $1`
	res, err := r.db.ExecContext(ctx, query, chapterID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type TranslationCacheStats struct {
	Entries      int64
	Chapters     int64
	AvgVersion   float64
	ContentBytes int64
	ByLanguage   map[string]int64
}

func (r *TranslationCacheRepo) Stats(ctx context.Context) (*TranslationCacheStats, error) {
	const query = `
		SELECT COUNT(*),
			COUNT(DISTINCT chapter_id),
			COALESCE(AVG(version), 0),
			COALESCE(SUM(LENGTH(content)), 0)
		FROM translation_cache
	`
	stats := &TranslationCacheStats{ByLanguage: make(map[string]int64)}
	err := r.db.QueryRowContext(ctx, query).Scan(&stats.Entries, &stats.Chapters,
		&stats.AvgVersion, &stats.ContentBytes)
	if err != nil {
		return nil, err
	}
	const byLang = `SELECT language, COUNT(*) FROM translation_cache GROUP BY language`
	rows, err := r.db.QueryContext(ctx, byLang)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var lang string
		var count int64
		if err := rows.Scan(&lang, &count); err != nil {
			return nil, err
		}
		stats.ByLanguage[lang] = count
	}
	return stats, rows.Err()
}

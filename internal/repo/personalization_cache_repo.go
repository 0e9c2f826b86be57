package repo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lectern-dev/lectern/internal/model"
	appErr "github.com/lectern-dev/lectern/internal/pkg/errors"
)

type PersonalizationCacheRepo struct {
	db *sql.DB
}

func NewPersonalizationCacheRepo(db *sql.DB) *PersonalizationCacheRepo {
	return &PersonalizationCacheRepo{db: db}
}

func (r *PersonalizationCacheRepo) Get(ctx context.Context, userID, chapterID, profileHash string) (*model.PersonalizationCache, error) {
	const query = `
		SELECT id, user_id, chapter_id, profile_hash, content, labels, version, ctime, mtime
		FROM personalization_cache
		WHERE user_id = $1 AND chapter_id = $2 AND profile_hash = $3
	`
	row := r.db.QueryRowContext(ctx, query, userID, chapterID, profileHash)
	var item model.PersonalizationCache
	var labels string
	err := row.Scan(&item.ID, &item.UserID, &item.ChapterID, &item.ProfileHash,
		&item.Content, &labels, &item.Version, &item.Ctime, &item.Mtime)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	item.Labels = splitLabels(labels)
	return &item, nil
}

// Upsert bumps version on replace so the stored counter reflects how many
// times the same (user, chapter, profile) slot was regenerated. The stored
// version is written back into item so callers report the real counter.
func (r *PersonalizationCacheRepo) Upsert(ctx context.Context, item *model.PersonalizationCache) error {
	const query = `
		INSERT INTO personalization_cache (user_id, chapter_id, profile_hash, content, labels, version, ctime, mtime)
		VALUES ($1, $2, $3, $4, $5, 1, $6, $7)
		ON CONFLICT (user_id, chapter_id, profile_hash) DO UPDATE SET
			content = EXCLUDED.content,
			labels = EXCLUDED.labels,
			version = personalization_cache.version + 1,
			mtime = EXCLUDED.mtime
		RETURNING version
	`
	return r.db.QueryRowContext(ctx, query,
		item.UserID,
		item.ChapterID,
		item.ProfileHash,
		item.Content,
		joinLabels(item.Labels),
		item.Ctime,
		item.Mtime,
	).Scan(&item.Version)
}

func (r *PersonalizationCacheRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	const query = `DELETE FROM personalization_cache WHERE user_id = $1`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PersonalizationCacheRepo) DeleteByChapter(ctx context.Context, chapterID string) (int64, error) {
	const query = `DELETE FROM personalization_cache WHERE chapter_id = $1`
	res, err := r.db.ExecContext(ctx, query, chapterID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type PersonalizationCacheStats struct {
	Entries      int64
	Users        int64
	Chapters     int64
	AvgVersion   float64
	ContentBytes int64
}

func (r *PersonalizationCacheRepo) Stats(ctx context.Context) (*PersonalizationCacheStats, error) {
	const query = `
		SELECT COUNT(*),
			COUNT(DISTINCT user_id),
			COUNT(DISTINCT chapter_id),
			COALESCE(AVG(version), 0),
			COALESCE(SUM(LENGTH(content)), 0)
		FROM personalization_cache
	`
	var stats PersonalizationCacheStats
	err := r.db.QueryRowContext(ctx, query).Scan(&stats.Entries, &stats.Users,
		&stats.Chapters, &stats.AvgVersion, &stats.ContentBytes)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func joinLabels(labels []string) string {
	return strings.Join(labels, ",")
}

func splitLabels(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

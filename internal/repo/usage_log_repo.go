package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/lectern-dev/lectern/internal/model"
	"github.com/lectern-dev/lectern/internal/pkg/dbutil"
)

type UsageLogRepo struct {
	db *sql.DB
}

func NewUsageLogRepo(db *sql.DB) *UsageLogRepo {
	return &UsageLogRepo{db: db}
}

func (r *UsageLogRepo) Insert(ctx context.Context, rec *model.UsageRecord) error {
	data := map[string]interface{}{
		"user_id":    rec.UserID,
		"chapter_id": rec.ChapterID,
		"kind":       rec.Kind,
		"labels":     joinLabels(rec.Labels),
		"latency_ms": rec.LatencyMS,
		"cached":     rec.Cached,
		"provider":   rec.Provider,
		"ctime":      rec.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("usage_logs", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

type UsageCounts struct {
	Total        int64
	Cached       int64
	AvgLatencyMS float64
}

func (r *UsageLogRepo) CountsByKind(ctx context.Context, kind string) (*UsageCounts, error) {
	const query = `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN cached THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(latency_ms), 0)
		FROM usage_logs
		WHERE kind = $1
	`
	var counts UsageCounts
	err := r.db.QueryRowContext(ctx, query, kind).Scan(&counts.Total, &counts.Cached, &counts.AvgLatencyMS)
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

func (r *UsageLogRepo) CountsByUser(ctx context.Context, userID string) (map[string]int64, error) {
	const query = `SELECT kind, COUNT(*) FROM usage_logs WHERE user_id = $1 GROUP BY kind`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	counts := make(map[string]int64)
	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		counts[kind] = count
	}
	return counts, rows.Err()
}

func (r *UsageLogRepo) RecentByUser(ctx context.Context, userID string, limit int) ([]*model.UsageRecord, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "ctime desc",
		"_limit":   []uint{0, uint(limit)},
	}
	fields := []string{"id", "user_id", "chapter_id", "kind", "labels", "latency_ms", "cached", "provider", "ctime"}
	sqlStr, args, err := builder.BuildSelect("usage_logs", where, fields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var recs []*model.UsageRecord
	for rows.Next() {
		var rec model.UsageRecord
		var labels string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ChapterID, &rec.Kind,
			&labels, &rec.LatencyMS, &rec.Cached, &rec.Provider, &rec.Ctime); err != nil {
			return nil, err
		}
		rec.Labels = splitLabels(labels)
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

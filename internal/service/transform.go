package service

import (
	"context"

	"github.com/lectern-dev/lectern/internal/model"
	"github.com/lectern-dev/lectern/internal/repo"
)

// TransformResult is the common envelope for personalize and translate
// calls. On fallback the content is the untouched original chapter.
type TransformResult struct {
	ChapterID      string   `json:"chapter_id"`
	Content        string   `json:"content"`
	Cached         bool     `json:"cached"`
	FallbackUsed   bool     `json:"fallback_used"`
	FallbackReason string   `json:"fallback_reason,omitempty"`
	Provider       string   `json:"provider,omitempty"`
	Labels         []string `json:"labels,omitempty"`
	Language       string   `json:"language,omitempty"`
	Fingerprint    string   `json:"fingerprint"`
	Version        int      `json:"version,omitempty"`
	LatencyMS      int64    `json:"processing_time_ms"`
}

const labelFallback = "fallback"

type contentSource interface {
	Read(ctx context.Context, chapterID string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
}

type usageLogStore interface {
	Insert(ctx context.Context, rec *model.UsageRecord) error
	CountsByKind(ctx context.Context, kind string) (*repo.UsageCounts, error)
	CountsByUser(ctx context.Context, userID string) (map[string]int64, error)
}

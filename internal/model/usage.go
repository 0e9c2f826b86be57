package model

const (
	TransformKindPersonalize = "personalize"
	TransformKindTranslate   = "translate"
)

// UsageRecord is one append-only row per orchestration attempt. Rows are
// never mutated or deleted; statistics are derived from them.
type UsageRecord struct {
	ID        int64    `json:"id"`
	UserID    string   `json:"user_id"`
	ChapterID string   `json:"chapter_id"`
	Kind      string   `json:"kind"`
	Labels    []string `json:"labels"`
	LatencyMS int64    `json:"latency_ms"`
	Cached    bool     `json:"cached"`
	Provider  string   `json:"provider"`
	Ctime     int64    `json:"ctime"`
}

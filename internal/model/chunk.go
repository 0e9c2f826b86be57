package model

// ChapterChunk is a disposable retrieval artifact: one bounded slice of a
// chapter plus its embedding. Recomputed wholesale on every reindex.
type ChapterChunk struct {
	ID        int64     `json:"id"`
	ChapterID string    `json:"chapter_id"`
	Seq       int       `json:"seq"`
	Total     int       `json:"total"`
	Content   string    `json:"content"`
	Heading   string    `json:"heading"`
	Offset    int       `json:"offset"`
	Embedding []float32 `json:"-"`
	Ctime     int64     `json:"ctime"`
}

// ChapterIndex records what content a chapter's chunks were built from, so
// the reindex job can skip chapters whose source has not changed.
type ChapterIndex struct {
	ChapterID   string `json:"chapter_id"`
	ContentHash string `json:"content_hash"`
	ChunkCount  int    `json:"chunk_count"`
	Mtime       int64  `json:"mtime"`
}

type EmbeddingCache struct {
	ModelName   string    `json:"model_name"`
	TaskType    string    `json:"task_type"`
	ContentHash string    `json:"content_hash"`
	Embedding   []float32 `json:"embedding"`
	Ctime       int64     `json:"ctime"`
}

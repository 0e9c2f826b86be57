package model

// PersonalizationCache is one cached personalized rendition of a chapter,
// unique per (user, chapter, profile fingerprint).
type PersonalizationCache struct {
	ID          int64    `json:"id"`
	UserID      string   `json:"user_id"`
	ChapterID   string   `json:"chapter_id"`
	ProfileHash string   `json:"profile_hash"`
	Content     string   `json:"content"`
	Labels      []string `json:"labels"`
	Version     int      `json:"version"`
	Ctime       int64    `json:"ctime"`
	Mtime       int64    `json:"mtime"`
}

// TranslationCache is one cached translation, shared across users,
// unique per (chapter, language, source content fingerprint).
type TranslationCache struct {
	ID          int64  `json:"id"`
	ChapterID   string `json:"chapter_id"`
	Language    string `json:"language"`
	ContentHash string `json:"content_hash"`
	Content     string `json:"content"`
	Version     int    `json:"version"`
	Ctime       int64  `json:"ctime"`
	Mtime       int64  `json:"mtime"`
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lectern-dev/lectern/internal/fingerprint"
	"github.com/lectern-dev/lectern/internal/model"
	appErr "github.com/lectern-dev/lectern/internal/pkg/errors"
	"github.com/lectern-dev/lectern/internal/repo"
)

type translationCacheStore interface {
	Get(ctx context.Context, chapterID, language, contentHash string) (*model.TranslationCache, error)
	Upsert(ctx context.Context, item *model.TranslationCache) error
	DeleteByChapter(ctx context.Context, chapterID string) (int64, error)
	Stats(ctx context.Context) (*repo.TranslationCacheStats, error)
}

type translator interface {
	Translate(ctx context.Context, content string, targetLanguage string) (string, string, error)
	MaxInputChars() int
}

// TranslateService caches translations per (chapter, language, content
// fingerprint). The fingerprint covers the raw chapter bytes, so editing the
// source automatically invalidates every language without bookkeeping.
type TranslateService struct {
	cache translationCacheStore
	store contentSource
	ai    translator
	usage usageLogStore
}

func NewTranslateService(cache translationCacheStore, store contentSource, ai translator, usage usageLogStore) *TranslateService {
	return &TranslateService{cache: cache, store: store, ai: ai, usage: usage}
}

// Translate renders chapterID into language. When content is non-empty it is
// translated instead of the stored chapter; ad-hoc input shares the cache via
// the same fingerprint scheme.
func (s *TranslateService) Translate(ctx context.Context, userID, chapterID, language, content string) (*TransformResult, error) {
	start := time.Now()
	logger := logutil.GetLogger(ctx).With(zap.String("chapter_id", chapterID), zap.String("language", language))

	language = strings.TrimSpace(language)
	if language == "" {
		return nil, fmt.Errorf("target language is required: %w", appErr.ErrInvalid)
	}

	original := content
	if original == "" {
		raw, err := s.store.Read(ctx, chapterID)
		if err != nil {
			return nil, err
		}
		original = string(raw)
	}
	contentHash := fingerprint.FromContent([]byte(original))

	entry, err := s.cache.Get(ctx, chapterID, language, contentHash)
	if err == nil {
		res := &TransformResult{
			ChapterID:   chapterID,
			Content:     entry.Content,
			Cached:      true,
			Language:    language,
			Fingerprint: contentHash,
			Version:     entry.Version,
			LatencyMS:   time.Since(start).Milliseconds(),
		}
		s.logUsage(ctx, userID, chapterID, nil, res.LatencyMS, true, "")
		return res, nil
	}
	if !appErr.IsNotFound(err) {
		logger.Warn("translation cache lookup failed, treating as miss", zap.Error(err))
	}

	res := &TransformResult{
		ChapterID:   chapterID,
		Language:    language,
		Fingerprint: contentHash,
	}
	translated, provider, genErr := s.generate(ctx, original, language)
	if genErr != nil {
		logger.Warn("translation failed, falling back to original content", zap.Error(genErr))
		res.Content = original
		res.FallbackUsed = true
		res.FallbackReason = "generator_error"
		if errors.Is(genErr, errStructureChanged) {
			res.FallbackReason = "validation_failed"
		}
	} else {
		res.Content = translated
		res.Provider = provider
		res.Version = 1
		now := time.Now().Unix()
		entry := &model.TranslationCache{
			ChapterID:   chapterID,
			Language:    language,
			ContentHash: contentHash,
			Content:     translated,
			Ctime:       now,
			Mtime:       now,
		}
		if err := s.cache.Upsert(ctx, entry); err != nil {
			logger.Warn("failed to store translation", zap.Error(err))
		} else {
			res.Version = entry.Version
		}
	}
	res.LatencyMS = time.Since(start).Milliseconds()
	var logLabels []string
	if res.FallbackUsed {
		logLabels = []string{labelFallback}
	}
	s.logUsage(ctx, userID, chapterID, logLabels, res.LatencyMS, false, res.Provider)
	return res, nil
}

func (s *TranslateService) generate(ctx context.Context, original, language string) (string, string, error) {
	if max := s.ai.MaxInputChars(); max > 0 && len(original) > max {
		return "", "", appErr.ErrInvalid
	}
	translated, provider, err := s.ai.Translate(ctx, original, language)
	if err != nil {
		return "", "", err
	}
	if err := validateTranslation(original, translated); err != nil {
		return "", "", err
	}
	return translated, provider, nil
}

var errStructureChanged = errors.New("translation changed structural markers")

// validateTranslation rejects output that gained or lost structural markers.
// Code fences, math delimiters and markdown links must survive translation
// unchanged in number.
func validateTranslation(source, translated string) error {
	for _, marker := range []string{"```", "$", "]("} {
		if strings.Count(source, marker) != strings.Count(translated, marker) {
			return fmt.Errorf("marker %q count mismatch: %w", marker, errStructureChanged)
		}
	}
	return nil
}

func (s *TranslateService) InvalidateByChapter(ctx context.Context, chapterID string) (int64, error) {
	return s.cache.DeleteByChapter(ctx, chapterID)
}

type TranslateStats struct {
	Entries      int64            `json:"entries"`
	Chapters     int64            `json:"chapters"`
	ContentBytes int64            `json:"content_bytes"`
	AvgVersion   float64          `json:"avg_version"`
	HitRate      float64          `json:"hit_rate"`
	Requests     int64            `json:"requests"`
	ByLanguage   map[string]int64 `json:"by_language"`
}

func (s *TranslateService) Stats(ctx context.Context) (*TranslateStats, error) {
	cacheStats, err := s.cache.Stats(ctx)
	if err != nil {
		return nil, err
	}
	out := &TranslateStats{
		Entries:      cacheStats.Entries,
		Chapters:     cacheStats.Chapters,
		ContentBytes: cacheStats.ContentBytes,
		AvgVersion:   cacheStats.AvgVersion,
		ByLanguage:   cacheStats.ByLanguage,
	}
	counts, err := s.usage.CountsByKind(ctx, model.TransformKindTranslate)
	if err != nil {
		return nil, err
	}
	out.Requests = counts.Total
	if counts.Total > 0 {
		out.HitRate = float64(counts.Cached) / float64(counts.Total) * 100
	} else if cacheStats.AvgVersion > 0 {
		out.HitRate = (cacheStats.AvgVersion - 1) / cacheStats.AvgVersion * 100
	}
	return out, nil
}

func (s *TranslateService) logUsage(ctx context.Context, userID, chapterID string, labels []string, latencyMS int64, cached bool, provider string) {
	if s.usage == nil {
		return
	}
	err := s.usage.Insert(ctx, &model.UsageRecord{
		UserID:    userID,
		ChapterID: chapterID,
		Kind:      model.TransformKindTranslate,
		Labels:    labels,
		LatencyMS: latencyMS,
		Cached:    cached,
		Provider:  provider,
		Ctime:     time.Now().Unix(),
	})
	if err != nil {
		logutil.GetLogger(ctx).Warn("failed to record usage", zap.String("kind", model.TransformKindTranslate), zap.Error(err))
	}
}

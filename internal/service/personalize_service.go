package service

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lectern-dev/lectern/internal/fingerprint"
	"github.com/lectern-dev/lectern/internal/model"
	appErr "github.com/lectern-dev/lectern/internal/pkg/errors"
	"github.com/lectern-dev/lectern/internal/repo"
)

type personalizationCacheStore interface {
	Get(ctx context.Context, userID, chapterID, profileHash string) (*model.PersonalizationCache, error)
	Upsert(ctx context.Context, item *model.PersonalizationCache) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteByChapter(ctx context.Context, chapterID string) (int64, error)
	Stats(ctx context.Context) (*repo.PersonalizationCacheStats, error)
}

type personalizer interface {
	Personalize(ctx context.Context, content string, attrs map[string]string, labels []string) (string, string, error)
	MaxInputChars() int
}

// PersonalizeService is the cache-first orchestrator for profile-adapted
// chapters. Generation failures never surface to the caller: the original
// chapter is returned with FallbackUsed set. Only a missing chapter is an
// error.
type PersonalizeService struct {
	cache personalizationCacheStore
	store contentSource
	ai    personalizer
	usage usageLogStore
}

func NewPersonalizeService(cache personalizationCacheStore, store contentSource, ai personalizer, usage usageLogStore) *PersonalizeService {
	return &PersonalizeService{cache: cache, store: store, ai: ai, usage: usage}
}

func (s *PersonalizeService) Personalize(ctx context.Context, userID, chapterID string, profile model.Profile) (*TransformResult, error) {
	start := time.Now()
	logger := logutil.GetLogger(ctx).With(zap.String("user_id", userID), zap.String("chapter_id", chapterID))

	labels := TransformationLabels(profile)
	profileHash := fingerprint.FromAttributes(profile.Attributes())

	entry, err := s.cache.Get(ctx, userID, chapterID, profileHash)
	if err == nil {
		res := &TransformResult{
			ChapterID:   chapterID,
			Content:     entry.Content,
			Cached:      true,
			Labels:      entry.Labels,
			Fingerprint: profileHash,
			Version:     entry.Version,
			LatencyMS:   time.Since(start).Milliseconds(),
		}
		s.logUsage(ctx, userID, chapterID, model.TransformKindPersonalize, labels, res.LatencyMS, true, "")
		return res, nil
	}
	if !appErr.IsNotFound(err) {
		logger.Warn("personalization cache lookup failed, treating as miss", zap.Error(err))
	}

	raw, err := s.store.Read(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	original := string(raw)

	res := &TransformResult{
		ChapterID:   chapterID,
		Labels:      labels,
		Fingerprint: profileHash,
	}
	content, provider, genErr := s.generate(ctx, original, profile, labels)
	if genErr != nil {
		logger.Warn("personalization failed, falling back to original content", zap.Error(genErr))
		res.Content = original
		res.FallbackUsed = true
		res.FallbackReason = "generator_error"
	} else {
		res.Content = content
		res.Provider = provider
		res.Version = 1
		now := time.Now().Unix()
		entry := &model.PersonalizationCache{
			UserID:      userID,
			ChapterID:   chapterID,
			ProfileHash: profileHash,
			Content:     content,
			Labels:      labels,
			Ctime:       now,
			Mtime:       now,
		}
		if err := s.cache.Upsert(ctx, entry); err != nil {
			logger.Warn("failed to store personalized chapter", zap.Error(err))
		} else {
			// A concurrent miss may have raced us; report the version the
			// store actually holds.
			res.Version = entry.Version
		}
	}
	res.LatencyMS = time.Since(start).Milliseconds()
	logLabels := labels
	if res.FallbackUsed {
		logLabels = []string{labelFallback}
	}
	s.logUsage(ctx, userID, chapterID, model.TransformKindPersonalize, logLabels, res.LatencyMS, false, res.Provider)
	return res, nil
}

func (s *PersonalizeService) generate(ctx context.Context, original string, profile model.Profile, labels []string) (string, string, error) {
	if max := s.ai.MaxInputChars(); max > 0 && len(original) > max {
		return "", "", appErr.ErrInvalid
	}
	if len(labels) == 0 {
		// Nothing to adapt; serve the original without burning tokens.
		return original, "", nil
	}
	return s.ai.Personalize(ctx, original, profile.Attributes(), labels)
}

func (s *PersonalizeService) InvalidateByUser(ctx context.Context, userID string) (int64, error) {
	return s.cache.DeleteByUser(ctx, userID)
}

func (s *PersonalizeService) InvalidateByChapter(ctx context.Context, chapterID string) (int64, error) {
	return s.cache.DeleteByChapter(ctx, chapterID)
}

type PersonalizeStats struct {
	Entries      int64   `json:"entries"`
	Users        int64   `json:"users"`
	Chapters     int64   `json:"chapters"`
	ContentBytes int64   `json:"content_bytes"`
	AvgVersion   float64 `json:"avg_version"`
	HitRate      float64 `json:"hit_rate"`
	Requests     int64   `json:"requests"`
}

// Stats prefers the usage-log hit rate. When no requests were logged yet the
// stored version counter still gives a rough proxy: a slot at version N was
// regenerated N times, so (N-1)/N of writes were refreshes of warm entries.
func (s *PersonalizeService) Stats(ctx context.Context) (*PersonalizeStats, error) {
	cacheStats, err := s.cache.Stats(ctx)
	if err != nil {
		return nil, err
	}
	out := &PersonalizeStats{
		Entries:      cacheStats.Entries,
		Users:        cacheStats.Users,
		Chapters:     cacheStats.Chapters,
		ContentBytes: cacheStats.ContentBytes,
		AvgVersion:   cacheStats.AvgVersion,
	}
	counts, err := s.usage.CountsByKind(ctx, model.TransformKindPersonalize)
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

func (s *PersonalizeService) logUsage(ctx context.Context, userID, chapterID, kind string, labels []string, latencyMS int64, cached bool, provider string) {
	if s.usage == nil {
		return
	}
	err := s.usage.Insert(ctx, &model.UsageRecord{
		UserID:    userID,
		ChapterID: chapterID,
		Kind:      kind,
		Labels:    labels,
		LatencyMS: latencyMS,
		Cached:    cached,
		Provider:  provider,
		Ctime:     time.Now().Unix(),
	})
	if err != nil {
		logutil.GetLogger(ctx).Warn("failed to record usage", zap.String("kind", kind), zap.Error(err))
	}
}

package repo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lectern-dev/lectern/internal/model"
	appErr "github.com/lectern-dev/lectern/internal/pkg/errors"
	"github.com/lectern-dev/lectern/internal/repo"
	"github.com/lectern-dev/lectern/test/testutil"
)

func uniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestPersonalizationCacheUpsertBumpsVersion(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	cache := repo.NewPersonalizationCacheRepo(db)
	userID := uniqueID("user")
	chapterID := uniqueID("ch")
	now := time.Now().Unix()

	item := &model.PersonalizationCache{
		UserID:      userID,
		ChapterID:   chapterID,
		ProfileHash: "0123456789abcdef0123456789abcdef",
		Content:     "# Adapted v1",
		Labels:      []string{"simplify", "add-comments"},
		Ctime:       now,
		Mtime:       now,
	}
	require.NoError(t, cache.Upsert(context.Background(), item))
	require.Equal(t, 1, item.Version)

	fetched, err := cache.Get(context.Background(), userID, chapterID, item.ProfileHash)
	require.NoError(t, err)
	require.Equal(t, 1, fetched.Version)
	require.Equal(t, []string{"simplify", "add-comments"}, fetched.Labels)

	item.Content = "# Adapted v2"
	require.NoError(t, cache.Upsert(context.Background(), item))
	// Upsert reports the bumped version back to the caller.
	require.Equal(t, 2, item.Version)

	fetched, err = cache.Get(context.Background(), userID, chapterID, item.ProfileHash)
	require.NoError(t, err)
	require.Equal(t, 2, fetched.Version)
	require.Equal(t, "# Adapted v2", fetched.Content)

	deleted, err := cache.DeleteByUser(context.Background(), userID)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	_, err = cache.Get(context.Background(), userID, chapterID, item.ProfileHash)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestTranslationCacheKeyedByLanguageAndHash(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	cache := repo.NewTranslationCacheRepo(db)
	chapterID := uniqueID("ch")
	now := time.Now().Unix()

	base := &model.TranslationCache{
		ChapterID:   chapterID,
		Language:    "Spanish",
		ContentHash: "aaaa0000aaaa0000aaaa0000aaaa0000",
		Content:     "# Motores",
		Ctime:       now,
		Mtime:       now,
	}
	require.NoError(t, cache.Upsert(context.Background(), base))
	require.Equal(t, 1, base.Version)

	other := *base
	other.Language = "French"
	other.Content = "# Moteurs"
	require.NoError(t, cache.Upsert(context.Background(), &other))

	fetched, err := cache.Get(context.Background(), chapterID, "Spanish", base.ContentHash)
	require.NoError(t, err)
	require.Equal(t, "# Motores", fetched.Content)

	// A different source hash is a miss even for a cached language.
	_, err = cache.Get(context.Background(), chapterID, "Spanish", "bbbb0000bbbb0000bbbb0000bbbb0000")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	deleted, err := cache.DeleteByChapter(context.Background(), chapterID)
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)
}

func TestUsageLogCounts(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	usage := repo.NewUsageLogRepo(db)
	userID := uniqueID("user")
	now := time.Now().Unix()

	for i, cached := range []bool{false, true, true} {
		require.NoError(t, usage.Insert(context.Background(), &model.UsageRecord{
			UserID:    userID,
			ChapterID: "ch-1",
			Kind:      model.TransformKindPersonalize,
			Labels:    []string{"simplify"},
			LatencyMS: int64(100 * (i + 1)),
			Cached:    cached,
			Provider:  "gemini",
			Ctime:     now,
		}))
	}

	counts, err := usage.CountsByUser(context.Background(), userID)
	require.NoError(t, err)
	require.EqualValues(t, 3, counts[model.TransformKindPersonalize])

	recent, err := usage.RecentByUser(context.Background(), userID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, []string{"simplify"}, recent[0].Labels)
}

func TestUserRepoConflictOnDuplicateEmail(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	users := repo.NewUserRepo(db)
	email := uniqueID("user") + "@example.com"
	user := &model.User{
		ID:           uniqueID("uid"),
		Email:        email,
		PasswordHash: "hash",
		Ctime:        time.Now().Unix(),
	}
	require.NoError(t, users.Create(context.Background(), user))

	dup := *user
	dup.ID = uniqueID("uid")
	require.ErrorIs(t, users.Create(context.Background(), &dup), appErr.ErrConflict)

	fetched, err := users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	require.Equal(t, user.ID, fetched.ID)
}

func TestEmbeddingCacheRoundTripAndCleanup(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	cache := repo.NewEmbeddingCacheRepo(db)
	hash := uniqueID("hash")

	_, ok, err := cache.Get(context.Background(), "test-model", "RETRIEVAL_DOCUMENT", hash)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Save(context.Background(), &model.EmbeddingCache{
		ModelName:   "test-model",
		TaskType:    "RETRIEVAL_DOCUMENT",
		ContentHash: hash,
		Embedding:   []float32{0.1, 0.2, 0.3},
		Ctime:       time.Now().Unix(),
	}))

	values, ok, err := cache.Get(context.Background(), "test-model", "RETRIEVAL_DOCUMENT", hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, values, 3)

	deleted, err := cache.DeleteBefore(context.Background(), time.Now().Unix()+1)
	require.NoError(t, err)
	require.GreaterOrEqual(t, deleted, int64(1))
}

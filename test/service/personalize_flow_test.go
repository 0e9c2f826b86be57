package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lectern-dev/lectern/internal/contentstore"
	"github.com/lectern-dev/lectern/internal/model"
	"github.com/lectern-dev/lectern/internal/repo"
	"github.com/lectern-dev/lectern/internal/service"
	"github.com/lectern-dev/lectern/test/testutil"
)

type fixedPersonalizer struct {
	output string
	calls  int
}

func (f *fixedPersonalizer) Personalize(ctx context.Context, content string, attrs map[string]string, labels []string) (string, string, error) {
	f.calls++
	return f.output, "fixed", nil
}

func (f *fixedPersonalizer) MaxInputChars() int { return 0 }

// End-to-end miss/hit flow against real postgres repos and a local content
// store, with only the provider stubbed out.
func TestPersonalizeFlowAgainstPostgres(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intro.md"), []byte("# Intro\n\nWelcome."), 0o644))
	store, err := contentstore.New("local", map[string]interface{}{"dir": dir})
	require.NoError(t, err)

	cacheRepo := repo.NewPersonalizationCacheRepo(db)
	usageRepo := repo.NewUsageLogRepo(db)
	gen := &fixedPersonalizer{output: "# Intro (adapted)\n\nWelcome."}
	svc := service.NewPersonalizeService(cacheRepo, store, gen, usageRepo)

	profile := model.Profile{
		ProgrammingExperience: model.ExperienceBeginner,
		RoboticsExperience:    model.ExperienceNone,
		HardwareAvailability:  model.HardwareNone,
	}
	userID := "flow-user-" + t.Name()

	res, err := svc.Personalize(context.Background(), userID, "intro", profile)
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.Equal(t, gen.output, res.Content)

	res, err = svc.Personalize(context.Background(), userID, "intro", profile)
	require.NoError(t, err)
	require.True(t, res.Cached)
	require.Equal(t, 1, gen.calls)
	require.Equal(t, 1, res.Version)

	deleted, err := svc.InvalidateByUser(context.Background(), userID)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)
}

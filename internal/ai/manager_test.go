package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// blockingGenerator never answers; it only returns once the context the
// manager hands it is cancelled.
type blockingGenerator struct {
	sawDeadline bool
}

func (b *blockingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	_, b.sawDeadline = ctx.Deadline()
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGenerationTimeoutSurfacesAsGeneratorError(t *testing.T) {
	gen := &blockingGenerator{}
	chain := NewGeneratorChain([]GeneratorEntry{{Name: "slow", Generator: gen}})
	m := NewManager(chain, nil, nil, ManagerConfig{TimeoutSeconds: 1})

	start := time.Now()
	_, _, err := m.Personalize(context.Background(), "# Chapter", map[string]string{
		"programming_experience": "Beginner",
	}, []string{"simplify"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, gen.sawDeadline)
	require.Less(t, time.Since(start), 10*time.Second)
}

func TestGenerationWithoutTimeoutKeepsCallerContext(t *testing.T) {
	gen := &blockingGenerator{}
	chain := NewGeneratorChain([]GeneratorEntry{{Name: "slow", Generator: gen}})
	m := NewManager(nil, chain, nil, ManagerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := m.Translate(ctx, "# Chapter", "Spanish")
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, gen.sawDeadline)
}

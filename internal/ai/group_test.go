package ai

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	output string
	err    error
	calls  int
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

func TestGeneratorChainFirstSuccessWins(t *testing.T) {
	primary := &stubGenerator{output: "from-primary"}
	secondary := &stubGenerator{output: "from-secondary"}
	chain := NewGeneratorChain([]GeneratorEntry{
		{Name: "gemini", Generator: primary},
		{Name: "openai", Generator: secondary},
	})

	out, provider, err := chain.Generate(context.Background(), "p")
	require.NoError(t, err)
	require.Equal(t, "from-primary", out)
	require.Equal(t, "gemini", provider)
	require.Equal(t, 0, secondary.calls)
}

func TestGeneratorChainFallsThroughInOrder(t *testing.T) {
	failing := &stubGenerator{err: fmt.Errorf("quota exceeded")}
	working := &stubGenerator{output: "recovered"}
	chain := NewGeneratorChain([]GeneratorEntry{
		{Name: "gemini", Generator: failing},
		{Name: "openrouter", Generator: working},
	})

	out, provider, err := chain.Generate(context.Background(), "p")
	require.NoError(t, err)
	require.Equal(t, "recovered", out)
	require.Equal(t, "openrouter", provider)
	require.Equal(t, 1, failing.calls)
}

func TestGeneratorChainLastErrorSurfaces(t *testing.T) {
	first := &stubGenerator{err: fmt.Errorf("first down")}
	second := &stubGenerator{err: fmt.Errorf("second down")}
	chain := NewGeneratorChain([]GeneratorEntry{
		{Name: "a", Generator: first},
		{Name: "b", Generator: second},
	})

	_, _, err := chain.Generate(context.Background(), "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "second down")
}

func TestGeneratorChainSkipsNilEntries(t *testing.T) {
	working := &stubGenerator{output: "ok"}
	chain := NewGeneratorChain([]GeneratorEntry{
		{Name: "missing"},
		{Name: "real", Generator: working},
	})
	out, provider, err := chain.Generate(context.Background(), "p")
	require.NoError(t, err)
	require.Equal(t, "ok", out)
	require.Equal(t, "real", provider)
}

func TestNewGeneratorChainEmpty(t *testing.T) {
	require.Nil(t, NewGeneratorChain(nil))
}

package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSplitterRejectsBadWindows(t *testing.T) {
	_, err := NewSplitter(0, 0)
	require.Error(t, err)
	_, err = NewSplitter(100, 100)
	require.Error(t, err)
	_, err = NewSplitter(100, 150)
	require.Error(t, err)
	_, err = NewSplitter(100, -1)
	require.Error(t, err)
	s, err := NewSplitter(100, 20)
	require.NoError(t, err)
	require.Equal(t, 100, s.MaxSize())
	require.Equal(t, 20, s.Overlap())
}

func TestSplitEmptyAndWhitespace(t *testing.T) {
	s, err := NewSplitter(100, 20)
	require.NoError(t, err)
	require.Empty(t, s.Split(""))
	require.Empty(t, s.Split("  \n\n \t \n\n"))
}

func TestSplitSingleSmallParagraph(t *testing.T) {
	s, err := NewSplitter(1000, 200)
	require.NoError(t, err)
	chunks := s.Split("just one short paragraph")
	require.Len(t, chunks, 1)
	require.Equal(t, "just one short paragraph", chunks[0].Text)
	require.Equal(t, 0, chunks[0].Index)
	require.Equal(t, 1, chunks[0].Total)
	require.Equal(t, 0, chunks[0].Offset)
}

func TestSplitForcedWindowScenario(t *testing.T) {
	// 1500 identical characters with no paragraph breaks must yield exactly
	// two chunks, the second starting with the last 200 characters of the
	// first.
	s, err := NewSplitter(1000, 200)
	require.NoError(t, err)
	text := strings.Repeat("A", 1500)
	chunks := s.Split(text)
	require.Len(t, chunks, 2)
	require.Len(t, chunks[0].Text, 1000)
	require.Len(t, chunks[1].Text, 700)
	require.Equal(t, chunks[0].Text[800:], chunks[1].Text[:200])
	require.Equal(t, 0, chunks[0].Offset)
	require.Equal(t, 800, chunks[1].Offset)
}

func TestSplitForcedSentenceBoundary(t *testing.T) {
	s, err := NewSplitter(100, 10)
	require.NoError(t, err)
	// One long paragraph with a sentence boundary past the window midpoint.
	first := strings.Repeat("a", 80) + ". "
	second := strings.Repeat("b", 60)
	chunks := s.Split(first + second)
	require.Len(t, chunks, 2)
	require.Equal(t, strings.Repeat("a", 80)+".", chunks[0].Text)
	require.True(t, strings.HasSuffix(chunks[1].Text, second))
}

func TestSplitParagraphAccumulation(t *testing.T) {
	s, err := NewSplitter(100, 20)
	require.NoError(t, err)
	p1 := strings.Repeat("x", 40)
	p2 := strings.Repeat("y", 40)
	p3 := strings.Repeat("z", 40)
	chunks := s.Split(p1 + "\n\n" + p2 + "\n\n" + p3)
	// p1+p2 fit one window (82 chars), p3 overflows it.
	require.Len(t, chunks, 2)
	require.Equal(t, p1+"\n\n"+p2, chunks[0].Text)
	// Second chunk is seeded with the trailing overlap of the first.
	require.True(t, strings.HasPrefix(chunks[1].Text, chunks[0].Text[len(chunks[0].Text)-20:]))
	require.True(t, strings.HasSuffix(chunks[1].Text, p3))
	require.Equal(t, 84, chunks[1].Offset)
}

func TestSplitChunksNeverExceedMaxSize(t *testing.T) {
	s, err := NewSplitter(120, 30)
	require.NoError(t, err)
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString(strings.Repeat("w", 50+i%60))
		b.WriteString("\n\n")
	}
	for _, c := range s.Split(b.String()) {
		require.LessOrEqual(t, len(c.Text), 120)
		require.NotEmpty(t, strings.TrimSpace(c.Text))
	}
}

func TestSplitCoversAllInput(t *testing.T) {
	s, err := NewSplitter(200, 40)
	require.NoError(t, err)
	paras := []string{
		"The robot arm has six joints.",
		"Each joint is driven by a brushless motor with an encoder attached to the shaft for closed loop control.",
		"Calibration happens at startup.",
		"Sensor fusion combines IMU and odometry readings into a single pose estimate that downstream planners consume.",
	}
	text := strings.Join(paras, "\n\n")
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)
	joined := strings.Join(chunkTexts(chunks), "\n\n")
	for _, p := range paras {
		require.Contains(t, joined, p)
	}
	for i, c := range chunks {
		require.Equal(t, i, c.Index)
		require.Equal(t, len(chunks), c.Total)
	}
}

func TestSplitTerminatesOnPathologicalInput(t *testing.T) {
	// Regression guard: tiny window with near-maximal overlap must still
	// terminate in bounded chunks.
	s, err := NewSplitter(10, 9)
	require.NoError(t, err)
	text := strings.Repeat("q", 5000)
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)
	// O(L / (max - overlap)) bound.
	require.LessOrEqual(t, len(chunks), 5000+1)
	for _, c := range chunks {
		require.LessOrEqual(t, len(c.Text), 10)
	}
}

func chunkTexts(chunks []Chunk) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Text)
	}
	return out
}

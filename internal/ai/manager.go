package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type ManagerConfig struct {
	TimeoutSeconds int
	MaxInputChars  int
}

// Manager owns the prompt construction for each transformation kind and
// applies the bounded generation timeout. Provider chains are injected at
// construction; there is no package-level client state.
type Manager struct {
	personalizer *GeneratorChain
	translator   *GeneratorChain
	embedder     IEmbedder
	cfg          ManagerConfig
}

func NewManager(personalizer, translator *GeneratorChain, embedder IEmbedder, cfg ManagerConfig) *Manager {
	return &Manager{
		personalizer: personalizer,
		translator:   translator,
		embedder:     embedder,
		cfg:          cfg,
	}
}

func (m *Manager) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if m.embedder == nil {
		return nil, fmt.Errorf("embedder not configured")
	}
	return m.embedder.Embed(ctx, text, taskType)
}

// Personalize rewrites chapter content for a learner. The labels passed in
// are the same deterministic set recorded in the cache entry, so the prompt
// and the bookkeeping can never disagree about what was applied.
func (m *Manager) Personalize(ctx context.Context, content string, attrs map[string]string, labels []string) (string, string, error) {
	if m.personalizer == nil {
		return "", "", ErrUnavailable
	}
	var profile strings.Builder
	for _, key := range []string{"programming_experience", "robotics_experience", "hardware_availability"} {
		if v := attrs[key]; v != "" {
			fmt.Fprintf(&profile, "- %s: %s\n", strings.ReplaceAll(key, "_", " "), v)
		}
	}
	prompt := fmt.Sprintf(`You are an expert educational content adapter for a robotics textbook.

Learner profile:
%s
Adaptations to apply: %s

Rules:
- Preserve all code blocks exactly as-is unless an adaptation asks for inline comments.
- Keep all URLs, links and image references intact.
- Maintain markdown formatting and the chapter structure.
- Do not translate technical terms.
- Output ONLY the adapted chapter markdown, no preamble.

CHAPTER:
%s`, profile.String(), strings.Join(labels, ", "), content)
	return m.generateText(ctx, m.personalizer, prompt)
}

// Translate renders chapter content into the target language while keeping
// code blocks, math and links untouched.
func (m *Manager) Translate(ctx context.Context, content string, targetLanguage string) (string, string, error) {
	if m.translator == nil {
		return "", "", ErrUnavailable
	}
	prompt := fmt.Sprintf(`You are an expert technical translator for robotics and AI textbooks.

Translate the chapter below to %s.

Rules:
- Never translate code blocks, LaTeX equations, file paths, URLs or acronyms.
- Preserve all markdown structure: headings, lists, tables, links.
- Translate link text but keep every URL unchanged.
- Use a natural, academic tone in the target language.
- Output ONLY the translated markdown, no explanations.

CHAPTER:
%s`, targetLanguage, content)
	return m.generateText(ctx, m.translator, prompt)
}

func (m *Manager) generateText(ctx context.Context, chain *GeneratorChain, prompt string) (string, string, error) {
	if m.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}
	resp, provider, err := chain.Generate(ctx, prompt)
	if err != nil {
		return "", "", err
	}
	text := strings.TrimSpace(resp)
	if text == "" {
		return "", "", fmt.Errorf("empty ai response")
	}
	return text, provider, nil
}

func (m *Manager) MaxInputChars() int {
	return m.cfg.MaxInputChars
}

func (m *Manager) EmbeddingModelName() string {
	if m.embedder == nil {
		return ""
	}
	return m.embedder.ModelName()
}

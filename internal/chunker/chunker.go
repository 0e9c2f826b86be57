// Package chunker splits chapter markdown into bounded, overlapping segments
// for embedding. Paragraph boundaries are preferred, sentence boundaries are
// the fallback for paragraphs that cannot fit a single window.
package chunker

import (
	"fmt"
	"strings"
)

const paragraphSep = "\n\n"

type Chunk struct {
	Text  string
	Index int
	Total int
	// Offset is the byte position in the source where the chunk's fresh
	// (non-overlap) content begins.
	Offset  int
	Heading string
}

type Splitter struct {
	maxSize int
	overlap int
}

// NewSplitter rejects overlap >= maxSize up front; otherwise the window
// advance in splitLong could stall and the split would never terminate.
func NewSplitter(maxSize, overlap int) (*Splitter, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("chunk max size must be positive, got %d", maxSize)
	}
	if overlap < 0 || overlap >= maxSize {
		return nil, fmt.Errorf("chunk overlap %d must be in [0, %d)", overlap, maxSize)
	}
	return &Splitter{maxSize: maxSize, overlap: overlap}, nil
}

func (s *Splitter) MaxSize() int { return s.maxSize }
func (s *Splitter) Overlap() int { return s.overlap }

// Split is a single greedy pass: paragraphs accumulate into a buffer until
// the next one would overflow maxSize; the buffer is then closed as a chunk
// and the next buffer is seeded with the closed chunk's trailing overlap
// characters. Whitespace-only artifacts are dropped, the final partial
// buffer is emitted as-is.
func (s *Splitter) Split(text string) []Chunk {
	var chunks []Chunk
	var buf string
	bufOffset := 0

	closeBuf := func() string {
		trimmed := strings.TrimSpace(buf)
		if trimmed != "" {
			chunks = append(chunks, Chunk{Text: trimmed, Offset: bufOffset})
		}
		buf = ""
		return trimmed
	}

	offset := 0
	for _, para := range strings.Split(text, paragraphSep) {
		paraOffset := offset
		offset += len(para) + len(paragraphSep)
		if strings.TrimSpace(para) == "" {
			continue
		}
		if len(para) > s.maxSize {
			// No paragraph boundary can help here; fall back to
			// sentence-level forced splits.
			closeBuf()
			chunks = append(chunks, s.splitLong(para, paraOffset)...)
			continue
		}
		if buf == "" {
			buf = para
			bufOffset = paraOffset
			continue
		}
		if len(buf)+len(paragraphSep)+len(para) > s.maxSize {
			closed := closeBuf()
			seed := overlapTail(closed, s.overlap)
			// Shrink the seed rather than let the seeded buffer itself
			// exceed maxSize when the triggering paragraph is large.
			if room := s.maxSize - len(para) - len(paragraphSep); len(seed) > room {
				if room < 0 {
					room = 0
				}
				seed = seed[len(seed)-room:]
			}
			if seed != "" {
				buf = seed + paragraphSep + para
			} else {
				buf = para
			}
			bufOffset = paraOffset
			continue
		}
		buf += paragraphSep + para
	}
	closeBuf()

	for i := range chunks {
		chunks[i].Index = i
		chunks[i].Total = len(chunks)
	}
	return chunks
}

// splitLong slices an oversized paragraph into windows of at most maxSize,
// preferring the last ". " boundary in the second half of each window. Each
// next window starts overlap characters before the previous end; the guard
// below keeps progress monotonic even under odd size/overlap combinations.
func (s *Splitter) splitLong(text string, base int) []Chunk {
	var chunks []Chunk
	start := 0
	for start < len(text) {
		end := start + s.maxSize
		if end < len(text) {
			if idx := strings.LastIndex(text[start:end], ". "); idx > s.maxSize/2 {
				end = start + idx + 1
			}
		} else {
			end = len(text)
		}
		piece := strings.TrimSpace(text[start:end])
		if piece != "" {
			chunks = append(chunks, Chunk{Text: piece, Offset: base + start})
		}
		if end >= len(text) {
			break
		}
		next := end - s.overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

func overlapTail(text string, overlap int) string {
	if overlap <= 0 || text == "" {
		return ""
	}
	if len(text) <= overlap {
		return text
	}
	return text[len(text)-overlap:]
}

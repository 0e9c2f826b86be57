package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type Heading struct {
	Title  string
	Level  int
	Offset int
}

// Headings walks the markdown AST and returns the level 1-3 headings with
// their byte offsets. Chunks get tagged with the nearest preceding heading so
// retrieval keeps section context without altering the chunk text itself.
func Headings(markdown []byte) []Heading {
	md := goldmark.New()
	reader := text.NewReader(markdown)
	doc := md.Parser().Parse(reader)

	var out []Heading
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		h, ok := node.(*ast.Heading)
		if !ok || h.Level > 3 {
			continue
		}
		title := strings.TrimSpace(string(h.Text(markdown)))
		if title == "" {
			continue
		}
		off := 0
		if h.Lines().Len() > 0 {
			off = h.Lines().At(0).Start
		}
		out = append(out, Heading{Title: title, Level: h.Level, Offset: off})
	}
	return out
}

// NearestHeading returns the title of the last heading at or before offset,
// or "" when the offset precedes every heading.
func NearestHeading(headings []Heading, offset int) string {
	title := ""
	for _, h := range headings {
		if h.Offset > offset {
			break
		}
		title = h.Title
	}
	return title
}

package generator

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Document is the terminal artifact of a generation run.
type Document struct {
	Title          string
	Sections       []SectionResult
	TotalWordCount int
	FallbackPlan   bool
}

// Result is the caller-facing shape of a document.
type Result struct {
	Title     string          `json:"title"`
	Sections  []ResultSection `json:"sections"`
	WordCount int             `json:"word_count"`
}

type ResultSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (d *Document) Result() Result {
	out := Result{
		Title:     d.Title,
		Sections:  make([]ResultSection, 0, len(d.Sections)),
		WordCount: d.TotalWordCount,
	}
	for _, s := range d.Sections {
		out.Sections = append(out.Sections, ResultSection{Title: s.Spec.Title, Content: s.Content})
	}
	return out
}

// DegradedCount returns how many sections fell short of their minimum.
func (d *Document) DegradedCount() int {
	n := 0
	for _, s := range d.Sections {
		if s.Degraded {
			n++
		}
	}
	return n
}

// Markdown assembles the document under a top-level title heading.
func (d *Document) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# " + d.Title + "\n\n")
	for i, s := range d.Sections {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(strings.TrimSpace(s.Content))
	}
	sb.WriteString("\n")
	return sb.String()
}

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts Markdown to an HTML fragment (GFM tables and lists included).
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

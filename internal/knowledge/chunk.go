package knowledge

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// DefaultChunkChars bounds a chunk's size; longer sections are split on paragraph breaks.
const DefaultChunkChars = 1500

// ChunkID derives a stable identifier from a chunk's source and content, so
// re-ingesting the same file upserts instead of duplicating.
func ChunkID(source, content string) string {
	h := blake3.New()
	_, _ = h.Write([]byte(source))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// SplitText breaks a document into chunks. Markdown headings start a new
// chunk; plain text is grouped by paragraphs up to maxChars.
func SplitText(source, content string, maxChars int) []Chunk {
	if maxChars <= 0 {
		maxChars = DefaultChunkChars
	}

	var chunks []Chunk
	heading := ""
	var buf strings.Builder

	flush := func() {
		for _, piece := range packParagraphs(buf.String(), maxChars) {
			chunks = append(chunks, Chunk{
				ID:      ChunkID(source, piece),
				Source:  source,
				Heading: heading,
				Content: piece,
			})
		}
		buf.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if title, ok := markdownHeading(line); ok {
			flush()
			heading = title
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	flush()
	return chunks
}

func markdownHeading(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || len(trimmed) <= level || trimmed[level] != ' ' {
		return "", false
	}
	return strings.TrimSpace(trimmed[level:]), true
}

// packParagraphs groups blank-line separated paragraphs into pieces of at
// most maxChars. A single oversized paragraph is cut on word boundaries.
func packParagraphs(text string, maxChars int) []string {
	var out []string
	var cur strings.Builder
	emit := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) > maxChars {
			emit()
			out = append(out, splitWords(para, maxChars)...)
			continue
		}
		if cur.Len() > 0 && cur.Len()+2+len(para) > maxChars {
			emit()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(para)
	}
	emit()
	return out
}

func splitWords(text string, maxChars int) []string {
	var out []string
	var cur strings.Builder
	for _, w := range strings.Fields(text) {
		if cur.Len() > 0 && cur.Len()+1+len(w) > maxChars {
			out = append(out, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

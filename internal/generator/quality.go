package generator

import (
	"strings"

	"longwrite/internal/planner"
	"longwrite/internal/textutil"
)

type sectionQuality struct {
	Score  float64
	Issues []string
}

func assessSectionQuality(spec planner.SectionSpec, content string) sectionQuality {
	text := strings.TrimSpace(content)
	if text == "" {
		return sectionQuality{Score: 0, Issues: []string{"empty_content"}}
	}

	score := 1.0
	issues := make([]string, 0, 6)
	lines := strings.Split(text, "\n")
	total, bullets, paragraphs, headings := 0, 0, 0, 0
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		total++
		switch {
		case strings.HasPrefix(line, "#"):
			headings++
		case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
			bullets++
		default:
			paragraphs++
		}
	}
	if headings == 0 {
		score -= 0.15
		issues = append(issues, "missing_heading")
	}
	if total > 0 && float64(bullets)/float64(total) > 0.45 {
		score -= 0.25
		issues = append(issues, "list_heavy")
	}
	if paragraphs < 2 {
		score -= 0.2
		issues = append(issues, "insufficient_paragraphs")
	}

	lower := strings.ToLower(text)
	for _, token := range []string{"error occurred while generating", "could not be generated", "as an ai", "tbd", "lorem ipsum"} {
		if strings.Contains(lower, token) {
			score -= 0.3
			issues = append(issues, "placeholder_or_error_text")
			break
		}
	}
	if spec.Enforce && textutil.CountWords(text) < spec.MinimumWords {
		score -= 0.2
		issues = append(issues, "below_minimum_words")
	}
	if score < 0 {
		score = 0
	}
	return sectionQuality{Score: score, Issues: issues}
}

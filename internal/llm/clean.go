package llm

import "strings"

// CleanMarkdownOutput strips a wrapping ```markdown (or bare ```) fence that
// some models put around the whole answer.
func CleanMarkdownOutput(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```markdown") {
		text = strings.TrimPrefix(text, "```markdown")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```md") {
		text = strings.TrimPrefix(text, "```md")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

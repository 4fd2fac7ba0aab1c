package llm

import (
	"context"
	"fmt"
	"strings"
)

// MockClient is an offline stand-in that never calls a provider. Outline
// requests get prose back (so the fallback plan is used) and chapter requests
// get enough filler text to satisfy the token budget.
type MockClient struct{}

func (MockClient) Generate(_ context.Context, req Request) (string, error) {
	for _, m := range req.Messages {
		if m.Role == RoleSystem && strings.Contains(m.Content, "JSON") {
			return "Mock outline unavailable.", nil
		}
	}

	title := mockTitle(req.Messages)

	words := req.MaxTokens * 2 / 3
	if words <= 0 {
		words = 300
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", title)
	sentence := "This paragraph is placeholder material produced without a model so the pipeline can be exercised end to end."
	perSentence := len(strings.Fields(sentence))
	for n, para := 0, 0; n < words; para++ {
		if para%4 == 0 {
			fmt.Fprintf(&sb, "### Part %d\n\n", para/4+1)
		}
		sb.WriteString(sentence)
		sb.WriteString("\n\n")
		n += perSentence
	}
	sb.WriteString("The next chapter builds on these points.")
	return sb.String(), nil
}

// mockTitle finds the most recent chapter title in the conversation, so
// continuation turns keep the chapter's heading.
func mockTitle(msgs []Message) string {
	const marker = "**Title:** "
	for i := len(msgs) - 1; i >= 0; i-- {
		content := msgs[i].Content
		j := strings.Index(content, marker)
		if j < 0 {
			continue
		}
		rest := content[j+len(marker):]
		if k := strings.IndexByte(rest, '\n'); k >= 0 {
			rest = rest[:k]
		}
		if title := strings.TrimSpace(rest); title != "" {
			return title
		}
	}
	return "Mock Chapter"
}

package planner

import "strings"

// Style selects the register the document is written in.
type Style string

const (
	StyleHandbook     Style = "handbook"
	StyleAcademic     Style = "academic"
	StylePresentation Style = "presentation"
	StyleBlog         Style = "blog"
)

var styleInstructions = map[Style]string{
	StyleHandbook:     "Use an academic and professional tone. Include detailed explanations, tables, and examples.",
	StyleAcademic:     "Write in scientific paper format. Use hypothesis, methodology, findings, and conclusion structure. Use formal academic language.",
	StylePresentation: "Write as presentation notes. Use short bullet points. Summarize each section to fit on a single slide.",
	StyleBlog:         "Write in blog post format. Use a friendly and accessible tone. Ask questions to the reader, and include examples and stories.",
}

// ParseStyle maps user input to a Style; unknown values fall back to handbook.
func ParseStyle(s string) Style {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "academic":
		return StyleAcademic
	case "presentation", "slides":
		return StylePresentation
	case "blog", "narrative":
		return StyleBlog
	default:
		return StyleHandbook
	}
}

// Instruction returns the wording guidance appended to prompts.
func (s Style) Instruction() string {
	if inst, ok := styleInstructions[s]; ok {
		return inst
	}
	return styleInstructions[StyleHandbook]
}

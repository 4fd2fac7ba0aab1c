package planner

import "strings"

// Default outline layout: 5 parts of 6 chapters each.
const (
	DefaultParts           = 5
	DefaultChaptersPerPart = 6
	DefaultTargetWords     = 20000
	DefaultSectionWords    = 900
)

// SectionSpec is one planned chapter.
type SectionSpec struct {
	Index          int      `json:"index"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	TargetWords    int      `json:"target_words"`
	KeyPoints      []string `json:"key_points"`
	RetrievalQuery string   `json:"retrieval_query"`
	MinimumWords   int      `json:"minimum_words"`
	Enforce        bool     `json:"enforce"`
}

// Plan is the ordered outline of a document. Fallback is set when the outline
// was built deterministically instead of coming from the model.
type Plan struct {
	Sections []SectionSpec `json:"sections"`
	Fallback bool          `json:"fallback"`
}

func (p Plan) Len() int { return len(p.Sections) }

// Titles returns section titles in order.
func (p Plan) Titles() []string {
	out := make([]string, 0, len(p.Sections))
	for _, s := range p.Sections {
		out = append(out, s.Title)
	}
	return out
}

// MaxTitleRepeats returns the highest number of times any single title occurs.
func MaxTitleRepeats(sections []SectionSpec) int {
	counts := make(map[string]int, len(sections))
	highest := 0
	for _, s := range sections {
		title := strings.TrimSpace(s.Title)
		counts[title]++
		if counts[title] > highest {
			highest = counts[title]
		}
	}
	return highest
}

// duplicateTitleLimit is the repeat count at which an outline is treated as
// boilerplate echoed by a weak model.
const duplicateTitleLimit = 3

// IsDegenerate reports whether an outline repeats one title too often to be usable.
func IsDegenerate(sections []SectionSpec) bool {
	return MaxTitleRepeats(sections) >= duplicateTitleLimit
}

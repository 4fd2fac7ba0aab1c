package planner

import "fmt"

var fallbackParts = []string{
	"Introduction",
	"Literature Review",
	"Methodology",
	"Analysis",
	"Conclusion",
}

// FallbackPlan builds the deterministic outline used whenever the model's plan
// cannot be trusted. It never calls a model.
func FallbackPlan(parts, chaptersPerPart int) Plan {
	if parts <= 0 {
		parts = DefaultParts
	}
	if chaptersPerPart <= 0 {
		chaptersPerPart = DefaultChaptersPerPart
	}

	sections := make([]SectionSpec, 0, parts*chaptersPerPart)
	index := 1
	for p := 0; p < parts; p++ {
		part := fmt.Sprintf("Part %d", p+1)
		if p < len(fallbackParts) {
			part = fallbackParts[p]
		}
		for j := 1; j <= chaptersPerPart; j++ {
			title := fmt.Sprintf("%s - Chapter %d", part, j)
			sections = append(sections, SectionSpec{
				Index:          index,
				Title:          title,
				Description:    fmt.Sprintf("Detailed and comprehensive analysis regarding %s.", title),
				TargetWords:    DefaultSectionWords,
				KeyPoints:      []string{},
				RetrievalQuery: fmt.Sprintf("In-depth information and details about %s", title),
			})
			index++
		}
	}
	return Plan{Sections: sections, Fallback: true}
}

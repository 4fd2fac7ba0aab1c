package planner

import (
	"errors"
	"math"
	"strings"
)

// ErrEmptyPlan is returned when no usable section survives filtering.
var ErrEmptyPlan = errors.New("plan has no usable sections")

const (
	minSectionWords = 900
	minimumRatio    = 0.9
)

// Allocate spreads total evenly across the plan's usable sections and sets the
// enforcement threshold on each. Any per-section hint from the planner is
// overwritten. The input plan is not modified.
func Allocate(plan Plan, total int) (Plan, error) {
	sections := make([]SectionSpec, 0, len(plan.Sections))
	for _, s := range plan.Sections {
		if strings.TrimSpace(s.Title) == "" {
			continue
		}
		s.KeyPoints = append([]string(nil), s.KeyPoints...)
		sections = append(sections, s)
	}
	if len(sections) == 0 {
		return Plan{}, ErrEmptyPlan
	}

	per := PerSectionWords(total, len(sections))
	minimum := int(math.Round(float64(per) * minimumRatio))
	for i := range sections {
		sections[i].TargetWords = per
		sections[i].MinimumWords = minimum
		sections[i].Enforce = true
	}
	return Plan{Sections: sections, Fallback: plan.Fallback}, nil
}

// PerSectionWords is max(900, total / count).
func PerSectionWords(total, count int) int {
	if count <= 0 {
		return minSectionWords
	}
	per := total / count
	if per < minSectionWords {
		return minSectionWords
	}
	return per
}

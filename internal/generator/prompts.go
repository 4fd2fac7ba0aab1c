package generator

import (
	"fmt"
	"strings"

	"longwrite/internal/llm"
	"longwrite/internal/textutil"
)

const (
	sectionSystemPrompt   = "You are an expert technical writer. You produce comprehensive content in Markdown format."
	defaultSectionContext = "No specific context available."
	firstChapterSummary   = "This is the first chapter."

	generalContextChars = 8000
	summaryChars        = 500
	summarySections     = 2
)

func buildSectionMessages(in SectionInput) []llm.Message {
	return []llm.Message{
		llm.System(sectionSystemPrompt),
		llm.User(buildSectionPrompt(in)),
	}
}

func buildSectionPrompt(in SectionInput) string {
	spec := in.Spec
	sectionContext := strings.TrimSpace(in.SectionContext)
	if sectionContext == "" {
		sectionContext = defaultSectionContext
	}

	var sb strings.Builder
	sb.WriteString("You are an expert technical writer writing a specific chapter of a long document.\n\n")
	fmt.Fprintf(&sb, "## Document Topic: %s\n\n", in.Topic)
	sb.WriteString("## Context Specific to this Chapter:\n")
	sb.WriteString(sectionContext)
	sb.WriteString("\n\n## General Context:\n")
	sb.WriteString(textutil.Truncate(in.GeneralContext, generalContextChars))
	sb.WriteString("\n\n## Current Chapter Plan:\n")
	fmt.Fprintf(&sb, "- **Title:** %s\n", spec.Title)
	fmt.Fprintf(&sb, "- **Description:** %s\n", spec.Description)
	fmt.Fprintf(&sb, "- **Target Word Count:** %d words\n", spec.TargetWords)
	fmt.Fprintf(&sb, "- **Key Points:** %s\n", strings.Join(spec.KeyPoints, ", "))
	sb.WriteString("\n## Summary of Previous Chapters:\n")
	sb.WriteString(rollingSummary(in.Previous))
	sb.WriteString("\n\n## Instructions:\n")
	sb.WriteString("1. Write this chapter in Markdown format.\n")
	sb.WriteString("2. Start the chapter title with ##\n")
	sb.WriteString("3. Use ### for subheadings.\n")
	fmt.Fprintf(&sb, "4. Try to reach the target word count (%d words) as closely as possible.\n", spec.TargetWords)
	sb.WriteString("5. Base the information strictly on the context provided.\n")
	sb.WriteString("6. Use fluent and cohesive language.\n")
	sb.WriteString("7. Be consistent with previous chapters but do not repeat information.\n")
	sb.WriteString("8. Use bullet points, tables, and examples when necessary.\n")
	fmt.Fprintf(&sb, "9. %s\n", in.Style.Instruction())
	sb.WriteString("10. Add a transition sentence to the next chapter at the end of this chapter.\n")
	sb.WriteString("11. Add table, diagram, or figure suggestions where appropriate (in text format: [📊 Table Suggestion: description]).\n")
	sb.WriteString("12. Write the entire content in English.\n\n")
	sb.WriteString("Write the chapter content directly, do not add extra explanations.\n")
	return sb.String()
}

// rollingSummary carries the tail of the most recent chapters forward.
func rollingSummary(previous []string) string {
	if len(previous) == 0 {
		return firstChapterSummary
	}
	recent := previous
	if len(recent) > summarySections {
		recent = recent[len(recent)-summarySections:]
	}
	parts := make([]string, 0, len(recent))
	for _, sec := range recent {
		parts = append(parts, "Chapter: "+textutil.Preview(sec, summaryChars))
	}
	return strings.Join(parts, "\n\n")
}

func continuationPrompt(current, target int) string {
	return fmt.Sprintf("The chapter is currently at %d words but needs to be at least %d words.\n"+
		"Continue exactly from where you left off. Add entirely new advanced concepts, detailed technical examples, and case studies.\n"+
		"Do NOT repeat the introduction, headings, or your previous points. Just write the next parts.", current, target)
}

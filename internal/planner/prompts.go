package planner

import (
	"fmt"
	"strings"
)

const planSystemPrompt = "You are an AI assistant that produces structured plans in JSON format. Return only valid JSON."

func buildPlanPrompt(topic, context string, targetWords, parts, chapters int, style Style) string {
	total := parts * chapters
	var sb strings.Builder
	sb.WriteString("You are an expert technical writer and content planner. Based on the context information below, create a detailed writing plan for a comprehensive document about the requested topic.\n\n")
	sb.WriteString("## Context Information (Extracted from Documents):\n")
	sb.WriteString(context)
	sb.WriteString("\n\n## Requested Topic:\n")
	sb.WriteString(topic)
	fmt.Fprintf(&sb, "\n\n## Target Word Count: Approximately %d words\n\n", targetWords)
	sb.WriteString("## Instructions (CRITICAL):\n")
	fmt.Fprintf(&sb, "1. Outline the document by dividing it into exactly **%d Main Parts** (e.g., Introduction, Literature Review, Methodology, Analysis, Conclusion).\n", parts)
	fmt.Fprintf(&sb, "2. For each Main Part, create **exactly %d Sub-Chapters** underneath it.\n", chapters)
	fmt.Fprintf(&sb, "3. There MUST be **exactly %d Sub-Chapters** in total (%d Parts x %d Chapters = %d).\n", total, parts, chapters, total)
	fmt.Fprintf(&sb, "4. For each sub-chapter, define a distinct title, a rich 3-sentence description, key points, and a database search query (rag_query) so the writer can generate about %d words on that specific topic.\n", PerSectionWords(targetWords, total))
	sb.WriteString("5. Start with a \"Preface\" and end with a \"Conclusion and Evaluation\".\n")
	sb.WriteString("6. Never reuse a chapter title. The entire plan, all titles, and all descriptions MUST be written in English.\n\n")
	sb.WriteString("## Output Format:\n")
	fmt.Fprintf(&sb, "Return ONLY JSON. The JSON structure MUST NOT be hierarchical; it must be a flat array containing exactly %d elements:\n", total)
	sb.WriteString("```json\n[\n  {\n")
	sb.WriteString("    \"section_number\": 1,\n")
	sb.WriteString("    \"title\": \"Chapter Title (e.g., 1.1 Introduction to Technology)\",\n")
	sb.WriteString("    \"description\": \"What will be discussed in this section (3 detailed sentences in English)\",\n")
	sb.WriteString("    \"target_words\": 800,\n")
	sb.WriteString("    \"key_points\": [\"Detail 1\", \"Detail 2\", \"Detail 3\"],\n")
	sb.WriteString("    \"rag_query\": \"A very clear, specific 1-sentence query to search the database for this section in English\"\n")
	sb.WriteString("  }\n]\n```\n")
	sb.WriteString("\n\nFormat instruction: ")
	sb.WriteString(style.Instruction())
	return sb.String()
}

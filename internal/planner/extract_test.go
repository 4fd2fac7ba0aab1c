package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlanJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"fenced json", "Here is the plan:\n```json\n[{\"title\": \"A\"}]\n```\nEnjoy!", `[{"title": "A"}]`},
		{"bare fence", "```\n[{\"title\": \"A\"}]\n```", `[{"title": "A"}]`},
		{"bare array", `[{"title": "A"}]`, `[{"title": "A"}]`},
		{"array in prose", `Sure! [{"title": "A"}, {"title": "B"}] Let me know.`, `[{"title": "A"}, {"title": "B"}]`},
		{"wrapped object", `{"chapters": [{"title": "A"}]}`, `[{"title": "A"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractPlanJSON(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractPlanJSON_NoArray(t *testing.T) {
	_, err := ExtractPlanJSON("I cannot help with that.")
	assert.Error(t, err)
	_, err = ExtractPlanJSON("] backwards [")
	assert.Error(t, err)
}

func TestParseOutline_Tolerant(t *testing.T) {
	raw := "```json\n[\n" +
		"  // preface first\n" +
		"  {\"section_number\": \"1\", \"title\": \" Preface \", \"description\": \"d\", \"target_words\": \"800 words\", \"key_points\": \"one point\", \"rag_query\": \"q\"},\n" +
		"  null,\n" +
		"  {\"title\": \"\"},\n" +
		"  {\"section_number\": 3, \"title\": \"Body\", \"target_words\": 750.0, \"key_points\": [\"a\", null, 7]},\n" +
		"]\n```"

	sections, err := ParseOutline(raw)
	require.NoError(t, err)
	require.Len(t, sections, 2)

	assert.Equal(t, "Preface", sections[0].Title)
	assert.Equal(t, 1, sections[0].Index)
	assert.Equal(t, 800, sections[0].TargetWords)
	assert.Equal(t, []string{"one point"}, sections[0].KeyPoints)
	assert.Equal(t, "q", sections[0].RetrievalQuery)

	assert.Equal(t, "Body", sections[1].Title)
	assert.Equal(t, 750, sections[1].TargetWords)
	assert.Equal(t, []string{"a", "7"}, sections[1].KeyPoints)
}

func TestParseOutline_Malformed(t *testing.T) {
	_, err := ParseOutline(`[{"title": "A"`)
	assert.Error(t, err)
	_, err = ParseOutline(`[{"title": ["not", "a", "string"]}]`)
	assert.Error(t, err)
}

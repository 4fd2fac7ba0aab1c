package main

import (
	"context"
	"testing"

	"longwrite/internal/config"

	"longwrite/internal/generator"
	"longwrite/internal/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "machine-learning-in-practice", slugify("  Machine Learning: in Practice! "))
	assert.Equal(t, "document", slugify("???"))
	assert.LessOrEqual(t, len(slugify("a very long topic name that keeps going and going well past sixty characters")), 60)
}

func TestToRecord(t *testing.T) {
	doc := &generator.Document{
		Title: "Topic",
		Sections: []generator.SectionResult{
			{Spec: planner.SectionSpec{Title: "One"}, Content: "## One", WordCount: 2},
			{Spec: planner.SectionSpec{Title: "Two"}, Content: "## Two", WordCount: 2, Degraded: true},
		},
		TotalWordCount: 4,
	}
	rec := toRecord(doc, "topic", "m", planner.StyleBlog, "# Topic")
	assert.Equal(t, "blog", rec.Style)
	assert.Equal(t, 4, rec.WordCount)
	require.Len(t, rec.Sections, 2)
	assert.True(t, rec.Sections[1].Degraded)
	assert.Empty(t, rec.ID)
}

func TestPick(t *testing.T) {
	assert.Equal(t, 5, pick(0, 5))
	assert.Equal(t, 3, pick(3, 5))
	assert.Equal(t, "x", pickString("", "x"))
	assert.Equal(t, "y", pickString("y", "x"))
}

func TestInitFileEngine_RetrievesFromContextFile(t *testing.T) {
	cfg := config.Default()
	cfg.Embedding.Provider = "hash"
	content := "# Soil\n\nCompost feeds soil microbes and improves structure.\n\n# Water\n\nDrip irrigation saves water in dry summers."

	engine, err := initFileEngine(context.Background(), cfg, "notes.md", content, nil)
	require.NoError(t, err)

	text, err := engine.Retrieve(context.Background(), "drip irrigation water")
	require.NoError(t, err)
	assert.Contains(t, text, "Drip irrigation")
}

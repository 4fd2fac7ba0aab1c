package planner

import (
	"context"
	"log/slog"

	"longwrite/internal/llm"
	"longwrite/internal/textutil"
)

const (
	planContextChars = 15000
	planMaxTokens    = 4096
	planTemperature  = 0.3
)

// Request carries the inputs for one outline.
type Request struct {
	Topic       string
	Context     string
	TargetWords int
	Style       Style
	Model       string
}

// Generator asks the model for an outline and falls back to a fixed one
// whenever the answer is unusable. Plan never fails.
type Generator struct {
	client          llm.Client
	logger          *slog.Logger
	parts           int
	chaptersPerPart int
}

func NewGenerator(client llm.Client, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{
		client:          client,
		logger:          logger,
		parts:           DefaultParts,
		chaptersPerPart: DefaultChaptersPerPart,
	}
}

// WithLayout overrides the part/chapter counts. Non-positive values keep the defaults.
func (g *Generator) WithLayout(parts, chaptersPerPart int) *Generator {
	if parts > 0 {
		g.parts = parts
	}
	if chaptersPerPart > 0 {
		g.chaptersPerPart = chaptersPerPart
	}
	return g
}

// SectionCount is the number of chapters every accepted plan has.
func (g *Generator) SectionCount() int {
	return g.parts * g.chaptersPerPart
}

func (g *Generator) fallback() Plan {
	return FallbackPlan(g.parts, g.chaptersPerPart)
}

// Plan returns an outline of exactly SectionCount sections.
func (g *Generator) Plan(ctx context.Context, req Request) Plan {
	target := req.TargetWords
	if target <= 0 {
		target = DefaultTargetWords
	}
	if g.client == nil {
		g.logger.Warn("no model client; using fallback plan")
		return g.fallback()
	}

	prompt := buildPlanPrompt(req.Topic, textutil.Truncate(req.Context, planContextChars), target, g.parts, g.chaptersPerPart, req.Style)
	raw, err := g.client.Generate(ctx, llm.Request{
		Model:       req.Model,
		Messages:    []llm.Message{llm.System(planSystemPrompt), llm.User(prompt)},
		MaxTokens:   planMaxTokens,
		Temperature: planTemperature,
	})
	if err != nil {
		g.logger.Warn("plan request failed; using fallback plan", "error", err)
		return g.fallback()
	}
	return g.accept(raw)
}

// accept validates a raw model answer and returns either the model's outline
// or the fallback.
func (g *Generator) accept(raw string) Plan {
	sections, err := ParseOutline(raw)
	if err != nil {
		g.logger.Warn("plan parse failed; using fallback plan", "error", err)
		return g.fallback()
	}
	if IsDegenerate(sections) {
		g.logger.Warn("model repeated chapter titles; using fallback plan", "max_repeats", MaxTitleRepeats(sections))
		return g.fallback()
	}

	want := g.SectionCount()
	if len(sections) < want {
		g.logger.Warn("plan too short; using fallback plan", "got", len(sections), "want", want)
		return g.fallback()
	}
	if len(sections) > want {
		g.logger.Debug("trimming plan", "got", len(sections), "want", want)
		sections = sections[:want]
	}

	for i := range sections {
		s := &sections[i]
		s.Index = i + 1
		if s.Description == "" {
			s.Description = "Detailed and comprehensive analysis regarding " + s.Title + "."
		}
		if s.RetrievalQuery == "" {
			s.RetrievalQuery = s.Title
		}
		if s.TargetWords <= 0 {
			s.TargetWords = DefaultSectionWords
		}
		if s.KeyPoints == nil {
			s.KeyPoints = []string{}
		}
	}
	return Plan{Sections: sections}
}

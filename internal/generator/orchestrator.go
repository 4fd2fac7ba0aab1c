package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"longwrite/internal/planner"
)

// ErrEmptyPlan is the one failure surfaced to callers: nothing left to write.
var ErrEmptyPlan = planner.ErrEmptyPlan

// RetrieveFunc fetches section-specific context for a retrieval query.
type RetrieveFunc func(ctx context.Context, query string) (string, error)

// ProgressFunc is told about each completed section.
type ProgressFunc func(current, total int, message string, words int)

// Planner produces an outline; it must always return something usable.
type Planner interface {
	Plan(ctx context.Context, req planner.Request) planner.Plan
}

// Request describes one document to generate.
type Request struct {
	Topic       string
	Context     string
	TargetWords int
	Model       string
	Style       planner.Style
	Retrieve    RetrieveFunc
	Progress    ProgressFunc
	Report      *Report
}

// Orchestrator runs planning, balancing and sequential section writing.
// Sections are written strictly in order since each prompt carries the tail
// of the preceding chapters.
type Orchestrator struct {
	planner Planner
	writer  *SectionWriter
	logger  *slog.Logger
}

func NewOrchestrator(p Planner, w *SectionWriter, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{planner: p, writer: w, logger: logger}
}

// Generate returns a complete document or an error. Degraded sections do not
// fail the run; an empty plan and cancellation between sections do.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target := req.TargetWords
	if target <= 0 {
		target = planner.DefaultTargetWords
	}
	report := req.Report

	stage := report.BeginStage("planning")
	o.logger.Info("planning document", "topic", req.Topic, "target_words", target)
	plan := o.planner.Plan(ctx, planner.Request{
		Topic:       req.Topic,
		Context:     req.Context,
		TargetWords: target,
		Style:       req.Style,
		Model:       req.Model,
	})
	report.EndStage(stage, map[string]float64{"sections": float64(plan.Len())}, nil)
	if plan.Fallback {
		report.AddSignal("fallback_plan", "planning", "warning", "Model outline was unusable; the fixed outline was used.", 0)
	}

	stage = report.BeginStage("balancing")
	plan, err := planner.Allocate(plan, target)
	report.EndStage(stage, map[string]float64{"sections": float64(plan.Len())}, err)
	if err != nil {
		return nil, fmt.Errorf("balance plan: %w", err)
	}

	total := plan.Len()
	doc := &Document{
		Title:        strings.TrimSpace(req.Topic),
		Sections:     make([]SectionResult, 0, total),
		FallbackPlan: plan.Fallback,
	}
	history := make([]string, 0, total)

	for i, spec := range plan.Sections {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation stopped after %d of %d sections: %w", i, total, err)
		}
		stage = report.BeginStage(fmt.Sprintf("section_%d", spec.Index))

		sectionContext := o.retrieve(ctx, req.Retrieve, spec)
		res := o.writer.Write(ctx, SectionInput{
			Topic:          req.Topic,
			Spec:           spec,
			SectionContext: sectionContext,
			GeneralContext: req.Context,
			Previous:       history,
			Model:          req.Model,
			Style:          req.Style,
		})
		doc.Sections = append(doc.Sections, res)
		doc.TotalWordCount += res.WordCount
		history = append(history, res.Content)

		o.record(report, res, len(sectionContext))
		report.EndStage(stage, map[string]float64{
			"words":    float64(res.WordCount),
			"attempts": float64(res.AttemptsUsed),
		}, nil)

		safeProgress(req.Progress, i+1, total, progressMessage(i+1, total, res), doc.TotalWordCount, o.logger)
	}

	report.Finalize(plan.Fallback)
	o.logger.Info("document complete", "sections", total, "words", doc.TotalWordCount, "degraded", doc.DegradedCount())
	return doc, nil
}

func (o *Orchestrator) retrieve(ctx context.Context, fn RetrieveFunc, spec planner.SectionSpec) string {
	if fn == nil {
		return defaultSectionContext
	}
	query := spec.RetrievalQuery
	if query == "" {
		query = spec.Title
	}
	text, err := fn(ctx, query)
	if err != nil {
		o.logger.Warn("section retrieval failed", "section", spec.Index, "error", err)
		return defaultSectionContext
	}
	if strings.TrimSpace(text) == "" {
		return defaultSectionContext
	}
	return text
}

func (o *Orchestrator) record(report *Report, res SectionResult, contextChars int) {
	if report == nil {
		return
	}
	q := assessSectionQuality(res.Spec, res.Content)
	stageName := fmt.Sprintf("section_%d", res.Spec.Index)
	if res.Degraded {
		report.AddSignal("section_degraded", stageName, "warning", "Section is below its minimum word count.", float64(res.WordCount))
	}
	if res.Failures() > 0 {
		report.AddSignal("model_failures", stageName, "warning", "Model calls failed while writing this section.", float64(res.Failures()))
	}
	if q.Score < 0.55 {
		report.AddSignal("quality_low", stageName, "info", "Section quality score is below target.", q.Score)
	}
	report.AddSection(SectionMetric{
		Index:         res.Spec.Index,
		Title:         res.Spec.Title,
		TargetWords:   res.Spec.TargetWords,
		MinimumWords:  res.Spec.MinimumWords,
		Words:         res.WordCount,
		Attempts:      res.AttemptsUsed,
		Failures:      res.Failures(),
		Degraded:      res.Degraded,
		ContextChars:  contextChars,
		QualityScore:  q.Score,
		QualityIssues: q.Issues,
	})
}

func progressMessage(current, total int, res SectionResult) string {
	if res.Degraded {
		return fmt.Sprintf("⚠️ Chapter %d/%d finished short: %s (%d words)", current, total, res.Spec.Title, res.WordCount)
	}
	return fmt.Sprintf("✍️ Chapter %d/%d written: %s (%d words)", current, total, res.Spec.Title, res.WordCount)
}

// safeProgress shields generation from a misbehaving callback.
func safeProgress(fn ProgressFunc, current, total int, message string, words int, logger *slog.Logger) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("progress callback panicked", "panic", r)
		}
	}()
	fn(current, total, message, words)
}

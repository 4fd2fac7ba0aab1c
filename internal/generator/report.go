package generator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type ReportSignal struct {
	Code     string  `json:"code"`
	Stage    string  `json:"stage"`
	Severity string  `json:"severity"`
	Message  string  `json:"message"`
	Value    float64 `json:"value,omitempty"`
}

type StageMetric struct {
	Name       string             `json:"name"`
	Status     string             `json:"status"`
	StartedAt  string             `json:"started_at"`
	FinishedAt string             `json:"finished_at"`
	DurationMS int64              `json:"duration_ms"`
	Counters   map[string]float64 `json:"counters,omitempty"`
	Error      string             `json:"error,omitempty"`
}

type SectionMetric struct {
	Index         int      `json:"index"`
	Title         string   `json:"title"`
	TargetWords   int      `json:"target_words"`
	MinimumWords  int      `json:"minimum_words"`
	Words         int      `json:"words"`
	Attempts      int      `json:"attempts"`
	Failures      int      `json:"failures"`
	Degraded      bool     `json:"degraded"`
	ContextChars  int      `json:"context_chars"`
	QualityScore  float64  `json:"quality_score"`
	QualityIssues []string `json:"quality_issues,omitempty"`
}

type ReportSummary struct {
	SectionCount      int            `json:"section_count"`
	DegradedSections  int            `json:"degraded_sections"`
	TotalWords        int            `json:"total_words"`
	TotalAttempts     int            `json:"total_attempts"`
	FallbackPlan      bool           `json:"fallback_plan"`
	AvgQuality        float64        `json:"avg_quality"`
	SignalsBySeverity map[string]int `json:"signals_by_severity"`
}

// Report records stage timings, per-section metrics and warning signals for
// one generation run. All methods are safe on a nil *Report.
type Report struct {
	Version     string          `json:"version"`
	Topic       string          `json:"topic"`
	Model       string          `json:"model"`
	GeneratedAt string          `json:"generated_at"`
	Stages      []StageMetric   `json:"stages"`
	Sections    []SectionMetric `json:"sections,omitempty"`
	Signals     []ReportSignal  `json:"signals,omitempty"`
	Summary     ReportSummary   `json:"summary"`
}

type StageHandle struct {
	name    string
	started time.Time
}

func NewReport(topic, model string) *Report {
	return &Report{
		Version:     "v1",
		Topic:       topic,
		Model:       model,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Stages:      []StageMetric{},
		Sections:    []SectionMetric{},
		Signals:     []ReportSignal{},
	}
}

func (r *Report) BeginStage(name string) StageHandle {
	return StageHandle{name: strings.TrimSpace(name), started: time.Now().UTC()}
}

func (r *Report) EndStage(h StageHandle, counters map[string]float64, err error) {
	if r == nil || h.name == "" {
		return
	}
	finished := time.Now().UTC()
	m := StageMetric{
		Name:       h.name,
		Status:     "ok",
		StartedAt:  h.started.Format(time.RFC3339Nano),
		FinishedAt: finished.Format(time.RFC3339Nano),
		DurationMS: finished.Sub(h.started).Milliseconds(),
		Counters:   counters,
	}
	if err != nil {
		m.Status = "error"
		m.Error = err.Error()
	}
	r.Stages = append(r.Stages, m)
}

func (r *Report) AddSignal(code, stage, severity, message string, value float64) {
	if r == nil {
		return
	}
	r.Signals = append(r.Signals, ReportSignal{
		Code:     code,
		Stage:    stage,
		Severity: severity,
		Message:  message,
		Value:    value,
	})
}

func (r *Report) AddSection(m SectionMetric) {
	if r == nil {
		return
	}
	r.Sections = append(r.Sections, m)
}

// Finalize fills the summary from the recorded sections and signals.
func (r *Report) Finalize(fallbackPlan bool) {
	if r == nil {
		return
	}
	s := ReportSummary{
		SectionCount:      len(r.Sections),
		FallbackPlan:      fallbackPlan,
		SignalsBySeverity: map[string]int{},
	}
	quality := 0.0
	for _, m := range r.Sections {
		s.TotalWords += m.Words
		s.TotalAttempts += m.Attempts
		quality += m.QualityScore
		if m.Degraded {
			s.DegradedSections++
		}
	}
	if len(r.Sections) > 0 {
		s.AvgQuality = quality / float64(len(r.Sections))
	}
	for _, sig := range r.Signals {
		s.SignalsBySeverity[sig.Severity]++
	}
	r.Summary = s
}

// Save writes the report as indented JSON, creating parent directories.
func (r *Report) Save(path string) error {
	if r == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

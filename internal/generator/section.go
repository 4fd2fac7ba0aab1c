package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"longwrite/internal/llm"
	"longwrite/internal/planner"
	"longwrite/internal/textutil"
)

const (
	DefaultMaxRetries = 2

	sectionTemperature = 0.7
	minSectionTokens   = 2048
	maxSectionTokens   = 8192
)

// Attempt is one entry of a section's outcome log: either text or an error.
type Attempt struct {
	Number int
	Text   string
	Words  int
	Err    error
}

func (a Attempt) OK() bool { return a.Err == nil }

// SectionResult is the outcome of writing one section.
type SectionResult struct {
	Spec         planner.SectionSpec
	Content      string
	WordCount    int
	AttemptsUsed int
	Degraded     bool
	Attempts     []Attempt
}

// Failures counts attempts that produced no text.
func (r SectionResult) Failures() int {
	n := 0
	for _, a := range r.Attempts {
		if !a.OK() {
			n++
		}
	}
	return n
}

// SectionInput is everything the writer needs for one section.
type SectionInput struct {
	Topic          string
	Spec           planner.SectionSpec
	SectionContext string
	GeneralContext string
	Previous       []string
	Model          string
	Style          planner.Style
}

// SleepFunc waits between failed attempts; it returns early with the context's error.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SectionWriter generates one section, continuing the conversation until the
// section reaches its minimum length or the retry budget runs out.
type SectionWriter struct {
	client     llm.Client
	logger     *slog.Logger
	maxRetries int
	sleep      SleepFunc
}

func NewSectionWriter(client llm.Client, logger *slog.Logger) *SectionWriter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SectionWriter{
		client:     client,
		logger:     logger,
		maxRetries: DefaultMaxRetries,
		sleep:      sleepContext,
	}
}

// WithMaxRetries sets how many attempts are allowed after the first.
func (w *SectionWriter) WithMaxRetries(n int) *SectionWriter {
	if n < 0 {
		n = 0
	}
	w.maxRetries = n
	return w
}

func (w *SectionWriter) WithSleep(fn SleepFunc) *SectionWriter {
	if fn != nil {
		w.sleep = fn
	}
	return w
}

// Write never returns empty content: at worst it returns a placeholder that
// names the section and the last error.
func (w *SectionWriter) Write(ctx context.Context, in SectionInput) SectionResult {
	spec := in.Spec
	conversation := buildSectionMessages(in)
	maxTokens := maxTokensFor(spec.TargetWords)
	budget := 1 + w.maxRetries

	var attempts []Attempt
	accumulated := 0
	for n := 0; n < budget; n++ {
		text, err := w.client.Generate(ctx, llm.Request{
			Model:       in.Model,
			Messages:    conversation,
			MaxTokens:   maxTokens,
			Temperature: sectionTemperature,
		})
		text = strings.TrimSpace(text)
		if err == nil && text == "" {
			err = llm.ErrEmptyResponse
		}
		if err != nil {
			attempts = append(attempts, Attempt{Number: n + 1, Err: err})
			w.logger.Warn("section attempt failed", "section", spec.Index, "attempt", n+1, "error", err)
			if n+1 < budget {
				if serr := w.sleep(ctx, backoff(n)); serr != nil {
					break
				}
			}
			continue
		}

		words := textutil.CountWords(text)
		attempts = append(attempts, Attempt{Number: n + 1, Text: text, Words: words})
		accumulated += words
		if !spec.Enforce || accumulated >= spec.MinimumWords {
			break
		}
		w.logger.Debug("section short; continuing", "section", spec.Index, "words", accumulated, "minimum", spec.MinimumWords)
		if n+1 < budget {
			conversation = append(conversation,
				llm.Assistant(text),
				llm.User(continuationPrompt(accumulated, spec.TargetWords)),
			)
		}
	}

	return decideSection(spec, attempts)
}

// decideSection turns the outcome log into the section's final content.
func decideSection(spec planner.SectionSpec, attempts []Attempt) SectionResult {
	res := SectionResult{
		Spec:         spec,
		AttemptsUsed: len(attempts),
		Attempts:     attempts,
	}

	var parts []string
	var lastErr error
	for _, a := range attempts {
		if !a.OK() {
			lastErr = a.Err
			continue
		}
		parts = append(parts, a.Text)
	}

	if len(parts) > 0 {
		res.Content = strings.Join(parts, "\n\n")
		res.WordCount = textutil.CountWords(res.Content)
		res.Degraded = spec.Enforce && res.WordCount < spec.MinimumWords
		return res
	}

	title := spec.Title
	if strings.TrimSpace(title) == "" {
		title = "Chapter"
	}
	if lastErr != nil {
		res.Content = fmt.Sprintf("## %s\n\n*Error occurred while generating this chapter: %v*\n", title, lastErr)
	} else {
		res.Content = fmt.Sprintf("## %s\n\n*This chapter could not be generated.*\n", title)
	}
	res.WordCount = textutil.CountWords(res.Content)
	res.Degraded = true
	return res
}

// maxTokensFor is clamp(target*1.5, 2048, 8192).
func maxTokensFor(targetWords int) int {
	n := int(float64(targetWords) * 1.5)
	if n < minSectionTokens {
		return minSectionTokens
	}
	if n > maxSectionTokens {
		return maxSectionTokens
	}
	return n
}

func backoff(attempt int) time.Duration {
	return time.Duration(2*(attempt+1)) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

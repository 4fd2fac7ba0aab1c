package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"longwrite/internal/llm"
	"longwrite/internal/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient answers each call through fn and records every request.
type scriptedClient struct {
	fn   func(call int, req llm.Request) (string, error)
	reqs []llm.Request
}

func (c *scriptedClient) Generate(_ context.Context, req llm.Request) (string, error) {
	c.reqs = append(c.reqs, req)
	return c.fn(len(c.reqs), req)
}

func wordsText(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func enforcedSpec(title string) planner.SectionSpec {
	return planner.SectionSpec{
		Index:          1,
		Title:          title,
		Description:    "About " + title + ".",
		TargetWords:    900,
		MinimumWords:   810,
		Enforce:        true,
		RetrievalQuery: title,
	}
}

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func TestSectionWriter_ContinuesUntilBudgetExhausted(t *testing.T) {
	client := &scriptedClient{fn: func(int, llm.Request) (string, error) {
		return wordsText(50), nil
	}}
	w := NewSectionWriter(client, nil).WithSleep(noSleep)

	res := w.Write(context.Background(), SectionInput{Topic: "Go", Spec: enforcedSpec("Intro")})

	require.Len(t, client.reqs, 3)
	assert.Equal(t, 3, res.AttemptsUsed)
	assert.True(t, res.Degraded)
	assert.Equal(t, 150, res.WordCount)
	assert.Equal(t, 0, res.Failures())

	second := client.reqs[1].Messages
	require.Len(t, second, 4)
	assert.Equal(t, llm.RoleAssistant, second[2].Role)
	assert.Equal(t, wordsText(50), second[2].Content)
	assert.Equal(t, llm.RoleUser, second[3].Role)
	assert.Contains(t, second[3].Content, "currently at 50 words")
	assert.Contains(t, second[3].Content, "at least 900 words")

	third := client.reqs[2].Messages
	require.Len(t, third, 6)
	assert.Contains(t, third[5].Content, "currently at 100 words")
}

func TestSectionWriter_StopsOnceMinimumReached(t *testing.T) {
	client := &scriptedClient{fn: func(int, llm.Request) (string, error) {
		return wordsText(850), nil
	}}
	res := NewSectionWriter(client, nil).WithSleep(noSleep).
		Write(context.Background(), SectionInput{Topic: "Go", Spec: enforcedSpec("Intro")})

	assert.Len(t, client.reqs, 1)
	assert.Equal(t, 1, res.AttemptsUsed)
	assert.False(t, res.Degraded)
	assert.Equal(t, 850, res.WordCount)
}

func TestSectionWriter_UnenforcedAcceptsFirstAnswer(t *testing.T) {
	spec := enforcedSpec("Intro")
	spec.Enforce = false
	client := &scriptedClient{fn: func(int, llm.Request) (string, error) {
		return wordsText(10), nil
	}}
	res := NewSectionWriter(client, nil).Write(context.Background(), SectionInput{Spec: spec})

	assert.Len(t, client.reqs, 1)
	assert.False(t, res.Degraded)
	assert.Equal(t, 10, res.WordCount)
}

func TestSectionWriter_RetriesAfterFailureWithSameConversation(t *testing.T) {
	client := &scriptedClient{fn: func(call int, _ llm.Request) (string, error) {
		if call == 1 {
			return "", errors.New("timeout")
		}
		return wordsText(900), nil
	}}
	var waits []time.Duration
	w := NewSectionWriter(client, nil).WithSleep(func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	})

	res := w.Write(context.Background(), SectionInput{Spec: enforcedSpec("Intro")})

	require.Len(t, client.reqs, 2)
	assert.Equal(t, client.reqs[0].Messages, client.reqs[1].Messages)
	assert.Equal(t, []time.Duration{2 * time.Second}, waits)
	assert.False(t, res.Degraded)
	assert.Equal(t, 1, res.Failures())
	assert.Equal(t, 2, res.AttemptsUsed)
}

func TestSectionWriter_AllFailuresGivePlaceholder(t *testing.T) {
	calls := 0
	client := &scriptedClient{fn: func(int, llm.Request) (string, error) {
		calls++
		if calls == 3 {
			return "", errors.New("rate limited")
		}
		return "", errors.New("connection reset")
	}}
	var waits []time.Duration
	w := NewSectionWriter(client, nil).WithSleep(func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	})

	res := w.Write(context.Background(), SectionInput{Spec: enforcedSpec("Risk Factors")})

	assert.Len(t, client.reqs, 3)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, waits)
	assert.True(t, res.Degraded)
	assert.True(t, strings.HasPrefix(res.Content, "## Risk Factors"))
	assert.Contains(t, res.Content, "rate limited")
	assert.NotEmpty(t, res.Content)
	assert.Equal(t, 3, res.Failures())
}

func TestSectionWriter_EmptyTextCountsAsFailure(t *testing.T) {
	client := &scriptedClient{fn: func(int, llm.Request) (string, error) {
		return "   ", nil
	}}
	res := NewSectionWriter(client, nil).WithMaxRetries(0).
		Write(context.Background(), SectionInput{Spec: enforcedSpec("Intro")})

	require.Len(t, res.Attempts, 1)
	assert.ErrorIs(t, res.Attempts[0].Err, llm.ErrEmptyResponse)
	assert.Contains(t, res.Content, "Error occurred while generating this chapter")
}

func TestSectionWriter_CancelledBackoffStops(t *testing.T) {
	client := &scriptedClient{fn: func(int, llm.Request) (string, error) {
		return "", errors.New("boom")
	}}
	w := NewSectionWriter(client, nil).WithSleep(func(context.Context, time.Duration) error {
		return context.Canceled
	})

	res := w.Write(context.Background(), SectionInput{Spec: enforcedSpec("Intro")})

	assert.Len(t, client.reqs, 1)
	assert.True(t, res.Degraded)
	assert.Contains(t, res.Content, "boom")
}

func TestSectionWriter_RequestParameters(t *testing.T) {
	client := &scriptedClient{fn: func(int, llm.Request) (string, error) {
		return wordsText(900), nil
	}}
	NewSectionWriter(client, nil).Write(context.Background(), SectionInput{
		Topic: "Distributed tracing",
		Spec:  enforcedSpec("Spans"),
		Model: "ollama/llama3",
		Style: planner.StyleAcademic,
	})

	require.Len(t, client.reqs, 1)
	req := client.reqs[0]
	assert.Equal(t, "ollama/llama3", req.Model)
	assert.Equal(t, 2048, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 1e-9)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	prompt := req.Messages[1].Content
	assert.Contains(t, prompt, "Distributed tracing")
	assert.Contains(t, prompt, "**Title:** Spans")
	assert.Contains(t, prompt, defaultSectionContext)
	assert.Contains(t, prompt, firstChapterSummary)
	assert.Contains(t, prompt, planner.StyleAcademic.Instruction())
}

func TestDecideSection(t *testing.T) {
	spec := enforcedSpec("Intro")

	res := decideSection(spec, nil)
	assert.Equal(t, "## Intro\n\n*This chapter could not be generated.*\n", res.Content)
	assert.True(t, res.Degraded)
	assert.Equal(t, 0, res.AttemptsUsed)

	res = decideSection(spec, []Attempt{
		{Number: 1, Text: "first part", Words: 2},
		{Number: 2, Err: errors.New("late failure")},
		{Number: 3, Text: "second part", Words: 2},
	})
	assert.Equal(t, "first part\n\nsecond part", res.Content)
	assert.Equal(t, 4, res.WordCount)
	assert.True(t, res.Degraded)
	assert.Equal(t, 1, res.Failures())
}

func TestMaxTokensFor(t *testing.T) {
	assert.Equal(t, 2048, maxTokensFor(900))
	assert.Equal(t, 3000, maxTokensFor(2000))
	assert.Equal(t, 8192, maxTokensFor(10000))
	assert.Equal(t, 2048, maxTokensFor(0))
}

func TestRollingSummary(t *testing.T) {
	assert.Equal(t, firstChapterSummary, rollingSummary(nil))

	long := strings.Repeat("x", 700)
	got := rollingSummary([]string{"dropped", "second", long})
	assert.NotContains(t, got, "dropped")
	assert.True(t, strings.HasPrefix(got, "Chapter: second"))
	assert.Contains(t, got, "Chapter: "+strings.Repeat("x", 500)+"...")
	assert.NotContains(t, got, strings.Repeat("x", 501))
}

func TestSleepContextHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}

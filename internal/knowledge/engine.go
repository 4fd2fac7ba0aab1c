package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	DefaultTopK = 5

	minContextChars  = 50
	contextSeparator = "\n\n---\n\n"
	// NoContextMessage stands in when no ingested material matches the topic.
	NoContextMessage = "Failed to retrieve context from documents. The handbook will be generated based on general knowledge."
)

// Engine ingests documents into an index and answers retrieval queries
// against it.
type Engine struct {
	embedder Embedder
	index    Indexer
	logger   *slog.Logger
	topK     int
	maxChars int
}

// NewEngine creates a knowledge engine. A nil logger discards output.
func NewEngine(em Embedder, idx Indexer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		embedder: em,
		index:    idx,
		logger:   logger,
		topK:     DefaultTopK,
		maxChars: DefaultChunkChars,
	}
}

// WithTopK sets how many chunks a query returns.
func (e *Engine) WithTopK(k int) *Engine {
	if k > 0 {
		e.topK = k
	}
	return e
}

func (e *Engine) WithChunkChars(n int) *Engine {
	if n > 0 {
		e.maxChars = n
	}
	return e
}

// Ingest splits content, embeds every chunk and adds them to the index.
// It returns the number of chunks stored.
func (e *Engine) Ingest(ctx context.Context, source, content string) (int, error) {
	if e.embedder == nil || e.index == nil {
		return 0, fmt.Errorf("embedder or indexer not initialized")
	}
	chunks := SplitText(source, content, e.maxChars)
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = embeddableText(c)
	}
	vectors, err := e.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(vectors), len(chunks))
	}

	items := make([]VectorItem, len(chunks))
	for i, c := range chunks {
		items[i] = VectorItem{Chunk: c, Embedding: vectors[i]}
	}
	if err := e.index.Add(ctx, items); err != nil {
		return 0, fmt.Errorf("failed to index chunks: %w", err)
	}
	e.logger.Info("ingested document", "source", source, "chunks", len(chunks))
	return len(chunks), nil
}

func embeddableText(c Chunk) string {
	if c.Heading == "" {
		return c.Content
	}
	return c.Heading + "\n" + c.Content
}

// Search returns the chunks most similar to query.
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]VectorItem, error) {
	if e.embedder == nil || e.index == nil {
		return nil, nil
	}
	vectors, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, nil
	}
	return e.index.Search(ctx, vectors[0], topK)
}

// Retrieve returns the top chunks for query joined into one context string.
// It matches the section writer's retrieval callback.
func (e *Engine) Retrieve(ctx context.Context, query string) (string, error) {
	items, err := e.Search(ctx, query, e.topK)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if text := strings.TrimSpace(it.Chunk.Content); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// GatherContext runs a fixed set of topic queries and joins the useful
// answers. It never fails; errors are logged and the query skipped.
func (e *Engine) GatherContext(ctx context.Context, topic string) string {
	var parts []string
	for _, q := range topicQueries(topic) {
		if ctx.Err() != nil {
			break
		}
		text, err := e.Retrieve(ctx, q)
		if err != nil {
			e.logger.Warn("context query failed", "query", q, "error", err)
			continue
		}
		text = strings.TrimSpace(text)
		if len(text) <= minContextChars {
			continue
		}
		parts = append(parts, text)
	}
	if len(parts) == 0 {
		return NoContextMessage
	}
	return strings.Join(parts, contextSeparator)
}

func topicQueries(topic string) []string {
	return []string{
		"General information about " + topic,
		"Core concepts and terms of " + topic,
		"Application areas and examples of " + topic,
		"Best practices for " + topic,
		"Recent developments and trends in " + topic,
	}
}

package knowledge

import (
	"context"
)

// Embedder converts text to vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Chunk is one retrievable passage of ingested material.
type Chunk struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Heading string `json:"heading,omitempty"`
	Content string `json:"content"`
}

// VectorItem represents a chunk paired with its embedding.
type VectorItem struct {
	Chunk     Chunk
	Embedding []float32
	Score     float32
}

// Indexer manages the storage and retrieval of VectorItems.
type Indexer interface {
	Add(ctx context.Context, items []VectorItem) error
	Search(ctx context.Context, queryVector []float32, topK int) ([]VectorItem, error)
}

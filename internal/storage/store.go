package storage

import (
	"context"
	"errors"
	"time"

	"longwrite/internal/knowledge"
)

// ErrNotFound is returned when a document ID has no row.
var ErrNotFound = errors.New("storage: not found")

// Store combines vector and document storage capabilities.
type Store interface {
	VectorStore
	DocumentStore
	Close() error
}

// VectorStore defines operations for semantic search.
type VectorStore interface {
	// Add upserts chunks with their vector representations.
	Add(ctx context.Context, items []knowledge.VectorItem) error

	// Search finds chunks semantically similar to the query vector.
	Search(ctx context.Context, queryVector []float32, topK int) ([]knowledge.VectorItem, error)

	// Delete removes chunks by ID.
	Delete(ctx context.Context, ids []string) error

	// DeleteSource removes every chunk ingested from source.
	DeleteSource(ctx context.Context, source string) (int, error)

	CountChunks(ctx context.Context) (int, error)

	// SourceHash and RecordSource track what was ingested from each file.
	SourceHash(ctx context.Context, source string) (string, error)
	RecordSource(ctx context.Context, source, hash string, chunks int) error
}

// DocumentStore persists generated documents.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc *DocumentRecord) (string, error)
	GetDocument(ctx context.Context, id string) (*DocumentRecord, error)
	ListDocuments(ctx context.Context, limit int) ([]DocumentSummary, error)
}

// SectionRecord is one stored section of a document.
type SectionRecord struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
	Degraded  bool   `json:"degraded,omitempty"`
}

// DocumentRecord is a generated document as persisted.
type DocumentRecord struct {
	ID        string
	Topic     string
	Title     string
	Model     string
	Style     string
	WordCount int
	Body      string
	Sections  []SectionRecord
	CreatedAt time.Time
}

// DocumentSummary is the listing view of a stored document.
type DocumentSummary struct {
	ID        string
	Title     string
	Model     string
	WordCount int
	CreatedAt time.Time
}

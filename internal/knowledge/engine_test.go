package knowledge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEmbedder struct {
	dim   int
	err   error
	calls int
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	results := make([][]float32, len(texts))
	for i := range texts {
		results[i] = make([]float32, m.dim) // zeros
	}
	return results, nil
}

func (m *mockEmbedder) Dimension() int { return m.dim }

const sampleDoc = `# Kubernetes

Kubernetes schedules containers across a cluster of nodes and restarts them when they fail.

## Networking

Every pod receives its own IP address. Services give a stable virtual address to a set of pods.

## Storage

Persistent volumes decouple storage lifetime from pod lifetime. Claims request capacity and access modes.
`

func TestEngine_Ingest(t *testing.T) {
	embedder := &mockEmbedder{dim: 8}
	index := NewMemoryIndex()
	engine := NewEngine(embedder, index, nil)

	n, err := engine.Ingest(context.Background(), "k8s.md", sampleDoc)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, index.Len())
	assert.Equal(t, "Networking", index.items[1].Chunk.Heading)
	assert.Len(t, index.items[0].Embedding, 8)

	// Same content re-ingested upserts by chunk ID.
	_, err = engine.Ingest(context.Background(), "k8s.md", sampleDoc)
	require.NoError(t, err)
	assert.Equal(t, 3, index.Len())
}

func TestEngine_IngestRequiresCollaborators(t *testing.T) {
	_, err := NewEngine(nil, NewMemoryIndex(), nil).Ingest(context.Background(), "a", "text")
	assert.Error(t, err)
}

func TestEngine_IngestEmbedError(t *testing.T) {
	engine := NewEngine(&mockEmbedder{err: errors.New("quota")}, NewMemoryIndex(), nil)
	_, err := engine.Ingest(context.Background(), "a.md", sampleDoc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestEngine_RetrieveRanksBySimilarity(t *testing.T) {
	engine := NewEngine(NewHashEmbedder(512), NewMemoryIndex(), nil).WithTopK(1)
	_, err := engine.Ingest(context.Background(), "k8s.md", sampleDoc)
	require.NoError(t, err)

	got, err := engine.Retrieve(context.Background(), "persistent volumes storage claims")
	require.NoError(t, err)
	assert.Contains(t, got, "Persistent volumes")
	assert.NotContains(t, got, "pod receives its own IP")
}

func TestEngine_GatherContext(t *testing.T) {
	engine := NewEngine(NewHashEmbedder(0), NewMemoryIndex(), nil).WithTopK(2)
	_, err := engine.Ingest(context.Background(), "k8s.md", sampleDoc)
	require.NoError(t, err)

	got := engine.GatherContext(context.Background(), "Kubernetes")
	assert.NotEqual(t, NoContextMessage, got)
	assert.Len(t, strings.Split(got, contextSeparator), 5)
}

func TestEngine_GatherContextFallsBack(t *testing.T) {
	empty := NewEngine(NewHashEmbedder(0), NewMemoryIndex(), nil)
	assert.Equal(t, NoContextMessage, empty.GatherContext(context.Background(), "Anything"))

	failing := NewEngine(&mockEmbedder{err: errors.New("down")}, NewMemoryIndex(), nil)
	assert.Equal(t, NoContextMessage, failing.GatherContext(context.Background(), "Anything"))
}

func TestEngine_GatherContextDropsShortAnswers(t *testing.T) {
	engine := NewEngine(NewHashEmbedder(0), NewMemoryIndex(), nil)
	_, err := engine.Ingest(context.Background(), "tiny.txt", "too short to matter")
	require.NoError(t, err)
	assert.Equal(t, NoContextMessage, engine.GatherContext(context.Background(), "tiny"))
}

func TestTopicQueries(t *testing.T) {
	qs := topicQueries("Rust")
	require.Len(t, qs, 5)
	assert.Equal(t, "General information about Rust", qs[0])
	assert.Equal(t, "Recent developments and trends in Rust", qs[4])
}

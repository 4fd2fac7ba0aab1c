package knowledge

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkID(t *testing.T) {
	a := ChunkID("a.md", "body")
	assert.Len(t, a, 32)
	assert.Equal(t, a, ChunkID("a.md", "body"))
	assert.NotEqual(t, a, ChunkID("b.md", "body"))
	assert.NotEqual(t, a, ChunkID("a.md", "other"))
	assert.NotEqual(t, ChunkID("ab", "c"), ChunkID("a", "bc"))
}

func TestSplitText_Headings(t *testing.T) {
	chunks := SplitText("doc.md", "Intro line.\n\n# One\n\nBody one.\n\n## Two\n\nBody two.\n#notaheading\n", 0)
	require.Len(t, chunks, 3)
	assert.Equal(t, "", chunks[0].Heading)
	assert.Equal(t, "Intro line.", chunks[0].Content)
	assert.Equal(t, "One", chunks[1].Heading)
	assert.Equal(t, "Two", chunks[2].Heading)
	assert.Contains(t, chunks[2].Content, "#notaheading")
	for _, c := range chunks {
		assert.Equal(t, "doc.md", c.Source)
		assert.Equal(t, ChunkID("doc.md", c.Content), c.ID)
	}
}

func TestSplitText_PacksParagraphs(t *testing.T) {
	para := strings.Repeat("a", 40)
	text := strings.Join([]string{para, para, para, para}, "\n\n")
	chunks := SplitText("p.txt", text, 90)
	require.Len(t, chunks, 2)
	assert.Equal(t, para+"\n\n"+para, chunks[0].Content)
}

func TestSplitText_LongParagraphSplitsOnWords(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 100))
	chunks := SplitText("w.txt", text, 50)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 50)
	}
}

func TestSplitText_KeepsTextAfterVeryLongLine(t *testing.T) {
	long := strings.Repeat("x", 1200*1024)
	content := "# Intro\n\nopening\n" + long + "\n\n# Later\n\nimportant tail text\n"

	chunks := SplitText("big.txt", content, 0)

	require.NotEmpty(t, chunks)
	last := chunks[len(chunks)-1]
	assert.Equal(t, "Later", last.Heading)
	assert.Equal(t, "# Later\n\nimportant tail text", last.Content)
}

func TestSplitText_CRLF(t *testing.T) {
	chunks := SplitText("win.md", "# One\r\n\r\nBody.\r\n", 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, "One", chunks[0].Heading)
	assert.Equal(t, "# One\n\nBody.", chunks[0].Content)
}

func TestSplitText_Empty(t *testing.T) {
	assert.Empty(t, SplitText("e.txt", "  \n\n ", 0))
}

func TestMemoryIndex_Search(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []VectorItem{
		{Chunk: Chunk{ID: "x"}, Embedding: []float32{1, 0}},
		{Chunk: Chunk{ID: "y"}, Embedding: []float32{0, 1}},
		{Chunk: Chunk{ID: "xy"}, Embedding: []float32{1, 1}},
	}))

	got, err := idx.Search(ctx, []float32{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "x", got[0].Chunk.ID)
	assert.Equal(t, "xy", got[1].Chunk.ID)
	assert.Greater(t, got[0].Score, got[1].Score)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{2, 0}, []float32{5, 0}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.Zero(t, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}

func TestHashEmbedder(t *testing.T) {
	h := NewHashEmbedder(64)
	vecs, err := h.Embed(context.Background(), []string{"Alpha beta", "alpha, BETA!", ""})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Len(t, vecs[0], 64)
	assert.InDelta(t, 1.0, CosineSimilarity(vecs[0], vecs[1]), 1e-6)
	assert.Zero(t, CosineSimilarity(vecs[0], vecs[2]))
}

func TestNewEmbedder(t *testing.T) {
	em, err := NewEmbedder(context.Background(), EmbedderOptions{Provider: "hash", Dimension: 32})
	require.NoError(t, err)
	assert.Equal(t, 32, em.Dimension())

	_, err = NewEmbedder(context.Background(), EmbedderOptions{Provider: "nope"})
	assert.Error(t, err)

	_, err = NewEmbedder(context.Background(), EmbedderOptions{Provider: "openai", Model: "text-embedding-3-small"})
	assert.Error(t, err)

	em, err = NewEmbedder(context.Background(), EmbedderOptions{Provider: "ollama", Model: "nomic-embed-text"})
	require.NoError(t, err)
	require.IsType(t, &OpenAIEmbedder{}, em)
	assert.Equal(t, defaultOllamaEmbedURL, em.(*OpenAIEmbedder).endpoint)
}

func TestNewEmbedder_OpenAICompatibleEndpoints(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		provider string
		baseURL  string
		want     string
	}{
		{"openai", "", defaultOpenAIEmbedURL},
		{"openrouter", "", defaultOpenRouterEmbedURL},
		{"openrouter", "https://proxy.example/v1/", "https://proxy.example/v1"},
	}
	for _, tc := range cases {
		em, err := NewEmbedder(ctx, EmbedderOptions{Provider: tc.provider, APIKey: "k", Model: "m", BaseURL: tc.baseURL})
		require.NoError(t, err, tc.provider)
		assert.Equal(t, tc.want, em.(*OpenAIEmbedder).endpoint, tc.provider)
	}
}

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"longwrite/internal/knowledge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_VectorRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	items := []knowledge.VectorItem{
		{Chunk: knowledge.Chunk{ID: "a", Source: "one.md", Heading: "A", Content: "alpha"}, Embedding: []float32{1, 0, 0}},
		{Chunk: knowledge.Chunk{ID: "b", Source: "one.md", Content: "beta"}, Embedding: []float32{0, 1, 0}},
		{Chunk: knowledge.Chunk{ID: "c", Source: "two.md", Content: "gamma"}, Embedding: []float32{0.9, 0.1, 0}},
	}
	require.NoError(t, store.Add(ctx, items))

	got, err := store.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Chunk.ID)
	assert.Equal(t, "A", got[0].Chunk.Heading)
	assert.Equal(t, []float32{1, 0, 0}, got[0].Embedding)
	assert.Equal(t, "c", got[1].Chunk.ID)

	// Upsert keeps one row per ID.
	items[1].Chunk.Content = "beta v2"
	require.NoError(t, store.Add(ctx, items[1:2]))
	n, err := store.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	removed, err := store.DeleteSource(ctx, "one.md")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	require.NoError(t, store.Delete(ctx, []string{"c"}))
	n, err = store.CountChunks(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteStore_ServesKnowledgeEngine(t *testing.T) {
	store := openTestStore(t)
	engine := knowledge.NewEngine(knowledge.NewHashEmbedder(128), store, nil).WithTopK(1)

	_, err := engine.Ingest(context.Background(), "notes.md", "# Caching\n\nWrite-through caches update the store on every write.\n\n# Queues\n\nMessage queues decouple producers from consumers.")
	require.NoError(t, err)

	got, err := engine.Retrieve(context.Background(), "message queues producers consumers")
	require.NoError(t, err)
	assert.Contains(t, got, "Message queues")
}

func TestSQLiteStore_Documents(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := &DocumentRecord{
		Topic:     "Older",
		Title:     "Older",
		Model:     "m1",
		WordCount: 10,
		Body:      "# Older",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
	olderID, err := store.SaveDocument(ctx, older)
	require.NoError(t, err)
	assert.NotEmpty(t, olderID)

	newer := &DocumentRecord{
		Topic:     "Newer",
		Title:     "Newer",
		Model:     "m2",
		Style:     "academic",
		WordCount: 1800,
		Body:      "# Newer\n\n## One",
		Sections: []SectionRecord{
			{Title: "One", Content: "## One", WordCount: 900},
			{Title: "Two", Content: "## Two", WordCount: 900, Degraded: true},
		},
	}
	newerID, err := store.SaveDocument(ctx, newer)
	require.NoError(t, err)
	assert.NotEqual(t, olderID, newerID)

	got, err := store.GetDocument(ctx, newerID)
	require.NoError(t, err)
	assert.Equal(t, "Newer", got.Title)
	assert.Equal(t, "academic", got.Style)
	assert.Equal(t, 1800, got.WordCount)
	require.Len(t, got.Sections, 2)
	assert.True(t, got.Sections[1].Degraded)

	list, err := store.ListDocuments(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newerID, list[0].ID)
	assert.Equal(t, olderID, list[1].ID)

	list, err = store.ListDocuments(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSQLiteStore_GetDocumentNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_Sources(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	hash, err := store.SourceHash(ctx, "a.md")
	require.NoError(t, err)
	assert.Empty(t, hash)

	require.NoError(t, store.RecordSource(ctx, "a.md", "h1", 3))
	require.NoError(t, store.RecordSource(ctx, "a.md", "h2", 4))
	hash, err = store.SourceHash(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, "h2", hash)

	_, err = store.DeleteSource(ctx, "a.md")
	require.NoError(t, err)
	hash, err = store.SourceHash(ctx, "a.md")
	require.NoError(t, err)
	assert.Empty(t, hash)
}

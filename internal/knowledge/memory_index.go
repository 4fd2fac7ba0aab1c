package knowledge

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is an in-memory vector index with exact cosine search.
type MemoryIndex struct {
	mu    sync.RWMutex
	items []VectorItem
	byID  map[string]int
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{items: []VectorItem{}, byID: map[string]int{}}
}

// Add upserts items by chunk ID.
func (m *MemoryIndex) Add(ctx context.Context, items []VectorItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		if i, ok := m.byID[it.Chunk.ID]; ok {
			m.items[i] = it
			continue
		}
		m.byID[it.Chunk.ID] = len(m.items)
		m.items = append(m.items, it)
	}
	return nil
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MemoryIndex) Search(ctx context.Context, queryVector []float32, topK int) ([]VectorItem, error) {
	m.mu.RLock()
	scored := make([]VectorItem, len(m.items))
	for i, it := range m.items {
		it.Score = CosineSimilarity(queryVector, it.Embedding)
		scored[i] = it
	}
	m.mu.RUnlock()
	return TopK(scored, topK), nil
}

// TopK sorts items by descending score and keeps the first k.
func TopK(items []VectorItem, k int) []VectorItem {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	if k > 0 && len(items) > k {
		items = items[:k]
	}
	return items
}

func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}

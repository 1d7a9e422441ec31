package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-memory vector store for development and
// testing. Search is brute-force cosine similarity.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	points    map[string]Point
}

// NewMemoryStore creates a new in-memory vector store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		points: make(map[string]Point),
	}
}

// EnsureCollection records the dimension. Idempotent.
func (s *MemoryStore) EnsureCollection(ctx context.Context, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		s.dimension = dimension
	}
	return nil
}

// Upsert stores points, replacing existing ones by id. Once the
// collection dimension is known, points of any other dimension are
// rejected, mirroring the remote index contract.
func (s *MemoryStore) Upsert(ctx context.Context, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if s.dimension != 0 && len(p.Vector) != s.dimension {
			return fmt.Errorf("%w: point %s has dimension %d, expected %d", ErrIndexWrite, p.ID, len(p.Vector), s.dimension)
		}
	}
	for _, p := range points {
		s.points[p.ID] = p
	}
	return nil
}

// Search returns up to limit hits by descending cosine similarity.
func (s *MemoryStore) Search(ctx context.Context, vector []float32, limit int, filter *Filter) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}
	if s.dimension != 0 && len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, expected %d", ErrIndexRead, len(vector), s.dimension)
	}

	hits := make([]Hit, 0, len(s.points))
	for _, p := range s.points {
		if filter != nil && p.Payload.DocumentID != filter.DocumentID {
			continue
		}
		hits = append(hits, Hit{
			DocumentID: p.Payload.DocumentID,
			ChunkID:    p.Payload.ChunkID,
			Content:    p.Payload.Content,
			Score:      CosineSimilarity(vector, p.Vector),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// DeleteByDocument removes every point belonging to the document.
func (s *MemoryStore) DeleteByDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.points {
		if p.Payload.DocumentID == documentID {
			delete(s.points, id)
		}
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// Count returns the number of points in the store.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

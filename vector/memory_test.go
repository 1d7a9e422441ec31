package vector

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.EnsureCollection(ctx, 3); err != nil {
		t.Fatalf("EnsureCollection: %v", err)
	}

	v := []float32{0.1, 0.7, 0.2}
	err := s.Upsert(ctx, []Point{{
		ID:      "chunk-1",
		Vector:  v,
		Payload: Payload{DocumentID: "doc-1", ChunkID: "chunk-1", Content: "hello"},
	}})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	hits, err := s.Search(ctx, v, 1, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].ChunkID != "chunk-1" || hits[0].Content != "hello" {
		t.Errorf("unexpected hit %+v", hits[0])
	}
	// Same vector: score at the metric's maximum.
	if math.Abs(float64(hits[0].Score)-1.0) > 1e-6 {
		t.Errorf("score = %f, want ~1.0", hits[0].Score)
	}
}

func TestMemoryStore_UpsertReplaces(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p := Point{ID: "x", Vector: []float32{1, 0}, Payload: Payload{DocumentID: "d", ChunkID: "x", Content: "old"}}
	s.Upsert(ctx, []Point{p})
	p.Payload.Content = "new"
	s.Upsert(ctx, []Point{p})

	if s.Count() != 1 {
		t.Fatalf("count = %d, want 1", s.Count())
	}
	hits, _ := s.Search(ctx, []float32{1, 0}, 1, nil)
	if hits[0].Content != "new" {
		t.Errorf("content = %q, want %q", hits[0].Content, "new")
	}
}

func TestMemoryStore_FilteredIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Upsert(ctx, []Point{
		{ID: "a1", Vector: []float32{1, 0}, Payload: Payload{DocumentID: "A", ChunkID: "a1"}},
		{ID: "a2", Vector: []float32{0.9, 0.1}, Payload: Payload{DocumentID: "A", ChunkID: "a2"}},
		{ID: "b1", Vector: []float32{1, 0}, Payload: Payload{DocumentID: "B", ChunkID: "b1"}},
	})

	hits, err := s.Search(ctx, []float32{1, 0}, 10, &Filter{DocumentID: "A"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	for _, h := range hits {
		if h.DocumentID != "A" {
			t.Errorf("filtered search returned foreign document %s", h.DocumentID)
		}
	}
}

func TestMemoryStore_DeleteCompleteness(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Upsert(ctx, []Point{
		{ID: "a1", Vector: []float32{1, 0}, Payload: Payload{DocumentID: "A", ChunkID: "a1"}},
		{ID: "a2", Vector: []float32{0, 1}, Payload: Payload{DocumentID: "A", ChunkID: "a2"}},
		{ID: "b1", Vector: []float32{1, 1}, Payload: Payload{DocumentID: "B", ChunkID: "b1"}},
	})

	if err := s.DeleteByDocument(ctx, "A"); err != nil {
		t.Fatalf("DeleteByDocument: %v", err)
	}

	hits, _ := s.Search(ctx, []float32{1, 0}, 10, nil)
	for _, h := range hits {
		if h.DocumentID == "A" {
			t.Errorf("point %s survived delete", h.ChunkID)
		}
	}
	if s.Count() != 1 {
		t.Errorf("count = %d, want 1", s.Count())
	}
}

func TestMemoryStore_SearchLimit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Upsert(ctx, []Point{
		{ID: "1", Vector: []float32{1, 0}, Payload: Payload{DocumentID: "A", ChunkID: "1"}},
		{ID: "2", Vector: []float32{0.9, 0.1}, Payload: Payload{DocumentID: "A", ChunkID: "2"}},
		{ID: "3", Vector: []float32{0, 1}, Payload: Payload{DocumentID: "A", ChunkID: "3"}},
	})

	hits, _ := s.Search(ctx, []float32{1, 0}, 2, nil)
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].Score < hits[1].Score {
		t.Error("hits not in descending score order")
	}
}

func TestMemoryStore_DimensionEnforced(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.EnsureCollection(ctx, 3); err != nil {
		t.Fatalf("EnsureCollection: %v", err)
	}

	err := s.Upsert(ctx, []Point{{ID: "bad", Vector: []float32{1, 0}, Payload: Payload{DocumentID: "A", ChunkID: "bad"}}})
	if !errors.Is(err, ErrIndexWrite) {
		t.Fatalf("Upsert error = %v, want ErrIndexWrite", err)
	}
	if s.Count() != 0 {
		t.Errorf("count = %d after rejected upsert, want 0", s.Count())
	}

	if _, err := s.Search(ctx, []float32{1, 0}, 5, nil); !errors.Is(err, ErrIndexRead) {
		t.Errorf("Search error = %v, want ErrIndexRead", err)
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CosineSimilarity(tc.a, tc.b)
			if math.Abs(float64(got-tc.want)) > 1e-6 {
				t.Errorf("CosineSimilarity = %f, want %f", got, tc.want)
			}
		})
	}
}

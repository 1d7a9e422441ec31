// Package vector provides the client to the external vector index:
// point upsert, filtered nearest-neighbor search, and bulk delete by
// document, over one logical collection of fixed-dimension points.
package vector

import (
	"context"
	"errors"
)

// ErrIndexWrite marks a failed collection-create, upsert, or delete.
var ErrIndexWrite = errors.New("vector index write failed")

// ErrIndexRead marks a failed search.
var ErrIndexRead = errors.New("vector index read failed")

// Payload is the data carried by every indexed point, used for
// filtering and for hydrating search results without a second store
// lookup.
type Payload struct {
	DocumentID string `json:"document_id"`
	ChunkID    string `json:"chunk_id"`
	Content    string `json:"content"`
}

// Point is a single entry in the index, keyed by chunk id.
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// Filter restricts a search to points belonging to one document.
type Filter struct {
	DocumentID string
}

// Hit is one search result, hydrated from the point payload.
type Hit struct {
	DocumentID string
	ChunkID    string
	Content    string
	Score      float32
}

// Store provides vector index operations over one collection.
type Store interface {
	// EnsureCollection creates the collection with the given dimension
	// if it does not already exist. Idempotent.
	EnsureCollection(ctx context.Context, dimension int) error

	// Upsert inserts or replaces points by id. All-or-nothing from the
	// caller's perspective: on error no partial success is reported.
	Upsert(ctx context.Context, points []Point) error

	// Search returns up to limit hits ordered by descending similarity
	// score, optionally restricted by filter. Tie order between
	// equal-score hits follows the index's native order.
	Search(ctx context.Context, vector []float32, limit int, filter *Filter) ([]Hit, error)

	// DeleteByDocument removes every point whose payload document id
	// matches.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Close releases resources.
	Close() error
}

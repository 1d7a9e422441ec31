// Package search answers similarity queries against the vector index.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/selfstudy/ragserver/embedding"
	"github.com/selfstudy/ragserver/vector"
)

// ErrRetrieval marks a failed search: either the query embedding or
// the index lookup went wrong. No partial results are returned.
var ErrRetrieval = errors.New("retrieval failed")

// DefaultLimit is the number of results returned when the caller does
// not specify one.
const DefaultLimit = 5

// Result is one ranked hit for a query.
type Result struct {
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Content    string  `json:"content"`
	Score      float32 `json:"score"`
}

// Service embeds queries and runs filtered nearest-neighbor searches.
// It is read-only and safe to use concurrently with any number of
// in-flight ingestions.
type Service struct {
	embedder embedding.Embedder
	index    vector.Store
}

// NewService creates a retrieval service.
func NewService(embedder embedding.Embedder, index vector.Store) *Service {
	return &Service{embedder: embedder, index: index}
}

// Search returns up to limit passages most similar to query, in
// descending score order, optionally restricted to one document.
func (s *Service) Search(ctx context.Context, query string, limit int, documentID string) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrRetrieval, err)
	}

	var filter *vector.Filter
	if documentID != "" {
		filter = &vector.Filter{DocumentID: documentID}
	}

	hits, err := s.index.Search(ctx, queryVector, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{
			DocumentID: h.DocumentID,
			ChunkID:    h.ChunkID,
			Content:    h.Content,
			Score:      h.Score,
		}
	}
	return results, nil
}

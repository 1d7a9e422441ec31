package server

import (
	"github.com/selfstudy/ragserver/search"
	"github.com/selfstudy/ragserver/store"
)

// CreateDocumentRequest is the body of POST /api/documents.
type CreateDocumentRequest struct {
	Title    string `json:"title"`
	FileName string `json:"file_name"`
	FileURL  string `json:"file_url"`
	FileSize int64  `json:"file_size"`
}

// DocumentListResponse is the body of GET /api/documents.
type DocumentListResponse struct {
	Documents []store.Document `json:"documents"`
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query      string `json:"query"`
	DocumentID string `json:"document_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// SearchResponse is the body of POST /api/search.
type SearchResponse struct {
	Results []search.Result `json:"results"`
}

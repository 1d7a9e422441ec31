// Package store persists document and chunk records in a relational
// database, with Postgres and SQLite backends selected by DSN.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a document does not exist or is owned
// by a different user.
var ErrNotFound = errors.New("not found")

// Status is the processing state of a document. Transitions are
// pending -> processing -> completed | failed; the two terminal states
// are never left.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Document is an uploaded document and its processing state.
type Document struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	FileName      string    `json:"file_name"`
	FileURL       string    `json:"file_url"`
	FileSize      int64     `json:"file_size"`
	PageCount     *int      `json:"page_count,omitempty"`
	Status        Status    `json:"processing_status"`
	ExtractedText *string   `json:"extracted_text,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Chunk is one word-window of a document's extracted text. Immutable
// once created; chunk indices for a document are contiguous from 0.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	TokenCount int       `json:"token_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// DocumentUpdate carries the fields the ingestion pipeline mutates.
// Nil fields are left unchanged.
type DocumentUpdate struct {
	Status        *Status
	PageCount     *int
	ExtractedText *string
}

// DocumentStore defines the interface for document and chunk
// persistence.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (Document, error)

	// GetDocumentForUser fetches a document only if userID owns it;
	// both a missing row and an ownership miss return ErrNotFound.
	GetDocumentForUser(ctx context.Context, id, userID string) (Document, error)
	ListDocuments(ctx context.Context, userID string) ([]Document, error)
	UpdateDocument(ctx context.Context, id string, update DocumentUpdate) error

	CreateChunk(ctx context.Context, chunk Chunk) error
	ListChunks(ctx context.Context, documentID string) ([]Chunk, error)

	// DeleteChunks removes all chunk rows for a document, leaving the
	// document row in place. Deleting for a chunkless document is not
	// an error.
	DeleteChunks(ctx context.Context, documentID string) error

	// DeleteDocument removes the document row and all its chunk rows
	// atomically.
	DeleteDocument(ctx context.Context, id string) error

	Close() error
}

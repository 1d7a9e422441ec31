// Package ingest drives a document through extraction, chunking,
// embedding, and indexing, advancing its processing status as it goes.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/selfstudy/ragserver/chunker"
	"github.com/selfstudy/ragserver/embedding"
	"github.com/selfstudy/ragserver/monitor"
	"github.com/selfstudy/ragserver/store"
	"github.com/selfstudy/ragserver/vector"
)

// ErrAlreadyRunning is returned when an ingestion is requested for a
// document that already has a run in flight.
var ErrAlreadyRunning = errors.New("ingestion already in flight for document")

// Config configures a Pipeline.
type Config struct {
	Store     store.DocumentStore
	Embedder  embedding.Embedder
	Index     vector.Store
	Extractor Extractor
	Metrics   monitor.Collector

	// WindowWords and OverlapWords are the chunking policy
	// (default 500/50).
	WindowWords  int
	OverlapWords int

	// MaxConcurrent bounds the number of simultaneously running
	// background ingestions (default 4).
	MaxConcurrent int64

	// RunTimeout bounds one background run end to end (default 5m),
	// so a stalled external dependency cannot hold a document lease
	// forever.
	RunTimeout time.Duration
}

// Pipeline is the ingestion orchestrator. Per-document execution is
// serialized through a lease arena; background runs are bounded by a
// weighted semaphore.
type Pipeline struct {
	store     store.DocumentStore
	embedder  embedding.Embedder
	index     vector.Store
	extractor Extractor
	metrics   monitor.Collector

	windowWords  int
	overlapWords int
	runTimeout   time.Duration

	leases *leaseArena
	sem    *semaphore.Weighted
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	if cfg.WindowWords <= 0 {
		cfg.WindowWords = chunker.DefaultWindowWords
	}
	if cfg.OverlapWords <= 0 {
		cfg.OverlapWords = chunker.DefaultOverlapWords
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}
	if cfg.Metrics == nil {
		cfg.Metrics = monitor.NewNoOpCollector()
	}
	if cfg.Extractor == nil {
		cfg.Extractor = NewPlainTextExtractor()
	}
	return &Pipeline{
		store:        cfg.Store,
		embedder:     cfg.Embedder,
		index:        cfg.Index,
		extractor:    cfg.Extractor,
		metrics:      cfg.Metrics,
		windowWords:  cfg.WindowWords,
		overlapWords: cfg.OverlapWords,
		runTimeout:   cfg.RunTimeout,
		leases:       newLeaseArena(),
		sem:          semaphore.NewWeighted(cfg.MaxConcurrent),
	}
}

// Dispatch runs ingestion for the document on a background goroutine,
// bounded by the pipeline's concurrency limit. The caller returns
// immediately; progress is observable through the document status.
func (p *Pipeline) Dispatch(documentID string, raw []byte) {
	go func() {
		if err := p.sem.Acquire(context.Background(), 1); err != nil {
			return
		}
		defer p.sem.Release(1)

		ctx, cancel := context.WithTimeout(context.Background(), p.runTimeout)
		defer cancel()

		if err := p.Run(ctx, documentID, raw); err != nil {
			log.Printf("[ingest] document %s: %v", documentID, err)
		}
	}()
}

// Run drives one document through the full pipeline:
// extract -> persist text/status -> chunk -> embed -> persist chunk
// rows -> index points -> completed. Any step failure marks the
// document failed and aborts; nothing is retried here. Run refuses to
// execute concurrently for the same document id.
func (p *Pipeline) Run(ctx context.Context, documentID string, raw []byte) error {
	if !p.leases.tryAcquire(documentID) {
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, documentID)
	}
	defer p.leases.release(documentID)

	start := time.Now()
	chunks, pages, err := p.run(ctx, documentID, raw)

	m := monitor.IngestMetrics{
		DocumentID: documentID,
		Chunks:     chunks,
		PageCount:  pages,
		Duration:   time.Since(start),
		Success:    err == nil,
	}
	if err != nil {
		m.Error = err.Error()
	}
	p.metrics.Record(m)

	return err
}

func (p *Pipeline) run(ctx context.Context, documentID string, raw []byte) (int, int, error) {
	text, pages, err := p.extractor.Extract(raw)
	if err != nil {
		p.markFailed(ctx, documentID)
		return 0, 0, fmt.Errorf("extract document %s: %w", documentID, err)
	}

	processing := store.StatusProcessing
	err = p.store.UpdateDocument(ctx, documentID, store.DocumentUpdate{
		Status:        &processing,
		PageCount:     &pages,
		ExtractedText: &text,
	})
	if err != nil {
		return 0, pages, fmt.Errorf("persist extracted text for %s: %w", documentID, err)
	}

	// Clear remnants of any earlier failed attempt so re-processing
	// starts from a clean slate instead of colliding with stale rows.
	if err := p.index.DeleteByDocument(ctx, documentID); err != nil {
		p.markFailed(ctx, documentID)
		return 0, pages, fmt.Errorf("clear index points for %s: %w", documentID, err)
	}
	if err := p.store.DeleteChunks(ctx, documentID); err != nil {
		p.markFailed(ctx, documentID)
		return 0, pages, fmt.Errorf("clear chunk rows for %s: %w", documentID, err)
	}

	contents := chunker.Chunk(text, p.windowWords, p.overlapWords)
	log.Printf("[ingest] document %s: %d pages, %d chunks", documentID, pages, len(contents))

	if len(contents) > 0 {
		vectors, err := p.embedder.EmbedBatch(ctx, contents)
		if err != nil {
			p.markFailed(ctx, documentID)
			return 0, pages, fmt.Errorf("embed chunks for %s: %w", documentID, err)
		}

		points := make([]vector.Point, 0, len(contents))
		now := time.Now().UTC()
		for i, content := range contents {
			chunk := store.Chunk{
				ID:         uuid.New().String(),
				DocumentID: documentID,
				ChunkIndex: i,
				Content:    content,
				TokenCount: chunker.EstimateTokens(content),
				CreatedAt:  now,
			}
			if err := p.store.CreateChunk(ctx, chunk); err != nil {
				p.markFailed(ctx, documentID)
				return 0, pages, fmt.Errorf("persist chunk %d of %s: %w", i, documentID, err)
			}
			points = append(points, vector.Point{
				ID:     chunk.ID,
				Vector: vectors[i],
				Payload: vector.Payload{
					DocumentID: documentID,
					ChunkID:    chunk.ID,
					Content:    content,
				},
			})
		}

		if err := p.index.Upsert(ctx, points); err != nil {
			p.markFailed(ctx, documentID)
			return 0, pages, fmt.Errorf("index chunks for %s: %w", documentID, err)
		}
	}

	completed := store.StatusCompleted
	if err := p.store.UpdateDocument(ctx, documentID, store.DocumentUpdate{Status: &completed}); err != nil {
		return len(contents), pages, fmt.Errorf("mark %s completed: %w", documentID, err)
	}

	log.Printf("[ingest] document %s completed", documentID)
	return len(contents), pages, nil
}

// markFailed moves the document to its terminal failed state so an
// operator has a signal to retry. Best effort: the original error is
// what surfaces to the caller. The run context may already be expired
// or cancelled when a step fails, so the status write runs on a fresh
// deadline detached from it.
func (p *Pipeline) markFailed(ctx context.Context, documentID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	failed := store.StatusFailed
	if err := p.store.UpdateDocument(ctx, documentID, store.DocumentUpdate{Status: &failed}); err != nil {
		log.Printf("[ingest] mark document %s failed: %v", documentID, err)
	}
}

// Delete removes a document everywhere: its vector-index points first,
// then the relational row and chunk rows in one cascade.
func (p *Pipeline) Delete(ctx context.Context, documentID string) error {
	if err := p.index.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete index points for %s: %w", documentID, err)
	}
	if err := p.store.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}
	return nil
}

package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/selfstudy/ragserver/ingest"
	"github.com/selfstudy/ragserver/monitor"
	"github.com/selfstudy/ragserver/search"
	"github.com/selfstudy/ragserver/store"
)

// maxDocumentBytes caps how much of a remote file the create handler
// will download.
const maxDocumentBytes = 32 << 20

// Config configures a new Server instance.
type Config struct {
	Store    store.DocumentStore
	Pipeline *ingest.Pipeline
	Search   *search.Service
	Metrics  monitor.Collector

	// Fetcher downloads document bytes from file_url. Optional;
	// defaults to an http.Client with a 60s timeout.
	Fetcher *http.Client
}

// Server is the HTTP server for document ingestion and retrieval.
type Server struct {
	store    store.DocumentStore
	pipeline *ingest.Pipeline
	search   *search.Service
	metrics  monitor.Collector
	fetcher  *http.Client
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("server: document store is required")
	}
	if cfg.Pipeline == nil {
		return nil, errors.New("server: ingestion pipeline is required")
	}
	if cfg.Search == nil {
		return nil, errors.New("server: search service is required")
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = monitor.NewNoOpCollector()
	}

	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = &http.Client{Timeout: 60 * time.Second}
	}

	log.Printf("[server] Initialized document API")

	return &Server{
		store:    cfg.Store,
		pipeline: cfg.Pipeline,
		search:   cfg.Search,
		metrics:  metrics,
		fetcher:  fetcher,
	}, nil
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	return s.store.Close()
}

// Handler returns an http.Handler for the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/documents", s.handleDocumentCreate)
	mux.HandleFunc("GET /api/documents", s.handleDocumentList)
	mux.HandleFunc("GET /api/documents/{id}", s.handleDocumentGet)
	mux.HandleFunc("DELETE /api/documents/{id}", s.handleDocumentDelete)

	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/metrics/summary", s.handleMetricsSummary)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

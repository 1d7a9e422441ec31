package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/selfstudy/ragserver/config"
	"github.com/selfstudy/ragserver/embedding"
	"github.com/selfstudy/ragserver/ingest"
	"github.com/selfstudy/ragserver/monitor"
	"github.com/selfstudy/ragserver/search"
	"github.com/selfstudy/ragserver/server"
	"github.com/selfstudy/ragserver/store"
	"github.com/selfstudy/ragserver/vector"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Printf("[env] Loaded .env")
	}

	cfg, err := config.Load(getEnvOr("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	docStore, err := store.New(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("initialize document store: %v", err)
	}

	index := newVectorStore(cfg)

	embedder := embedding.NewClient(embedding.ClientConfig{
		BaseURL:   cfg.Embedding.BaseURL,
		APIKey:    cfg.EmbeddingAPIKey(),
		Timeout:   time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
		BatchSize: cfg.Embedding.BatchSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := index.EnsureCollection(ctx, cfg.Embedding.Dimension); err != nil {
		log.Fatalf("ensure vector collection: %v", err)
	}
	cancel()

	metrics := monitor.NewInMemoryCollector()

	pipeline := ingest.New(ingest.Config{
		Store:         docStore,
		Embedder:      embedder,
		Index:         index,
		Metrics:       metrics,
		WindowWords:   cfg.Ingest.WindowWords,
		OverlapWords:  cfg.Ingest.OverlapWords,
		MaxConcurrent: cfg.Ingest.MaxConcurrent,
		RunTimeout:    time.Duration(cfg.Ingest.RunTimeoutSecs) * time.Second,
	})

	srv, err := server.New(server.Config{
		Store:    docStore,
		Pipeline: pipeline,
		Search:   search.NewService(embedder, index),
		Metrics:  metrics,
	})
	if err != nil {
		log.Fatalf("initialize server: %v", err)
	}
	defer srv.Close()

	log.Printf("Starting ragserver on %s", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, srv.Handler()))
}

func newVectorStore(cfg *config.Config) vector.Store {
	if cfg.Vector.Type == "qdrant" && cfg.Vector.Qdrant != nil {
		log.Printf("[vector] Using Qdrant at %s (collection %s)",
			cfg.Vector.Qdrant.URL, cfg.Vector.Qdrant.Collection)
		return vector.NewQdrantStore(vector.QdrantConfig{
			URL:        cfg.Vector.Qdrant.URL,
			APIKey:     cfg.QdrantAPIKey(),
			Collection: cfg.Vector.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Vector.Qdrant.TimeoutSecs) * time.Second,
		})
	}
	log.Printf("[vector] Using in-memory vector store")
	return vector.NewMemoryStore()
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

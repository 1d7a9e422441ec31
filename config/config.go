// Package config loads the server configuration from a YAML file,
// filling in defaults and reading secrets from the environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig selects the relational store by DSN.
// Empty means SQLite at data/ragserver.db; postgres:// selects
// PostgreSQL; anything else is a SQLite path.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// EmbeddingConfig configures the model-inference endpoint.
type EmbeddingConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Dimension   int    `yaml:"dimension"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// QdrantConfig contains connection details for a Qdrant vector index.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorConfig selects the vector index implementation.
type VectorConfig struct {
	Type   string        `yaml:"type"` // "qdrant" or "memory"
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// IngestConfig configures the ingestion pipeline.
type IngestConfig struct {
	WindowWords    int   `yaml:"window_words"`
	OverlapWords   int   `yaml:"overlap_words"`
	MaxConcurrent  int64 `yaml:"max_concurrent"`
	RunTimeoutSecs int   `yaml:"run_timeout_secs"`
}

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Vector    VectorConfig    `yaml:"vector"`
	Ingest    IngestConfig    `yaml:"ingest"`
}

// Load reads a config from path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// EmbeddingAPIKey reads the embedding API key from the configured
// environment variable.
func (c *Config) EmbeddingAPIKey() string {
	return os.Getenv(c.Embedding.APIKeyEnv)
}

// QdrantAPIKey reads the Qdrant API key from the configured
// environment variable, if a Qdrant index is configured.
func (c *Config) QdrantAPIKey() string {
	if c.Vector.Qdrant == nil {
		return ""
	}
	return os.Getenv(c.Vector.Qdrant.APIKeyEnv)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "https://api-inference.huggingface.co/models/sentence-transformers/all-MiniLM-L6-v2"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "HF_API_KEY"
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = 384
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 32
	}
	if cfg.Vector.Type == "" {
		cfg.Vector.Type = "memory"
	}
	if cfg.Vector.Type == "qdrant" {
		if cfg.Vector.Qdrant == nil {
			cfg.Vector.Qdrant = &QdrantConfig{}
		}
		if cfg.Vector.Qdrant.URL == "" {
			cfg.Vector.Qdrant.URL = "http://localhost:6333"
		}
		if cfg.Vector.Qdrant.APIKeyEnv == "" {
			cfg.Vector.Qdrant.APIKeyEnv = "QDRANT_API_KEY"
		}
		if cfg.Vector.Qdrant.Collection == "" {
			cfg.Vector.Qdrant.Collection = "documents"
		}
		if cfg.Vector.Qdrant.TimeoutSecs == 0 {
			cfg.Vector.Qdrant.TimeoutSecs = 15
		}
	}
	if cfg.Ingest.WindowWords == 0 {
		cfg.Ingest.WindowWords = 500
	}
	if cfg.Ingest.OverlapWords == 0 {
		cfg.Ingest.OverlapWords = 50
	}
	if cfg.Ingest.MaxConcurrent == 0 {
		cfg.Ingest.MaxConcurrent = 4
	}
	if cfg.Ingest.RunTimeoutSecs == 0 {
		cfg.Ingest.RunTimeoutSecs = 300
	}
}

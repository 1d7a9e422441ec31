package monitor

import "time"

// IngestMetrics records the outcome of one document ingestion run.
type IngestMetrics struct {
	DocumentID string        `json:"document_id"`
	Chunks     int           `json:"chunks"`
	PageCount  int           `json:"page_count"`
	Duration   time.Duration `json:"duration"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
}

// Summary contains aggregated ingestion metrics.
type Summary struct {
	TotalDocuments  int     `json:"total_documents"`
	TotalChunks     int     `json:"total_chunks"`
	TotalFailures   int     `json:"total_failures"`
	AvgDurationMs   float64 `json:"avg_duration_ms"`
	TotalDurationMs int64   `json:"total_duration_ms"`
}

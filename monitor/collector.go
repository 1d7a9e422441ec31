// Package monitor collects in-memory metrics about document
// ingestion runs.
package monitor

import "sync"

// Collector records ingestion metrics.
type Collector interface {
	Record(m IngestMetrics)
	Summary() Summary
}

// InMemoryCollector keeps metrics in memory; safe for concurrent use.
type InMemoryCollector struct {
	mu      sync.RWMutex
	metrics []IngestMetrics
}

// NewInMemoryCollector creates an empty collector.
func NewInMemoryCollector() *InMemoryCollector {
	return &InMemoryCollector{}
}

// Record appends one ingestion outcome.
func (c *InMemoryCollector) Record(m IngestMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = append(c.metrics, m)
}

// Summary aggregates all recorded runs.
func (c *InMemoryCollector) Summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var s Summary
	if len(c.metrics) == 0 {
		return s
	}

	for _, m := range c.metrics {
		s.TotalDocuments++
		s.TotalChunks += m.Chunks
		if !m.Success {
			s.TotalFailures++
		}
		s.TotalDurationMs += m.Duration.Milliseconds()
	}
	s.AvgDurationMs = float64(s.TotalDurationMs) / float64(s.TotalDocuments)
	return s
}

// Reset discards all recorded metrics.
func (c *InMemoryCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = nil
}

// NoOpCollector discards all metrics.
type NoOpCollector struct{}

// NewNoOpCollector creates a collector that records nothing.
func NewNoOpCollector() *NoOpCollector { return &NoOpCollector{} }

func (*NoOpCollector) Record(IngestMetrics) {}
func (*NoOpCollector) Summary() Summary     { return Summary{} }

package ingest

import "sync"

// leaseArena guarantees at most one in-flight ingestion per document
// id. Leases are held for the whole duration of a run; a second
// acquire for the same id fails instead of blocking.
type leaseArena struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func newLeaseArena() *leaseArena {
	return &leaseArena{inflight: make(map[string]struct{})}
}

func (a *leaseArena) tryAcquire(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, held := a.inflight[id]; held {
		return false
	}
	a.inflight[id] = struct{}{}
	return true
}

func (a *leaseArena) release(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.inflight, id)
}

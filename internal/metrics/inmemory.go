package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UserDeletes               map[string]uint64
	UserDeleteDurationCount   uint64
	UserDeleteDurationTotalNs int64
	AuthFailures              map[string]uint64
	AuthCacheHits             uint64
	AuthCacheMisses           uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	mu           sync.Mutex
	userDeletes  map[string]uint64
	authFailures map[string]uint64

	userDeleteDurationCount   uint64
	userDeleteDurationTotalNs int64
	authCacheHits             uint64
	authCacheMisses           uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		userDeletes:  make(map[string]uint64),
		authFailures: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	deletes := make(map[string]uint64, len(m.userDeletes))
	for k, v := range m.userDeletes {
		deletes[k] = v
	}
	failures := make(map[string]uint64, len(m.authFailures))
	for k, v := range m.authFailures {
		failures[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		UserDeletes:               deletes,
		UserDeleteDurationCount:   atomic.LoadUint64(&m.userDeleteDurationCount),
		UserDeleteDurationTotalNs: atomic.LoadInt64(&m.userDeleteDurationTotalNs),
		AuthFailures:              failures,
		AuthCacheHits:             atomic.LoadUint64(&m.authCacheHits),
		AuthCacheMisses:           atomic.LoadUint64(&m.authCacheMisses),
	}
}

// IncUserDelete counts a delete-user request by outcome.
func (m *InMemoryRecorder) IncUserDelete(outcome string) {
	m.mu.Lock()
	m.userDeletes[outcome]++
	m.mu.Unlock()
}

// ObserveUserDeleteDuration records store latency of a delete.
func (m *InMemoryRecorder) ObserveUserDeleteDuration(duration time.Duration) {
	atomic.AddUint64(&m.userDeleteDurationCount, 1)
	atomic.AddInt64(&m.userDeleteDurationTotalNs, duration.Nanoseconds())
}

// IncAuthFailure counts a rejected request by reason.
func (m *InMemoryRecorder) IncAuthFailure(reason string) {
	m.mu.Lock()
	m.authFailures[reason]++
	m.mu.Unlock()
}

// IncAuthCacheHit increments the auth cache hit counter.
func (m *InMemoryRecorder) IncAuthCacheHit() {
	atomic.AddUint64(&m.authCacheHits, 1)
}

// IncAuthCacheMiss increments the auth cache miss counter.
func (m *InMemoryRecorder) IncAuthCacheMiss() {
	atomic.AddUint64(&m.authCacheMisses, 1)
}

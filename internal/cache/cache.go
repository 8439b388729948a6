// Package cache maps query fingerprints to previously synthesized responses
// with a time-to-live. Entries are never mutated, only replaced; racing
// writers for one fingerprint resolve as last-write-wins.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/oslobeats/concierge/pkg/models"
)

// ResponseCache is the cache consulted before the pipeline runs and written
// after synthesis. Implementations must support concurrent reads and writes.
type ResponseCache interface {
	Get(fingerprint string) (*models.SynthesizedResponse, bool)
	Put(fingerprint string, resp *models.SynthesizedResponse)
	Stats() models.CacheStats
	Clear() int
	Close()
}

type entry struct {
	resp      *models.SynthesizedResponse
	expiresAt time.Time
}

// Memory is the in-process ResponseCache. Expired entries are dropped lazily
// on read and proactively by a background sweep.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	hits   atomic.Int64
	misses atomic.Int64

	doneCh chan struct{}
	once   sync.Once
}

// NewMemory creates a memory cache with the given TTL. A positive sweep
// interval starts a janitor goroutine; Close stops it.
func NewMemory(ttl, sweepInterval time.Duration) *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		doneCh:  make(chan struct{}),
	}
	if sweepInterval > 0 {
		go m.sweepLoop(sweepInterval)
	}
	return m
}

// Get returns the cached response for a fingerprint, or a miss when absent
// or expired.
func (m *Memory) Get(fingerprint string) (*models.SynthesizedResponse, bool) {
	m.mu.RLock()
	e, ok := m.entries[fingerprint]
	m.mu.RUnlock()

	if !ok {
		m.misses.Add(1)
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock: a racing Put may have replaced it.
		if cur, ok := m.entries[fingerprint]; ok && time.Now().After(cur.expiresAt) {
			delete(m.entries, fingerprint)
		}
		m.mu.Unlock()
		m.misses.Add(1)
		return nil, false
	}

	m.hits.Add(1)
	return e.resp, true
}

// Put stores the response under the fingerprint, replacing any prior entry.
func (m *Memory) Put(fingerprint string, resp *models.SynthesizedResponse) {
	m.mu.Lock()
	m.entries[fingerprint] = entry{resp: resp, expiresAt: time.Now().Add(m.ttl)}
	m.mu.Unlock()
}

// Stats returns entry and hit/miss counters.
func (m *Memory) Stats() models.CacheStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.CacheStats{
		Entries: int64(len(m.entries)),
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
	}
}

// Clear evicts everything and returns the number of entries dropped.
func (m *Memory) Clear() int {
	m.mu.Lock()
	n := len(m.entries)
	m.entries = make(map[string]entry)
	m.mu.Unlock()
	return n
}

// Close stops the sweep goroutine.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.doneCh) })
}

func (m *Memory) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.doneCh:
			return
		}
	}
}

func (m *Memory) sweep() {
	now := time.Now()
	m.mu.Lock()
	evicted := 0
	for fp, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, fp)
			evicted++
		}
	}
	m.mu.Unlock()

	if evicted > 0 {
		log.Debug().Int("evicted", evicted).Msg("Cache sweep complete")
	}
}

// Disabled is a no-op ResponseCache used when caching is turned off.
type Disabled struct{}

func (Disabled) Get(string) (*models.SynthesizedResponse, bool)  { return nil, false }
func (Disabled) Put(string, *models.SynthesizedResponse)         {}
func (Disabled) Stats() models.CacheStats                        { return models.CacheStats{} }
func (Disabled) Clear() int                                      { return 0 }
func (Disabled) Close()                                          {}

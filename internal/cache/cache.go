// Package cache provides the short-lived response cache shared by concurrent
// requests.
package cache

import (
	"sync"
	"time"
)

// Cache maps keys to immutable values with a time-to-live. A read at or after
// an entry's expiry is a miss. Set always replaces the whole entry and
// refreshes its expiry.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	// EvictExpired drops expired entries and reports how many were removed.
	EvictExpired() int
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Cache. Entries are never mutated after being
// stored, so concurrent readers need no locking beyond the map's own.
type Memory struct {
	entries sync.Map
	now     func() time.Time
}

var _ Cache = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// NewMemoryWithClock is NewMemory with an injected clock.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{now: now}
}

func (m *Memory) Get(key string) ([]byte, bool) {
	v, ok := m.entries.Load(key)
	if !ok {
		return nil, false
	}
	e := v.(*entry)
	if !m.now().Before(e.expiresAt) {
		m.entries.CompareAndDelete(key, v)
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(key string, value []byte, ttl time.Duration) {
	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries.Store(key, &entry{value: stored, expiresAt: m.now().Add(ttl)})
}

func (m *Memory) EvictExpired() int {
	now := m.now()
	removed := 0
	m.entries.Range(func(key, v any) bool {
		if !now.Before(v.(*entry).expiresAt) {
			if m.entries.CompareAndDelete(key, v) {
				removed++
			}
		}
		return true
	})
	return removed
}

// Janitor calls EvictExpired on c every interval until stop is closed.
func Janitor(c Cache, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.EvictExpired()
		}
	}
}

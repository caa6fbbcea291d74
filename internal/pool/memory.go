package pool

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemoryKeys caps the number of pool keys kept in memory.
const DefaultMemoryKeys = 256

type memEntry struct {
	text    string
	created time.Time
}

// MemoryStore is an in-process Store. Keys are evicted least recently used
// beyond its capacity, and a key not refilled within the TTL is dropped whole.
type MemoryStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, []memEntry]
	now   func() time.Time
}

// NewMemoryStore returns a store holding up to size keys for ttl each.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = DefaultMemoryKeys
	}
	if ttl <= 0 {
		ttl = DefaultRetention
	}
	return &MemoryStore{
		cache: expirable.NewLRU[string, []memEntry](size, nil, ttl),
		now:   time.Now,
	}
}

func (m *MemoryStore) Take(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, ok := m.cache.Get(key)
	if !ok || len(entries) == 0 {
		return "", false, nil
	}
	head := entries[0]
	rest := entries[1:]
	if len(rest) == 0 {
		m.cache.Remove(key)
	} else {
		m.cache.Add(key, rest)
	}
	return head.text, true, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, texts []string) error {
	if len(texts) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, _ := m.cache.Get(key)
	now := m.now()
	next := make([]memEntry, 0, len(entries)+len(texts))
	next = append(next, entries...)
	for _, text := range texts {
		next = append(next, memEntry{text: text, created: now})
	}
	m.cache.Add(key, next)
	return nil
}

func (m *MemoryStore) Remaining(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, _ := m.cache.Peek(key)
	return len(entries), nil
}

func (m *MemoryStore) Expire(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for _, key := range m.cache.Keys() {
		entries, ok := m.cache.Peek(key)
		if !ok {
			continue
		}
		kept := entries[:0:0]
		for _, e := range entries {
			if e.created.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		switch {
		case len(kept) == 0:
			m.cache.Remove(key)
		case len(kept) != len(entries):
			m.cache.Add(key, kept)
		}
	}
	return removed, nil
}

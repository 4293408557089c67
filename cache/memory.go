// api/cache/memory.go
package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store. It backs tests and the degraded mode
// when Redis is unavailable at startup. Entries are evicted lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key Key) (Entry, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key.String()]
	m.mu.RUnlock()

	if !ok {
		return Entry{}, false, nil
	}
	if Freshness(entry, m.now()) == Expired {
		m.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have replaced
		// the entry since the read.
		if current, still := m.entries[key.String()]; still && Freshness(current, m.now()) == Expired {
			delete(m.entries, key.String())
		}
		m.mu.Unlock()
		return Entry{}, false, nil
	}
	return entry, true, nil
}

func (m *MemoryStore) Set(ctx context.Context, key Key, payload []byte, tier Tier) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)

	m.mu.Lock()
	m.entries[key.String()] = Entry{
		Payload:  buf,
		StoredAt: m.now(),
		Tier:     tier,
	}
	m.mu.Unlock()
	return nil
}

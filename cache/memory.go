package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog/log"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
	ttl     time.Duration
}

// MemoryStore is an in-process Store backed by a plain map.
//
// It is intended for tests and single-process use: it provides no
// cross-process consistency and no memory bound or eviction beyond TTL
// expiry. This is a deliberate limitation, and instantiating it outside
// a test binary logs a warning. Expiry is lazy: entries are checked at
// read time only, and an expired entry is purged by the read that
// discovers it.
type MemoryStore struct {
	mutex *sync.Mutex
	db    map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	if !testing.Testing() {
		log.Warn().Msg("Memory store instantiated outside tests: entries are process-local, unbounded, and evicted on TTL only")
	}
	return &MemoryStore{
		mutex: &sync.Mutex{},
		db:    make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	entry, ok := m.db[key]
	if !ok {
		return nil, nil
	}
	// an entry with zero ttl never expires
	if entry.ttl != 0 && !time.Now().Before(entry.expires) {
		delete(m.db, key)
		return nil, nil
	}
	return entry.value, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if len(value) == 0 {
		delete(m.db, key)
		return nil
	}
	m.db[key] = memoryEntry{
		value:   value,
		expires: time.Now().Add(ttl),
		ttl:     ttl,
	}
	return nil
}

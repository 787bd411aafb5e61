package session

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore is a bounded in-process Store. The least recently used snapshot is evicted when
// the store is full, and snapshots older than the ttl are dropped.
type MemoryStore struct {
	cache *expirable.LRU[string, Snapshot]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding up to size snapshots for ttl. A zero ttl keeps
// snapshots until evicted.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = 1
	}
	return &MemoryStore{cache: expirable.NewLRU[string, Snapshot](size, nil, ttl)}
}

func (m *MemoryStore) Put(ctx context.Context, s Snapshot) (string, error) {
	s = prepare(s, time.Now().UTC())
	m.cache.Add(s.ID, s)
	return s.ID, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s, ok := m.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.Tree = append([]byte(nil), s.Tree...)
	return &s, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.cache.Remove(id)
	return nil
}

// Len returns the number of live snapshots.
func (m *MemoryStore) Len() int {
	return m.cache.Len()
}

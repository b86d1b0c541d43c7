// ABOUTME: Per-opportunity keyed mutexes
// ABOUTME: Serializes mutations per id while unrelated opportunities proceed in parallel
package pipeline

import (
	"sync"

	"github.com/google/uuid"
)

// keyedLocks hands out one mutex per opportunity id. Entries are never
// removed; the map is bounded by the number of opportunities.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// lock acquires the mutex for id and returns its unlock function.
func (k *keyedLocks) lock(id uuid.UUID) func() {
	k.mu.Lock()
	m, ok := k.locks[id]
	if !ok {
		m = &sync.Mutex{}
		k.locks[id] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

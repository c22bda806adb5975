package versionstore

import "sync"

// keyedMutex serializes writers per record id within a single process. The
// object store gives no cross-writer coordination, so without this two
// concurrent stale-then-append sequences on the same id can both observe the
// same current version and leave two current versions behind. The per-id
// lock closes that window for writers sharing this process; cross-process
// writers must still be serialized externally.
//
// Lock entries are never released; the map is bounded by the set of record
// ids a process touches.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for id and returns it so callers can
// `defer km.lock(id).Unlock()`.
func (k *keyedMutex) lock(id string) *sync.Mutex {
	k.mu.Lock()
	m, ok := k.locks[id]
	if !ok {
		m = &sync.Mutex{}
		k.locks[id] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m
}

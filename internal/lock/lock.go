package lock

import "sync"

// MutexMap hands out one mutex per key. Holders of different keys never
// contend.
type MutexMap struct {
	mu      sync.Mutex
	mutexes map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewMutexMap() *MutexMap {
	return &MutexMap{mutexes: make(map[string]*entry)}
}

func (m *MutexMap) Lock(key string) {
	m.mu.Lock()
	e, ok := m.mutexes[key]
	if !ok {
		e = &entry{}
		m.mutexes[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases key. The entry is dropped once nobody holds or waits on it.
func (m *MutexMap) Unlock(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.mutexes[key]
	if !ok {
		panic("lock: unlock of unlocked key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(m.mutexes, key)
	}
	e.mu.Unlock()
}

// Len reports how many keys are currently held or awaited.
func (m *MutexMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.mutexes)
}

package session

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	sess    Session
	expires time.Time
}

// MemoryStore keeps sessions in process memory.  It is used when Redis is
// not reachable, so sessions do not survive a restart and are not shared
// between replicas.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memEntry
	now     func() time.Time
}

// NewMemoryStore returns a MemoryStore whose sessions expire ttl after
// their last update.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: map[string]memEntry{}, now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(id), nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(*Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.load(id)
	if err := fn(&sess); err != nil {
		return err
	}
	sess.ID = id
	m.entries[id] = memEntry{sess: sess.clone(), expires: m.now().Add(m.ttl)}
	m.sweep()
	return nil
}

// load must be called with mu held.
func (m *MemoryStore) load(id string) Session {
	e, ok := m.entries[id]
	if !ok || (m.ttl > 0 && m.now().After(e.expires)) {
		delete(m.entries, id)
		return Session{ID: id}
	}
	return e.sess.clone()
}

func (m *MemoryStore) sweep() {
	if m.ttl <= 0 {
		return
	}
	now := m.now()
	for id, e := range m.entries {
		if now.After(e.expires) {
			delete(m.entries, id)
		}
	}
}

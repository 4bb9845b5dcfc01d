package session

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultMemoryLimit caps the number of sessions a MemoryStore holds.
	DefaultMemoryLimit = 10000
	sweepInterval      = time.Minute
)

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
// Expired entries are swept on Save, and once the limit is reached the
// oldest session is evicted to make room. Use the Redis store when sessions
// must survive restarts or be shared between instances.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	limit     int
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithLimit(DefaultMemoryLimit)
}

// NewMemoryStoreWithLimit returns a MemoryStore holding at most limit
// sessions. A non-positive limit uses DefaultMemoryLimit.
func NewMemoryStoreWithLimit(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		limit:   limit,
		now:     time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, s Session, ttl time.Duration) error {
	now := m.now()
	entry := memoryEntry{session: s}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweepLocked(now)
	}
	if _, exists := m.entries[s.ID]; !exists && len(m.entries) >= m.limit {
		m.sweepLocked(now)
		if len(m.entries) >= m.limit {
			m.evictOldestLocked()
		}
	}
	m.entries[s.ID] = entry
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return Session{}, ErrNotFound
	}

	if entry.expired(m.now()) {
		m.mu.Lock()
		delete(m.entries, id)
		m.mu.Unlock()
		return Session{}, ErrNotFound
	}
	return entry.session, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored sessions, including expired ones not yet swept.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep removes every expired session.
func (m *MemoryStore) Sweep() {
	m.mu.Lock()
	m.sweepLocked(m.now())
	m.mu.Unlock()
}

func (m *MemoryStore) sweepLocked(now time.Time) {
	for id, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, id)
		}
	}
	m.lastSweep = now
}

func (m *MemoryStore) evictOldestLocked() {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, entry := range m.entries {
		if oldestID == "" || entry.session.CreatedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = entry.session.CreatedAt
		}
	}
	if oldestID != "" {
		delete(m.entries, oldestID)
	}
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

package leads

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store holds lead sessions keyed by visitor. Returned sessions are copies;
// changes become visible only through Save.
type Store interface {
	GetOrCreate(ctx context.Context, key string, amount int64, now time.Time) (Session, bool, error)
	Get(ctx context.Context, key string) (Session, error)
	Save(ctx context.Context, s Session) error
	Delete(ctx context.Context, key string) error
	All(ctx context.Context) ([]Session, error)
	Len() int
	// Lock serializes work on one key until the returned func is called.
	Lock(key string) func()
}

// MemoryStore is the process-local Store. Sessions do not survive restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	keys     keyedMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
	}
}

// GetOrCreate returns the session for key, creating it with amount and
// CreatedAt=now when absent. The bool reports whether it was created.
func (m *MemoryStore) GetOrCreate(ctx context.Context, key string, amount int64, now time.Time) (Session, bool, error) {
	if strings.TrimSpace(key) == "" {
		return Session{}, false, ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[key]; ok {
		return s.Clone(), false, nil
	}
	s := newSession(key, amount, now)
	m.sessions[key] = s
	return s.Clone(), true, nil
}

// Get retrieves a session by key
func (m *MemoryStore) Get(ctx context.Context, key string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[key]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s.Clone(), nil
}

// Save replaces the stored session. Saving a deleted session is an error so
// a sweep deletion is never undone by a late writer.
func (m *MemoryStore) Save(ctx context.Context, s Session) error {
	if strings.TrimSpace(s.Key) == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.Key]; !ok {
		return ErrSessionNotFound
	}
	m.sessions[s.Key] = s.Clone()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.sessions, key)
	m.mu.Unlock()
	return nil
}

// All returns a snapshot of every session ordered by creation time.
func (m *MemoryStore) All(ctx context.Context) ([]Session, error) {
	m.mu.RLock()
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Clone())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Key < out[j].Key
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) Lock(key string) func() {
	return m.keys.lock(key)
}

// keyedMutex hands out one mutex per key and frees it once no holder or
// waiter remains.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	rm, ok := k.locks[key]
	if !ok {
		rm = &refMutex{}
		k.locks[key] = rm
	}
	rm.refs++
	k.mu.Unlock()

	rm.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			rm.Unlock()
			k.mu.Lock()
			rm.refs--
			if rm.refs == 0 {
				delete(k.locks, key)
			}
			k.mu.Unlock()
		})
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

var _ Store = (*MemoryStore)(nil)

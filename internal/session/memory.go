package session

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	sess    *Session
	expires time.Time
}

// Memory is an in-process Registry. Expired sessions are dropped lazily on
// access and by Sweep.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[Key]memEntry
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, entries: make(map[Key]memEntry), now: time.Now}
}

func (m *Memory) Begin(ctx context.Context, s *Session) error {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[s.Key]; ok && now.Before(e.expires) {
		return ErrActive
	}
	m.entries[s.Key] = memEntry{sess: s.Clone(), expires: now.Add(m.ttl)}
	return nil
}

func (m *Memory) Load(ctx context.Context, key Key) (*Session, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	if !now.Before(e.expires) {
		delete(m.entries, key)
		return nil, nil
	}
	return e.sess.Clone(), nil
}

func (m *Memory) Save(ctx context.Context, s *Session) error {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[s.Key]
	if !ok {
		return ErrNotFound
	}
	if !now.Before(e.expires) {
		delete(m.entries, s.Key)
		return ErrNotFound
	}
	// a newer session for the same key replaced this one
	if e.sess.ID != s.ID {
		return ErrNotFound
	}
	m.entries[s.Key] = memEntry{sess: s.Clone(), expires: now.Add(m.ttl)}
	return nil
}

func (m *Memory) End(ctx context.Context, key Key) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *Memory) Sweep(ctx context.Context) (int, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored sessions, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/crimelens/crime-analytics/internal/cache"
)

// State is what a session remembers between messages.
type State struct {
	Cities []string `json:"cities,omitempty"`
	Year   string   `json:"year,omitempty"`
	Intent Intent   `json:"intent,omitempty"`
}

// MemoryStore keeps per-session State in a cache.Client. Each session has
// its own lock so concurrent requests for one session run one at a time.
type MemoryStore struct {
	client cache.Client
	ttl    time.Duration

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewMemoryStore creates a store. A zero ttl keeps state until evicted.
func NewMemoryStore(client cache.Client, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		client: client,
		ttl:    ttl,
		locks:  make(map[string]*sessionLock),
	}
}

// Lock serialises work on one session and returns the matching unlock.
func (m *MemoryStore) Lock(sessionID string) func() {
	m.mu.Lock()
	l, ok := m.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		m.locks[sessionID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, sessionID)
		}
		m.mu.Unlock()
	}
}

// Load returns the stored state. A session with nothing stored yields a
// zero State and no error.
func (m *MemoryStore) Load(ctx context.Context, sessionID string) (State, error) {
	data, err := m.client.Get(ctx, cache.SessionKey(sessionID))
	if errors.Is(err, cache.ErrCacheMiss) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return st, nil
}

// Save overwrites the stored state and refreshes its TTL.
func (m *MemoryStore) Save(ctx context.Context, sessionID string, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}
	if err := m.client.Set(ctx, cache.SessionKey(sessionID), data, m.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// Forget drops a session's state.
func (m *MemoryStore) Forget(ctx context.Context, sessionID string) error {
	if err := m.client.Delete(ctx, cache.SessionKey(sessionID)); err != nil {
		return fmt.Errorf("forget session %s: %w", sessionID, err)
	}
	return nil
}

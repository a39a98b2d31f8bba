package submission

import (
	"context"
	"sync"
	"time"

	"github.com/bbernhard/leaf-playground/internal/upload"
)

// Session pairs the selected file slot with the state machine. One per
// page instance, terminal run or batch item.
type Session struct {
	ID      string               `json:"id"`
	File    *upload.SelectedFile `json:"file,omitempty"`
	Machine Machine              `json:"machine"`
}

func (s *Session) State() State {
	return s.Machine.State()
}

// Store keeps sessions between requests. Load returns ErrSessionNotFound
// for unknown or expired ids.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	session Session
	expires time.Time
}

// MemoryStore keeps sessions in process. A zero ttl keeps them forever.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[id]
	if !ok || m.expired(entry) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	session := entry.session
	return &session, nil
}

func (m *MemoryStore) Save(ctx context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, entry := range m.sessions {
		if m.expired(entry) {
			delete(m.sessions, id)
		}
	}

	entry := memoryEntry{session: *session}
	if m.ttl > 0 {
		entry.expires = m.now().Add(m.ttl)
	}
	m.sessions[session.ID] = entry
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expires.IsZero() && m.now().After(entry.expires)
}

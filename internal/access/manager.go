package access

import (
	"context"
	"sync"
	"time"
)

// refreshTimeout bounds the background refresh triggered by a
// permissions-changed broadcast.
const refreshTimeout = 10 * time.Second

// Manager owns the live sessions, one per authenticated user, and fans the
// permissions-changed broadcast out to them. Sessions are created lazily on
// first use and evicted on logout.
type Manager struct {
	source AssignmentSource

	mu       sync.Mutex
	sessions map[int64]*Session
	pending  map[int64]bool // per-session in-flight refresh guard
}

func NewManager(source AssignmentSource) *Manager {
	return &Manager{
		source:   source,
		sessions: make(map[int64]*Session),
		pending:  make(map[int64]bool),
	}
}

// Session returns the user's session, loading it on first access. The load
// error is returned but the session is still usable; an errored session
// simply has no conference access until the next refresh.
func (m *Manager) Session(ctx context.Context, userID int64, role Role) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if ok && s.Role != role {
		// Role changed server-side; the old session's grants are stale.
		ok = false
	}
	if !ok {
		s = NewSession(m.source, userID, role)
		m.sessions[userID] = s
	}
	m.mu.Unlock()

	if !s.Loaded() {
		if err := s.Load(ctx); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Evict drops a user's session, e.g. on logout.
func (m *Manager) Evict(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// NotifyPermissionsChanged refreshes every live session in the background.
// Per session, overlapping notifications coalesce: while a refresh is in
// flight further broadcasts are dropped, since the in-flight fetch will
// observe the new state anyway (the list is idempotently re-derivable).
func (m *Manager) NotifyPermissionsChanged() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, s := range m.sessions {
		if m.pending[userID] {
			continue
		}
		m.pending[userID] = true
		go func(userID int64, s *Session) {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()
			_ = s.Refresh(ctx)

			m.mu.Lock()
			delete(m.pending, userID)
			m.mu.Unlock()
		}(userID, s)
	}
}

package session

import (
	"context"
	"log"
	"sync"

	"aulas-booking-client/internal/model"
	"aulas-booking-client/internal/store"
)

// AuthAPI is the slice of the gateway the session manager needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*model.Session, error)
	UserInfo(ctx context.Context, userID int64) (*model.Session, error)
}

// Manager holds the process-wide session state. It is loaded from the
// store once at startup and mutated only through its own operations.
type Manager struct {
	store store.Store
	api   AuthAPI

	mu      sync.RWMutex
	current *model.Session
}

// NewManager creates a session manager backed by the given store.
func NewManager(s store.Store, api AuthAPI) *Manager {
	return &Manager{store: s, api: api}
}

// Restore loads the persisted session, if any. Called once at startup.
func (m *Manager) Restore(ctx context.Context) error {
	sess, found, err := m.store.LoadSession(ctx)
	if err != nil {
		return err
	}
	if found {
		m.mu.Lock()
		m.current = sess
		m.mu.Unlock()
		log.Printf("session restored for user %d", sess.UserID)
	}
	return nil
}

// Current returns the logged-in session, or nil.
func (m *Manager) Current() *model.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// UserID returns the logged-in user's id, or 0 when nobody is logged in.
func (m *Manager) UserID() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return 0
	}
	return m.current.UserID
}

// IsLoggedIn reports whether a session is present.
func (m *Manager) IsLoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

// Login authenticates against the remote API and persists the session.
func (m *Manager) Login(ctx context.Context, email, password string) (*model.Session, error) {
	sess, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := m.store.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	return sess, nil
}

// Refresh re-fetches the aggregate counters (total bookings, active
// today, upcoming) and persists them. The rest of the session record
// is left untouched. No-op when nobody is logged in.
func (m *Manager) Refresh(ctx context.Context) error {
	userID := m.UserID()
	if userID <= 0 {
		return nil
	}
	info, err := m.api.UserInfo(ctx, userID)
	if err != nil {
		log.Printf("error refreshing user %d: %v", userID, err)
		return err
	}

	m.mu.Lock()
	if m.current != nil {
		m.current.TotalBookings = info.TotalBookings
		m.current.ActiveToday = info.ActiveToday
		m.current.Upcoming = info.Upcoming
	}
	updated := m.current
	m.mu.Unlock()

	if updated == nil {
		return nil
	}
	return m.store.SaveSession(ctx, updated)
}

// Invalidate clears the session. Callers are expected to route the user
// back to login.
func (m *Manager) Invalidate(ctx context.Context) {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	if err := m.store.ClearSession(ctx); err != nil {
		log.Printf("error clearing session: %v", err)
	}
}

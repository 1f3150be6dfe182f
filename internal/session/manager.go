// Package session tracks browser sessions: one logical browser per
// user, opened lazily on first submission and attached to every audit
// entry that session produces.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clickagent/backend/internal/shared/id"
	"github.com/clickagent/backend/internal/shared/types"
	"github.com/clickagent/backend/internal/storage"
)

// ErrClosed is returned when an operation targets a closed session.
var ErrClosed = errors.New("session is closed")

// Manager handles browser session lifecycle. The store is the owner
// of record; the manager only enforces transition rules
// (active → idle → active, both → closed, closed is terminal).
type Manager struct {
	store storage.SessionStore
}

// NewManager creates a session manager.
func NewManager(store storage.SessionStore) *Manager {
	return &Manager{store: store}
}

// EnsureActive returns the user's current session, marking it active,
// or opens a new one if none exists.
func (m *Manager) EnsureActive(ctx context.Context, userID string) (*types.Session, error) {
	session, err := m.store.ActiveSessionForUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return m.open(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if session.Status != types.SessionActive {
		session.Status = types.SessionActive
		session.UpdatedAt = time.Now()
		if err := m.store.UpdateSession(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to activate session: %w", err)
		}
	}
	return session, nil
}

// SetIdle marks a session idle after its task finishes.
func (m *Manager) SetIdle(ctx context.Context, sessionID string) error {
	return m.transition(ctx, sessionID, types.SessionIdle)
}

// Close ends a session. Closed sessions never reopen.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status == types.SessionClosed {
		return nil
	}

	now := time.Now()
	session.Status = types.SessionClosed
	session.UpdatedAt = now
	session.ClosedAt = &now
	return m.store.UpdateSession(ctx, session)
}

// Stats returns total and active session counts.
func (m *Manager) Stats(ctx context.Context) (total, active int, err error) {
	return m.store.SessionStats(ctx)
}

func (m *Manager) open(ctx context.Context, userID string) (*types.Session, error) {
	now := time.Now()
	session := &types.Session{
		ID:        id.NewSessionID().String(),
		UserID:    userID,
		Status:    types.SessionActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	return session, nil
}

func (m *Manager) transition(ctx context.Context, sessionID string, to types.SessionStatus) error {
	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status == types.SessionClosed {
		return ErrClosed
	}
	if session.Status == to {
		return nil
	}

	session.Status = to
	session.UpdatedAt = time.Now()
	return m.store.UpdateSession(ctx, session)
}

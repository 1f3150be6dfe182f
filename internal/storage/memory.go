package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/clickagent/backend/internal/shared/types"
)

// Memory is the in-process Store implementation: the single source of
// truth for a single-instance deployment and the test double
// everywhere else. Each method takes the lock once, so every append
// and update is one atomic record write.
type Memory struct {
	mu        sync.RWMutex
	tasks     map[string]*types.Task
	audit     []*types.AuditEntry
	sessions  map[string]*types.Session
	bookmarks map[string]*types.Bookmark
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tasks:     make(map[string]*types.Task),
		sessions:  make(map[string]*types.Session),
		bookmarks: make(map[string]*types.Bookmark),
	}
}

// CreateTask stores a new task record.
func (m *Memory) CreateTask(ctx context.Context, task *types.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tasks[task.ID]; exists {
		return fmt.Errorf("task %s already exists", task.ID)
	}
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

// GetTask returns a copy of the task, or ErrNotFound.
func (m *Memory) GetTask(ctx context.Context, taskID string) (*types.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	task, ok := m.tasks[taskID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *task
	return &cp, nil
}

// UpdateTaskStatus persists a status transition. Terminal transitions
// also record the completion timestamp.
func (m *Memory) UpdateTaskStatus(ctx context.Context, taskID string, status types.Status, result, errMsg *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[taskID]
	if !ok {
		return ErrNotFound
	}

	task.Status = status
	task.Result = result
	task.Error = errMsg
	if status == types.StatusCompleted || status == types.StatusFailed {
		now := time.Now()
		task.CompletedAt = &now
	}
	return nil
}

// ListTasksByUser returns the user's tasks newest first with stable
// offset/limit semantics, plus the user's total count.
func (m *Memory) ListTasksByUser(ctx context.Context, userID string, limit, offset int) ([]*types.Task, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var owned []*types.Task
	for _, task := range m.tasks {
		if task.UserID == userID {
			cp := *task
			owned = append(owned, &cp)
		}
	}

	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].CreatedAt.After(owned[j].CreatedAt)
		}
		// ULIDs sort by creation time; descending ID breaks ties stably.
		return owned[i].ID > owned[j].ID
	})

	total := len(owned)
	if offset >= total {
		return []*types.Task{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return owned[offset:end], total, nil
}

// TaskStats aggregates counts by state.
func (m *Memory) TaskStats(ctx context.Context, userID *string) (types.TaskStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats types.TaskStats
	for _, task := range m.tasks {
		if userID != nil && task.UserID != *userID {
			continue
		}
		stats.Total++
		switch task.Status {
		case types.StatusPending:
			stats.Pending++
		case types.StatusRunning:
			stats.Running++
		case types.StatusCompleted:
			stats.Completed++
		case types.StatusFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

// AppendAudit appends one audit record. Entries are never updated or
// deleted.
func (m *Memory) AppendAudit(ctx context.Context, entry *types.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *entry
	m.audit = append(m.audit, &cp)
	return nil
}

// ListAuditByTask returns the task's audit trail in append order.
func (m *Memory) ListAuditByTask(ctx context.Context, taskID string) ([]*types.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*types.AuditEntry
	for _, entry := range m.audit {
		if entry.TaskID == taskID {
			cp := *entry
			out = append(out, &cp)
		}
	}
	return out, nil
}

// CreateSession stores a new session record.
func (m *Memory) CreateSession(ctx context.Context, session *types.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.ID]; exists {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

// GetSession returns a copy of the session, or ErrNotFound.
func (m *Memory) GetSession(ctx context.Context, sessionID string) (*types.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *session
	return &cp, nil
}

// UpdateSession overwrites a session record.
func (m *Memory) UpdateSession(ctx context.Context, session *types.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[session.ID]; !ok {
		return ErrNotFound
	}
	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

// ActiveSessionForUser returns the user's most recent non-closed
// session.
func (m *Memory) ActiveSessionForUser(ctx context.Context, userID string) (*types.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *types.Session
	for _, session := range m.sessions {
		if session.UserID != userID || session.Status == types.SessionClosed {
			continue
		}
		if latest == nil || session.CreatedAt.After(latest.CreatedAt) {
			latest = session
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

// SessionStats returns total and active session counts.
func (m *Memory) SessionStats(ctx context.Context) (int, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var active int
	for _, session := range m.sessions {
		if session.Status == types.SessionActive {
			active++
		}
	}
	return len(m.sessions), active, nil
}

// CreateBookmark stores a new bookmark.
func (m *Memory) CreateBookmark(ctx context.Context, bookmark *types.Bookmark) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *bookmark
	m.bookmarks[bookmark.ID] = &cp
	return nil
}

// ListBookmarksByUser returns the user's bookmarks newest first.
func (m *Memory) ListBookmarksByUser(ctx context.Context, userID string) ([]*types.Bookmark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*types.Bookmark
	for _, bookmark := range m.bookmarks {
		if bookmark.UserID == userID {
			cp := *bookmark
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// DeleteBookmark removes a bookmark owned by the user. Ownership
// mismatch reports ErrNotFound, never "forbidden".
func (m *Memory) DeleteBookmark(ctx context.Context, bookmarkID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bookmark, ok := m.bookmarks[bookmarkID]
	if !ok || bookmark.UserID != userID {
		return ErrNotFound
	}
	delete(m.bookmarks, bookmarkID)
	return nil
}

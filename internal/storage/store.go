// Package storage defines the persistence boundary. The core treats
// the store as an external collaborator: it reads and writes task
// state, appends audit records, and never assumes how durability is
// achieved. Store errors must propagate: a status mutation that
// cannot be persisted is an execution failure, never a silent drop.
package storage

import (
	"context"
	"errors"

	"github.com/clickagent/backend/internal/shared/types"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the durable owner of tasks, audit entries, sessions, and
// bookmarks.
type Store interface {
	TaskStore
	AuditStore
	SessionStore
	BookmarkStore
}

// TaskStore owns task records.
type TaskStore interface {
	CreateTask(ctx context.Context, task *types.Task) error
	GetTask(ctx context.Context, taskID string) (*types.Task, error)
	// UpdateTaskStatus persists a status transition together with its
	// terminal result or error, if any.
	UpdateTaskStatus(ctx context.Context, taskID string, status types.Status, result, errMsg *string) error
	// ListTasksByUser returns the user's tasks newest first, plus the
	// user's total task count for pagination.
	ListTasksByUser(ctx context.Context, userID string, limit, offset int) ([]*types.Task, int, error)
	// TaskStats aggregates counts by state, across the whole store or
	// for a single user when userID is non-nil.
	TaskStats(ctx context.Context, userID *string) (types.TaskStats, error)
}

// AuditStore owns the append-only execution/audit log.
type AuditStore interface {
	AppendAudit(ctx context.Context, entry *types.AuditEntry) error
	ListAuditByTask(ctx context.Context, taskID string) ([]*types.AuditEntry, error)
}

// SessionStore owns browser session records.
type SessionStore interface {
	CreateSession(ctx context.Context, session *types.Session) error
	GetSession(ctx context.Context, sessionID string) (*types.Session, error)
	UpdateSession(ctx context.Context, session *types.Session) error
	// ActiveSessionForUser returns the user's most recent non-closed
	// session, or ErrNotFound.
	ActiveSessionForUser(ctx context.Context, userID string) (*types.Session, error)
	SessionStats(ctx context.Context) (total, active int, err error)
}

// BookmarkStore owns user bookmarks.
type BookmarkStore interface {
	CreateBookmark(ctx context.Context, bookmark *types.Bookmark) error
	ListBookmarksByUser(ctx context.Context, userID string) ([]*types.Bookmark, error)
	DeleteBookmark(ctx context.Context, bookmarkID, userID string) error
}

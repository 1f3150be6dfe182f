package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clickagent/backend/internal/shared/types"
)

func newTask(id, userID string, createdAt time.Time) *types.Task {
	return &types.Task{
		ID:            id,
		UserID:        userID,
		Text:          "raw text",
		SanitizedText: "sanitized text",
		Status:        types.StatusPending,
		CreatedAt:     createdAt,
		SecurityCheck: types.SecurityDecision{Safe: true},
	}
}

func TestTaskLifecycle(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	task := newTask("task_1", "user-a", time.Now())
	require.NoError(t, store.CreateTask(ctx, task))

	// Duplicate IDs are rejected
	assert.Error(t, store.CreateTask(ctx, task))

	got, err := store.GetTask(ctx, "task_1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, got.Status)
	assert.Nil(t, got.CompletedAt)

	// Returned record is a copy
	got.Status = types.StatusFailed
	fresh, err := store.GetTask(ctx, "task_1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, fresh.Status)
}

func TestGetTaskNotFound(t *testing.T) {
	store := NewMemory()

	_, err := store.GetTask(context.Background(), "task_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTaskStatus(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.CreateTask(ctx, newTask("task_1", "user-a", time.Now())))
	require.NoError(t, store.UpdateTaskStatus(ctx, "task_1", types.StatusRunning, nil, nil))

	got, err := store.GetTask(ctx, "task_1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusRunning, got.Status)
	assert.Nil(t, got.CompletedAt)

	result := "all done"
	require.NoError(t, store.UpdateTaskStatus(ctx, "task_1", types.StatusCompleted, &result, nil))

	got, err = store.GetTask(ctx, "task_1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "all done", *got.Result)
	assert.NotNil(t, got.CompletedAt)

	assert.ErrorIs(t, store.UpdateTaskStatus(ctx, "task_nope", types.StatusRunning, nil, nil), ErrNotFound)
}

func TestListTasksByUser(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 3; i++ {
		task := newTask(fmt.Sprintf("task_%d", i), "user-a", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.CreateTask(ctx, task))
	}
	require.NoError(t, store.CreateTask(ctx, newTask("task_other", "user-b", base)))

	// Newest first
	tasks, total, err := store.ListTasksByUser(ctx, "user-a", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, tasks, 3)
	assert.Equal(t, "task_2", tasks[0].ID)
	assert.Equal(t, "task_0", tasks[2].ID)

	// Limit and offset
	tasks, total, err = store.ListTasksByUser(ctx, "user-a", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, tasks, 2)
	assert.Equal(t, "task_1", tasks[0].ID)

	// Offset past the end
	tasks, total, err = store.ListTasksByUser(ctx, "user-a", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, tasks)

	// Unknown user
	tasks, total, err = store.ListTasksByUser(ctx, "user-z", 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, tasks)
}

func TestTaskStats(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.CreateTask(ctx, newTask("task_1", "user-a", time.Now())))
	require.NoError(t, store.CreateTask(ctx, newTask("task_2", "user-a", time.Now())))
	require.NoError(t, store.CreateTask(ctx, newTask("task_3", "user-b", time.Now())))
	require.NoError(t, store.UpdateTaskStatus(ctx, "task_1", types.StatusCompleted, nil, nil))
	errMsg := "boom"
	require.NoError(t, store.UpdateTaskStatus(ctx, "task_3", types.StatusFailed, nil, &errMsg))

	stats, err := store.TaskStats(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, types.TaskStats{Total: 3, Pending: 1, Completed: 1, Failed: 1}, stats)

	userA := "user-a"
	stats, err = store.TaskStats(ctx, &userA)
	require.NoError(t, err)
	assert.Equal(t, types.TaskStats{Total: 2, Pending: 1, Completed: 1}, stats)
}

func TestAuditAppendOnly(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		entry := &types.AuditEntry{
			ID:        fmt.Sprintf("audit_%d", i),
			TaskID:    "task_1",
			Type:      types.AuditAllowed,
			Action:    "submit_task",
			Timestamp: time.Now(),
		}
		require.NoError(t, store.AppendAudit(ctx, entry))
	}
	require.NoError(t, store.AppendAudit(ctx, &types.AuditEntry{ID: "audit_x", TaskID: "task_2"}))

	entries, err := store.ListAuditByTask(ctx, "task_1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "audit_0", entries[0].ID)
	assert.Equal(t, "audit_2", entries[2].ID)
}

func TestSessionStore(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	now := time.Now()

	session := &types.Session{
		ID:        "sess_1",
		UserID:    "user-a",
		Status:    types.SessionActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.CreateSession(ctx, session))
	assert.Error(t, store.CreateSession(ctx, session))

	got, err := store.ActiveSessionForUser(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, "sess_1", got.ID)

	// A newer non-closed session wins
	newer := &types.Session{
		ID:        "sess_2",
		UserID:    "user-a",
		Status:    types.SessionIdle,
		CreatedAt: now.Add(time.Minute),
		UpdatedAt: now.Add(time.Minute),
	}
	require.NoError(t, store.CreateSession(ctx, newer))

	got, err = store.ActiveSessionForUser(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, "sess_2", got.ID)

	// Closed sessions are invisible to lookup
	newer.Status = types.SessionClosed
	require.NoError(t, store.UpdateSession(ctx, newer))

	got, err = store.ActiveSessionForUser(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, "sess_1", got.ID)

	_, err = store.ActiveSessionForUser(ctx, "user-z")
	assert.ErrorIs(t, err, ErrNotFound)

	total, active, err := store.SessionStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, active)
}

func TestBookmarkStore(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.CreateBookmark(ctx, &types.Bookmark{
		ID: "bm-1", UserID: "user-a", Title: "old", URL: "https://example.com/a", CreatedAt: now,
	}))
	require.NoError(t, store.CreateBookmark(ctx, &types.Bookmark{
		ID: "bm-2", UserID: "user-a", Title: "new", URL: "https://example.com/b", CreatedAt: now.Add(time.Minute),
	}))

	bookmarks, err := store.ListBookmarksByUser(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, bookmarks, 2)
	assert.Equal(t, "bm-2", bookmarks[0].ID)

	// Ownership mismatch is reported as not-found
	assert.ErrorIs(t, store.DeleteBookmark(ctx, "bm-1", "user-b"), ErrNotFound)

	require.NoError(t, store.DeleteBookmark(ctx, "bm-1", "user-a"))
	bookmarks, err = store.ListBookmarksByUser(ctx, "user-a")
	require.NoError(t, err)
	assert.Len(t, bookmarks, 1)
}

// Package audit records every security decision and execution step in
// an append-only trail keyed by task and session.
package audit

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/clickagent/backend/internal/shared/id"
	"github.com/clickagent/backend/internal/shared/types"
	"github.com/clickagent/backend/internal/storage"
)

// Logger appends audit entries to the store and mirrors them to the
// structured log. Appends from concurrent tasks are safe: each entry
// is a single atomic store write.
type Logger struct {
	store storage.AuditStore
	log   *zap.Logger
}

// NewLogger creates an audit logger.
func NewLogger(store storage.AuditStore, log *zap.Logger) *Logger {
	return &Logger{store: store, log: log.Named("audit")}
}

// Event describes one step to record.
type Event struct {
	TaskID    string
	SessionID string
	Type      types.AuditType
	Action    string
	Details   map[string]interface{}
	Success   bool
	Error     string
}

// Record appends one entry. A store failure propagates to the caller:
// an unrecorded security decision must not pass silently.
func (l *Logger) Record(ctx context.Context, ev Event) error {
	entry := &types.AuditEntry{
		ID:        id.NewAuditID().String(),
		TaskID:    ev.TaskID,
		SessionID: ev.SessionID,
		Type:      ev.Type,
		Action:    ev.Action,
		Details:   ev.Details,
		Success:   ev.Success,
		Timestamp: time.Now(),
	}
	if ev.Error != "" {
		errMsg := ev.Error
		entry.Error = &errMsg
	}

	if err := l.store.AppendAudit(ctx, entry); err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("audit_id", entry.ID),
		zap.String("task_id", entry.TaskID),
		zap.String("session_id", entry.SessionID),
		zap.String("type", string(entry.Type)),
		zap.String("action", entry.Action),
		zap.Bool("success", entry.Success),
	}
	if entry.Error != nil {
		fields = append(fields, zap.String("error", *entry.Error))
	}
	if len(entry.Details) > 0 {
		if data, err := sonic.Marshal(entry.Details); err == nil {
			fields = append(fields, zap.ByteString("details", data))
		}
	}

	switch entry.Type {
	case types.AuditBlocked, types.AuditWarning:
		l.log.Warn("security event", fields...)
	case types.AuditError:
		l.log.Error("security event", fields...)
	default:
		l.log.Info("security event", fields...)
	}
	return nil
}

// Trail returns the append-ordered audit entries for a task.
func (l *Logger) Trail(ctx context.Context, taskID string) ([]*types.AuditEntry, error) {
	return l.store.ListAuditByTask(ctx, taskID)
}

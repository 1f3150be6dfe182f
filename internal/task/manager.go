package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/clickagent/backend/internal/audit"
	"github.com/clickagent/backend/internal/llm"
	"github.com/clickagent/backend/internal/monitoring"
	"github.com/clickagent/backend/internal/resilience"
	"github.com/clickagent/backend/internal/sandbox"
	"github.com/clickagent/backend/internal/security"
	"github.com/clickagent/backend/internal/session"
	"github.com/clickagent/backend/internal/shared/id"
	"github.com/clickagent/backend/internal/shared/types"
	"github.com/clickagent/backend/internal/storage"
	"github.com/clickagent/backend/internal/tools"
)

// MaxTaskLength bounds submitted task text.
const MaxTaskLength = 1000

// Validation errors: surfaced immediately, no audit entry, no task
// record.
var (
	ErrEmptyTask     = errors.New("task text cannot be empty")
	ErrTaskTooLong   = fmt.Errorf("task text exceeds %d characters", MaxTaskLength)
	ErrInvalidTaskID = errors.New("invalid task id")
)

// Manager owns the task state machine. It is the only writer of task
// status: each submission gets a distinct identifier and a single
// tracked goroutine, so state transitions are serialized per task.
type Manager struct {
	store    storage.Store
	auditLog *audit.Logger
	sessions *session.Manager
	registry *tools.Registry
	model    llm.Invoker
	policy   *security.Policy
	breaker  *resilience.Breaker
	metrics  *monitoring.Metrics
	log      *zap.Logger

	mu       sync.Mutex
	inflight map[string]context.CancelFunc
	wg       sync.WaitGroup
}

// NewManager creates the task orchestrator.
func NewManager(
	store storage.Store,
	auditLog *audit.Logger,
	sessions *session.Manager,
	registry *tools.Registry,
	model llm.Invoker,
	policy *security.Policy,
	log *zap.Logger,
) *Manager {
	return &Manager{
		store:    store,
		auditLog: auditLog,
		sessions: sessions,
		registry: registry,
		model:    model,
		policy:   policy,
		breaker:  resilience.NewBreaker(resilience.Settings{}),
		log:      log.Named("task"),
		inflight: make(map[string]context.CancelFunc),
	}
}

// WithMetrics adds metrics tracking to the manager.
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithBreaker replaces the default model-call circuit breaker.
func (m *Manager) WithBreaker(breaker *resilience.Breaker) *Manager {
	m.breaker = breaker
	return m
}

// SubmitResult is the acknowledgment returned to the caller before
// execution completes.
type SubmitResult struct {
	Success bool   `json:"success"`
	TaskID  string `json:"task_id"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Submit runs a raw task text through classification, redaction, and
// context construction, then schedules execution. A policy rejection
// is not an error: it returns Success=false with the reason, records
// a "blocked" audit entry, and creates no task record.
func (m *Manager) Submit(ctx context.Context, userID, text string, extra map[string]string) (SubmitResult, error) {
	if text == "" {
		return SubmitResult{}, ErrEmptyTask
	}
	// Character count, not bytes: multibyte text gets the same budget.
	if utf8.RuneCountInString(text) > MaxTaskLength {
		return SubmitResult{}, ErrTaskTooLong
	}

	taskID := id.NewTaskID().String()
	decision := security.Classify(text)

	sess, err := m.sessions.EnsureActive(ctx, userID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("failed to open session: %w", err)
	}

	if !decision.Safe {
		if m.metrics != nil {
			m.metrics.RecordSubmission("blocked")
			m.metrics.RecordBlocked(decision.Reason)
		}
		if err := m.auditLog.Record(ctx, audit.Event{
			TaskID:    taskID,
			SessionID: sess.ID,
			Type:      types.AuditBlocked,
			Action:    "submit_task",
			Details: map[string]interface{}{
				"reason":  decision.Reason,
				"user_id": userID,
			},
			Success:   false,
			Error:     decision.Reason,
		}); err != nil {
			return SubmitResult{}, err
		}
		m.syncSessionGauge(ctx)
		return SubmitResult{
			Success: false,
			TaskID:  taskID,
			Error:   fmt.Sprintf("Task blocked for security: %s", decision.Reason),
		}, nil
	}

	sanitized := security.Redact(text)
	ectx := sandbox.NewContext(taskID, sanitized, userID, m.policy)

	record := &types.Task{
		ID:            taskID,
		UserID:        userID,
		Text:          text,
		SanitizedText: sanitized,
		Status:        types.StatusPending,
		CreatedAt:     ectx.CreatedAt,
		SecurityCheck: decision,
	}
	if err := m.store.CreateTask(ctx, record); err != nil {
		return SubmitResult{}, fmt.Errorf("failed to create task: %w", err)
	}

	if err := m.auditLog.Record(ctx, audit.Event{
		TaskID:    taskID,
		SessionID: sess.ID,
		Type:      types.AuditAllowed,
		Action:    "submit_task",
		Success:   true,
	}); err != nil {
		return SubmitResult{}, err
	}

	if m.metrics != nil {
		m.metrics.RecordSubmission("accepted")
	}
	m.syncSessionGauge(ctx)
	m.schedule(ectx, sess.ID, extra)

	return SubmitResult{
		Success: true,
		TaskID:  taskID,
		Message: "Task submitted successfully",
	}, nil
}

// schedule spawns the tracked execution goroutine for one attempt
// sequence. The timeout context enforces the sandbox time budget.
func (m *Manager) schedule(ectx sandbox.Context, sessionID string, extra map[string]string) {
	execCtx, cancel := context.WithTimeout(context.Background(), ectx.MaxDuration)

	m.mu.Lock()
	m.inflight[ectx.TaskID] = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer cancel()
		defer func() {
			m.mu.Lock()
			delete(m.inflight, ectx.TaskID)
			m.mu.Unlock()
		}()
		m.execute(execCtx, ectx, sessionID, extra)
	}()
}

func (m *Manager) execute(ctx context.Context, ectx sandbox.Context, sessionID string, extra map[string]string) {
	start := time.Now()

	if err := m.setStatus(ectx.TaskID, types.StatusPending, types.StatusRunning, nil, nil); err != nil {
		m.finalize(ectx, sessionID, types.StatusPending, nil, err, start)
		return
	}
	if m.metrics != nil {
		m.metrics.TasksRunning.Inc()
		defer m.metrics.TasksRunning.Dec()
	}

	messages := m.buildPrompt(ectx, extra)

	var result string
	var lastErr error
	for attempt := 1; attempt <= ectx.MaxRetries; attempt++ {
		callStart := time.Now()
		err := m.breaker.Do(func() error {
			text, ierr := m.model.Invoke(ctx, messages)
			if ierr != nil {
				return ierr
			}
			result = text
			return nil
		})
		if m.metrics != nil {
			status := "ok"
			if err != nil {
				status = "error"
			}
			m.metrics.RecordModelCall(status, time.Since(callStart))
		}
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err
		// A cancelled budget or an open breaker will not heal within
		// this attempt sequence.
		if ctx.Err() != nil || errors.Is(err, resilience.ErrOpen) {
			break
		}
		m.log.Warn("model invocation failed, retrying",
			zap.String("task_id", ectx.TaskID),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		lastErr = fmt.Errorf("task timed out after %s", ectx.MaxDuration)
	}

	if lastErr != nil {
		m.finalize(ectx, sessionID, types.StatusRunning, nil, lastErr, start)
		return
	}
	m.finalize(ectx, sessionID, types.StatusRunning, &result, nil, start)
}

// finalize drives the task to its terminal state and records the
// audit entry. It uses a fresh context: an expired execution budget
// must not block persisting the outcome. Any late model result for a
// task already finalized is simply discarded; the task never leaves
// a terminal state.
func (m *Manager) finalize(ectx sandbox.Context, sessionID string, from types.Status, result *string, execErr error, start time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var status types.Status
	var errMsg *string
	if execErr != nil {
		status = types.StatusFailed
		msg := execErr.Error()
		errMsg = &msg
	} else {
		status = types.StatusCompleted
	}

	if err := m.setStatus(ectx.TaskID, from, status, result, errMsg); err != nil {
		m.log.Error("failed to persist terminal status",
			zap.String("task_id", ectx.TaskID),
			zap.Error(err))
	}

	ev := audit.Event{
		TaskID:    ectx.TaskID,
		SessionID: sessionID,
		Action:    "execute_task",
		Details:   map[string]interface{}{"duration_ms": time.Since(start).Milliseconds()},
		Success:   execErr == nil,
	}
	if execErr != nil {
		ev.Type = types.AuditError
		ev.Error = execErr.Error()
	} else {
		ev.Type = types.AuditAllowed
	}
	if err := m.auditLog.Record(ctx, ev); err != nil {
		m.log.Error("failed to record audit entry",
			zap.String("task_id", ectx.TaskID),
			zap.Error(err))
	}

	if err := m.sessions.SetIdle(ctx, sessionID); err != nil {
		m.log.Warn("failed to idle session",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
	if m.metrics != nil {
		m.metrics.RecordTaskDone(time.Since(start))
	}
	m.syncSessionGauge(ctx)
}

func (m *Manager) syncSessionGauge(ctx context.Context) {
	if m.metrics == nil {
		return
	}
	if _, active, err := m.sessions.Stats(ctx); err == nil {
		m.metrics.SessionsActive.Set(float64(active))
	}
}

// setStatus validates and persists one state transition.
func (m *Manager) setStatus(taskID string, from, to types.Status, result, errMsg *string) error {
	if err := ValidateTransition(from, to); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.store.UpdateTaskStatus(ctx, taskID, to, result, errMsg)
}

// buildPrompt enumerates the tool catalog and capability bounds as
// the system message, with the sanitized task text as the user
// message. The original text never reaches the model.
func (m *Manager) buildPrompt(ectx sandbox.Context, extra map[string]string) []llm.Message {
	system := fmt.Sprintf(
		"You are a browser automation agent running in a sandbox.\n"+
			"Available tools:\n%s\n"+
			"Allowed actions: %v\n"+
			"Restricted actions: %v\n"+
			"Complete the user's task using only the tools above.",
		m.registry.Catalog(),
		ectx.Policy.AllowedActions,
		ectx.Policy.RestrictedActions,
	)
	for key, value := range extra {
		system += fmt.Sprintf("\n%s: %s", key, value)
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: ectx.Task},
	}
}

// GetTask returns a task view restricted to the owning user. An
// ownership mismatch is recorded as a warning and reported as
// not-found: callers cannot distinguish "exists but forbidden" from
// "does not exist".
func (m *Manager) GetTask(ctx context.Context, taskID, userID string) (*types.TaskView, error) {
	if !id.IsValid(taskID, id.TaskPrefix) {
		return nil, ErrInvalidTaskID
	}

	record, err := m.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if record.UserID != userID {
		if err := m.auditLog.Record(ctx, audit.Event{
			TaskID:  taskID,
			Type:    types.AuditWarning,
			Action:  "access_other_user_task",
			Details: map[string]interface{}{"user_id": userID},
			Success: false,
		}); err != nil {
			return nil, err
		}
		return nil, storage.ErrNotFound
	}

	view := record.View()
	return &view, nil
}

// Trail returns the audit entries for a task the caller may see:
// tasks they own, and their own blocked submissions. Anything else is
// not-found, matching GetTask's existence non-leakage.
func (m *Manager) Trail(ctx context.Context, taskID, userID string) ([]*types.AuditEntry, error) {
	if _, err := m.GetTask(ctx, taskID, userID); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return m.blockedTrail(ctx, taskID, userID)
	}
	return m.auditLog.Trail(ctx, taskID)
}

// blockedTrail covers blocked submissions: they leave audit entries
// but no task record, so ownership comes from the user recorded on
// the entry itself.
func (m *Manager) blockedTrail(ctx context.Context, taskID, userID string) ([]*types.AuditEntry, error) {
	entries, err := m.auditLog.Trail(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 || entries[0].Details["user_id"] != userID {
		return nil, storage.ErrNotFound
	}
	return entries, nil
}

// History returns the user's tasks newest first with the user's total
// count.
func (m *Manager) History(ctx context.Context, userID string, limit, offset int) ([]types.TaskView, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	records, total, err := m.store.ListTasksByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	views := make([]types.TaskView, len(records))
	for i, record := range records {
		views[i] = record.View()
	}
	return views, total, nil
}

// Stats aggregates task counts, across the store or per user.
func (m *Manager) Stats(ctx context.Context, userID *string) (types.TaskStats, error) {
	return m.store.TaskStats(ctx, userID)
}

// Shutdown cancels in-flight executions and waits for their
// finalization, bounded by ctx.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	for _, cancel := range m.inflight {
		cancel()
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package types

import "time"

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Task is a unit of work submitted by a user.
type Task struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	Text          string           `json:"task"`
	SanitizedText string           `json:"sanitized_task"`
	Status        Status           `json:"status"`
	Result        *string          `json:"result,omitempty"`
	Error         *string          `json:"error,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
	SecurityCheck SecurityDecision `json:"security_check"`
}

// SecurityDecision is the outcome of classifying one text.
// Reason is set only when Safe is false and names the violated
// category or destination.
type SecurityDecision struct {
	Safe   bool   `json:"safe"`
	Reason string `json:"reason,omitempty"`
}

// TaskView is the caller-facing projection of a task. The original
// text never leaves the orchestrator; only the sanitized form does.
type TaskView struct {
	ID          string     `json:"id"`
	Task        string     `json:"task"`
	Status      Status     `json:"status"`
	Result      *string    `json:"result,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// View returns the caller-facing projection.
func (t *Task) View() TaskView {
	return TaskView{
		ID:          t.ID,
		Task:        t.SanitizedText,
		Status:      t.Status,
		Result:      t.Result,
		Error:       t.Error,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}

// TaskStats aggregates task counts by state.
type TaskStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

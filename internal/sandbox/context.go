// Package sandbox constructs the bounded environment a task executes
// in. The sandbox is a logical capability-restriction contract, not
// OS-level containment.
package sandbox

import (
	"time"

	"github.com/clickagent/backend/internal/security"
)

// Execution limits applied to every context. Constants, not
// per-call parameters.
const (
	MaxDuration = 30 * time.Second
	MaxRetries  = 3
)

// Context is the immutable record passed to execution: the task, its
// sanitized text, and a snapshot reference to the shared capability
// policy. Sandbox is always true.
type Context struct {
	TaskID      string
	Task        string
	UserID      string
	CreatedAt   time.Time
	Sandbox     bool
	Policy      *security.Policy
	MaxDuration time.Duration
	MaxRetries  int
}

// NewContext builds an execution context for one attempt. Pure
// construction: no I/O, no shared state beyond the policy reference.
func NewContext(taskID, sanitizedTask, userID string, policy *security.Policy) Context {
	return Context{
		TaskID:      taskID,
		Task:        sanitizedTask,
		UserID:      userID,
		CreatedAt:   time.Now(),
		Sandbox:     true,
		Policy:      policy,
		MaxDuration: MaxDuration,
		MaxRetries:  MaxRetries,
	}
}

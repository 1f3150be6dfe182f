package types

import "time"

// Tool represents a named, schema-declared agent capability.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
}

// Parameter describes one tool argument.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Result represents a tool execution result.
type Result struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *string                `json:"error,omitempty"`
}

// AuditEntry is one recorded security decision or execution step.
// Entries are append-only; nothing in the core updates or deletes them.
type AuditEntry struct {
	ID        string                 `json:"id"`
	TaskID    string                 `json:"task_id"`
	SessionID string                 `json:"session_id"`
	Type      AuditType              `json:"type"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Success   bool                   `json:"success"`
	Error     *string                `json:"error,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// AuditType classifies an audit entry.
type AuditType string

const (
	AuditBlocked AuditType = "blocked"
	AuditAllowed AuditType = "allowed"
	AuditWarning AuditType = "warning"
	AuditError   AuditType = "error"
)

// SessionStatus represents the state of a browser session.
type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionIdle   SessionStatus = "idle"
	SessionClosed SessionStatus = "closed"
)

// Session tracks one browser session owned by a user.
type Session struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	Status     SessionStatus `json:"status"`
	CurrentURL *string       `json:"current_url,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	ClosedAt   *time.Time    `json:"closed_at,omitempty"`
}

// Bookmark is a user-saved page reference.
type Bookmark struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

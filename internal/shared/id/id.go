// Package id provides centralized ID generation for the backend.
//
// IDs are prefixed ULIDs (task_*, sess_*, audit_*): lexicographically
// sortable by creation time, unique without coordination, and readable
// in logs. Task history ordering falls out of the ID encoding.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TaskID identifies a submitted task.
type TaskID string

// SessionID identifies a browser session.
type SessionID string

// AuditID identifies an audit log entry.
type AuditID string

const (
	TaskPrefix    = "task"
	SessionPrefix = "sess"
	AuditPrefix   = "audit"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand entropy.
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy
// source, useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewTaskID generates a new task ID.
func NewTaskID() TaskID {
	return TaskID(Default().GenerateWithPrefix(TaskPrefix))
}

// NewSessionID generates a new session ID.
func NewSessionID() SessionID {
	return SessionID(Default().GenerateWithPrefix(SessionPrefix))
}

// NewAuditID generates a new audit entry ID.
func NewAuditID() AuditID {
	return AuditID(Default().GenerateWithPrefix(AuditPrefix))
}

func (id TaskID) String() string    { return string(id) }
func (id SessionID) String() string { return string(id) }
func (id AuditID) String() string   { return string(id) }

// IsValid reports whether s is a well-formed prefixed ID of the given
// prefix. Used to reject malformed IDs before any store lookup.
func IsValid(s, prefix string) bool {
	rest, ok := strings.CutPrefix(s, prefix+"_")
	if !ok {
		return false
	}
	_, err := ulid.Parse(rest)
	return err == nil
}

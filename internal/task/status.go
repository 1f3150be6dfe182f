package task

import (
	"fmt"

	"github.com/clickagent/backend/internal/shared/types"
)

// validTransitions is the task state machine:
// pending → running → {completed | failed}. pending → failed covers
// submissions whose execution could not start (store unavailable).
// Terminal states have no outgoing edges.
var validTransitions = map[types.Status]map[types.Status]bool{
	types.StatusPending: {
		types.StatusRunning: true,
		types.StatusFailed:  true,
	},
	types.StatusRunning: {
		types.StatusCompleted: true,
		types.StatusFailed:    true,
	},
}

var terminalStatuses = map[types.Status]bool{
	types.StatusCompleted: true,
	types.StatusFailed:    true,
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(s types.Status) bool {
	return terminalStatuses[s]
}

// ValidateTransition checks one status edge.
func ValidateTransition(from, to types.Status) error {
	if IsTerminal(from) {
		return fmt.Errorf("cannot transition from terminal status %q", from)
	}
	allowed, ok := validTransitions[from]
	if !ok {
		return fmt.Errorf("unknown status %q", from)
	}
	if !allowed[to] {
		return fmt.Errorf("invalid task transition: %q → %q", from, to)
	}
	return nil
}

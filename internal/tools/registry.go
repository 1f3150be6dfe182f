// Package tools holds the agent's tool catalog: named, described,
// schema-declared operations the agent may invoke during execution.
package tools

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/clickagent/backend/internal/shared/types"
)

// Handler executes one tool invocation.
type Handler func(params map[string]interface{}) (*types.Result, error)

type entry struct {
	tool    types.Tool
	handler Handler
}

// Registry maps tool names to definitions and handlers. Registration
// happens once at process start; the registry is read-only afterwards
// and safe for concurrent lookups.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a tool. Duplicate names are a configuration error.
func (r *Registry) Register(tool types.Tool, handler Handler) error {
	if tool.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("tool %s: handler cannot be nil", tool.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("tool %s already registered", tool.Name)
	}
	r.entries[tool.Name] = entry{tool: tool, handler: handler}
	return nil
}

// Get retrieves a tool definition by name.
func (r *Registry) Get(name string) (types.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	return e.tool, ok
}

// List returns all tool definitions sorted by name.
func (r *Registry) List() []types.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Tool, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Execute runs a tool by name. An unknown name is a caller error, not
// a silent no-op.
func (r *Registry) Execute(name string, params map[string]interface{}) (*types.Result, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	return e.handler(params)
}

// Catalog renders the tool list as prompt context for the model:
// one "name: description" line per tool.
func (r *Registry) Catalog() string {
	tools := r.List()
	lines := make([]string, len(tools))
	for i, t := range tools {
		lines[i] = fmt.Sprintf("- %s: %s", t.Name, t.Description)
	}
	return strings.Join(lines, "\n")
}

// CheckNames verifies that every referenced name exists in the
// registry. Run at startup against the capability policy's allow list;
// a mismatch is a configuration error, not a runtime task failure.
func (r *Registry) CheckNames(names []string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range names {
		if _, ok := r.entries[name]; !ok {
			return fmt.Errorf("policy references unknown tool: %s", name)
		}
	}
	return nil
}

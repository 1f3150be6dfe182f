// Package types defines the shared domain types for the agent backend:
// tasks and their lifecycle states, security decisions, audit entries,
// browser sessions, bookmarks, and tool definitions.
package types

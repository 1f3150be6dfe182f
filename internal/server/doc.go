// Package server wires the agent backend together: storage, audit,
// sessions, the tool registry, the capability policy, the model
// client, and the HTTP surface.
package server

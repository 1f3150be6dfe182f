// Package main is the entry point for the browser agent backend.
//
// The server fronts an autonomous browser-automation agent: free-text
// tasks come in over REST, pass through a security pipeline
// (classification, redaction, capability policy), and execute against
// a language-model service with the tool catalog as prompt context.
//
// The server provides:
//   - REST API for task submission, status, and history
//   - Security classifier, redactor, and capability policy
//   - Tool registry describing the agent's browser capabilities
//   - Append-only audit trail per task and session
//   - Rate limiting and Prometheus metrics
//
// Configuration is environment-driven (12-factor) with development
// defaults; see internal/config.
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown (drains in-flight tasks)
package main

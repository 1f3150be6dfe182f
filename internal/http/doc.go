// Package http contains the gin handlers for the agent's REST
// surface. Handlers translate between wire shapes and core types;
// every security decision lives in the core packages.
package http

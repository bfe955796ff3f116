// Package server provides the MCP server context and the metrics HTTP
// server for the inboxiq mailbox server.
//
// # Key Components
//
// ServerContext manages Gmail API clients with lazy initialization and
// caching. It supports multiple accounts, each backed by its own stored
// OAuth token, and carries the metrics recorder and audit logger used by
// instrumented tool handlers.
//
// MetricsServer serves Prometheus metrics on a dedicated port, isolated
// from the stdio MCP transport. HealthChecker adds liveness and readiness
// endpoints to the same listener for Kubernetes probes.
package server

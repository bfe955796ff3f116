// Package backend wraps an MCP client session over a spawned stdio
// server process. The Client caches a Snapshot of the server's tools,
// resources and prompts so callers can list capabilities without a
// round trip, and Refresh replaces the snapshot atomically while
// keeping the old one when the server cannot be reached.
package backend

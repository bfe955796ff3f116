// Package resources registers the non-tool MCP surfaces of the email
// server: the mailbox://profile resource describing the authenticated
// mailbox, and the compose-email and summarize-inbox prompt templates.
package resources

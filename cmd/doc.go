// Package cmd implements the command-line interface for inboxiq.
//
// This package provides the following commands:
//   - chat: Start the interactive email assistant (model + MCP backend)
//   - serve: Start the MCP email server to provide tools for AI assistants
//   - auth: Authorize a Google account and cache its OAuth token
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The chat command is the default command when no subcommand is specified.
package cmd

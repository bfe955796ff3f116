// Package chat contains the interactive side of the assistant: the
// Session that orchestrates model and tool calls for one conversation,
// the model client for an OpenAI-compatible endpoint, and the Shell that
// maps terminal commands onto session operations.
package chat

// Package transcript holds the conversation history of a chat session and
// compiles it into model payloads.
//
// The Store is append-only: turns get gapless monotonic ids and are never
// mutated, so the transcript is a faithful record of everything the user,
// the model, and the tools produced, including denied and failed tool
// calls. Compile turns that record into the message sequence a
// chat-completions endpoint accepts, keeping each tool-call request
// adjacent to its responses and silently dropping tool output that nothing
// requested.
package transcript

// Package permission gates tool execution behind human approval.
//
// The Gate turns a tool call into a readable action description, masks
// argument values that would leak account identifiers, and asks a
// Prompter for a yes/no decision. Denial is an ordinary Decision value so
// callers record it and move on rather than unwinding with an error.
package permission

package transcript

import "time"

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// Permission outcomes recorded on tool turns.
const (
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
)

// TurnID is a monotonically increasing identifier assigned by the Store.
type TurnID int64

// ToolCallRequest is a single tool invocation requested by the model.
// Arguments holds the raw JSON argument text as the model produced it.
type ToolCallRequest struct {
	ID        string
	Name      string
	Arguments string
}

// Metadata carries the structured annotations a turn may have beyond its
// role and content.
type Metadata struct {
	// HasToolCalls marks an assistant turn that requested tool calls.
	HasToolCalls bool
	// ToolCalls lists the requested calls on an assistant turn.
	ToolCalls []ToolCallRequest
	// ToolName and ToolCallID identify the call a tool turn responds to.
	ToolName   string
	ToolCallID string
	// Error marks a tool turn that records an execution failure.
	Error bool
	// Permission is PermissionGranted or PermissionDenied on tool turns
	// that went through the gate, empty otherwise.
	Permission string
}

// Turn is one immutable entry in a session transcript.
type Turn struct {
	ID        TurnID
	Role      Role
	Content   string
	Meta      Metadata
	CreatedAt time.Time
}

// NewUserTurn returns an unappended user turn.
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// NewAssistantTurn returns an unappended plain assistant turn.
func NewAssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// NewAssistantToolCallTurn returns an assistant turn that requested the
// given tool calls.
func NewAssistantToolCallTurn(content string, calls []ToolCallRequest) Turn {
	return Turn{
		Role:    RoleAssistant,
		Content: content,
		Meta: Metadata{
			HasToolCalls: true,
			ToolCalls:    calls,
		},
	}
}

// NewToolTurn returns a tool turn recording the outcome of one call.
func NewToolTurn(callID, name, content string) Turn {
	return Turn{
		Role:    RoleTool,
		Content: content,
		Meta: Metadata{
			ToolName:   name,
			ToolCallID: callID,
		},
	}
}

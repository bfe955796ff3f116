package backend

import "encoding/json"

// ToolDescriptor describes one callable tool advertised by the backend.
// InputSchema holds the tool's JSON Schema exactly as the backend sent it.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// ResourceDescriptor describes one readable resource.
type ResourceDescriptor struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
}

// PromptArgument describes one argument a prompt template accepts.
type PromptArgument struct {
	Name        string
	Description string
	Required    bool
}

// PromptDescriptor describes one prompt template.
type PromptDescriptor struct {
	Name        string
	Description string
	Arguments   []PromptArgument
}

// Snapshot is one consistent view of the backend's capabilities. A
// snapshot is replaced wholesale on refresh, never patched.
type Snapshot struct {
	Tools     []ToolDescriptor
	Resources []ResourceDescriptor
	Prompts   []PromptDescriptor
}

// Tool returns the descriptor for the named tool, if present.
func (s Snapshot) Tool(name string) (ToolDescriptor, bool) {
	for _, t := range s.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolDescriptor{}, false
}

// Prompt returns the descriptor for the named prompt, if present.
func (s Snapshot) Prompt(name string) (PromptDescriptor, bool) {
	for _, p := range s.Prompts {
		if p.Name == name {
			return p, true
		}
	}
	return PromptDescriptor{}, false
}

// clone returns a deep copy so callers can hold a snapshot across a
// concurrent refresh.
func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Tools:     make([]ToolDescriptor, len(s.Tools)),
		Resources: make([]ResourceDescriptor, len(s.Resources)),
		Prompts:   make([]PromptDescriptor, len(s.Prompts)),
	}
	for i, t := range s.Tools {
		t.InputSchema = append(json.RawMessage(nil), t.InputSchema...)
		out.Tools[i] = t
	}
	copy(out.Resources, s.Resources)
	for i, p := range s.Prompts {
		p.Arguments = append([]PromptArgument(nil), p.Arguments...)
		out.Prompts[i] = p
	}
	return out
}

package transcript

// Message is one entry of a compiled model payload. It is deliberately
// vendor neutral; the model client converts it to its wire types.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCallRequest
	ToolCallID string
	ToolName   string
}

// pendingGroup buffers an assistant turn that requested tool calls
// together with the tool turns that answer it, so the pair always lands
// contiguously in the compiled output.
type pendingGroup struct {
	head      Message
	expected  map[string]bool
	responses []Message
}

// Compile reduces a transcript to the message sequence sent to the model.
// The system prompt, when non-empty, is always the first message. An
// assistant turn that requested tool calls is held back until its
// dependent tool turns have been gathered, then flushed as one contiguous
// block before any unrelated turn. Tool turns that answer no buffered
// request are dropped. Compile is a pure function of its inputs.
func Compile(turns []Turn, systemPrompt string) []Message {
	out := make([]Message, 0, len(turns)+1)
	if systemPrompt != "" {
		out = append(out, Message{Role: RoleSystem, Content: systemPrompt})
	}

	var group *pendingGroup
	flush := func() {
		if group == nil {
			return
		}
		out = append(out, group.head)
		out = append(out, group.responses...)
		group = nil
	}

	for _, t := range turns {
		switch {
		case t.Role == RoleAssistant && t.Meta.HasToolCalls:
			flush()
			calls := make([]ToolCallRequest, len(t.Meta.ToolCalls))
			copy(calls, t.Meta.ToolCalls)
			expected := make(map[string]bool, len(calls))
			for _, c := range calls {
				expected[c.ID] = true
			}
			group = &pendingGroup{
				head: Message{
					Role:      RoleAssistant,
					Content:   t.Content,
					ToolCalls: calls,
				},
				expected: expected,
			}

		case t.Role == RoleTool:
			if group == nil || !group.expected[t.Meta.ToolCallID] {
				// Orphan tool turn, nothing upstream is waiting for it.
				continue
			}
			group.responses = append(group.responses, Message{
				Role:       RoleTool,
				Content:    t.Content,
				ToolCallID: t.Meta.ToolCallID,
				ToolName:   t.Meta.ToolName,
			})

		default:
			flush()
			out = append(out, Message{Role: t.Role, Content: t.Content})
		}
	}
	flush()

	return out
}

package chat

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/opennotif/inboxiq/internal/backend"
	"github.com/opennotif/inboxiq/internal/transcript"
)

// Defaults for the Groq chat-completions endpoint.
const (
	DefaultModelBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel        = "llama3-70b-8192"
)

// ModelTurn is one assistant response: free text, tool call requests, or
// both.
type ModelTurn struct {
	Content   string
	ToolCalls []transcript.ToolCallRequest
}

// ModelClient produces assistant turns from a compiled message sequence.
type ModelClient interface {
	// Complete sends one non-streaming completion request. The tool list
	// may be empty, which forces a plain text response.
	Complete(ctx context.Context, msgs []transcript.Message, tools []backend.ToolDescriptor) (ModelTurn, error)
}

// GroqClient talks to an OpenAI-compatible chat-completions endpoint.
type GroqClient struct {
	api   *openai.Client
	model string
}

// NewGroqClient creates a model client for the given endpoint. Empty
// baseURL and model fall back to the Groq defaults.
func NewGroqClient(apiKey, baseURL, model string) (*GroqClient, error) {
	if apiKey == "" {
		return nil, errors.New("chat: model API key is required")
	}
	if baseURL == "" {
		baseURL = DefaultModelBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &GroqClient{
		api:   openai.NewClientWithConfig(config),
		model: model,
	}, nil
}

// Model returns the configured model name.
func (c *GroqClient) Model() string {
	return c.model
}

// Complete implements ModelClient.
func (c *GroqClient) Complete(ctx context.Context, msgs []transcript.Message, tools []backend.ToolDescriptor) (ModelTurn, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(msgs),
	}
	if len(tools) > 0 {
		req.Tools = toOpenAITools(tools)
		req.ToolChoice = "auto"
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return ModelTurn{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ModelTurn{}, errors.New("chat completion: empty response")
	}

	msg := resp.Choices[0].Message
	turn := ModelTurn{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		turn.ToolCalls = append(turn.ToolCalls, transcript.ToolCallRequest{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return turn, nil
}

func toOpenAIMessages(msgs []transcript.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		msg := openai.ChatCompletionMessage{Content: m.Content}
		switch m.Role {
		case transcript.RoleSystem:
			msg.Role = openai.ChatMessageRoleSystem
		case transcript.RoleUser:
			msg.Role = openai.ChatMessageRoleUser
		case transcript.RoleAssistant:
			msg.Role = openai.ChatMessageRoleAssistant
			for _, tc := range m.ToolCalls {
				msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
		case transcript.RoleTool:
			msg.Role = openai.ChatMessageRoleTool
			msg.ToolCallID = m.ToolCallID
			msg.Name = m.ToolName
		}
		out = append(out, msg)
	}
	return out
}

func toOpenAITools(tools []backend.ToolDescriptor) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		})
	}
	return out
}

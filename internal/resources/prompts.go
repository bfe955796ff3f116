package resources

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterMailboxPrompts registers reusable prompt templates with the MCP server.
// Prompts return user messages that steer the model toward the email tools.
func RegisterMailboxPrompts(s *mcpserver.MCPServer) error {
	composePrompt := mcp.NewPrompt("compose-email",
		mcp.WithPromptDescription("Draft an email from a short instruction, resolving recipients through contacts"),
		mcp.WithArgument("instructions",
			mcp.ArgumentDescription("What the email should say and who it is for"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("tone",
			mcp.ArgumentDescription("Desired tone, e.g. formal, friendly (optional)"),
		),
	)

	s.AddPrompt(composePrompt, handleComposeEmailPrompt)

	summarizePrompt := mcp.NewPrompt("summarize-inbox",
		mcp.WithPromptDescription("Summarize recent inbox activity using the email search tools"),
		mcp.WithArgument("period",
			mcp.ArgumentDescription("Period to summarize, e.g. 'today' or 'this week' (default: today)"),
		),
	)

	s.AddPrompt(summarizePrompt, handleSummarizeInboxPrompt)

	return nil
}

func handleComposeEmailPrompt(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	instructions := request.Params.Arguments["instructions"]
	if instructions == "" {
		return nil, fmt.Errorf("instructions argument is required")
	}

	text := fmt.Sprintf(`Draft an email based on the following instructions:

%s

If the recipient is given as a name rather than an email address, use the search-contacts tool to resolve it. Show the drafted email (recipient, subject, body) and ask for confirmation before calling send-email.`, instructions)

	if tone := request.Params.Arguments["tone"]; tone != "" {
		text += fmt.Sprintf("\n\nWrite the email in a %s tone.", tone)
	}

	return mcp.NewGetPromptResult(
		"Email drafting workflow",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}

func handleSummarizeInboxPrompt(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	period := request.Params.Arguments["period"]
	if period == "" {
		period = "today"
	}

	text := fmt.Sprintf(`Summarize my inbox activity for %s. Use the search-emails tool to find relevant messages (for example with a query like 'in:inbox newer_than:1d') and count-daily-emails for volumes. Group the findings by sender or topic, call out anything that looks like it needs a reply, and keep the summary short.`, period)

	return mcp.NewGetPromptResult(
		"Inbox summary workflow",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}

package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/opennotif/inboxiq/internal/gmail"
	"github.com/opennotif/inboxiq/internal/google"
	"github.com/opennotif/inboxiq/internal/server"
)

// RegisterEmailTools registers the email tool surface with the MCP server.
// Read tools are always available; tools that modify the mailbox (send,
// reply, forward) are only registered when the server context allows writes.
func RegisterEmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := registerSearchTools(s, sc); err != nil {
		return fmt.Errorf("failed to register search tools: %w", err)
	}

	if err := registerContactTools(s, sc); err != nil {
		return fmt.Errorf("failed to register contact tools: %w", err)
	}

	if sc.AllowWrites() {
		if err := registerComposeTools(s, sc); err != nil {
			return fmt.Errorf("failed to register compose tools: %w", err)
		}
	}

	return nil
}

// getAccountFromArgs extracts the account name from request arguments, defaulting to "default"
func getAccountFromArgs(args map[string]interface{}) string {
	account := "default"
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		account = accountVal
	}
	return account
}

// clientForAccount returns the Gmail client for an account, or an error
// result describing how to authenticate when no token exists yet.
func clientForAccount(_ context.Context, sc *server.ServerContext, account string) (*gmail.Client, *mcp.CallToolResult) {
	if client := sc.GmailClientForAccount(account); client != nil {
		return client, nil
	}

	if !gmail.HasTokenForAccount(account) {
		return nil, mcp.NewToolResultError(google.GetAuthenticationErrorMessage(account))
	}

	return nil, mcp.NewToolResultError(fmt.Sprintf("Failed to create Gmail client for account %s", account))
}

// accountOption is the shared "account" parameter carried by every tool
func accountOption() mcp.ToolOption {
	return mcp.WithString("account",
		mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
	)
}

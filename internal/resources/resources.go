package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/opennotif/inboxiq/internal/server"
)

// RegisterMailboxResources registers the mailbox resources with the MCP server
func RegisterMailboxResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	profileResource := mcp.NewResource(
		"mailbox://profile",
		"Mailbox Profile",
		mcp.WithResourceDescription("Profile of the authenticated mailbox: address, message and thread totals"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleMailboxProfile(ctx, request, sc)
	})

	return nil
}

func handleMailboxProfile(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	// stdio transport serves a single user, so resources read the default account
	account := "default"

	gmailClient := sc.GmailClientForAccount(account)
	if gmailClient == nil {
		return nil, fmt.Errorf("no Gmail client available for account: %s", account)
	}

	profile, err := gmailClient.GetProfile()
	if err != nil {
		return nil, fmt.Errorf("failed to get mailbox profile: %w", err)
	}

	profileData := map[string]interface{}{
		"account":       gmailClient.Account(),
		"email":         profile.EmailAddress,
		"historyId":     profile.HistoryId,
		"messagesTotal": profile.MessagesTotal,
		"threadsTotal":  profile.ThreadsTotal,
	}

	jsonData, err := json.MarshalIndent(profileData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/opennotif/inboxiq/internal/gmail"
	"github.com/opennotif/inboxiq/internal/instrumentation"
	"github.com/opennotif/inboxiq/internal/server"
	"github.com/opennotif/inboxiq/internal/tools/common"
)

// registerContactTools registers the contact lookup tool with the MCP server
func registerContactTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	searchContactsTool := mcp.NewTool("search-contacts",
		mcp.WithDescription("Search contacts by name or email address to resolve recipients before composing an email"),
		accountOption(),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Name or email address fragment to search for"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of contacts to return (default: 10)"),
		),
	)

	s.AddTool(searchContactsTool, common.InstrumentedToolHandlerWithService(
		"search-contacts", instrumentation.ServicePeople, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchContacts(ctx, request, sc)
		}))

	return nil
}

func handleSearchContacts(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	maxResults := 10
	if maxResultsVal, ok := args["max_results"].(float64); ok && maxResultsVal > 0 {
		maxResults = int(maxResultsVal)
	}

	client, errResult := clientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	contacts, err := client.SearchContacts(query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search contacts: %v", err)), nil
	}

	if len(contacts) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No contacts found matching %q.", query)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Found %d contacts:\n\n%s", len(contacts), formatContacts(contacts))), nil
}

// formatContacts renders contact matches one block per contact
func formatContacts(contacts []*gmail.Contact) string {
	blocks := make([]string, 0, len(contacts))
	for i, contact := range contacts {
		block := fmt.Sprintf("%d. %s", i+1, displayNameOrEmail(contact))
		if contact.EmailAddress != "" {
			block += fmt.Sprintf("\n   Email: %s", contact.EmailAddress)
		}
		if contact.PhoneNumber != "" {
			block += fmt.Sprintf("\n   Phone: %s", contact.PhoneNumber)
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}

func displayNameOrEmail(contact *gmail.Contact) string {
	if contact.DisplayName != "" {
		return contact.DisplayName
	}
	if contact.EmailAddress != "" {
		return contact.EmailAddress
	}
	return "(unnamed contact)"
}

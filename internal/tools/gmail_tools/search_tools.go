package gmail_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/opennotif/inboxiq/internal/gmail"
	"github.com/opennotif/inboxiq/internal/instrumentation"
	"github.com/opennotif/inboxiq/internal/server"
	"github.com/opennotif/inboxiq/internal/tools/common"
)

const resultSeparator = "=================================================="

// registerSearchTools registers the read-only mailbox tools with the MCP server
func registerSearchTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Search emails tool
	searchEmailsTool := mcp.NewTool("search-emails",
		mcp.WithDescription("Search for emails using Gmail search syntax"),
		accountOption(),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query using Gmail search syntax (e.g., 'in:inbox', 'from:user@example.com')"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	)

	s.AddTool(searchEmailsTool, common.InstrumentedToolHandlerWithService(
		"search-emails", instrumentation.ServiceGmail, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEmails(ctx, request, sc)
		}))

	// Get email content tool
	getEmailContentTool := mcp.NewTool("get-email-content",
		mcp.WithDescription("Get the full content of a specific email by its ID"),
		accountOption(),
		mcp.WithString("email_id",
			mcp.Required(),
			mcp.Description("The ID of the email to retrieve"),
		),
		mcp.WithString("format",
			mcp.Description("Body format to extract: 'text' or 'html' (default: 'text')"),
		),
	)

	s.AddTool(getEmailContentTool, common.InstrumentedToolHandlerWithService(
		"get-email-content", instrumentation.ServiceGmail, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEmailContent(ctx, request, sc)
		}))

	// Count daily emails tool
	countDailyEmailsTool := mcp.NewTool("count-daily-emails",
		mcp.WithDescription("Count emails received for each day in a date range"),
		accountOption(),
		mcp.WithString("start_date",
			mcp.Required(),
			mcp.Description("Start date in YYYY-MM-DD format"),
		),
		mcp.WithString("end_date",
			mcp.Required(),
			mcp.Description("End date in YYYY-MM-DD format"),
		),
	)

	s.AddTool(countDailyEmailsTool, common.InstrumentedToolHandlerWithService(
		"count-daily-emails", instrumentation.ServiceGmail, instrumentation.OperationCount, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCountDailyEmails(ctx, request, sc)
		}))

	// Find email threads tool
	findEmailThreadsTool := mcp.NewTool("find-email-threads",
		mcp.WithDescription("Find all emails that are part of the same conversation thread as the reference email"),
		accountOption(),
		mcp.WithString("email_id",
			mcp.Required(),
			mcp.Description("The ID of the reference email to find related thread messages"),
		),
	)

	s.AddTool(findEmailThreadsTool, common.InstrumentedToolHandlerWithService(
		"find-email-threads", instrumentation.ServiceGmail, instrumentation.OperationThreads, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindEmailThreads(ctx, request, sc)
		}))

	return nil
}

func handleSearchEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	maxResults := int64(10)
	if maxResultsVal, ok := args["max_results"].(float64); ok && maxResultsVal > 0 {
		maxResults = int64(maxResultsVal)
	}

	client, errResult := clientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	summaries, err := client.SearchMessages(query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search emails: %v", err)), nil
	}

	if len(summaries) == 0 {
		return mcp.NewToolResultText("No messages found matching your criteria."), nil
	}

	return mcp.NewToolResultText("Search Results:\n\n" + formatSummaries(summaries)), nil
}

func handleGetEmailContent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	emailID, ok := args["email_id"].(string)
	if !ok || emailID == "" {
		return mcp.NewToolResultError("email_id is required"), nil
	}

	format := "text"
	if formatVal, ok := args["format"].(string); ok && formatVal != "" {
		format = formatVal
	}
	if format != "text" && format != "html" {
		return mcp.NewToolResultError("format must be 'text' or 'html'"), nil
	}

	client, errResult := clientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	msg, err := client.GetMessage(emailID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get email: %v", err)), nil
	}

	body, err := client.GetMessageBody(emailID, format)
	if err != nil {
		// Headers are still useful when the requested body variant is missing
		body = fmt.Sprintf("(%v)", err)
	}

	result := fmt.Sprintf("Subject: %s\nFrom: %s\nTo: %s\nDate: %s\n%s\n\n%s\n",
		gmail.HeaderValue(msg, "Subject"),
		gmail.HeaderValue(msg, "From"),
		gmail.HeaderValue(msg, "To"),
		gmail.HeaderValue(msg, "Date"),
		resultSeparator,
		body)

	return mcp.NewToolResultText(result), nil
}

func handleCountDailyEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	startDate, ok := args["start_date"].(string)
	if !ok || startDate == "" {
		return mcp.NewToolResultError("start_date is required"), nil
	}

	endDate, ok := args["end_date"].(string)
	if !ok || endDate == "" {
		return mcp.NewToolResultError("end_date is required"), nil
	}

	days, err := dateRange(startDate, endDate)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, errResult := clientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	var output strings.Builder
	output.WriteString("Email Count by Date:\n\n")

	for _, day := range days {
		next := day.AddDate(0, 0, 1)
		query := fmt.Sprintf("after:%s before:%s", day.Format("2006-01-02"), next.Format("2006-01-02"))

		count, err := client.CountMessages(query)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to count emails for %s: %v", day.Format("2006-01-02"), err)), nil
		}

		fmt.Fprintf(&output, "%s: %d emails\n", day.Format("2006-01-02"), count)
	}

	return mcp.NewToolResultText(output.String()), nil
}

func handleFindEmailThreads(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	emailID, ok := args["email_id"].(string)
	if !ok || emailID == "" {
		return mcp.NewToolResultError("email_id is required"), nil
	}

	client, errResult := clientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	msg, err := client.GetMessage(emailID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get email: %v", err)), nil
	}

	thread, err := client.GetThread(msg.ThreadId)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get thread: %v", err)), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Found %d messages in this thread:\n\n", len(thread.Messages))

	for i, m := range thread.Messages {
		marker := ""
		if m.Id == emailID {
			marker = " (Reference Email)"
		}

		fmt.Fprintf(&result, "Message %d%s:\nID: %s\nFrom: %s\nSubject: %s\nDate: %s\nSnippet: %s\n%s\n\n",
			i+1, marker, m.Id,
			gmail.HeaderValue(m, "From"),
			gmail.HeaderValue(m, "Subject"),
			gmail.HeaderValue(m, "Date"),
			m.Snippet,
			resultSeparator)
	}

	return mcp.NewToolResultText(result.String()), nil
}

// formatSummaries renders search results one block per message
func formatSummaries(summaries []*gmail.MessageSummary) string {
	blocks := make([]string, 0, len(summaries))
	for _, s := range summaries {
		blocks = append(blocks, fmt.Sprintf("Email ID: %s\nFrom: %s\nSubject: %s\nDate: %s\nSnippet: %s\n%s",
			s.ID, s.From, s.Subject, s.Date, s.Snippet, resultSeparator))
	}
	return strings.Join(blocks, "\n\n")
}

// dateRange expands an inclusive YYYY-MM-DD range into its days
func dateRange(startDate, endDate string) ([]time.Time, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("start_date must be in YYYY-MM-DD format: %v", err)
	}

	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("end_date must be in YYYY-MM-DD format: %v", err)
	}

	if end.Before(start) {
		return nil, fmt.Errorf("end_date %s is before start_date %s", endDate, startDate)
	}

	var days []time.Time
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days, nil
}

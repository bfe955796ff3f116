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

// registerComposeTools registers the tools that modify the mailbox
func registerComposeTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Send email tool
	sendEmailTool := mcp.NewTool("send-email",
		mcp.WithDescription("CONFIRMATION STEP: Actually send the email after user confirms the details. Before calling this, first show the email details to the user for confirmation. Required fields: recipients (to), subject, and body. Optional: CC and BCC recipients."),
		accountOption(),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address(es), comma-separated for multiple recipients"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject line"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Content of the email"),
		),
		mcp.WithString("cc",
			mcp.Description("CC email address(es), comma-separated for multiple recipients"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC email address(es), comma-separated for multiple recipients"),
		),
		mcp.WithBoolean("html",
			mcp.Description("Whether to send as HTML (default: false for plain text)"),
		),
	)

	s.AddTool(sendEmailTool, common.InstrumentedToolHandlerWithService(
		"send-email", instrumentation.ServiceGmail, instrumentation.OperationSend, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendEmail(ctx, request, sc)
		}))

	// Reply to thread tool
	replyToThreadTool := mcp.NewTool("reply-to-thread",
		mcp.WithDescription("Reply to a specific email while maintaining the conversation thread"),
		accountOption(),
		mcp.WithString("email_id",
			mcp.Required(),
			mcp.Description("The ID of the email to reply to"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Reply content"),
		),
		mcp.WithString("cc",
			mcp.Description("CC email address(es), comma-separated for multiple recipients"),
		),
		mcp.WithBoolean("html",
			mcp.Description("Whether to send as HTML (default: false for plain text)"),
		),
	)

	s.AddTool(replyToThreadTool, common.InstrumentedToolHandlerWithService(
		"reply-to-thread", instrumentation.ServiceGmail, instrumentation.OperationReply, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReplyToThread(ctx, request, sc)
		}))

	// Forward email tool
	forwardEmailTool := mcp.NewTool("forward-email",
		mcp.WithDescription("Forward an existing email to new recipients, preserving the original message"),
		accountOption(),
		mcp.WithString("email_id",
			mcp.Required(),
			mcp.Description("The ID of the email to forward"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address(es), comma-separated for multiple recipients"),
		),
		mcp.WithString("comment",
			mcp.Description("Additional message to include above the forwarded content"),
		),
		mcp.WithString("cc",
			mcp.Description("CC email address(es), comma-separated for multiple recipients"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC email address(es), comma-separated for multiple recipients"),
		),
		mcp.WithBoolean("html",
			mcp.Description("Whether to send as HTML (default: false for plain text)"),
		),
	)

	s.AddTool(forwardEmailTool, common.InstrumentedToolHandlerWithService(
		"forward-email", instrumentation.ServiceGmail, instrumentation.OperationForward, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleForwardEmail(ctx, request, sc)
		}))

	return nil
}

func handleSendEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	toStr, ok := args["to"].(string)
	if !ok || toStr == "" {
		return mcp.NewToolResultError("'to' field is required"), nil
	}

	subject, ok := args["subject"].(string)
	if !ok || subject == "" {
		return mcp.NewToolResultError("'subject' field is required"), nil
	}

	body, ok := args["body"].(string)
	if !ok || body == "" {
		return mcp.NewToolResultError("'body' field is required"), nil
	}

	ccStr, _ := args["cc"].(string)
	bccStr, _ := args["bcc"].(string)
	isHTML, _ := args["html"].(bool)

	to := splitEmailAddresses(toStr)
	cc := splitEmailAddresses(ccStr)
	bcc := splitEmailAddresses(bccStr)

	client, errResult := clientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	msg := &gmail.EmailMessage{
		To:      to,
		Cc:      cc,
		Bcc:     bcc,
		Subject: subject,
		Body:    body,
		IsHTML:  isHTML,
	}

	messageID, err := client.SendEmail(msg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send email: %v", err)), nil
	}

	result := fmt.Sprintf("Email sent successfully! Message ID: %s\nTo: %s\nSubject: %s",
		messageID, strings.Join(to, ", "), subject)

	if len(cc) > 0 {
		result += fmt.Sprintf("\nCC: %s", strings.Join(cc, ", "))
	}
	if len(bcc) > 0 {
		result += fmt.Sprintf("\nBCC: %s", strings.Join(bcc, ", "))
	}

	return mcp.NewToolResultText(result), nil
}

func handleReplyToThread(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	emailID, ok := args["email_id"].(string)
	if !ok || emailID == "" {
		return mcp.NewToolResultError("email_id is required"), nil
	}

	content, ok := args["content"].(string)
	if !ok || content == "" {
		return mcp.NewToolResultError("content is required"), nil
	}

	ccStr, _ := args["cc"].(string)
	isHTML, _ := args["html"].(bool)
	cc := splitEmailAddresses(ccStr)

	client, errResult := clientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	original, err := client.GetMessage(emailID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get original email: %v", err)), nil
	}

	messageID, err := client.ReplyToEmail(emailID, original.ThreadId, content, cc, nil, isHTML)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send reply: %v", err)), nil
	}

	result := fmt.Sprintf("Reply sent successfully! Message ID: %s\nIn reply to: %s\nThread ID: %s",
		messageID, emailID, original.ThreadId)

	if len(cc) > 0 {
		result += fmt.Sprintf("\nCC: %s", strings.Join(cc, ", "))
	}

	return mcp.NewToolResultText(result), nil
}

func handleForwardEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	emailID, ok := args["email_id"].(string)
	if !ok || emailID == "" {
		return mcp.NewToolResultError("email_id is required"), nil
	}

	toStr, ok := args["to"].(string)
	if !ok || toStr == "" {
		return mcp.NewToolResultError("'to' field is required"), nil
	}

	comment, _ := args["comment"].(string)
	ccStr, _ := args["cc"].(string)
	bccStr, _ := args["bcc"].(string)
	isHTML, _ := args["html"].(bool)

	to := splitEmailAddresses(toStr)
	cc := splitEmailAddresses(ccStr)
	bcc := splitEmailAddresses(bccStr)

	client, errResult := clientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	messageID, err := client.ForwardEmail(emailID, to, cc, bcc, comment, isHTML)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to forward email: %v", err)), nil
	}

	result := fmt.Sprintf("Email forwarded successfully! Message ID: %s\nOriginal email: %s\nTo: %s",
		messageID, emailID, strings.Join(to, ", "))

	if len(cc) > 0 {
		result += fmt.Sprintf("\nCC: %s", strings.Join(cc, ", "))
	}
	if len(bcc) > 0 {
		result += fmt.Sprintf("\nBCC: %s", strings.Join(bcc, ", "))
	}

	return mcp.NewToolResultText(result), nil
}

// splitEmailAddresses splits a comma-separated string of email addresses
func splitEmailAddresses(addresses string) []string {
	if addresses == "" {
		return nil
	}

	parts := strings.Split(addresses, ",")
	result := make([]string, 0, len(parts))
	for _, addr := range parts {
		trimmed := strings.TrimSpace(addr)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

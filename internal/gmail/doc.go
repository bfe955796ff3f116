// Package gmail provides a client for interacting with the Gmail API.
//
// This package offers the mailbox operations the MCP server exposes:
//   - Message search and per-day counting
//   - Message body extraction (text and HTML)
//   - Thread lookup and listing
//   - Email operations (send, reply, forward) with signature handling
//   - Contact search across personal, directory, and other contacts
//
// The client supports multi-account authentication using the Google OAuth2 flow
// and can manage emails across multiple Google accounts. It integrates with both
// the Gmail API (for email operations) and the People API (for contact management).
//
// Authentication:
// This package uses the unified Google OAuth token from the google package.
// Tokens are loaded from the file system (~/.cache/inboxiq/).
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := gmail.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Search messages matching a query
//	msgs, err := client.SearchMessages("is:unread", 10)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Send an email
//	msg := &gmail.EmailMessage{
//	    To:      []string{"recipient@example.com"},
//	    Subject: "Hello",
//	    Body:    "This is a test email",
//	    IsHTML:  false,
//	}
//	msgID, err := client.SendEmail(msg)
//	if err != nil {
//	    log.Fatal(err)
//	}
package gmail

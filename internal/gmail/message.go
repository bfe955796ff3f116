package gmail

import (
	"encoding/base64"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
)

// MessageSummary holds the headline fields of a message for search results
type MessageSummary struct {
	ID       string
	ThreadID string
	From     string
	Subject  string
	Date     string
	Snippet  string
}

// GetProfile returns the mailbox profile of the authenticated user
func (c *Client) GetProfile() (*gmail.Profile, error) {
	profile, err := c.svc.GetProfile("me").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get mailbox profile: %w", err)
	}
	return profile, nil
}

// GetMessage retrieves a full Gmail message
func (c *Client) GetMessage(messageID string) (*gmail.Message, error) {
	msg, err := c.svc.Messages.Get("me", messageID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return msg, nil
}

// SearchMessages lists messages matching the query and returns their
// headline fields. It fetches message metadata one message at a time, so
// maxResults should stay small.
func (c *Client) SearchMessages(query string, maxResults int64) ([]*MessageSummary, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	res, err := c.svc.Messages.List("me").Q(query).MaxResults(maxResults).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}

	summaries := make([]*MessageSummary, 0, len(res.Messages))
	for _, m := range res.Messages {
		msg, err := c.svc.Messages.Get("me", m.Id).
			Format("metadata").
			MetadataHeaders("From", "Subject", "Date").
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", m.Id, err)
		}

		summaries = append(summaries, summarize(msg))
	}

	return summaries, nil
}

// summarize maps a message onto its headline fields
func summarize(msg *gmail.Message) *MessageSummary {
	return &MessageSummary{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		From:     HeaderValue(msg, "From"),
		Subject:  HeaderValue(msg, "Subject"),
		Date:     HeaderValue(msg, "Date"),
		Snippet:  msg.Snippet,
	}
}

// CountMessages counts all messages matching the query, paginating through
// the full result set
func (c *Client) CountMessages(query string) (int64, error) {
	var count int64
	pageToken := ""

	for {
		req := c.svc.Messages.List("me").Q(query).MaxResults(500)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Do()
		if err != nil {
			return 0, fmt.Errorf("failed to count messages: %w", err)
		}

		count += int64(len(res.Messages))

		if res.NextPageToken == "" {
			return count, nil
		}
		pageToken = res.NextPageToken
	}
}

// GetMessageBody extracts text/HTML body from a message
func (c *Client) GetMessageBody(messageID string, format string) (string, error) {
	msg, err := c.GetMessage(messageID)
	if err != nil {
		return "", err
	}
	return extractBody(msg, format)
}

// extractBody finds and decodes the body part matching format ("text" or
// "html", defaulting to "text"). Body data arrives base64url-encoded, but
// some senders produce standard base64, so both alphabets are accepted.
func extractBody(msg *gmail.Message, format string) (string, error) {
	if format == "" {
		format = "text"
	}

	var body string
	var targetMimeType string

	switch format {
	case "text":
		targetMimeType = "text/plain"
	case "html":
		targetMimeType = "text/html"
	default:
		return "", fmt.Errorf("invalid format %s, must be 'text' or 'html'", format)
	}

	// First, try to find the body in the main payload
	if msg.Payload != nil {
		if msg.Payload.MimeType == targetMimeType && msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
			body = msg.Payload.Body.Data
		} else {
			// Walk through parts to find the body
			walkParts(msg.Payload, func(part *gmail.MessagePart) {
				if body == "" && part.MimeType == targetMimeType && part.Body != nil && part.Body.Data != "" {
					body = part.Body.Data
				}
			})
		}
	}

	if body == "" {
		return "", fmt.Errorf("no %s body found in message", format)
	}

	decoded, err := base64.URLEncoding.DecodeString(body)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(body)
		if err != nil {
			return "", fmt.Errorf("failed to decode message body: %w", err)
		}
	}

	return string(decoded), nil
}

// walkParts recursively walks through message parts
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}

	fn(part)

	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}

// HeaderValue extracts a header value from a Gmail message
func HeaderValue(m *gmail.Message, header string) string {
	mpart := m.Payload
	if mpart == nil {
		return ""
	}
	for _, mph := range mpart.Headers {
		if mph.Name == header {
			return mph.Value
		}
	}
	return ""
}

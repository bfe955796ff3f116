// Package gmail_tools registers the email tools exposed by the MCP server.
//
// The tool surface mirrors a mailbox assistant workflow: search-emails,
// get-email-content, count-daily-emails, and find-email-threads read the
// mailbox; search-contacts resolves recipients through the People API;
// send-email, reply-to-thread, and forward-email modify the mailbox and
// are only registered when the server context allows writes.
//
// Every handler is wrapped with the instrumented handler from
// internal/tools/common, so tool invocations produce metrics and audit
// log entries when instrumentation is configured. All tools accept an
// optional "account" argument selecting one of the configured Google
// accounts.
package gmail_tools

package permission

import (
	"encoding/json"
	"fmt"
	"strings"
)

// redactedValue replaces sensitive argument values in anything shown to
// the human.
const redactedValue = "[PRIVATE]"

// defaultSensitiveKeys are the argument names redacted out of the box.
// Each Gate starts from this set; see Gate.AddSensitiveKeys.
var defaultSensitiveKeys = map[string]bool{
	"user_id":       true,
	"email_address": true,
}

// Redact returns a copy of args with the default sensitive values masked.
// Key matching is case-insensitive and treats '-' and '_' alike.
func Redact(args map[string]any) map[string]any {
	return redactWith(args, defaultSensitiveKeys)
}

func redactWith(args map[string]any, sensitive map[string]bool) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if sensitive[normalizeKey(k)] {
			out[k] = redactedValue
		} else {
			out[k] = v
		}
	}
	return out
}

func normalizeKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(k), "-", "_")
}

// describeActionWith renders a human-readable description of a tool
// call. Email sending and retrieval tools get friendly templates;
// everything else gets the tool name with redacted arguments.
func describeActionWith(tool string, args map[string]any, sensitive map[string]bool) string {
	switch normalizeKey(tool) {
	case "send_email", "reply_to_thread":
		action := fmt.Sprintf("send an email to: %s\nsubject: %s",
			stringArg(args, "to", "recipient"),
			stringArg(args, "subject", "No Subject"))
		if isTruthy(args["html"]) {
			action += "\n(HTML email)"
		}
		return action
	case "search_emails":
		return fmt.Sprintf("search emails with query: %s", stringArg(args, "query", ""))
	case "get_email_content", "find_email_threads":
		return fmt.Sprintf("retrieve contents of email with ID: %s", stringArg(args, "email_id", ""))
	default:
		filtered, err := json.MarshalIndent(redactWith(args, sensitive), "", "  ")
		if err != nil {
			filtered = []byte("{}")
		}
		return fmt.Sprintf("execute tool '%s' with filtered arguments:\n%s", tool, filtered)
	}
}

func stringArg(args map[string]any, key, fallback string) string {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return fallback
		}
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}

func isTruthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	default:
		return false
	}
}

package common

import (
	"context"
)

// GetAccountFromArgs extracts the account name from request arguments.
// Falls back to "default" when no account is explicitly provided.
func GetAccountFromArgs(_ context.Context, args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return "default"
}

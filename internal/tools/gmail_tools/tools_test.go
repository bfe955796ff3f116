package gmail_tools

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/opennotif/inboxiq/internal/server"
)

// toolRequest builds a CallToolRequest carrying the given arguments
func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// testServerContext creates a server context without instrumentation
func testServerContext(t *testing.T, allowWrites bool) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), allowWrites)
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	return sc
}

func TestGetAccountFromArgs(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{
			name: "with account specified",
			args: map[string]interface{}{
				"account": "work",
			},
			want: "work",
		},
		{
			name: "without account specified",
			args: map[string]interface{}{},
			want: "default",
		},
		{
			name: "with empty account string",
			args: map[string]interface{}{
				"account": "",
			},
			want: "default",
		},
		{
			name: "with non-string account",
			args: map[string]interface{}{
				"account": 123,
			},
			want: "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := getAccountFromArgs(tt.args)
			if got != tt.want {
				t.Errorf("getAccountFromArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegisterEmailTools(t *testing.T) {
	tests := []struct {
		name        string
		allowWrites bool
	}{
		{name: "read-only", allowWrites: false},
		{name: "writes enabled", allowWrites: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mcpserver.NewMCPServer("test", "0.0.0")
			sc := testServerContext(t, tt.allowWrites)

			if err := RegisterEmailTools(s, sc); err != nil {
				t.Errorf("RegisterEmailTools() error = %v", err)
			}
		})
	}
}

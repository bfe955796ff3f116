package cmd

import (
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestGetCategoryFromToolName(t *testing.T) {
	tests := []struct {
		name     string
		toolName string
		expected string
	}{
		{
			name:     "search tool",
			toolName: "search-emails",
			expected: "Reading Tools",
		},
		{
			name:     "content tool",
			toolName: "get-email-content",
			expected: "Reading Tools",
		},
		{
			name:     "count tool",
			toolName: "count-daily-emails",
			expected: "Reading Tools",
		},
		{
			name:     "threads tool",
			toolName: "find-email-threads",
			expected: "Reading Tools",
		},
		{
			name:     "send tool",
			toolName: "send-email",
			expected: "Compose Tools",
		},
		{
			name:     "reply tool",
			toolName: "reply-to-thread",
			expected: "Compose Tools",
		},
		{
			name:     "forward tool",
			toolName: "forward-email",
			expected: "Compose Tools",
		},
		{
			name:     "contacts tool",
			toolName: "search-contacts",
			expected: "Contact Tools",
		},
		{
			name:     "unknown tool",
			toolName: "something-else",
			expected: "Other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getCategoryFromToolName(tt.toolName); got != tt.expected {
				t.Errorf("getCategoryFromToolName(%q) = %q, want %q", tt.toolName, got, tt.expected)
			}
		})
	}
}

func TestGenerateToolMarkdown(t *testing.T) {
	tool := mcp.NewTool("search-emails",
		mcp.WithDescription("Search for emails using Gmail search syntax"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results"),
		),
	)

	markdown := generateToolMarkdown(tool)

	for _, want := range []string{
		"### search-emails",
		"Search for emails using Gmail search syntax",
		"`query` (required): Search query",
		"`max_results` (optional): Maximum number of results",
	} {
		if !strings.Contains(markdown, want) {
			t.Errorf("generateToolMarkdown() output missing %q", want)
		}
	}
}

func TestGenerateToolsMarkdownGroupsCategories(t *testing.T) {
	tools := []mcp.Tool{
		mcp.NewTool("search-emails", mcp.WithDescription("read")),
		mcp.NewTool("send-email", mcp.WithDescription("write")),
	}

	markdown := generateToolsMarkdown(tools)

	for _, want := range []string{
		"## Reading Tools",
		"## Compose Tools",
		"## Table of Contents",
	} {
		if !strings.Contains(markdown, want) {
			t.Errorf("generateToolsMarkdown() output missing %q", want)
		}
	}
}

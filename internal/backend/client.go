package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opennotif/inboxiq/internal/logging"
)

// ErrNotConnected is returned when an operation needs a live backend
// session and none exists.
var ErrNotConnected = errors.New("backend: not connected")

// PromptMessage is one message of an expanded prompt template.
type PromptMessage struct {
	Role string
	Text string
}

// session is the slice of the MCP client surface the wrapper uses.
// *mcpclient.Client satisfies it; tests substitute fakes.
type session interface {
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	ListResources(ctx context.Context, req mcp.ListResourcesRequest) (*mcp.ListResourcesResult, error)
	ListPrompts(ctx context.Context, req mcp.ListPromptsRequest) (*mcp.ListPromptsResult, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	ReadResource(ctx context.Context, req mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)
	GetPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error)
	Close() error
}

// startStdio launches the backend subprocess over a stdio transport.
// Indirection exists so tests can inject a fake session.
var startStdio = func(command string, env []string, args ...string) (session, error) {
	return mcpclient.NewStdioMCPClient(command, env, args...)
}

// Client wraps one MCP backend connection and maintains an atomically
// replaced snapshot of its tools, resources, and prompts.
type Client struct {
	command string
	args    []string
	env     []string
	name    string
	version string
	logger  *slog.Logger

	mu      sync.RWMutex
	session session
	caps    mcp.ServerCapabilities
	snap    Snapshot
}

// NewClient configures a backend client for the given server command. It
// does not connect; call Connect before anything else.
func NewClient(command string, args, env []string, clientName, clientVersion string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		command: command,
		args:    args,
		env:     env,
		name:    clientName,
		version: clientVersion,
		logger:  logger,
	}
}

// Connect launches the backend process, performs the protocol handshake,
// and loads the initial capability snapshot.
func (c *Client) Connect(ctx context.Context) error {
	sess, err := startStdio(c.command, c.env, c.args...)
	if err != nil {
		return fmt.Errorf("starting backend %q: %w", c.command, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    c.name,
		Version: c.version,
	}
	initResult, err := sess.Initialize(ctx, initReq)
	if err != nil {
		_ = sess.Close()
		return fmt.Errorf("initializing backend %q: %w", c.command, err)
	}

	c.mu.Lock()
	c.session = sess
	c.caps = initResult.Capabilities
	c.mu.Unlock()

	c.logger.Info("backend connected",
		logging.Operation("backend.connect"),
		slog.String("server", initResult.ServerInfo.Name),
		slog.String("server_version", initResult.ServerInfo.Version))

	return c.Refresh(ctx)
}

// Close tears down the backend session. Safe to call when not connected.
func (c *Client) Close() error {
	c.mu.Lock()
	sess := c.session
	c.session = nil
	c.mu.Unlock()

	if sess == nil {
		return nil
	}
	return sess.Close()
}

func (c *Client) current() (session, mcp.ServerCapabilities, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil, mcp.ServerCapabilities{}, ErrNotConnected
	}
	return c.session, c.caps, nil
}

// Refresh fetches tools, resources, and prompts and replaces the snapshot
// as a whole. On any failure the previous snapshot stays untouched.
// Capability surfaces the server does not advertise come back empty.
func (c *Client) Refresh(ctx context.Context) error {
	sess, caps, err := c.current()
	if err != nil {
		return err
	}

	var next Snapshot

	toolsResult, err := sess.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("listing tools: %w", err)
	}
	next.Tools = make([]ToolDescriptor, 0, len(toolsResult.Tools))
	for _, t := range toolsResult.Tools {
		schema, err := json.Marshal(t.InputSchema)
		if err != nil {
			return fmt.Errorf("encoding schema for tool %q: %w", t.Name, err)
		}
		next.Tools = append(next.Tools, ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schema,
		})
	}

	if caps.Resources != nil {
		resResult, err := sess.ListResources(ctx, mcp.ListResourcesRequest{})
		if err != nil {
			return fmt.Errorf("listing resources: %w", err)
		}
		next.Resources = make([]ResourceDescriptor, 0, len(resResult.Resources))
		for _, r := range resResult.Resources {
			next.Resources = append(next.Resources, ResourceDescriptor{
				URI:         r.URI,
				Name:        r.Name,
				Description: r.Description,
				MIMEType:    r.MIMEType,
			})
		}
	}

	if caps.Prompts != nil {
		promptResult, err := sess.ListPrompts(ctx, mcp.ListPromptsRequest{})
		if err != nil {
			return fmt.Errorf("listing prompts: %w", err)
		}
		next.Prompts = make([]PromptDescriptor, 0, len(promptResult.Prompts))
		for _, p := range promptResult.Prompts {
			desc := PromptDescriptor{
				Name:        p.Name,
				Description: p.Description,
			}
			for _, a := range p.Arguments {
				desc.Arguments = append(desc.Arguments, PromptArgument{
					Name:        a.Name,
					Description: a.Description,
					Required:    a.Required,
				})
			}
			next.Prompts = append(next.Prompts, desc)
		}
	}

	c.mu.Lock()
	c.snap = next
	c.mu.Unlock()

	c.logger.Debug("capability snapshot refreshed",
		logging.Operation("backend.refresh"),
		slog.Int("tools", len(next.Tools)),
		slog.Int("resources", len(next.Resources)),
		slog.Int("prompts", len(next.Prompts)))
	return nil
}

// Capabilities returns a deep copy of the current snapshot.
func (c *Client) Capabilities() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.clone()
}

// CallTool executes the named tool. The returned string is the flattened
// text content; isError reflects the backend's result flag, not a
// transport failure.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, bool, error) {
	sess, _, err := c.current()
	if err != nil {
		return "", false, err
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := sess.CallTool(ctx, req)
	if err != nil {
		return "", false, fmt.Errorf("calling tool %q: %w", name, err)
	}
	return flattenContent(result.Content), result.IsError, nil
}

// ReadResource reads the resource at uri and returns its text content.
func (c *Client) ReadResource(ctx context.Context, uri string) (string, error) {
	sess, _, err := c.current()
	if err != nil {
		return "", err
	}

	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri

	result, err := sess.ReadResource(ctx, req)
	if err != nil {
		return "", fmt.Errorf("reading resource %q: %w", uri, err)
	}

	var parts []string
	for _, rc := range result.Contents {
		if text, ok := mcp.AsTextResourceContents(rc); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// GetPrompt expands the named prompt template with the given arguments.
func (c *Client) GetPrompt(ctx context.Context, name string, args map[string]string) ([]PromptMessage, error) {
	sess, _, err := c.current()
	if err != nil {
		return nil, err
	}

	req := mcp.GetPromptRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := sess.GetPrompt(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("getting prompt %q: %w", name, err)
	}

	msgs := make([]PromptMessage, 0, len(result.Messages))
	for _, m := range result.Messages {
		text := ""
		if tc, ok := mcp.AsTextContent(m.Content); ok {
			text = tc.Text
		}
		msgs = append(msgs, PromptMessage{
			Role: string(m.Role),
			Text: text,
		})
	}
	return msgs, nil
}

func flattenContent(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		if tc, ok := mcp.AsTextContent(c); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/opennotif/inboxiq/internal/transcript"
)

// resourceDisplayLimit caps how much resource content is echoed to the
// terminal. The full content still lands in the transcript.
const resourceDisplayLimit = 500

// Shell is the line-oriented command loop wrapped around a Session.
type Shell struct {
	session    *Session
	in         *bufio.Scanner
	out        io.Writer
	serverName string
	logger     *slog.Logger
}

// NewShell creates a shell reading commands from in and printing to out.
func NewShell(session *Session, in io.Reader, out io.Writer, serverName string, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{
		session:    session,
		in:         bufio.NewScanner(in),
		out:        out,
		serverName: serverName,
		logger:     logger,
	}
}

// Run processes commands until /quit, end of input, or ctx cancellation.
func (sh *Shell) Run(ctx context.Context) error {
	sh.printBanner()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(sh.out, "\nQuery: ")
		if !sh.in.Scan() {
			return sh.in.Err()
		}
		line := strings.TrimSpace(sh.in.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "/quit") {
			return nil
		}
		sh.dispatch(ctx, line)
	}
}

func (sh *Shell) printBanner() {
	divider := strings.Repeat("=", 50)
	fmt.Fprintf(sh.out, "\n%s\n", divider)
	fmt.Fprintf(sh.out, "InboxIQ connected to: %s\n", sh.serverName)
	fmt.Fprintf(sh.out, "%s\n", divider)
	fmt.Fprintln(sh.out, "Type your queries or use these commands:")
	fmt.Fprintln(sh.out, "  /debug - Toggle debug mode")
	fmt.Fprintln(sh.out, "  /permissions - Toggle permission requirements")
	fmt.Fprintln(sh.out, "  /iterations <n> - Set the tool call iteration limit")
	fmt.Fprintln(sh.out, "  /refresh - Refresh server capabilities")
	fmt.Fprintln(sh.out, "  /resources - List available resources")
	fmt.Fprintln(sh.out, "  /resource <uri> - Read a specific resource")
	fmt.Fprintln(sh.out, "  /prompts - List available prompts")
	fmt.Fprintln(sh.out, "  /prompt <name> <text> - Run a prompt template")
	fmt.Fprintln(sh.out, "  /tools - List available tools")
	fmt.Fprintln(sh.out, "  /quit - Exit")
	fmt.Fprintf(sh.out, "%s\n", divider)
}

func (sh *Shell) dispatch(ctx context.Context, line string) {
	lower := strings.ToLower(line)
	switch {
	case lower == "/help":
		sh.printBanner()
	case lower == "/debug":
		sh.session.SetDebug(!sh.session.Debug())
		fmt.Fprintf(sh.out, "\nDebug mode %s\n", enabledWord(sh.session.Debug()))
	case lower == "/permissions":
		gate := sh.session.Gate()
		gate.SetRequired(!gate.Required())
		fmt.Fprintf(sh.out, "\nPermission requirements %s\n", enabledWord(gate.Required()))
	case strings.HasPrefix(lower, "/iterations"):
		sh.handleIterations(line)
	case lower == "/refresh":
		if err := sh.session.Backend().Refresh(ctx); err != nil {
			fmt.Fprintf(sh.out, "\nError refreshing capabilities: %v\n", err)
			return
		}
		fmt.Fprintln(sh.out, "\nServer capabilities refreshed")
	case lower == "/resources":
		sh.handleListResources()
	case strings.HasPrefix(lower, "/resource "):
		sh.handleReadResource(ctx, strings.TrimSpace(line[len("/resource "):]))
	case lower == "/prompts":
		sh.handleListPrompts()
	case strings.HasPrefix(lower, "/prompt "):
		sh.handlePrompt(ctx, strings.TrimSpace(line[len("/prompt "):]))
	case lower == "/tools":
		sh.handleListTools()
	case strings.HasPrefix(lower, "/"):
		fmt.Fprintf(sh.out, "\nUnknown command: %s (try /help)\n", line)
	default:
		sh.handleQuery(ctx, line)
	}
}

func (sh *Shell) handleQuery(ctx context.Context, query string) {
	fmt.Fprintln(sh.out, "\nProcessing query...")
	response, err := sh.session.ProcessQuery(ctx, query)
	if err != nil {
		fmt.Fprintf(sh.out, "\nError: %v\n", err)
		return
	}
	fmt.Fprintln(sh.out, "\n"+response)
}

func (sh *Shell) handleIterations(line string) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		fmt.Fprintln(sh.out, "\nUsage: /iterations <n>")
		return
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 {
		fmt.Fprintln(sh.out, "\nError: iteration limit must be a positive integer")
		return
	}
	sh.session.SetMaxIterations(n)
	fmt.Fprintf(sh.out, "\nTool call iteration limit set to %d\n", n)
}

func (sh *Shell) handleListResources() {
	snap := sh.session.Backend().Capabilities()
	fmt.Fprintln(sh.out, "\nAvailable Resources:")
	for _, r := range snap.Resources {
		fmt.Fprintf(sh.out, "  - %s\n", r.URI)
		if r.Description != "" {
			fmt.Fprintf(sh.out, "    %s\n", r.Description)
		}
	}
}

func (sh *Shell) handleReadResource(ctx context.Context, uri string) {
	if uri == "" {
		fmt.Fprintln(sh.out, "\nUsage: /resource <uri>")
		return
	}
	fmt.Fprintf(sh.out, "\nResource requested: %s\n", uri)

	if sh.session.Gate().Required() {
		if !sh.confirm(fmt.Sprintf("Do you want to read resource '%s'?", uri)) {
			fmt.Fprintln(sh.out, "Operation cancelled by user")
			return
		}
	}

	fmt.Fprintf(sh.out, "\nFetching resource: %s\n", uri)
	content, err := sh.session.Backend().ReadResource(ctx, uri)
	if err != nil {
		fmt.Fprintf(sh.out, "\nError reading resource: %v\n", err)
		return
	}

	// Keep the full content in the transcript so follow-up queries can
	// reference it.
	sh.session.Store.Append(transcript.NewUserTurn(
		fmt.Sprintf("Resource content (%s):\n%s", uri, content)))

	fmt.Fprintf(sh.out, "\nResource Content (%s):\n", uri)
	fmt.Fprintln(sh.out, "-----------------------------------")
	if len(content) > resourceDisplayLimit {
		fmt.Fprintln(sh.out, content[:resourceDisplayLimit]+"...")
		fmt.Fprintln(sh.out, "(Resource content truncated for display, full content is in the conversation history)")
	} else {
		fmt.Fprintln(sh.out, content)
	}
}

func (sh *Shell) handleListPrompts() {
	snap := sh.session.Backend().Capabilities()
	fmt.Fprintln(sh.out, "\nAvailable Prompts:")
	for _, p := range snap.Prompts {
		fmt.Fprintf(sh.out, "  - %s\n", p.Name)
		if p.Description != "" {
			fmt.Fprintf(sh.out, "    %s\n", p.Description)
		}
		if len(p.Arguments) > 0 {
			names := make([]string, len(p.Arguments))
			for i, a := range p.Arguments {
				names[i] = a.Name
			}
			fmt.Fprintf(sh.out, "    Arguments: %s\n", strings.Join(names, ", "))
		}
	}
}

// handlePrompt fetches a prompt template, binds any trailing text to the
// prompt's first declared argument, and runs the expanded messages plus
// recent history through the model.
func (sh *Shell) handlePrompt(ctx context.Context, input string) {
	parts := strings.SplitN(input, " ", 2)
	if parts[0] == "" {
		fmt.Fprintln(sh.out, "\nError: prompt name required")
		return
	}
	name := parts[0]

	arguments := map[string]string{}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		argText := strings.TrimSpace(parts[1])
		argName := "text"
		if desc, ok := sh.session.Backend().Capabilities().Prompt(name); ok && len(desc.Arguments) > 0 {
			argName = desc.Arguments[0].Name
		}
		arguments[argName] = argText
	}

	if sh.session.Gate().Required() {
		fmt.Fprintf(sh.out, "\nPrompt requested: %s\n", name)
		if !sh.confirm("Do you want to execute this prompt?") {
			fmt.Fprintln(sh.out, "Operation cancelled by user")
			return
		}
	}

	fmt.Fprintf(sh.out, "\nGetting prompt template: %s\n", name)
	promptMsgs, err := sh.session.Backend().GetPrompt(ctx, name, arguments)
	if err != nil {
		fmt.Fprintf(sh.out, "\nError getting prompt: %v\n", err)
		return
	}

	msgs := recentContext(sh.session.Store, 5)
	for _, m := range promptMsgs {
		msgs = append(msgs, transcript.Message{
			Role:    promptRole(m.Role),
			Content: m.Text,
		})
	}

	fmt.Fprintln(sh.out, "Processing prompt...")
	modelTurn, err := sh.session.model.Complete(ctx, msgs, nil)
	if err != nil {
		fmt.Fprintf(sh.out, "\nError processing prompt: %v\n", err)
		return
	}

	for _, m := range promptMsgs {
		sh.session.Store.Append(transcript.Turn{
			Role:    promptRole(m.Role),
			Content: m.Text,
		})
	}
	sh.session.Store.Append(transcript.NewAssistantTurn(modelTurn.Content))

	fmt.Fprintln(sh.out, "\nResponse:")
	fmt.Fprintln(sh.out, modelTurn.Content)
}

func (sh *Shell) handleListTools() {
	snap := sh.session.Backend().Capabilities()
	fmt.Fprintln(sh.out, "\nAvailable Tools:")
	for _, t := range snap.Tools {
		fmt.Fprintf(sh.out, "  - %s\n", t.Name)
		if t.Description != "" {
			fmt.Fprintf(sh.out, "    %s\n", t.Description)
		}
	}
}

// confirm asks a y/n question inline on the shell's own streams.
func (sh *Shell) confirm(question string) bool {
	fmt.Fprintf(sh.out, "%s (y/n): ", question)
	if !sh.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(sh.in.Text()))
	return answer == "y" || answer == "yes"
}

// recentContext pulls up to limit recent user and assistant turns, oldest
// first, skipping tool output and recorded errors.
func recentContext(store *transcript.Store, limit int) []transcript.Message {
	tail := store.Tail(10)
	var picked []transcript.Message
	for i := len(tail) - 1; i >= 0 && len(picked) < limit; i-- {
		t := tail[i]
		if t.Role != transcript.RoleUser && t.Role != transcript.RoleAssistant {
			continue
		}
		if t.Meta.Error || t.Meta.HasToolCalls {
			continue
		}
		picked = append(picked, transcript.Message{Role: t.Role, Content: t.Content})
	}
	// Reverse back into chronological order.
	out := make([]transcript.Message, 0, len(picked))
	for i := len(picked) - 1; i >= 0; i-- {
		out = append(out, picked[i])
	}
	return out
}

func promptRole(role string) transcript.Role {
	switch role {
	case "assistant":
		return transcript.RoleAssistant
	case "system":
		return transcript.RoleSystem
	default:
		return transcript.RoleUser
	}
}

func enabledWord(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

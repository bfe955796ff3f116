package permission

import (
	"context"
	"log/slog"
	"sync"

	"github.com/opennotif/inboxiq/internal/logging"
)

// Decision is the outcome of a permission request. Denial is a normal
// outcome, not an error.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// String returns the lowercase decision name.
func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Prompter asks the human for a yes/no decision. Implementations must
// honor ctx cancellation.
type Prompter interface {
	Confirm(ctx context.Context, action string) (bool, error)
}

// Gate decides whether a tool call may execute. When permission checks
// are not required every request is allowed without consulting the
// Prompter. When the Prompter fails the gate denies.
type Gate struct {
	mu        sync.Mutex
	required  bool
	prompter  Prompter
	logger    *slog.Logger
	sensitive map[string]bool
}

// NewGate creates a gate that requires permission for every tool call.
// The gate starts with the default sensitive-key set.
func NewGate(prompter Prompter, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		required:  true,
		prompter:  prompter,
		logger:    logger,
		sensitive: defaultSensitiveKeys,
	}
}

// AddSensitiveKeys extends this gate's set of argument names whose
// values are redacted before display. Key matching is case-insensitive
// and treats '-' and '_' alike.
func (g *Gate) AddSensitiveKeys(keys ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	next := make(map[string]bool, len(g.sensitive)+len(keys))
	for k := range g.sensitive {
		next[k] = true
	}
	for _, k := range keys {
		next[normalizeKey(k)] = true
	}
	g.sensitive = next
}

func (g *Gate) sensitiveKeys() map[string]bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sensitive
}

// SetRequired toggles whether tool calls need human approval.
func (g *Gate) SetRequired(required bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.required = required
}

// Required reports whether tool calls currently need human approval.
func (g *Gate) Required() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.required
}

// Request asks for permission to run the given tool with the given
// arguments. Sensitive argument values are redacted before anything is
// shown to the human.
func (g *Gate) Request(ctx context.Context, tool string, args map[string]any) Decision {
	if !g.Required() {
		return Allow
	}

	action := describeActionWith(tool, args, g.sensitiveKeys())
	ok, err := g.prompter.Confirm(ctx, action)
	if err != nil {
		g.logger.Warn("permission prompt failed, denying",
			logging.Tool(tool),
			logging.Err(err))
		return Deny
	}

	decision := Deny
	if ok {
		decision = Allow
	}
	g.logger.Debug("permission decision",
		logging.Tool(tool),
		logging.Decision(decision.String()))
	return decision
}

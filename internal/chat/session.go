package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opennotif/inboxiq/internal/backend"
	"github.com/opennotif/inboxiq/internal/logging"
	"github.com/opennotif/inboxiq/internal/permission"
	"github.com/opennotif/inboxiq/internal/transcript"
)

// DefaultSystemPrompt frames the assistant for the model.
const DefaultSystemPrompt = "You are a helpful email assistant. You can search, read, " +
	"count, and send email through the available tools. Use tools when they help and " +
	"answer directly when they do not."

const (
	// DefaultMaxIterations bounds how many tool-call rounds one query may
	// trigger.
	DefaultMaxIterations = 5
	// DefaultCallTimeout bounds a single backend tool call.
	DefaultCallTimeout = 60 * time.Second

	finalSummaryInstruction = "Please provide a final summary of all the information gathered."
)

// Backend is the tool backend surface a session drives. *backend.Client
// satisfies it.
type Backend interface {
	Capabilities() backend.Snapshot
	CallTool(ctx context.Context, name string, args map[string]any) (string, bool, error)
	Refresh(ctx context.Context) error
	ReadResource(ctx context.Context, uri string) (string, error)
	GetPrompt(ctx context.Context, name string, args map[string]string) ([]backend.PromptMessage, error)
}

// MetricsRecorder receives orchestration metrics. May be nil.
type MetricsRecorder interface {
	RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration)
	RecordModelCall(ctx context.Context, model, status string, duration time.Duration)
	RecordPermissionDecision(ctx context.Context, toolName, decision string)
}

// SessionConfig carries the collaborators and knobs for a Session. Zero
// values get sane defaults.
type SessionConfig struct {
	Backend       Backend
	Model         ModelClient
	ModelName     string
	Gate          *permission.Gate
	SystemPrompt  string
	MaxIterations int
	CallTimeout   time.Duration
	Debug         bool
	Logger        *slog.Logger
	Metrics       MetricsRecorder
}

/// Session is one interactive conversation: an append-only transcript plus
// the orchestration state that turns user queries into model and tool
// calls.
type Session struct {
	ID    string
	Store *transcript.Store

	backend Backend
	model   ModelClient
	gate    *permission.Gate
	metrics MetricsRecorder
	logger  *slog.Logger

	modelName    string
	systemPrompt string

	mu            sync.Mutex
	maxIterations int
	callTimeout   time.Duration
	debug         bool
}

// NewSession creates a session from the config, applying defaults for
// unset knobs.
func NewSession(cfg SessionConfig) *Session {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	id := uuid.NewString()
	return &Session{
		ID:            id,
		Store:         transcript.NewStore(),
		backend:       cfg.Backend,
		model:         cfg.Model,
		gate:          cfg.Gate,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger.With(logging.Session(id)),
		modelName:     cfg.ModelName,
		systemPrompt:  cfg.SystemPrompt,
		maxIterations: cfg.MaxIterations,
		callTimeout:   cfg.CallTimeout,
		debug:         cfg.Debug,
	}
}

// SetMaxIterations updates the tool-call iteration bound. Values below 1
// are clamped to 1.
func (s *Session) SetMaxIterations(n int) {
	if n < 1 {
		n = 1
	}
	s.mu.Lock()
	s.maxIterations = n
	s.mu.Unlock()
}

// MaxIterations returns the current iteration bound.
func (s *Session) MaxIterations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxIterations
}

// SetDebug toggles verbose orchestration logging.
func (s *Session) SetDebug(on bool) {
	s.mu.Lock()
	s.debug = on
	s.mu.Unlock()
}

// Debug reports whether verbose logging is on.
func (s *Session) Debug() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debug
}

// Gate returns the session's permission gate.
func (s *Session) Gate() *permission.Gate {
	return s.gate
}

// Backend returns the session's tool backend.
func (s *Session) Backend() Backend {
	return s.backend
}

// ProcessQuery runs one user query through the model and tool loop and
// returns the assembled response text. A model failure ends this query
// but leaves the session usable.
func (s *Session) ProcessQuery(ctx context.Context, query string) (string, error) {
	s.Store.Append(transcript.NewUserTurn(query))

	maxIterations := s.MaxIterations()
	iterations := 0
	var parts []string

	for iterations < maxIterations {
		if s.Debug() {
			s.logger.Info("tool call iteration",
				logging.Iteration(iterations+1),
				slog.Int("max", maxIterations))
		}

		msgs := transcript.Compile(s.Store.All(), s.systemPrompt)
		modelTurn, err := s.completeModel(ctx, msgs, s.availableTools(ctx))
		if err != nil {
			s.Store.Append(transcript.Turn{
				Role:    transcript.RoleAssistant,
				Content: fmt.Sprintf("Error calling model: %v", err),
				Meta:    transcript.Metadata{Error: true},
			})
			return "", fmt.Errorf("model call failed: %w", err)
		}

		if len(modelTurn.ToolCalls) == 0 {
			s.Store.Append(transcript.NewAssistantTurn(modelTurn.Content))
			if modelTurn.Content != "" {
				parts = append(parts, modelTurn.Content)
			}
			break
		}

		s.Store.Append(transcript.NewAssistantToolCallTurn(modelTurn.Content, modelTurn.ToolCalls))
		if modelTurn.Content != "" {
			parts = append(parts, modelTurn.Content)
		}

		anyExecuted := false
		for _, call := range modelTurn.ToolCalls {
			executed, text := s.runToolCall(ctx, call)
			anyExecuted = anyExecuted || executed
			if text != "" {
				parts = append(parts, text)
			}
		}

		if !anyExecuted {
			// Nothing in the batch ran, asking the model again would
			// just repeat the same requests.
			break
		}
		iterations++
		if iterations >= maxIterations {
			parts = append(parts, fmt.Sprintf("\n[Reached maximum of %d tool call iterations]", maxIterations))
		}
	}

	if iterations > 0 {
		summary := s.finalSummary(ctx)
		if summary != "" {
			parts = append(parts, summary)
		}
	}

	return strings.Join(parts, "\n"), nil
}

// availableTools returns the backend's tool descriptors, attempting one
// refresh when the snapshot is empty. A failed refresh is not fatal; the
// model call proceeds without tools.
func (s *Session) availableTools(ctx context.Context) []backend.ToolDescriptor {
	tools := s.backend.Capabilities().Tools
	if len(tools) > 0 {
		return tools
	}
	if err := s.backend.Refresh(ctx); err != nil {
		s.logger.Warn("capability refresh failed", logging.Err(err))
		return tools
	}
	return s.backend.Capabilities().Tools
}

// runToolCall gates and executes one requested call, records the outcome
// as a tool turn, and returns whether the call actually ran along with
// any user-facing marker text.
func (s *Session) runToolCall(ctx context.Context, call transcript.ToolCallRequest) (bool, string) {
	args := parseArguments(call.Arguments, s.logger)

	decision := permission.Allow
	if s.gate != nil {
		decision = s.gate.Request(ctx, call.Name, args)
	}
	if s.metrics != nil {
		s.metrics.RecordPermissionDecision(ctx, call.Name, decision.String())
	}

	if decision == permission.Deny {
		deniedMsg := fmt.Sprintf("Permission denied to execute tool: %s", call.Name)
		s.logger.Info(deniedMsg, logging.Tool(call.Name))
		turn := transcript.NewToolTurn(call.ID, call.Name, deniedMsg)
		turn.Meta.Permission = transcript.PermissionDenied
		s.Store.Append(turn)

		friendly := "I need your permission to perform this action, but you've denied the request. " +
			"If you'd like to allow this action in the future, please let me know and I'll ask again."
		return false, fmt.Sprintf("\n%s\n[Permission denied for tool %s]", friendly, call.Name)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	start := time.Now()
	result, isErr, err := s.backend.CallTool(callCtx, call.Name, args)
	duration := time.Since(start)

	if err != nil || isErr {
		detail := result
		if err != nil {
			detail = err.Error()
		}
		errorMsg := fmt.Sprintf("Error executing tool %s: %s", call.Name, detail)
		s.logger.Error(errorMsg, logging.Tool(call.Name), logging.Err(err))
		if s.metrics != nil {
			s.metrics.RecordToolInvocation(ctx, call.Name, logging.StatusError, duration)
		}

		turn := transcript.NewToolTurn(call.ID, call.Name, errorMsg)
		turn.Meta.Error = true
		s.Store.Append(turn)
		return true, fmt.Sprintf("\n[Error executing tool %s: %s]", call.Name, detail)
	}

	if s.metrics != nil {
		s.metrics.RecordToolInvocation(ctx, call.Name, logging.StatusSuccess, duration)
	}

	turn := transcript.NewToolTurn(call.ID, call.Name, result)
	turn.Meta.Permission = transcript.PermissionGranted
	s.Store.Append(turn)
	return true, fmt.Sprintf("\n[Calling tool %s with args %v]", call.Name, permission.Redact(args))
}

// finalSummary asks the model to wrap up everything the tools gathered.
// A summary failure degrades to an inline error marker rather than
// discarding the tool output already collected.
func (s *Session) finalSummary(ctx context.Context) string {
	msgs := transcript.Compile(s.Store.All(), s.systemPrompt)
	msgs = append(msgs, transcript.Message{
		Role:    transcript.RoleSystem,
		Content: finalSummaryInstruction,
	})

	modelTurn, err := s.completeModel(ctx, msgs, nil)
	if err != nil {
		errorMsg := fmt.Sprintf("Error getting final summary: %v", err)
		s.logger.Error(errorMsg, logging.Err(err))
		s.Store.Append(transcript.Turn{
			Role:    transcript.RoleAssistant,
			Content: errorMsg,
			Meta:    transcript.Metadata{Error: true},
		})
		return fmt.Sprintf("\n[Error: %s]", errorMsg)
	}

	s.Store.Append(transcript.NewAssistantTurn(modelTurn.Content))
	return "\n\n### Final Summary ###\n" + modelTurn.Content
}

func (s *Session) completeModel(ctx context.Context, msgs []transcript.Message, tools []backend.ToolDescriptor) (ModelTurn, error) {
	start := time.Now()
	turn, err := s.model.Complete(ctx, msgs, tools)
	if s.metrics != nil {
		status := logging.StatusSuccess
		if err != nil {
			status = logging.StatusError
		}
		s.metrics.RecordModelCall(ctx, s.modelName, status, time.Since(start))
	}
	return turn, err
}

// parseArguments decodes the model's raw argument JSON. Unparseable
// arguments degrade to an empty map so the gate and the tool still see a
// well-formed call.
func parseArguments(raw string, logger *slog.Logger) map[string]any {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		logger.Warn("failed to parse tool arguments as JSON",
			slog.String("arguments", raw),
			logging.Err(err))
		return map[string]any{}
	}
	if args == nil {
		return map[string]any{}
	}
	return args
}

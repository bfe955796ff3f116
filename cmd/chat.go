package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opennotif/inboxiq/internal/backend"
	"github.com/opennotif/inboxiq/internal/chat"
	"github.com/opennotif/inboxiq/internal/instrumentation"
	"github.com/opennotif/inboxiq/internal/permission"
)

func newChatCmd() *cobra.Command {
	var (
		serverCommand string
		serverArgs    []string
		model         string
		modelBaseURL  string
		maxIterations int
		noPermissions bool
		debugMode     bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive email assistant",
		Long: `Start an interactive chat session with the email assistant.

The assistant connects a chat language model to an MCP email backend.
Queries are answered directly or by calling the backend's tools; every
tool call asks for your permission first (disable with --no-permissions).

Model Configuration:
  The GROQ_API_KEY environment variable is required. The endpoint and
  model default to the Groq chat-completions API and can be overridden
  with --model, --model-base-url, or the GROQ_MODEL and GROQ_BASE_URL
  environment variables.

Backend Configuration:
  By default the chat client launches its own bundled email backend
  ("inboxiq serve"). Use --server and --server-args to connect to a
  different MCP server over stdio.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if model == "" {
				model = os.Getenv("GROQ_MODEL")
			}
			if modelBaseURL == "" {
				modelBaseURL = os.Getenv("GROQ_BASE_URL")
			}

			apiKey := os.Getenv("GROQ_API_KEY")
			if apiKey == "" {
				return fmt.Errorf("GROQ_API_KEY environment variable is required")
			}

			if serverCommand == "" {
				exe, err := os.Executable()
				if err != nil {
					return fmt.Errorf("failed to locate own executable for the bundled backend: %w", err)
				}
				serverCommand = exe
				if len(serverArgs) == 0 {
					serverArgs = []string{"serve"}
				}
			}

			return runChat(serverCommand, serverArgs, apiKey, modelBaseURL, model, maxIterations, noPermissions, debugMode)
		},
	}

	cmd.Flags().StringVar(&serverCommand, "server", "", "Command to launch the MCP backend over stdio (default: this binary's serve command)")
	cmd.Flags().StringSliceVar(&serverArgs, "server-args", nil, "Arguments passed to the backend command")
	cmd.Flags().StringVar(&model, "model", "", "Model name. Can also use GROQ_MODEL env var.")
	cmd.Flags().StringVar(&modelBaseURL, "model-base-url", "", "OpenAI-compatible chat completions endpoint. Can also use GROQ_BASE_URL env var.")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", chat.DefaultMaxIterations, "Maximum tool call iterations per query")
	cmd.Flags().BoolVar(&noPermissions, "no-permissions", false, "Skip the permission prompt before tool calls")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	return cmd
}

func runChat(serverCommand string, serverArgs []string, apiKey, modelBaseURL, model string, maxIterations int, noPermissions, debugMode bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newChatLogger(debugMode)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("error during instrumentation shutdown", slog.String("error", err.Error()))
		}
	}()

	modelClient, err := chat.NewGroqClient(apiKey, modelBaseURL, model)
	if err != nil {
		return err
	}

	backendClient := backend.NewClient(serverCommand, serverArgs, os.Environ(), "inboxiq", version, logger)
	if err := backendClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to backend: %w", err)
	}
	defer func() {
		if err := backendClient.Close(); err != nil {
			logger.Warn("error closing backend", slog.String("error", err.Error()))
		}
	}()

	snap := backendClient.Capabilities()
	logger.Info("backend capabilities loaded",
		slog.Int("tools", len(snap.Tools)),
		slog.Int("resources", len(snap.Resources)),
		slog.Int("prompts", len(snap.Prompts)))

	gate := permission.NewGate(permission.NewConsolePrompter(os.Stdin, os.Stdout), logger)
	if noPermissions {
		gate.SetRequired(false)
	}

	sessionConfig := chat.SessionConfig{
		Backend:       backendClient,
		Model:         modelClient,
		ModelName:     modelClient.Model(),
		Gate:          gate,
		MaxIterations: maxIterations,
		Debug:         debugMode,
		Logger:        logger,
	}
	if provider.Enabled() {
		sessionConfig.Metrics = provider.Metrics()
	}
	session := chat.NewSession(sessionConfig)

	shell := chat.NewShell(session, os.Stdin, os.Stdout, serverCommand, logger)
	if err := shell.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	fmt.Println("\nGoodbye!")
	return nil
}

// newChatLogger builds the slog logger for the chat client. Logs go to
// stderr so they never interleave with the interactive shell on stdout.
func newChatLogger(debugMode bool) *slog.Logger {
	level := slog.LevelWarn
	if debugMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

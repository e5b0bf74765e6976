// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/notechat/internal/action"
	"github.com/starford/notechat/internal/api"
	"github.com/starford/notechat/internal/apperr"
	"github.com/starford/notechat/internal/chat"
	"github.com/starford/notechat/internal/executor"
	"github.com/starford/notechat/internal/mcpserver"
	"github.com/starford/notechat/internal/noteservice"
	"github.com/starford/notechat/internal/oracle"
	"github.com/starford/notechat/internal/prompt"
	"github.com/starford/notechat/internal/sse"
	"github.com/starford/notechat/internal/storage"
	"github.com/starford/notechat/internal/usage"
)

const refreshThrottle = 2 * time.Second

// core holds the components shared by every command.
type core struct {
	cfg     *Config
	logger  *slog.Logger
	db      *storage.DB
	oracle  oracle.Oracle
	prompts *prompt.Builder
	exec    *executor.Executor
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logOutput == nil {
		app.logOutput = os.Stdout
	}
	return app, nil
}

// setup opens storage and builds the model, prompt and executor layers.
func (a *application) setup(ctx context.Context) (*core, error) {
	cfg := a.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("llm_backend", cfg.LLM.Backend),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := storage.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	orc := a.oracle
	if orc == nil {
		orc = buildOracle(ctx, cfg.LLM, logger)
	}

	prompts := prompt.NewBuilder()
	if cfg.Chat.PromptFile != "" {
		if err := prompts.Load(cfg.Chat.PromptFile); err != nil {
			db.Close()
			return nil, fmt.Errorf("load prompt: %w", err)
		}
	}

	exec := executor.New(db, orc,
		executor.WithLogger(logger),
		executor.WithMatchLimit(cfg.Chat.SearchLimit))

	return &core{cfg: cfg, logger: logger, db: db, oracle: orc, prompts: prompts, exec: exec}, nil
}

// buildOracle connects to the configured model. Without one the notes API
// still works and chat turns fail with apperr.ErrOracleFailure.
func buildOracle(ctx context.Context, cfg LLMConfig, logger *slog.Logger) oracle.Oracle {
	g, err := oracle.NewGenAI(ctx, cfg.OracleConfig())
	if err != nil {
		logger.Warn("language model unavailable", slog.String("error", err.Error()))
		return oracle.Func(func(context.Context, string) (string, error) {
			return "", fmt.Errorf("%w: %v", apperr.ErrOracleFailure, err)
		})
	}
	logger.Info("language model ready", slog.String("model", g.Name()))
	return g
}

func (c *core) chatService(notify chat.Notifier) *chat.Service {
	opts := []chat.Option{
		chat.WithLimiter(usage.NewLimiter(c.db, c.cfg.Usage.Limits())),
		chat.WithHistoryLimit(c.cfg.Chat.HistoryLimit),
		chat.WithLogger(c.logger),
	}
	if notify != nil {
		opts = append(opts, chat.WithNotifier(notify))
	}
	return chat.NewService(c.db, c.exec, c.oracle, c.prompts, opts...)
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := app.setup(ctx)
	if err != nil {
		return err
	}
	defer c.db.Close()

	cfg, logger := c.cfg, c.logger

	// SSE broker.
	broker := sse.NewBroker(refreshThrottle)
	defer broker.Close()
	notify := func(owner string, kind action.Kind, noteID string) {
		broker.PublishNoteEvent(owner, string(kind), noteID)
	}

	notes := noteservice.NewService(c.db, notify)
	chatSvc := c.chatService(notify)

	auth := api.Auth{
		Enabled:      cfg.Auth.AuthEnabled(),
		DefaultOwner: cfg.Auth.DefaultOwner,
		Tokens:       cfg.Auth.TokenOwners(),
	}
	apiRouter := api.NewRouter(notes, chatSvc, auth, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload the system prompt when its file changes.
	if cfg.Chat.PromptFile != "" {
		g.Go(func() error {
			if err := c.prompts.Watch(gCtx, cfg.Chat.PromptFile, logger); err != nil {
				logger.Warn("prompt watcher disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group once the server has been asked to stop, so
// the prompt watcher exits too.
var errShutdown = errors.New("shutdown")

// RunChat runs a single chat turn for owner and writes the reply to out.
func RunChat(ctx context.Context, owner, message string, out io.Writer, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := app.setup(ctx)
	if err != nil {
		return err
	}
	defer c.db.Close()

	reply, err := c.chatService(nil).Send(ctx, owner, message)
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(reply)
}

// RunMCP serves the MCP tools over stdio for the configured owner. Logs go
// to stderr unless WithLogOutput says otherwise, since stdout carries the
// protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	c, err := app.setup(ctx)
	if err != nil {
		return err
	}
	defer c.db.Close()

	c.logger.Info("MCP server starting", slog.String("owner", c.cfg.MCP.Owner))
	return mcpserver.New(c.db, c.exec, c.cfg.MCP.Owner, c.logger).ServeStdio()
}

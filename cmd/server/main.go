// Bank employee virtual assistant API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/leosep/bank-chatbot/internal/api"
	"github.com/leosep/bank-chatbot/internal/assistant"
	"github.com/leosep/bank-chatbot/internal/callback"
	"github.com/leosep/bank-chatbot/internal/config"
	"github.com/leosep/bank-chatbot/internal/corpus"
	"github.com/leosep/bank-chatbot/internal/directory"
	"github.com/leosep/bank-chatbot/internal/llm"
	"github.com/leosep/bank-chatbot/internal/middleware"
	"github.com/leosep/bank-chatbot/internal/requestlog"
	"github.com/leosep/bank-chatbot/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port)

	// Initialize dependencies.
	sessions, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize session database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := sessions.Close(); closeErr != nil {
			slog.Error("Failed to close session store", "error", closeErr)
		}
	}()

	if err := sessions.Ping(context.Background()); err != nil {
		slog.Error("Session database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Session database connected")

	dir, err := directory.NewSQLite(cfg.DirectoryDBPath)
	if err != nil {
		slog.Error("Failed to open employee directory", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := dir.Close(); closeErr != nil {
			slog.Error("Failed to close employee directory", "error", closeErr)
		}
	}()

	logStore, err := requestlog.NewStore(cfg.LogFile)
	if err != nil {
		slog.Error("Failed to initialize request log", "error", err)
		os.Exit(1)
	}

	// Build the corpus index. The index is built once and read-only
	// afterwards; a missing docs directory degrades to the sentinel
	// corpus rather than aborting startup.
	embedder, err := llm.NewGenAIEmbedder(context.Background(), cfg.LLM.GeminiAPIKey, cfg.LLM.EmbedModel)
	if err != nil {
		slog.Error("Failed to create embedding client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := embedder.Close(); closeErr != nil {
			slog.Error("Failed to close embedding client", "error", closeErr)
		}
	}()

	fragments := corpus.LoadDir(cfg.DocsDir)
	index, err := corpus.Build(context.Background(), embedder, fragments)
	if err != nil {
		slog.Error("Failed to build corpus index", "error", err)
		os.Exit(1)
	}
	slog.Info("Corpus index ready", "fragments", index.Len())

	generator, err := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:  cfg.LLM.OpenAIAPIKey,
		BaseURL: cfg.LLM.OpenAIBase,
		Model:   cfg.LLM.ChatModel,
		Timeout: cfg.LLM.Timeout,
	})
	if err != nil {
		slog.Error("Failed to create generation client", "error", err)
		os.Exit(1)
	}

	scheduler := callback.NewClient(cfg.SchedulerURL, cfg.LLM.Timeout)

	engine := assistant.New(assistant.Deps{
		Sessions:  sessions,
		Directory: dir,
		Retriever: index,
		Generator: generator,
		Scheduler: scheduler,
		Log:       logStore,
		RetrieveK: cfg.RetrieveK,
	})

	// Initialize handlers.
	handler := api.NewHandler(engine, logStore)
	wsHandler := api.NewWebSocketHandler(engine)

	// Setup router.
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	handler.RegisterRoutes(r)
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Expired sessions force re-verification on the next message.
	store.StartTTLWorker(ctx, sessions, cfg.SessionTTL)

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

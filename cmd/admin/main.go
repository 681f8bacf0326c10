// Call-management service: receives callback requests from the
// assistant and exposes the call lifecycle and stats API.
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
	"github.com/leosep/bank-chatbot/internal/admin"
	"github.com/leosep/bank-chatbot/internal/calls"
	"github.com/leosep/bank-chatbot/internal/config"
	"github.com/leosep/bank-chatbot/internal/middleware"
	"github.com/leosep/bank-chatbot/internal/requestlog"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.LoadAdmin()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting call-management service", "port", cfg.Port)

	callStore, err := calls.NewStore(cfg.CallsDBPath)
	if err != nil {
		slog.Error("Failed to initialize calls database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := callStore.Close(); closeErr != nil {
			slog.Error("Failed to close calls store", "error", closeErr)
		}
	}()

	logStore, err := requestlog.NewStore(cfg.LogFile)
	if err != nil {
		slog.Error("Failed to open request log", "error", err)
		os.Exit(1)
	}

	handler := admin.NewHandler(callStore, logStore)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))

	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Call-management service listening", "addr", srv.Addr)
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

	slog.Info("Call-management service stopped")
}

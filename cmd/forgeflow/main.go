// Command forgeflow runs the bridge server: a websocket chat endpoint backed
// by the claude CLI, plus the workflow error-callback and auto-fix HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Hamzas-Aigentic/Forgeflow/internal/claude"
	"github.com/Hamzas-Aigentic/Forgeflow/internal/config"
	"github.com/Hamzas-Aigentic/Forgeflow/internal/relay"
	"github.com/Hamzas-Aigentic/Forgeflow/internal/session"
	"github.com/Hamzas-Aigentic/Forgeflow/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	rules := workflow.DefaultRules()
	if cfg.WorkflowRulesPath != "" {
		rules, err = workflow.LoadRules(cfg.WorkflowRulesPath)
		if err != nil {
			slog.Error("failed to load workflow rules", "path", cfg.WorkflowRulesPath, "error", err)
			os.Exit(1)
		}
		slog.Info("loaded workflow rules", "path", cfg.WorkflowRulesPath, "count", len(rules))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := session.NewRegistry()
	sweeper := session.NewSweeper(registry, cfg.SweepInterval, cfg.SessionTimeout)
	sweeper.Start()
	defer sweeper.Stop()

	runner := claude.NewRunner(cfg.ClaudeCommand, workflow.NewExtractor(rules))
	handler := relay.NewHandler(ctx, registry, runner)

	router := chi.NewRouter()
	handler.Mount(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		slog.Info("forgeflow bridge server running", "port", cfg.Port)
		slog.Info("websocket endpoint ready", "path", "/ws")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}

	slog.Info("server closed")
}

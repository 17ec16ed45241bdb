package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dockreport/dockreport/internal/ai"
	"github.com/dockreport/dockreport/internal/config"
	"github.com/dockreport/dockreport/internal/docker"
	"github.com/dockreport/dockreport/internal/handlers"
	"github.com/dockreport/dockreport/internal/inventory"
	"github.com/dockreport/dockreport/internal/task"
	"github.com/dockreport/dockreport/internal/ws"
)

// version is set at build time via -ldflags="-X main.version=..."
var version = "0.4.0"

func main() {
	// Quick healthcheck mode — used by Docker HEALTHCHECK from scratch image.
	// Avoids needing wget/curl in the container. The binary starts in ~10ms,
	// hits /healthz, and exits immediately — no server initialization.
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		port := "5010"
		if v := os.Getenv("DOCKREPORT_PORT"); v != "" {
			port = v
		}
		resp, err := http.Get("http://127.0.0.1:" + port + "/healthz")
		if err != nil || resp.StatusCode != 200 {
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg := config.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))

	slog.Info("starting dockreport",
		"port", cfg.Port,
		"reportsDir", cfg.ReportsDir,
		"dockerBin", cfg.DockerBin,
		"aiConfigured", cfg.AIConfigured(),
		"aiModel", cfg.AIModel,
		"logLevel", cfg.LogLevel,
	)

	// Container runtime CLI adapter
	runtime := docker.NewCLIRuntime(cfg.DockerBin)
	if err := runtime.Ping(context.Background()); err != nil {
		slog.Warn("container runtime not reachable at startup", "err", err)
	}

	// AI backend — model and URL come from configuration only; the server
	// never probes for or substitutes models on its own.
	var aiClient *ai.Client
	if cfg.AIConfigured() {
		aiClient = ai.NewClient(cfg.AIURL, cfg.AIModel, cfg.AIToken, cfg.AITimeout)
	}

	// Task registry and pipeline runner
	registry := task.NewRegistry()
	runner := &task.Runner{
		Registry:   registry,
		Collector:  &inventory.Collector{Runtime: runtime},
		ReportsDir: cfg.ReportsDir,
	}
	if aiClient != nil {
		runner.AI = aiClient
	}

	// WebSocket server — pushes every task status change to clients
	wss := ws.NewServer()
	registry.OnUpdate(func(st task.Status) {
		wss.Broadcast("task", map[string]any{
			"taskId":            st.ID,
			"state":             st.State,
			"message":           st.Message,
			"timestamp":         st.UpdatedAt,
			"artifactAvailable": st.ArtifactAvailable(),
		})
	})

	// HTTP mux
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	app := &handlers.App{
		Runner:   runner,
		Registry: registry,
		Runtime:  runtime,
		AI:       aiClient,
		WS:       wss,
		Version:  version,
	}
	app.Register(mux)

	// Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown. Running pipelines are not awaited: they hold no
	// external resources beyond their own working directory.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
}

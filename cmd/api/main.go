package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/dkozyrev/corpusqa/internal/adapters/http"
	"github.com/dkozyrev/corpusqa/internal/bootstrap"
	"github.com/dkozyrev/corpusqa/internal/config"
	"github.com/dkozyrev/corpusqa/internal/observability/logging"
	"github.com/dkozyrev/corpusqa/internal/observability/metrics"
)

const serviceName = "corpusqa-api"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipelineMetrics := metrics.NewPipelineMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, func(operation string, err error, elapsed time.Duration) {
		pipelineMetrics.ObserveCollaboratorCall(serviceName, operation, err, elapsed)
	})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	router := httpadapter.NewRouter(app.Pipeline, app.Registry, pipelineMetrics, serviceName).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort, "knowledge_backend", cfg.KnowledgeBackend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_error", "error", err)
	}
}

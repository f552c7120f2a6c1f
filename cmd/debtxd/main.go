package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/export"
	"github.com/joseph-ayodele/debt-tracker/internal/jobs"
	"github.com/joseph-ayodele/debt-tracker/internal/llm"
	"github.com/joseph-ayodele/debt-tracker/internal/llm/resolve"
	"github.com/joseph-ayodele/debt-tracker/internal/logger"
	"github.com/joseph-ayodele/debt-tracker/internal/metrics"
	"github.com/joseph-ayodele/debt-tracker/internal/pipeline"
	"github.com/joseph-ayodele/debt-tracker/internal/server"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(2)
	}
	if err := os.MkdirAll(cfg.Server.UploadDir, 0o750); err != nil {
		log.Error("upload dir", "path", cfg.Server.UploadDir, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	completer, err := resolve.Completer(cfg.LLM, log)
	if err != nil {
		log.Error("llm provider", "error", err)
		os.Exit(2)
	}
	extractor := llm.NewChunkExtractor(llm.ExtractorConfig{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		CallTimeout: cfg.LLM.Timeout,
	}, m.InstrumentCompleter(completer), log)

	proc, err := pipeline.Build(cfg, extractor, log)
	if err != nil {
		log.Error("pipeline", "error", err)
		os.Exit(1)
	}
	proc.WithObserver(m)

	store := jobs.NewStore()
	queue := jobs.NewProcessorQueue(proc, store, log,
		jobs.WithWorkers(cfg.Server.Workers),
		jobs.WithQueueSize(cfg.Server.QueueSize),
		jobs.WithProcessTimeout(cfg.Server.JobTimeout),
		jobs.WithModelName(cfg.LLM.Model),
		jobs.WithCleanup(true),
	)

	gin.SetMode(gin.ReleaseMode)
	handler := server.NewHandler(store, queue, export.NewService(log), server.HandlerConfig{
		UploadDir:   cfg.Server.UploadDir,
		MaxUploadMB: cfg.Server.MaxUploadMB,
	}, log)
	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           server.NewRouter(handler, m.Handler(), m.ObserveHTTP, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcSrv, hs := server.NewGRPCServer()
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Error("grpc listen", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}

	go func() {
		log.Info("grpc.serving", "addr", cfg.Server.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			log.Error("grpc serve", "error", err)
			stop()
		}
	}()
	go func() {
		log.Info("http.serving", "addr", cfg.Server.HTTPAddr,
			"provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	hs.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	grpcSrv.GracefulStop()
	log.Info("stopped")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/stormstats/internal/api"
	"github.com/vytor/stormstats/internal/config"
	"github.com/vytor/stormstats/internal/db"
	"github.com/vytor/stormstats/internal/decoder"
	"github.com/vytor/stormstats/internal/jobs"
	"github.com/vytor/stormstats/internal/locale"
	"github.com/vytor/stormstats/internal/logger"
	"github.com/vytor/stormstats/internal/replay"
	"github.com/vytor/stormstats/internal/repository"
	"github.com/vytor/stormstats/internal/repository/postgres"
	"github.com/vytor/stormstats/internal/repository/sqlite"
	"github.com/vytor/stormstats/internal/services"
	"github.com/vytor/stormstats/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)
	defer log.Sync()

	log.Info("===========================================")
	log.Info("StormStats Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_driver=%s", cfg.DBDriver)
	log.Debug("decoder_path=%s", cfg.DecoderPath)
	log.Debug("decoder_timeout=%s", cfg.DecoderTimeout)
	log.Debug("decoder_concurrency=%d", cfg.DecoderConcurrency)
	log.Debug("upload_dir=%s", cfg.UploadDir)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("analysis_worker_count=%d", cfg.AnalysisWorkerCount)
	log.Debug("analysis_queue_size=%d", cfg.AnalysisQueueSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	replayRepo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		closeRepo()
	}()

	// queued jobs do not survive a restart
	if n, err := replayRepo.FailInterrupted(ctx, "analysis interrupted by server restart"); err != nil {
		log.Error("failed to reset interrupted replays: %v", err)
	} else if n > 0 {
		log.Warn("marked %d interrupted replay(s) as failed", n)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Error("failed to create upload dir: %v", err)
		os.Exit(1)
	}

	tables, err := locale.Load(cfg.LocaleFile)
	if err != nil {
		log.Error("failed to load locale tables: %v", err)
		os.Exit(1)
	}

	proc := decoder.NewProcess(cfg.DecoderPath, decoder.WithTimeout(cfg.DecoderTimeout))
	if err := proc.Check(); err != nil {
		log.Warn("decoder not found, uploads will fail until it is installed: %v", err)
	}
	analyzer := replay.NewAnalyzer(decoder.NewLimiter(proc, cfg.DecoderConcurrency), tables)

	// Initialize worker pool
	analysisPool := worker.NewPool(cfg.AnalysisWorkerCount, cfg.AnalysisQueueSize)

	// Initialize services
	analysisService := services.NewAnalysisService(analyzer, replayRepo)
	jobQueue := jobs.NewWorkerQueue(analysisPool, analysisService)
	replayService := services.NewReplayService(replayRepo, jobQueue, analysisService)

	srv := &api.Server{
		ReplayService: replayService,
		DB:            replayRepo,
		Decoder:       proc,
		UploadDir:     cfg.UploadDir,
	}

	analysisPool.Start(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.DecoderTimeout*3 + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping analysis pool")
	analysisPool.Stop()

	log.Info("===========================================")
	log.Info("StormStats Server Stopped")
	log.Info("===========================================")
}

func openRepository(ctx context.Context, cfg config.Config) (repository.ReplayRepository, func(), error) {
	if cfg.DBDriver == "postgres" {
		repo, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return sqlite.NewReplayRepository(database.DB), func() { database.Close() }, nil
}

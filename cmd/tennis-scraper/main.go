// Package main is the entry point for the tennis-stats-scraper application
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/myusername/tennis-stats-scraper/internal/api"
	"github.com/myusername/tennis-stats-scraper/internal/config"
	"github.com/myusername/tennis-stats-scraper/internal/pipeline"
	"github.com/myusername/tennis-stats-scraper/internal/store"
	"github.com/myusername/tennis-stats-scraper/internal/utils"
	"github.com/myusername/tennis-stats-scraper/pkg/parser"
	"github.com/myusername/tennis-stats-scraper/pkg/scraper"
	"github.com/myusername/tennis-stats-scraper/pkg/stats"
)

// Version is set during build using ldflags
var (
	version = "dev"
)

func main() {
	// Define command-line flags
	versionFlag := flag.Bool("version", false, "Print version information and exit")
	onceFlag := flag.Bool("once", false, "Run a single fetch cycle, print the stats and exit")
	outputFlag := flag.String("output", "", "Output directory for snapshot files (default: OUTPUT_DIR or current directory)")
	serveFlag := flag.Bool("serve", true, "Serve the latest snapshot over HTTP while scheduling cycles")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("tennis-stats-scraper version %s\n", version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *outputFlag != "" {
		cfg.OutputDir = *outputFlag
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Tennis stats scraper starting",
		zap.String("version", version),
		zap.String("source", cfg.SourceBaseURL),
		zap.String("store", cfg.Store),
		zap.Int("top_n", cfg.TopN),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshots, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer cleanup()

	loc := cfg.Location()

	var dumpDir string
	if cfg.HTMLDump {
		dumpDir = filepath.Join(cfg.OutputDir, "html")
	}
	client := scraper.NewClient(scraper.ClientConfig{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
		DumpDir:   dumpDir,
		Logger:    logger,
	})

	aggregator := stats.NewAggregator(stats.Config{
		Fetcher:     client,
		Parser:      parser.NewProfileParser(loc),
		Concurrency: cfg.ProfileConcurrency,
		Logger:      logger,
	})

	runner := pipeline.NewRunner(pipeline.RunnerConfig{
		Source:     client,
		Sources:    scraper.Sources{BaseURL: cfg.SourceBaseURL},
		Location:   loc,
		Rankings:   parser.NewRankingReader(cfg.TopN, logger),
		Aggregator: aggregator,
		Store:      snapshots,
		Progress: func(percent int) {
			logger.Debug("Cycle progress", zap.Int("percent", percent))
		},
		Logger: logger,
	})

	scheduler, err := pipeline.NewScheduler(pipeline.SchedulerConfig{
		Runner:       runner,
		Schedule:     cfg.CronSchedule,
		Location:     loc,
		MaxAttempts:  cfg.CycleMaxAttempts,
		RetryDelay:   cfg.CycleRetryDelay,
		CycleTimeout: cfg.CycleTimeout,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("Failed to create scheduler", zap.Error(err))
	}

	// Run once mode
	if *onceFlag {
		snapshot, err := scheduler.RunWithRetry(ctx)
		if err != nil {
			logger.Fatal("Fetch cycle failed", zap.Error(err))
		}
		utils.DisplayStats(os.Stdout, snapshot)
		logger.Info("Single fetch cycle completed successfully")
		return
	}

	scheduler.Start()

	// Also run immediately on startup
	go func() {
		_, err := scheduler.RunWithRetry(ctx)
		switch {
		case errors.Is(err, pipeline.ErrCycleInProgress):
			logger.Info("Initial fetch cycle skipped, scheduled cycle already running")
		case err != nil:
			logger.Error("Initial fetch cycle failed", zap.Error(err))
		}
	}()

	var srv *http.Server
	if *serveFlag {
		srv = &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           api.NewHandler(snapshots, logger).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", zap.String("addr", cfg.ListenAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server failed", zap.Error(err))
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP server shutdown failed", zap.Error(err))
		}
	}
	scheduler.Stop(shutdownCtx)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	noop := func() {}
	switch cfg.Store {
	case config.StoreRedis:
		client, err := store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return store.NewRedisStore(client, cfg.RedisPrefix), func() { client.Close() }, nil
	case config.StoreMemory:
		return store.NewMemoryStore(), noop, nil
	default:
		fs, err := store.NewFileStore(cfg.OutputDir)
		if err != nil {
			return nil, noop, err
		}
		return fs, noop, nil
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/frontier-crawler/internal/api"
	"github.com/JakeFAU/frontier-crawler/internal/clock/system"
	"github.com/JakeFAU/frontier-crawler/internal/config"
	"github.com/JakeFAU/frontier-crawler/internal/crawler"
	"github.com/JakeFAU/frontier-crawler/internal/extract"
	"github.com/JakeFAU/frontier-crawler/internal/fetcher"
	"github.com/JakeFAU/frontier-crawler/internal/fetcher/collyfetch"
	"github.com/JakeFAU/frontier-crawler/internal/fetcher/headless"
	"github.com/JakeFAU/frontier-crawler/internal/id/uuid"
	"github.com/JakeFAU/frontier-crawler/internal/logging"
	"github.com/JakeFAU/frontier-crawler/internal/orchestrator"
	"github.com/JakeFAU/frontier-crawler/internal/policy/ratelimit"
	"github.com/JakeFAU/frontier-crawler/internal/progress"
	"github.com/JakeFAU/frontier-crawler/internal/progress/sinks"
	"github.com/JakeFAU/frontier-crawler/internal/robots"
	"github.com/JakeFAU/frontier-crawler/internal/storage/memory"
	"github.com/JakeFAU/frontier-crawler/internal/storage/postgres"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the crawler service with its REST API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	promSink, err := sinks.NewPrometheusSink(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register progress metrics: %w", err)
	}
	history := sinks.NewHistorySink(cfg.Progress.HistoryLimit)
	hub := progress.NewHub(progress.Config{
		BufferSize:     cfg.Progress.BufferSize,
		MaxBatchEvents: cfg.Progress.MaxBatchEvents,
		MaxBatchWait:   time.Duration(cfg.Progress.MaxBatchWaitMs) * time.Millisecond,
		Logger:         logger,
	}, sinks.NewLogSink(logger), promSink, history)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hub.Close(flushCtx); err != nil {
			logger.Warn("progress hub close", zap.Error(err))
		}
	}()

	robotsPolicy := robots.NewEnforcer(cfg.Crawler.RespectRobots, cfg.Crawler.UserAgent, logger)
	extractor := extract.New(robotsPolicy)

	static := collyfetch.New(collyfetch.Config{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
	})
	var headlessFetcher fetcher.PageFetcher
	if cfg.Headless.Enabled {
		chrome, err := headless.NewChromedp(headless.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.Crawler.UserAgent,
			NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		})
		if err != nil {
			return fmt.Errorf("start headless fetcher: %w", err)
		}
		defer chrome.Close()
		headlessFetcher = chrome
	}
	hybrid := fetcher.NewHybrid(static, headlessFetcher, logger)

	store, err := buildTaskStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	orch := orchestrator.New(
		orchestrator.Config{
			PausePoll:     time.Duration(cfg.Crawler.PausePollSeconds) * time.Second,
			SnapshotEvery: cfg.Crawler.SnapshotEvery,
			RenderJS:      cfg.Crawler.RenderJS,
			FastResponse:  time.Duration(cfg.Crawler.FastResponseMs) * time.Millisecond,
		},
		orchestrator.Collaborators{
			Fetcher:    hybrid,
			Metadata:   extractor,
			Links:      extractor,
			Pdfs:       extractor,
			Politeness: robotsPolicy,
			Store:      store,
			Events:     hub,
			Limiter:    ratelimit.New(),
			Clock:      system.New(),
			IDs:        uuid.New(),
			Logger:     logger,
		},
	)

	apiOpts := api.Options{RequestTimeout: cfg.RequestTimeout(), History: history}
	if cfg.Auth.Enabled {
		apiOpts.APIKey = cfg.Auth.APIKey
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewServer(orch, logger, apiOpts).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// buildTaskStore selects Postgres when a DSN is configured, otherwise the
// in-memory store.
func buildTaskStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (crawler.TaskStore, error) {
	if cfg.DB.DSN == "" {
		logger.Info("no database configured, using in-memory task store")
		return memory.NewTaskStore(), nil
	}
	store, err := postgres.NewTaskStore(ctx, postgres.TaskStoreConfig{
		DSN:             cfg.DB.DSN,
		MaxConns:        cfg.DB.MaxConns,
		MinConns:        cfg.DB.MinConns,
		MaxConnLifetime: time.Duration(cfg.DB.ConnLifetimeMin) * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("connect task store: %w", err)
	}
	logger.Info("postgres task store connected")
	return store, nil
}

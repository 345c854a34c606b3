package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/github-ranking/cfg"
	"github.com/thep200/github-ranking/internal/crawler"
	"github.com/thep200/github-ranking/internal/scheduler"
	"github.com/thep200/github-ranking/pkg/log"
)

func main() {
	configPath := flag.String("config", "cfg/yaml", "Directory containing mode.yaml")
	schedule := flag.String("schedule", "", `Cron spec for repeated runs, e.g. "@every 24h" (default: app.schedule, empty runs once)`)
	statusPort := flag.Int("status-port", 0, "Port for the run status API while scheduled (0 disables)")
	flag.Parse()

	if err := run(*configPath, *schedule, *statusPort); err != nil {
		fmt.Fprintf(os.Stderr, "github-ranking: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, schedule string, statusPort int) error {
	loader, err := cfg.NewViperLoader()
	if err != nil {
		return err
	}
	loader.ConfigPath = configPath
	config, err := loader.Load()
	if err != nil {
		return err
	}

	logger, err := log.NewZapLogger(config.App.Env, config.App.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, cleanup, err := crawler.FactoryCrawler(ctx, logger, config)
	if err != nil {
		logger.Error(ctx, "Failed to build pipeline: %v", err)
		return err
	}
	defer cleanup()

	if schedule == "" {
		schedule = config.App.Schedule
	}
	if schedule == "" {
		logger.Info(ctx, "Starting github ranking fetch %s", config.App.Version)
		_, err := pipeline.Crawl(ctx)
		return err
	}

	s := scheduler.New(logger, pipeline, schedule)
	if err := s.Start(ctx); err != nil {
		return err
	}

	var statusServer *http.Server
	if statusPort > 0 {
		statusServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", statusPort),
			Handler:           s.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info(ctx, "Status API listening on %s", statusServer.Addr)
			if err := statusServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "Status API stopped: %v", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info(context.Background(), "Received shutdown signal, waiting for the current run to stop...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if statusServer != nil {
		_ = statusServer.Shutdown(shutdownCtx)
	}
	s.Stop(shutdownCtx)
	return nil
}

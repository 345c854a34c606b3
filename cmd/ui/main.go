package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/github-ranking/cfg"
	"github.com/thep200/github-ranking/internal/model"
	"github.com/thep200/github-ranking/internal/ranking"
	"github.com/thep200/github-ranking/internal/ui"
	"github.com/thep200/github-ranking/pkg/db"
	applog "github.com/thep200/github-ranking/pkg/log"
)

func main() {
	configPath := flag.String("config", "cfg/yaml", "Directory containing mode.yaml")
	port := flag.Int("port", 0, "Port for the ranking server (default: server.port)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "github-ranking ui: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int) error {
	loader, err := cfg.NewViperLoader()
	if err != nil {
		return err
	}
	loader.ConfigPath = configPath
	loader.Watch = true
	config, err := loader.Load()
	if err != nil {
		return err
	}

	logger, err := applog.NewZapLogger(config.App.Env, config.App.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()
	if port == 0 {
		port = config.Server.Port
	}

	rankingLoader := ranking.NewLoader(logger, config.Server.SiteUrl, config.Filter.MarkdownAuthors)
	loader.RegisterConfigChangeCallback(func(c *cfg.Config) {
		rankingLoader.SetMarkdownAuthors(c.Filter.MarkdownAuthors)
		logger.Info(ctx, "Markdown author list reloaded (%d authors)", len(c.Filter.MarkdownAuthors))
	})

	// Profile API chỉ bật khi có MySQL lưu trữ
	var handler *ui.Handler
	if config.Mysql.Enabled {
		mysql, err := db.NewMysql(config)
		if err != nil {
			return err
		}
		defer mysql.Close()
		profileMd, _ := model.NewProfile(config, logger, mysql)
		handler = ui.NewHandler(logger, config, rankingLoader, profileMd)
	} else {
		handler = ui.NewHandler(logger, config, rankingLoader, nil)
	}

	server, err := ui.NewServer(logger, config, handler, port)
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during server shutdown: %v", err)
		return err
	}

	logger.Info(ctx, "Server shut down gracefully")
	return nil
}

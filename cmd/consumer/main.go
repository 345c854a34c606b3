package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/github-ranking/cfg"
	"github.com/thep200/github-ranking/internal/model"
	"github.com/thep200/github-ranking/pkg/db"
	"github.com/thep200/github-ranking/pkg/kafka"
	"github.com/thep200/github-ranking/pkg/log"
)

const (
	batchSize    = 100
	batchTimeout = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "cfg/yaml", "Directory containing mode.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "github-ranking consumer: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
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

	mysql, err := db.NewMysql(config)
	if err != nil {
		return err
	}
	defer mysql.Close()

	profileMd, _ := model.NewProfile(config, logger, mysql)
	if err := mysql.Migrate(&model.Profile{}); err != nil {
		logger.Error(ctx, "Failed to migrate profiles table: %v", err)
		return err
	}

	consumer, err := kafka.NewConsumer(config, logger, config.Kafka.Topic, config.Kafka.GroupID)
	if err != nil {
		return err
	}

	messages := make(chan model.DeveloperMessage, batchSize*2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		processBatched(ctx, messages, batchSize, batchTimeout, logger, profileMd)
	}()

	consumer.RegisterHandler(func(ctx context.Context, key string, value []byte) error {
		var msg model.DeveloperMessage
		if err := json.Unmarshal(value, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal developer message %s: %w", key, err)
		}
		select {
		case messages <- msg:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	logger.Info(ctx, "Developer archive consumer started on topic %s", config.Kafka.Topic)
	if err := consumer.Start(ctx); err != nil {
		logger.Error(ctx, "Consumer error: %v", err)
	}

	<-done
	logger.Info(context.Background(), "Consumer shut down gracefully")
	return nil
}

package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/thep200/github-ranking/cfg"
	"github.com/thep200/github-ranking/pkg/log"
)

// Handler xử lý value của một message; key là login của developer.
type Handler func(ctx context.Context, key string, value []byte) error

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	Config  *cfg.Config
	Logger  log.Logger
	topic   string
	reader  messageReader
	handler Handler
}

func NewConsumer(config *cfg.Config, logger log.Logger, topic, groupID string) (*Consumer, error) {
	if len(config.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Kafka.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3,        // 10KB
		MaxBytes:       10e6,        // 10MB
		MaxWait:        time.Second, // Maximum amount of time to wait for new data
		StartOffset:    kafka.FirstOffset,
		RetentionTime:  7 * 24 * time.Hour,
		CommitInterval: time.Second,
	})

	return &Consumer{
		Config: config,
		Logger: logger,
		topic:  topic,
		reader: reader,
	}, nil
}

func (c *Consumer) RegisterHandler(handler Handler) {
	c.handler = handler
}

// Start đọc message cho tới khi ctx bị huỷ
func (c *Consumer) Start(ctx context.Context) error {
	if c.handler == nil {
		return fmt.Errorf("no handler registered for topic %s", c.topic)
	}
	c.Logger.Info(ctx, "Starting Kafka consumer for topic: %s", c.topic)

	for {
		select {
		case <-ctx.Done():
			return c.reader.Close()
		default:
		}

		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return c.reader.Close()
			}
			c.Logger.Error(ctx, "Error reading message: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		key := string(message.Key)
		if err := c.handler(ctx, key, message.Value); err != nil {
			c.Logger.Error(ctx, "Error handling message with key %s: %v", key, err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

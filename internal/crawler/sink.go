package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/thep200/github-ranking/internal/model"
	"github.com/thep200/github-ranking/pkg/kafka"
	"github.com/thep200/github-ranking/pkg/log"
)

// Sink nhận danh sách developer sau khi artifact đã được ghi. Lỗi của sink không làm hỏng lần chạy.
type Sink interface {
	Name() string
	Publish(ctx context.Context, runID string, updateTime time.Time, developers []model.Developer) error
	Close() error
}

type batchPublisher interface {
	PublishBatch(ctx context.Context, messages []kafka.Message) error
	Close() error
}

// KafkaSink gửi mỗi developer thành một message, key là login
type KafkaSink struct {
	Logger    log.Logger
	producer  batchPublisher
	batchSize int
}

func NewKafkaSink(logger log.Logger, producer batchPublisher) *KafkaSink {
	return &KafkaSink{
		Logger:    logger,
		producer:  producer,
		batchSize: 100,
	}
}

func (s *KafkaSink) Name() string {
	return "kafka"
}

func (s *KafkaSink) Publish(ctx context.Context, runID string, updateTime time.Time, developers []model.Developer) error {
	stamp := model.FormatISO(updateTime)
	for start := 0; start < len(developers); start += s.batchSize {
		chunk := developers[start:min(start+s.batchSize, len(developers))]
		messages := make([]kafka.Message, 0, len(chunk))
		for _, dev := range chunk {
			messages = append(messages, kafka.Message{
				Key: dev.Login,
				Value: model.DeveloperMessage{
					RunID:      runID,
					UpdateTime: stamp,
					Developer:  dev,
				},
			})
		}
		if err := s.producer.PublishBatch(ctx, messages); err != nil {
			return fmt.Errorf("publish developers %d-%d: %w", start, start+len(chunk), err)
		}
	}

	s.Logger.Info(ctx, "Published %d developers to kafka", len(developers))
	return nil
}

func (s *KafkaSink) Close() error {
	return s.producer.Close()
}

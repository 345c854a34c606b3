package main

import (
	"context"
	"time"

	"github.com/thep200/github-ranking/internal/model"
	"github.com/thep200/github-ranking/pkg/log"
)

type batchSaver interface {
	CreateBatch(ctx context.Context, messages []model.DeveloperMessage) error
}

// processBatched ghi theo lô khi đủ batchSize hoặc sau batchTimeout; khi ctx bị huỷ thì ghi nốt phần còn lại.
func processBatched(ctx context.Context, messages <-chan model.DeveloperMessage, batchSize int,
	batchTimeout time.Duration, logger log.Logger, saver batchSaver) {

	var batch []model.DeveloperMessage
	timer := time.NewTimer(batchTimeout)
	defer timer.Stop()

	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		logger.Info(ctx, "Processing batch of %d developers", len(batch))
		if err := saver.CreateBatch(ctx, batch); err != nil {
			logger.Error(ctx, "Failed to save batch of developers: %v", err)
		}
		batch = nil
	}

	for {
		select {
		case <-ctx.Done():
			// ghi nốt các message đã nằm trong channel
		drain:
			for {
				select {
				case msg := <-messages:
					batch = append(batch, msg)
				default:
					break drain
				}
			}
			flush(context.WithoutCancel(ctx))
			return

		case msg := <-messages:
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				flush(ctx)
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(batchTimeout)
			}

		case <-timer.C:
			flush(ctx)
			timer.Reset(batchTimeout)
		}
	}
}

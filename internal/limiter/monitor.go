package limiter

import (
	"context"
	"time"

	githubapi "github.com/thep200/github-ranking/internal/github_api"
	"github.com/thep200/github-ranking/internal/metrics"
	"github.com/thep200/github-ranking/pkg/log"
)

// Status là trạng thái quota hiện tại của API
type Status struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
}

type statusSource interface {
	RateLimit(ctx context.Context) (*githubapi.RateLimitResponse, error)
}

// Monitor đọc quota còn lại và báo cho caller khi nào cần dừng
type Monitor struct {
	source statusSource
	logger log.Logger
	sleep  SleepFunc
	now    func() time.Time
}

func NewMonitor(source statusSource, logger log.Logger) *Monitor {
	return &Monitor{
		source: source,
		logger: logger,
		sleep:  Sleep,
		now:    time.Now,
	}
}

// CheckStatus trả về nil khi không lấy được trạng thái; caller coi như chưa biết và tiếp tục.
func (m *Monitor) CheckStatus(ctx context.Context) *Status {
	resp, err := m.source.RateLimit(ctx)
	if err != nil {
		m.logger.Warn(ctx, "Cannot read rate limit status: %v", err)
		return nil
	}

	core := resp.Resources.Core
	status := &Status{
		Remaining: core.Remaining,
		Limit:     core.Limit,
		ResetAt:   time.Unix(core.Reset, 0),
	}
	metrics.RateLimitRemaining.Set(float64(status.Remaining))

	minutes := int(status.ResetAt.Sub(m.now()).Round(time.Minute) / time.Minute)
	m.logger.Info(ctx, "API rate limit: %d/%d remaining, reset at %s (~%d minutes)",
		status.Remaining, status.Limit, status.ResetAt.Format(time.RFC3339), minutes)
	return status
}

// WarnIfLow chỉ cảnh báo, dùng lúc bắt đầu chạy
func (m *Monitor) WarnIfLow(ctx context.Context, threshold int) *Status {
	status := m.CheckStatus(ctx)
	if status == nil || status.Remaining >= threshold {
		return status
	}

	m.logger.Warn(ctx, "API quota is low (%d/%d), requests may be throttled", status.Remaining, status.Limit)
	if until := status.ResetAt.Sub(m.now()); until < 30*time.Minute {
		m.logger.Notice(ctx, "Consider waiting %v for the quota to reset", until.Round(time.Minute))
	}
	return status
}

// WaitIfBelow ngủ tới thời điểm reset (+1s) nếu quota còn lại dưới threshold
func (m *Monitor) WaitIfBelow(ctx context.Context, threshold int) error {
	status := m.CheckStatus(ctx)
	if status == nil || status.Remaining >= threshold {
		return nil
	}

	wait := status.ResetAt.Sub(m.now()) + time.Second
	if wait <= 0 {
		return nil
	}
	m.logger.Warn(ctx, "API quota below %d, waiting %v until reset", threshold, wait.Round(time.Second))
	return m.sleep(ctx, wait)
}

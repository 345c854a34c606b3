package limiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Giới hạn số lượng request trong 1 giây
type RateLimiter struct {
	limiter *rate.Limiter
}

func NewRateLimiter(maxRequests int) *RateLimiter {
	if maxRequests <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(maxRequests), maxRequests),
	}
}

// Allow kiểm tra xem có thể thực hiện request mới ngay lúc này hay không
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Wait chặn tới khi được phép gửi request tiếp theo
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// SleepFunc là cách tạm dừng có thể thay thế trong test
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep dừng d hoặc tới khi ctx bị huỷ
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

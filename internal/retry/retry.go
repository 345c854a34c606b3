// Package retry chạy lại request GitHub theo ba quyết định: backoff, chờ reset quota, hoặc dừng hẳn.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	githubapi "github.com/thep200/github-ranking/internal/github_api"
	"github.com/thep200/github-ranking/internal/limiter"
	"github.com/thep200/github-ranking/internal/metrics"
	"github.com/thep200/github-ranking/pkg/log"
)

var ErrExhaustedRetries = errors.New("retries exhausted")

// Chờ reset quá 1 giờ thì quay về backoff thường
const maxResetWait = time.Hour

type Action int

const (
	Backoff Action = iota
	WaitReset
	Fatal
)

func (a Action) String() string {
	switch a {
	case Backoff:
		return "backoff"
	case WaitReset:
		return "wait_reset"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

type Decision struct {
	Action Action
	Wait   time.Duration
}

// Classify quyết định sau lần thất bại thứ attempt (tính từ 1).
// Backoff chờ 2^attempt giây, chưa gồm jitter.
func Classify(err error, attempt int, now time.Time) Decision {
	if errors.Is(err, context.Canceled) {
		return Decision{Action: Fatal}
	}

	var secondary *githubapi.SecondaryRateLimitError
	if errors.As(err, &secondary) {
		return Decision{Action: Fatal}
	}

	var primary *githubapi.RateLimitError
	if errors.As(err, &primary) && !primary.Reset.IsZero() {
		wait := primary.Reset.Sub(now) + time.Second
		if wait > 0 && wait < maxResetWait {
			return Decision{Action: WaitReset, Wait: wait}
		}
	}

	return Decision{Action: Backoff, Wait: time.Duration(1<<attempt) * time.Second}
}

type Executor struct {
	MaxRetries int
	Logger     log.Logger

	sleep  limiter.SleepFunc
	now    func() time.Time
	jitter func() time.Duration
}

func NewExecutor(maxRetries int, logger log.Logger) *Executor {
	return &Executor{
		MaxRetries: maxRetries,
		Logger:     logger,
		sleep:      limiter.Sleep,
		now:        time.Now,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(time.Second)))
		},
	}
}

// Do gọi op tối đa MaxRetries+1 lần tính slot; chờ reset quota không tính slot.
func Do[T any](ctx context.Context, e *Executor, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	retries := 0

	for {
		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		decision := Classify(err, retries+1, e.now())
		switch decision.Action {
		case Fatal:
			metrics.RetriesTotal.WithLabelValues(Fatal.String()).Inc()
			return zero, err

		case WaitReset:
			metrics.RetriesTotal.WithLabelValues(WaitReset.String()).Inc()
			e.Logger.Warn(ctx, "API rate limit reached, waiting %v for reset", decision.Wait.Round(time.Second))
			if errSleep := e.sleep(ctx, decision.Wait); errSleep != nil {
				return zero, errSleep
			}
			continue
		}

		retries++
		if retries > e.MaxRetries {
			metrics.RetriesTotal.WithLabelValues("exhausted").Inc()
			return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhaustedRetries, retries, err)
		}

		wait := decision.Wait + e.jitter()
		metrics.RetriesTotal.WithLabelValues(Backoff.String()).Inc()
		e.Logger.Warn(ctx, "Request failed (%d/%d): %v, retrying in %v", retries, e.MaxRetries, err, wait.Round(time.Millisecond))
		if errSleep := e.sleep(ctx, wait); errSleep != nil {
			return zero, errSleep
		}
	}
}

package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	githubapi "github.com/thep200/github-ranking/internal/github_api"
	"github.com/thep200/github-ranking/pkg/log"
)

var now = time.Unix(1_700_000_000, 0)

func newTestExecutor(maxRetries int) (*Executor, *[]time.Duration) {
	slept := &[]time.Duration{}
	e := NewExecutor(maxRetries, log.NewNopLogger())
	e.now = func() time.Time { return now }
	e.jitter = func() time.Duration { return 0 }
	e.sleep = func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return e, slept
}

func rateLimited(reset time.Time) error {
	return &githubapi.RateLimitError{
		APIError: &githubapi.APIError{StatusCode: http.StatusForbidden, Message: "API rate limit exceeded"},
		Reset:    reset,
	}
}

func TestDo_ExhaustsAfterMaxRetriesPlusOne(t *testing.T) {
	for _, maxRetries := range []int{0, 1, 3} {
		t.Run(fmt.Sprintf("max_%d", maxRetries), func(t *testing.T) {
			e, _ := newTestExecutor(maxRetries)
			boom := errors.New("boom")
			calls := 0

			_, err := Do(context.Background(), e, func(ctx context.Context) (int, error) {
				calls++
				return 0, boom
			})

			assert.Equal(t, maxRetries+1, calls)
			assert.ErrorIs(t, err, ErrExhaustedRetries)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestDo_BackoffIsExponential(t *testing.T) {
	e, slept := newTestExecutor(3)
	_, _ = Do(context.Background(), e, func(ctx context.Context) (string, error) {
		return "", errors.New("flaky")
	})
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, *slept)
}

func TestDo_PrimaryRateLimitWaitsWithoutSlot(t *testing.T) {
	e, slept := newTestExecutor(0)
	calls := 0

	value, err := Do(context.Background(), e, func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", rateLimited(now.Add(4 * time.Second))
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", value)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{5 * time.Second}, *slept)
}

func TestDo_ResetWaitThenExhausts(t *testing.T) {
	e, _ := newTestExecutor(1)
	calls := 0

	_, err := Do(context.Background(), e, func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, rateLimited(now.Add(4 * time.Second))
		}
		return 0, errors.New("boom")
	})

	assert.ErrorIs(t, err, ErrExhaustedRetries)
	assert.Equal(t, 3, calls)
}

func TestDo_SecondaryRateLimitIsFatal(t *testing.T) {
	e, slept := newTestExecutor(3)
	calls := 0
	secondary := &githubapi.SecondaryRateLimitError{
		APIError: &githubapi.APIError{StatusCode: http.StatusForbidden, Message: "secondary rate limit"},
	}

	_, err := Do(context.Background(), e, func(ctx context.Context) (int, error) {
		calls++
		return 0, secondary
	})

	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
	var target *githubapi.SecondaryRateLimitError
	assert.True(t, errors.As(err, &target))
	assert.NotErrorIs(t, err, ErrExhaustedRetries)
}

func TestDo_CancelledContextStops(t *testing.T) {
	e, _ := newTestExecutor(3)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := Do(ctx, e, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("interrupted")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Action
		wait time.Duration
	}{
		{name: "generic", err: errors.New("x"), want: Backoff, wait: 2 * time.Second},
		{name: "reset in 4s", err: rateLimited(now.Add(4 * time.Second)), want: WaitReset, wait: 5 * time.Second},
		{name: "reset already passed", err: rateLimited(now.Add(-5 * time.Second)), want: Backoff, wait: 2 * time.Second},
		{name: "reset beyond an hour", err: rateLimited(now.Add(2 * time.Hour)), want: Backoff, wait: 2 * time.Second},
		{name: "reset unknown", err: rateLimited(time.Time{}), want: Backoff, wait: 2 * time.Second},
		{name: "cancelled", err: fmt.Errorf("wrapped: %w", context.Canceled), want: Fatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(tt.err, 1, now)
			assert.Equal(t, tt.want, d.Action)
			assert.Equal(t, tt.wait, d.Wait)
		})
	}
}

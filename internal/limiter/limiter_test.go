package limiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	githubapi "github.com/thep200/github-ranking/internal/github_api"
	"github.com/thep200/github-ranking/pkg/log"
)

type fakeSource struct {
	resp *githubapi.RateLimitResponse
	err  error
}

func (f *fakeSource) RateLimit(ctx context.Context) (*githubapi.RateLimitResponse, error) {
	return f.resp, f.err
}

func statusResponse(remaining int, reset time.Time) *githubapi.RateLimitResponse {
	resp := &githubapi.RateLimitResponse{}
	resp.Resources.Core.Limit = 5000
	resp.Resources.Core.Remaining = remaining
	resp.Resources.Core.Reset = reset.Unix()
	return resp
}

func newTestMonitor(src statusSource, now time.Time) (*Monitor, *[]time.Duration) {
	slept := &[]time.Duration{}
	m := NewMonitor(src, log.NewNopLogger())
	m.now = func() time.Time { return now }
	m.sleep = func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return m, slept
}

func TestMonitor_CheckStatusUnavailable(t *testing.T) {
	m, _ := newTestMonitor(&fakeSource{err: errors.New("boom")}, time.Now())
	assert.Nil(t, m.CheckStatus(context.Background()))
}

func TestMonitor_WaitIfBelow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("sleeps until reset plus one second", func(t *testing.T) {
		m, slept := newTestMonitor(&fakeSource{resp: statusResponse(5, now.Add(2*time.Minute))}, now)
		require.NoError(t, m.WaitIfBelow(context.Background(), 10))
		assert.Equal(t, []time.Duration{2*time.Minute + time.Second}, *slept)
	})

	t.Run("enough quota", func(t *testing.T) {
		m, slept := newTestMonitor(&fakeSource{resp: statusResponse(10, now.Add(time.Minute))}, now)
		require.NoError(t, m.WaitIfBelow(context.Background(), 10))
		assert.Empty(t, *slept)
	})

	t.Run("status unavailable proceeds", func(t *testing.T) {
		m, slept := newTestMonitor(&fakeSource{err: errors.New("down")}, now)
		require.NoError(t, m.WaitIfBelow(context.Background(), 10))
		assert.Empty(t, *slept)
	})
}

func TestMonitor_WarnIfLowNeverSleeps(t *testing.T) {
	now := time.Now()
	m, slept := newTestMonitor(&fakeSource{resp: statusResponse(3, now.Add(10*time.Minute))}, now)

	status := m.WarnIfLow(context.Background(), 100)
	require.NotNil(t, status)
	assert.Equal(t, 3, status.Remaining)
	assert.Empty(t, *slept)
}

func TestRateLimiter(t *testing.T) {
	unlimited := NewRateLimiter(0)
	for i := 0; i < 100; i++ {
		assert.True(t, unlimited.Allow())
	}

	limited := NewRateLimiter(2)
	assert.True(t, limited.Allow())
	assert.True(t, limited.Allow())
	assert.False(t, limited.Allow())
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}

package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	crawlinfo "github.com/thep200/github-ranking/internal/crawl_info"
	"github.com/thep200/github-ranking/pkg/log"
)

type blockingRunner struct {
	calls   atomic.Int32
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (r *blockingRunner) Crawl(ctx context.Context) (*crawlinfo.Info, error) {
	r.calls.Add(1)
	r.once.Do(func() { close(r.started) })
	<-r.release
	info := crawlinfo.New("run", time.Now())
	info.Finish(time.Now(), nil)
	return info, nil
}

func TestScheduler_RunsImmediatelyWithoutOverlap(t *testing.T) {
	r := &blockingRunner{release: make(chan struct{}), started: make(chan struct{})}
	s := New(log.NewNopLogger(), r, "@every 1s")

	require.NoError(t, s.Start(context.Background()))
	select {
	case <-r.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first run did not start")
	}

	// ticks while the first run is blocked are skipped
	time.Sleep(2500 * time.Millisecond)
	assert.Equal(t, int32(1), r.calls.Load())

	close(r.release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)

	last, ok := s.History.Last()
	require.True(t, ok)
	assert.True(t, last.Succeeded())
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := New(log.NewNopLogger(), &blockingRunner{}, "not a spec")
	assert.Error(t, s.Start(context.Background()))
}

type failingRunner struct{}

func (failingRunner) Crawl(ctx context.Context) (*crawlinfo.Info, error) {
	info := crawlinfo.New("failed", time.Now())
	err := errors.New("boom")
	info.Finish(time.Now(), err)
	return info, err
}

func TestScheduler_RecordsFailedRun(t *testing.T) {
	s := New(log.NewNopLogger(), failingRunner{}, "@every 1h")
	s.run(context.Background())

	last, ok := s.History.Last()
	require.True(t, ok)
	assert.Equal(t, "boom", last.Error)
}

func TestStatusHandler(t *testing.T) {
	r := &blockingRunner{release: make(chan struct{}), started: make(chan struct{})}
	s := New(log.NewNopLogger(), r, "@every 1h")
	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Stop(ctx)
	}()
	<-r.started

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/runs/status")
	require.NoError(t, err)
	var status Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()
	assert.True(t, status.IsRunning)
	assert.Equal(t, "@every 1h", status.Spec)

	resp, err = http.Post(srv.URL+"/api/runs/trigger", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(r.release)
	require.Eventually(t, func() bool { return !s.Status().IsRunning }, 2*time.Second, 10*time.Millisecond)

	resp, err = http.Get(srv.URL + "/api/runs/")
	require.NoError(t, err)
	var runs []crawlinfo.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	resp.Body.Close()
	assert.Len(t, runs, 1)
}

func TestScheduler_StopWaitsForImmediateRun(t *testing.T) {
	r := &blockingRunner{release: make(chan struct{}), started: make(chan struct{})}
	s := New(log.NewNopLogger(), r, "@every 1h")
	require.NoError(t, s.Start(context.Background()))
	<-r.started

	go func() {
		time.Sleep(200 * time.Millisecond)
		close(r.release)
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)

	// Stop chỉ trả về khi lần chạy đầu đã xong
	require.Len(t, s.History.Runs(), 1)
	assert.False(t, s.Trigger(), "no runs after stop")
}

// gatedRunner chặn mỗi lần chạy cho tới khi nhận một token
type gatedRunner struct {
	calls atomic.Int32
	gate  chan struct{}
}

func (r *gatedRunner) Crawl(ctx context.Context) (*crawlinfo.Info, error) {
	r.calls.Add(1)
	<-r.gate
	info := crawlinfo.New("run", time.Now())
	info.Finish(time.Now(), nil)
	return info, nil
}

func TestScheduler_ConcurrentTriggersStartOneRun(t *testing.T) {
	r := &gatedRunner{gate: make(chan struct{})}
	s := New(log.NewNopLogger(), r, "@every 1h")
	require.NoError(t, s.Start(context.Background()))
	r.gate <- struct{}{}
	require.Eventually(t, func() bool { return !s.Status().IsRunning }, 2*time.Second, 10*time.Millisecond)

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Trigger() {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), accepted.Load())

	r.gate <- struct{}{}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.Equal(t, int32(2), r.calls.Load())
	assert.Len(t, s.History.Runs(), 2)
}

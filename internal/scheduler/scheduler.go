// Package scheduler chạy pipeline định kỳ theo lịch cron, không bao giờ chồng hai lần chạy.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	crawlinfo "github.com/thep200/github-ranking/internal/crawl_info"
	"github.com/thep200/github-ranking/pkg/log"
)

type runner interface {
	Crawl(ctx context.Context) (*crawlinfo.Info, error)
}

type Scheduler struct {
	Logger  log.Logger
	History *crawlinfo.History

	cron    *cron.Cron
	runner  runner
	spec    string
	entryID cron.EntryID

	mu        sync.RWMutex
	running   bool
	pending   bool
	stopped   bool
	startedAt time.Time
	// các lần chạy ngoài lịch cron, Stop phải chờ cả chúng
	launched sync.WaitGroup
}

// New: spec theo cú pháp cron 5 trường hoặc mô tả như "@every 24h", "@daily".
func New(logger log.Logger, r runner, spec string) *Scheduler {
	cronLogger := cronLogger{logger: logger}
	return &Scheduler{
		Logger:  logger,
		History: crawlinfo.NewHistory(20),
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		runner: r,
		spec:   spec,
	}
}

// Start đăng ký job, chạy ngay một lần rồi để cron tiếp quản.
func (s *Scheduler) Start(ctx context.Context) error {
	id, err := s.cron.AddFunc(s.spec, func() {
		s.run(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.spec, err)
	}
	s.entryID = id

	s.cron.Start()
	s.Logger.Info(ctx, "Scheduler started, spec: %s, next run at %s", s.spec, s.cron.Entry(id).Next)

	s.launch()
	return nil
}

// Trigger chạy ngay ngoài lịch; false nếu đang có lần chạy khác hoặc scheduler đã dừng
func (s *Scheduler) Trigger() bool {
	return s.launch()
}

// launch giữ chỗ pending dưới lock nên hai lần gọi đồng thời chỉ một lần được nhận.
// WrappedJob đi qua SkipIfStillRunning nên không chồng với lần chạy theo lịch.
func (s *Scheduler) launch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.pending || s.stopped || s.entryID == 0 {
		return false
	}
	s.pending = true

	job := s.cron.Entry(s.entryID).WrappedJob
	s.launched.Add(1)
	go func() {
		defer s.launched.Done()
		job.Run()

		s.mu.Lock()
		s.pending = false
		s.mu.Unlock()
	}()
	return true
}

// Stop chờ lần chạy đang dở kết thúc hoặc ctx hết hạn
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.launched.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.Logger.Info(ctx, "Scheduler stopped")
	case <-ctx.Done():
		s.Logger.Warn(ctx, "Scheduler stop timed out with a run still in progress")
	}
}

func (s *Scheduler) run(ctx context.Context) {
	s.mu.Lock()
	s.running, s.startedAt = true, time.Now()
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()
	if ctx.Err() != nil {
		return
	}

	info, err := s.runner.Crawl(ctx)
	s.History.Add(info)
	if err != nil {
		s.Logger.Error(ctx, "Scheduled run failed: %v", err)
	}
	if s.entryID != 0 {
		s.Logger.Info(ctx, "Next run at %s", s.cron.Entry(s.entryID).Next)
	}
}

// cronLogger chuyển log của cron sang log.Logger
type cronLogger struct {
	logger log.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(context.Background(), "cron: %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(context.Background(), "cron: %s: %v %v", msg, err, keysAndValues)
}

package crawler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/thep200/github-ranking/cfg"
	"github.com/thep200/github-ranking/internal/cache"
	githubapi "github.com/thep200/github-ranking/internal/github_api"
	"github.com/thep200/github-ranking/internal/limiter"
	"github.com/thep200/github-ranking/internal/metrics"
	"github.com/thep200/github-ranking/internal/model"
	"github.com/thep200/github-ranking/internal/retry"
	"github.com/thep200/github-ranking/pkg/log"
	"golang.org/x/sync/errgroup"
)

type userFetcher interface {
	GetUser(ctx context.Context, login string) (*githubapi.UserResponse, error)
}

type EnrichStats struct {
	CacheHits int
	Fetched   int
	Failed    int
}

// Enricher lấy chi tiết user theo từng batch đồng thời, ưu tiên bản trong cache
type Enricher struct {
	Logger     log.Logger
	BatchSize  int
	BatchDelay time.Duration
	FlushEvery int
	TTL        time.Duration

	fetch      userFetcher
	exec       *retry.Executor
	store      cache.Store
	classifier *Classifier
	sleep      limiter.SleepFunc
	now        func() time.Time
}

func NewEnricher(logger log.Logger, config *cfg.Config, fetch userFetcher, exec *retry.Executor, store cache.Store, classifier *Classifier) *Enricher {
	return &Enricher{
		Logger:     logger,
		BatchSize:  config.Enrich.BatchSize,
		BatchDelay: config.Enrich.BatchDelay,
		FlushEvery: config.Enrich.FlushEvery,
		TTL:        config.Cache.TTL,
		fetch:      fetch,
		exec:       exec,
		store:      store,
		classifier: classifier,
		sleep:      limiter.Sleep,
		now:        time.Now,
	}
}

// Enrich giữ thứ tự đầu vào; user lỗi bị bỏ qua, chỉ context bị huỷ mới trả lỗi.
func (e *Enricher) Enrich(ctx context.Context, hits []model.SearchHit) ([]model.Developer, EnrichStats, error) {
	var (
		developers = make([]model.Developer, 0, len(hits))
		cacheHits  atomic.Int64
		fetched    atomic.Int64
		failed     atomic.Int64
	)
	stats := func() EnrichStats {
		return EnrichStats{
			CacheHits: int(cacheHits.Load()),
			Fetched:   int(fetched.Load()),
			Failed:    int(failed.Load()),
		}
	}

	batchSize, flushEvery := max(e.BatchSize, 1), max(e.FlushEvery, 1)
	totalBatches := (len(hits) + batchSize - 1) / batchSize
	for b := 0; b < totalBatches; b++ {
		start := b * batchSize
		batch := hits[start:min(start+batchSize, len(hits))]
		e.Logger.Info(ctx, "Processing user batch %d/%d", b+1, totalBatches)

		results := make([]*model.Developer, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		for i, hit := range batch {
			g.Go(func() error {
				dev, fromCache, err := e.lookup(gctx, hit)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					failed.Add(1)
					metrics.EnrichFailuresTotal.Inc()
					e.Logger.Error(ctx, "Failed to fetch user %s: %v", hit.Login, err)
					return nil
				}
				if fromCache {
					cacheHits.Add(1)
				} else {
					fetched.Add(1)
				}
				results[i] = dev
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, stats(), err
		}

		for _, dev := range results {
			if dev != nil {
				developers = append(developers, *dev)
			}
		}

		last := b == totalBatches-1
		if (b+1)%flushEvery == 0 || last {
			if err := e.store.Flush(ctx); err != nil {
				e.Logger.Error(ctx, "Failed to flush user cache: %v", err)
			}
		}

		if !last && e.BatchDelay > 0 {
			if err := e.sleep(ctx, e.BatchDelay); err != nil {
				return nil, stats(), err
			}
		}
	}

	return developers, stats(), nil
}

func (e *Enricher) lookup(ctx context.Context, hit model.SearchHit) (*model.Developer, bool, error) {
	if dev, result := cache.Lookup(e.store, hit.Login, e.now(), e.TTL); result == cache.Hit {
		return &dev, true, nil
	}

	user, err := retry.Do(ctx, e.exec, func(ctx context.Context) (*githubapi.UserResponse, error) {
		return e.fetch.GetUser(ctx, hit.Login)
	})
	if err != nil {
		return nil, false, err
	}
	if user.Login == "" {
		return nil, false, errors.New("user detail has no login")
	}

	dev := toDeveloper(user, e.classifier.Classify(user.Login))
	e.store.Put(dev.Login, dev, e.now())
	return &dev, false, nil
}

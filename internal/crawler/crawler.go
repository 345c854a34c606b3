// Package crawler chạy pipeline lấy dữ liệu developer: tìm kiếm theo partition, loại trùng,
// làm giàu chi tiết user qua cache rồi ghi artifact xếp hạng.
package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/thep200/github-ranking/cfg"
	"github.com/thep200/github-ranking/internal/artifact"
	"github.com/thep200/github-ranking/internal/cache"
	crawlinfo "github.com/thep200/github-ranking/internal/crawl_info"
	"github.com/thep200/github-ranking/internal/limiter"
	"github.com/thep200/github-ranking/internal/metrics"
	"github.com/thep200/github-ranking/pkg/log"
)

type Crawler interface {
	Crawl(ctx context.Context) (*crawlinfo.Info, error)
}

type statusReporter interface {
	CheckStatus(ctx context.Context) *limiter.Status
	WarnIfLow(ctx context.Context, threshold int) *limiter.Status
}

type Pipeline struct {
	Logger     log.Logger
	Config     *cfg.Config
	Partitions []cfg.Partition

	monitor   statusReporter
	collector *Collector
	enricher  *Enricher
	store     cache.Store
	sinks     []Sink
	now       func() time.Time
}

func NewPipeline(logger log.Logger, config *cfg.Config, partitions []cfg.Partition, monitor statusReporter,
	collector *Collector, enricher *Enricher, store cache.Store, sinks ...Sink) *Pipeline {
	return &Pipeline{
		Logger:     logger,
		Config:     config,
		Partitions: partitions,
		monitor:    monitor,
		collector:  collector,
		enricher:   enricher,
		store:      store,
		sinks:      sinks,
		now:        time.Now,
	}
}

// Crawl chạy trọn một lần. Lỗi ở bước tìm kiếm, làm giàu hay ghi artifact thì artifact cũ được giữ nguyên.
func (p *Pipeline) Crawl(ctx context.Context) (*crawlinfo.Info, error) {
	runID := xid.New().String()
	ctx = log.WithRunID(ctx, runID)
	info := crawlinfo.New(runID, p.now())
	info.Partitions = len(p.Partitions)
	info.Artifact = p.Config.Artifact.Path

	err := p.run(ctx, info)
	info.Finish(p.now(), err)
	metrics.RunDuration.Set(info.Duration.Seconds())

	if p.monitor != nil {
		p.monitor.CheckStatus(context.WithoutCancel(ctx))
	}
	if errPush := metrics.Push(context.WithoutCancel(ctx), p.Config.Metrics.PushgatewayUrl, p.Config.Metrics.Job); errPush != nil {
		p.Logger.Warn(ctx, "Failed to push metrics: %v", errPush)
	}

	if err != nil {
		p.Logger.Error(ctx, "Run failed after %v: %v", info.Duration.Round(time.Millisecond), err)
		return info, err
	}
	p.Logger.Info(ctx, "Run finished in %v: %d developers (code %d, markdown %d)",
		info.Duration.Round(time.Millisecond), info.Total(), info.Developers["code"], info.Developers["markdown"])
	return info, nil
}

func (p *Pipeline) run(ctx context.Context, info *crawlinfo.Info) error {
	p.Logger.Info(ctx, "Starting github ranking fetch with %d partitions", len(p.Partitions))
	if p.monitor != nil {
		p.monitor.WarnIfLow(ctx, p.Config.Search.WarnRemaining)
	}

	// Cache không đọc được thì chạy với cache rỗng
	if err := p.store.Load(ctx); err != nil {
		p.Logger.Warn(ctx, "Failed to load user cache, starting empty: %v", err)
	}

	// Search
	hits, err := p.collector.Collect(ctx, p.Partitions)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	info.SearchHits = len(hits)

	// Dedupe
	unique, stats := Dedupe(hits, p.Config.Filter.Organizations)
	info.Duplicates, info.Organizations, info.Unique = stats.Duplicates, stats.Organizations, stats.Unique
	metrics.DedupeRecords.WithLabelValues("total").Set(float64(stats.Total))
	metrics.DedupeRecords.WithLabelValues("duplicates").Set(float64(stats.Duplicates))
	metrics.DedupeRecords.WithLabelValues("organizations").Set(float64(stats.Organizations))
	metrics.DedupeRecords.WithLabelValues("unique").Set(float64(stats.Unique))
	p.Logger.Info(ctx, "Dedupe: %d records, %d duplicates, %d organizations filtered, %d unique users",
		stats.Total, stats.Duplicates, stats.Organizations, stats.Unique)

	// Enrich
	developers, enrichStats, err := p.enricher.Enrich(ctx, unique)
	if err != nil {
		return fmt.Errorf("enrich: %w", err)
	}
	info.CacheHits, info.Fetched, info.Failed = enrichStats.CacheHits, enrichStats.Fetched, enrichStats.Failed
	p.Logger.Info(ctx, "Enriched %d users (%d from cache, %d fetched, %d failed)",
		len(developers), enrichStats.CacheHits, enrichStats.Fetched, enrichStats.Failed)

	// Artifact
	updateTime := p.now()
	if err := artifact.Write(p.Config.Artifact.Path, updateTime, developers); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	info.Developers = countByKind(developers)
	for kind, n := range info.Developers {
		metrics.Developers.WithLabelValues(kind).Set(float64(n))
	}
	metrics.LastSuccess.Set(float64(updateTime.Unix()))
	p.Logger.Info(ctx, "Wrote %d developers to %s", len(developers), p.Config.Artifact.Path)

	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, info.RunID, updateTime, developers); err != nil {
			p.Logger.Warn(ctx, "Sink %s failed: %v", sink.Name(), err)
		}
	}
	return nil
}

package crawler

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/thep200/github-ranking/cfg"
	"github.com/thep200/github-ranking/internal/cache"
	githubapi "github.com/thep200/github-ranking/internal/github_api"
	"github.com/thep200/github-ranking/internal/limiter"
	"github.com/thep200/github-ranking/internal/retry"
	"github.com/thep200/github-ranking/pkg/db"
	"github.com/thep200/github-ranking/pkg/kafka"
	"github.com/thep200/github-ranking/pkg/log"
	"go.uber.org/multierr"
)

var presets = map[string][]cfg.Partition{
	"followers": {
		{Name: "followers-500-1000", Location: "china", Followers: "500..1000", Sort: "followers"},
		{Name: "followers-1000-plus", Location: "china", Followers: ">1000", Sort: "followers"},
	},
	"cities": {
		{Name: "beijing", Location: "beijing", Followers: ">200", Sort: "followers"},
		{Name: "shanghai", Location: "shanghai", Followers: ">200", Sort: "followers"},
		{Name: "shenzhen", Location: "shenzhen", Followers: ">200", Sort: "followers"},
		{Name: "hangzhou", Location: "hangzhou", Followers: ">200", Sort: "followers"},
		{Name: "guangzhou", Location: "guangzhou", Followers: ">200", Sort: "followers"},
		{Name: "chengdu", Location: "chengdu", Followers: ">200", Sort: "followers"},
	},
}

// PresetPartitions trả về bản sao để caller sửa thoải mái
func PresetPartitions(name string) ([]cfg.Partition, error) {
	partitions, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("[ERROR] Unsupported search preset: %s", name)
	}
	out := make([]cfg.Partition, len(partitions))
	copy(out, partitions)
	return out, nil
}

// Partitions ưu tiên search.partitions trong cấu hình, nếu trống thì dùng preset
func Partitions(config *cfg.Config) ([]cfg.Partition, error) {
	if len(config.Search.Partitions) > 0 {
		return config.Search.Partitions, nil
	}
	return PresetPartitions(config.Search.Preset)
}

// FactoryCrawler dựng pipeline từ cấu hình. cleanup đóng các kết nối redis/kafka đã mở.
func FactoryCrawler(ctx context.Context, logger log.Logger, config *cfg.Config) (crawler *Pipeline, cleanup func(), err error) {
	var closers []func() error
	cleanup = func() {
		var errClose error
		for i := len(closers) - 1; i >= 0; i-- {
			errClose = multierr.Append(errClose, closers[i]())
		}
		for _, e := range multierr.Errors(errClose) {
			logger.Warn(ctx, "Close failed: %v", e)
		}
	}
	defer func() {
		if err != nil {
			cleanup()
		}
	}()

	partitions, err := Partitions(config)
	if err != nil {
		return nil, nil, err
	}

	pacer := limiter.NewRateLimiter(config.GithubApi.RequestsPerSecond)
	caller := githubapi.NewCaller(logger, config, pacer)
	monitor := limiter.NewMonitor(caller, logger)
	exec := retry.NewExecutor(config.GithubApi.MaxRetries, logger)

	var rdb *redis.Client
	if config.Cache.Driver == "redis" {
		rdb, err = db.NewRedisClient(ctx, config.Cache.RedisUrl)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis cache: %w", err)
		}
		closers = append(closers, rdb.Close)
	}
	store, err := cache.New(config, logger, rdb)
	if err != nil {
		return nil, nil, err
	}

	var sinks []Sink
	if config.Kafka.Enabled {
		producer, errProducer := kafka.NewProducer(config, logger, config.Kafka.Topic)
		if errProducer != nil {
			return nil, nil, fmt.Errorf("create kafka producer: %w", errProducer)
		}
		sink := NewKafkaSink(logger, producer)
		closers = append(closers, sink.Close)
		sinks = append(sinks, sink)
	}

	classifier := NewClassifier(config.Filter.MarkdownAuthors)
	collector := NewCollector(logger, config, caller, monitor, exec)
	enricher := NewEnricher(logger, config, caller, exec, store, classifier)

	return NewPipeline(logger, config, partitions, monitor, collector, enricher, store, sinks...), cleanup, nil
}

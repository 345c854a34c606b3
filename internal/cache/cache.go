// Package cache lưu chi tiết user đã làm giàu theo login để lần chạy sau không phải gọi lại API.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/thep200/github-ranking/cfg"
	"github.com/thep200/github-ranking/internal/metrics"
	"github.com/thep200/github-ranking/internal/model"
	"github.com/thep200/github-ranking/pkg/log"
)

// Store được gọi đồng thời từ các goroutine trong một batch
type Store interface {
	Load(ctx context.Context) error
	Get(login string) (model.CacheEntry, bool)
	Put(login string, dev model.Developer, at time.Time)
	Flush(ctx context.Context) error
	Len() int
}

type Result string

const (
	Hit   Result = "hit"
	Miss  Result = "miss"
	Stale Result = "stale"
)

// Lookup coi bản ghi quá ttl là miss
func Lookup(s Store, login string, now time.Time, ttl time.Duration) (model.Developer, Result) {
	entry, ok := s.Get(login)
	result := Miss
	switch {
	case !ok:
	case entry.Fresh(now, ttl):
		result = Hit
	default:
		result = Stale
	}
	metrics.CacheLookupsTotal.WithLabelValues(string(result)).Inc()

	if result != Hit {
		return model.Developer{}, result
	}
	return entry.Data, result
}

// New tạo store theo cache.driver; redis client do caller đóng.
func New(config *cfg.Config, logger log.Logger, rdb *redis.Client) (Store, error) {
	switch config.Cache.Driver {
	case "file":
		return NewFileStore(config.Cache.Path, logger), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis cache driver needs a redis client")
		}
		return NewRedisStore(rdb, config.Cache.KeyPrefix, logger), nil
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", config.Cache.Driver)
	}
}

// record là dạng lưu của một entry: cachedAt theo ISO-8601 có mili giây
type record struct {
	CachedAt string          `json:"cachedAt"`
	Data     model.Developer `json:"data"`
}

func toRecord(e model.CacheEntry) record {
	return record{CachedAt: model.FormatISO(e.CachedAt), Data: e.Data}
}

func fromRecord(login string, r record) (model.CacheEntry, error) {
	at, err := time.Parse(time.RFC3339, r.CachedAt)
	if err != nil {
		return model.CacheEntry{}, fmt.Errorf("entry %s: invalid cachedAt %q: %w", login, r.CachedAt, err)
	}
	return model.CacheEntry{Login: login, CachedAt: at, Data: r.Data}, nil
}

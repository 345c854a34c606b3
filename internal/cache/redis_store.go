package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/thep200/github-ranking/internal/model"
	"github.com/thep200/github-ranking/pkg/log"
)

// Số field tối đa trong một lệnh HSET
const hsetChunk = 200

type hashClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisStore lưu cache trong một hash <prefix>users, field là login.
// Chỉ các entry đã Put kể từ lần Flush trước được ghi lại.
type RedisStore struct {
	client hashClient
	key    string
	logger log.Logger

	mu    sync.RWMutex
	set   entrySet
	dirty map[string]struct{}
}

func NewRedisStore(client hashClient, prefix string, logger log.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		key:    prefix + "users",
		logger: logger,
		set:    newEntrySet(0),
		dirty:  make(map[string]struct{}),
	}
}

// Load không bao giờ lỗi: redis không đọc được thì bắt đầu với cache rỗng, field hỏng thì bỏ qua.
func (s *RedisStore) Load(ctx context.Context) error {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		s.logger.Warn(ctx, "Cannot read cache hash %s, starting empty: %v", s.key, err)
		fields = nil
	}

	set := newEntrySet(len(fields))
	for login, raw := range fields {
		var r record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			s.logger.Warn(ctx, "Skip corrupt cache field %s: %v", login, err)
			continue
		}
		entry, err := fromRecord(login, r)
		if err != nil {
			s.logger.Warn(ctx, "Skip cache %v", err)
			continue
		}
		set.add(entry)
	}

	s.mu.Lock()
	s.set = set
	s.dirty = make(map[string]struct{})
	s.mu.Unlock()

	s.logger.Info(ctx, "Loaded %d cached users from redis hash %s", len(set.entries), s.key)
	return nil
}

func (s *RedisStore) Get(login string) (model.CacheEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.get(login)
}

func (s *RedisStore) Put(login string, dev model.Developer, at time.Time) {
	s.mu.Lock()
	s.set.put(login, dev, at)
	s.dirty[login] = struct{}{}
	s.mu.Unlock()
}

func (s *RedisStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.set.entries)
}

func (s *RedisStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	values := make([]interface{}, 0, 2*len(s.dirty))
	flushed := make(map[string]time.Time, len(s.dirty))
	for login := range s.dirty {
		raw, err := json.Marshal(toRecord(s.set.entries[login]))
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("encode cache entry %s: %w", login, err)
		}
		values = append(values, login, string(raw))
		flushed[login] = s.set.entries[login].CachedAt
	}
	s.mu.Unlock()

	for start := 0; start < len(values); start += 2 * hsetChunk {
		end := min(start+2*hsetChunk, len(values))
		if err := s.client.HSet(ctx, s.key, values[start:end]...).Err(); err != nil {
			return fmt.Errorf("write cache hash %s: %w", s.key, err)
		}
	}

	// Entry được Put lại trong lúc ghi thì vẫn dirty
	s.mu.Lock()
	for login, at := range flushed {
		if s.set.entries[login].CachedAt.Equal(at) {
			delete(s.dirty, login)
		}
	}
	s.mu.Unlock()

	s.logger.Debug(ctx, "Flushed %d cached users to redis hash %s", len(flushed), s.key)
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/thep200/github-ranking/internal/model"
	"github.com/thep200/github-ranking/pkg/log"
)

// FileStore giữ toàn bộ cache trong bộ nhớ và ghi lại cả file khi Flush
type FileStore struct {
	path   string
	logger log.Logger

	mu  sync.RWMutex
	set entrySet
}

func NewFileStore(path string, logger log.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
		set:    newEntrySet(0),
	}
}

// Load không bao giờ lỗi: file thiếu hoặc hỏng thì bắt đầu với cache rỗng.
func (s *FileStore) Load(ctx context.Context) error {
	set := newEntrySet(0)
	defer func() {
		s.mu.Lock()
		s.set = set
		s.mu.Unlock()
	}()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info(ctx, "Cache file %s not found, starting empty", s.path)
		return nil
	}
	if err != nil {
		s.logger.Warn(ctx, "Cannot read cache file %s: %v", s.path, err)
		return nil
	}

	var records map[string]record
	if err := json.Unmarshal(raw, &records); err != nil {
		s.logger.Warn(ctx, "Cache file %s is corrupt, starting empty: %v", s.path, err)
		return nil
	}

	for login, r := range records {
		entry, err := fromRecord(login, r)
		if err != nil {
			s.logger.Warn(ctx, "Skip cache %v", err)
			continue
		}
		set.add(entry)
	}
	s.logger.Info(ctx, "Loaded %d cached users from %s", len(set.entries), s.path)
	return nil
}

func (s *FileStore) Get(login string) (model.CacheEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.get(login)
}

func (s *FileStore) Put(login string, dev model.Developer, at time.Time) {
	s.mu.Lock()
	s.set.put(login, dev, at)
	s.mu.Unlock()
}

func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.set.entries)
}

func (s *FileStore) Flush(ctx context.Context) error {
	s.mu.RLock()
	records := make(map[string]record, len(s.set.entries))
	for login, entry := range s.set.entries {
		records[login] = toRecord(entry)
	}
	s.mu.RUnlock()

	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write cache file %s: %w", s.path, err)
	}

	s.logger.Debug(ctx, "Flushed %d cached users to %s", len(records), s.path)
	return nil
}

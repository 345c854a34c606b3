package cache

import (
	"strings"
	"time"

	"github.com/thep200/github-ranking/internal/model"
)

// entrySet giữ entry theo login chính tắc, tra được cả khi login khác hoa thường
type entrySet struct {
	entries map[string]model.CacheEntry
	folded  map[string]string
}

func newEntrySet(size int) entrySet {
	return entrySet{
		entries: make(map[string]model.CacheEntry, size),
		folded:  make(map[string]string, size),
	}
}

func (e entrySet) get(login string) (model.CacheEntry, bool) {
	if entry, ok := e.entries[login]; ok {
		return entry, true
	}
	canonical, ok := e.folded[strings.ToLower(login)]
	if !ok {
		return model.CacheEntry{}, false
	}
	entry, ok := e.entries[canonical]
	return entry, ok
}

func (e entrySet) put(login string, dev model.Developer, at time.Time) {
	e.entries[login] = model.CacheEntry{Login: login, CachedAt: at, Data: dev}
	e.folded[strings.ToLower(login)] = login
}

func (e entrySet) add(entry model.CacheEntry) {
	e.entries[entry.Login] = entry
	e.folded[strings.ToLower(entry.Login)] = entry.Login
}

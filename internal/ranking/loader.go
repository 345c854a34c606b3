// Package ranking đọc artifact qua HTTP và chuẩn bị danh sách cho trang xếp hạng.
package ranking

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/thep200/github-ranking/internal/artifact"
	"github.com/thep200/github-ranking/internal/model"
	"github.com/thep200/github-ranking/pkg/log"
)

// Limit là số developer tối đa trả về cho mỗi loại
const Limit = 1000

const DataPath = "/data/github-ranking.json"

type Kind string

const (
	All      Kind = "all"
	Code     Kind = "code"
	Markdown Kind = "markdown"
)

// ParseKind: giá trị lạ được coi là all
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Code:
		return Code
	case Markdown:
		return Markdown
	default:
		return All
	}
}

type Loader struct {
	Logger  log.Logger
	BaseURL string

	client *http.Client
	now    func() time.Time

	mu              sync.RWMutex
	markdownAuthors map[string]struct{}
}

func NewLoader(logger log.Logger, baseURL string, markdownAuthors []string) *Loader {
	l := &Loader{
		Logger:  logger,
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
	l.SetMarkdownAuthors(markdownAuthors)
	return l
}

// SetMarkdownAuthors thay danh sách khi cấu hình thay đổi
func (l *Loader) SetMarkdownAuthors(authors []string) {
	set := make(map[string]struct{}, len(authors))
	for _, login := range authors {
		set[login] = struct{}{}
	}
	l.mu.Lock()
	l.markdownAuthors = set
	l.mu.Unlock()
}

func (l *Loader) isMarkdownAuthor(login string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.markdownAuthors[login]
	return ok
}

// Load không trả lỗi: lấy dữ liệu thất bại thì trả danh sách rỗng với thời gian hiện tại.
func (l *Loader) Load(ctx context.Context, kind Kind) model.Ranking {
	data, err := l.fetch(ctx)
	if err != nil {
		l.Logger.Error(ctx, "Failed to load ranking data: %v", err)
		return model.Ranking{
			UpdateTime: model.FormatISO(l.now()),
			Developers: []model.Developer{},
		}
	}

	return model.Ranking{
		UpdateTime: data.UpdateTime,
		Developers: l.Select(data.Developers, kind),
	}
}

// Select lọc theo loại, sắp followers giảm dần (giữ thứ tự khi bằng nhau) và cắt còn Limit.
func (l *Loader) Select(developers []model.Developer, kind Kind) []model.Developer {
	out := make([]model.Developer, 0, len(developers))
	for _, dev := range developers {
		switch kind {
		case Code:
			if l.isMarkdownAuthor(dev.Login) {
				continue
			}
		case Markdown:
			if !l.isMarkdownAuthor(dev.Login) {
				continue
			}
		}
		out = append(out, dev)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Followers > out[j].Followers
	})
	if len(out) > Limit {
		out = out[:Limit]
	}
	return out
}

func (l *Loader) fetch(ctx context.Context) (*model.Ranking, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.BaseURL+DataPath, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return artifact.Decode(raw)
}

package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/thep200/github-ranking/cfg"
	githubapi "github.com/thep200/github-ranking/internal/github_api"
	"github.com/thep200/github-ranking/internal/limiter"
	"github.com/thep200/github-ranking/internal/model"
	"github.com/thep200/github-ranking/internal/retry"
	"github.com/thep200/github-ranking/pkg/log"
)

type searcher interface {
	SearchUsers(ctx context.Context, query, sort string, page, perPage int) (*githubapi.SearchUsersResponse, error)
}

type quotaGate interface {
	WaitIfBelow(ctx context.Context, threshold int) error
}

// Collector chạy tuần tự từng partition, mỗi partition tối đa MaxPages trang
type Collector struct {
	Logger         log.Logger
	MaxPages       int
	PerPage        int
	MinRemaining   int
	PageDelay      time.Duration
	PartitionDelay time.Duration

	search searcher
	gate   quotaGate
	exec   *retry.Executor
	sleep  limiter.SleepFunc

	// cache trang trong một lần chạy
	pages map[string]*githubapi.SearchUsersResponse
}

func NewCollector(logger log.Logger, config *cfg.Config, search searcher, gate quotaGate, exec *retry.Executor) *Collector {
	return &Collector{
		Logger:         logger,
		MaxPages:       config.Search.MaxPages,
		PerPage:        config.Search.PerPage,
		MinRemaining:   config.Search.MinRemaining,
		PageDelay:      config.Search.PageDelay,
		PartitionDelay: config.Search.PartitionDelay,
		search:         search,
		gate:           gate,
		exec:           exec,
		sleep:          limiter.Sleep,
	}
}

// Collect trả về hợp của mọi partition, còn trùng lặp. Một trang lỗi sau khi retry làm dừng cả lần chạy.
func (c *Collector) Collect(ctx context.Context, partitions []cfg.Partition) ([]model.SearchHit, error) {
	c.pages = make(map[string]*githubapi.SearchUsersResponse)
	var all []model.SearchHit

	for i, p := range partitions {
		hits, err := c.collectPartition(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("partition %s: %w", p.Name, err)
		}
		c.Logger.Info(ctx, "Query [%s] found %d users", partitionQuery(p), len(hits))
		all = append(all, hits...)

		if i < len(partitions)-1 && c.PartitionDelay > 0 {
			c.Logger.Debug(ctx, "Waiting %v before the next query", c.PartitionDelay)
			if err := c.sleep(ctx, c.PartitionDelay); err != nil {
				return nil, err
			}
		}
	}
	return all, nil
}

func (c *Collector) collectPartition(ctx context.Context, p cfg.Partition) ([]model.SearchHit, error) {
	query := partitionQuery(p)
	var hits []model.SearchHit

	for page := 1; page <= c.MaxPages; page++ {
		c.Logger.Info(ctx, "Fetching query [%s] page %d/%d", query, page, c.MaxPages)

		if c.gate != nil {
			if err := c.gate.WaitIfBelow(ctx, c.MinRemaining); err != nil {
				return nil, err
			}
		}

		resp, err := retry.Do(ctx, c.exec, func(ctx context.Context) (*githubapi.SearchUsersResponse, error) {
			return c.fetchPage(ctx, query, p.Sort, page)
		})
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		for _, item := range resp.Items {
			hits = append(hits, model.SearchHit{ID: item.ID, Login: item.Login})
		}

		if len(resp.Items) < c.PerPage {
			if len(resp.Items) == 0 {
				c.Logger.Info(ctx, "Query [%s] page %d is empty, stopping", query, page)
			} else {
				c.Logger.Info(ctx, "Query [%s] exhausted after %d pages", query, page)
			}
			break
		}

		if page < c.MaxPages && c.PageDelay > 0 {
			if err := c.sleep(ctx, c.PageDelay); err != nil {
				return nil, err
			}
		}
	}
	return hits, nil
}

func (c *Collector) fetchPage(ctx context.Context, query, sort string, page int) (*githubapi.SearchUsersResponse, error) {
	key := pageCacheKey(query, sort, page)
	if resp, ok := c.pages[key]; ok {
		c.Logger.Debug(ctx, "Using cached page %s", key)
		return resp, nil
	}

	resp, err := c.search.SearchUsers(ctx, query, sort, page, c.PerPage)
	if err != nil {
		return nil, err
	}
	c.pages[key] = resp
	return resp, nil
}

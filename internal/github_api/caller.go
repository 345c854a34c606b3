// Gói githubapi gọi GitHub REST API: tìm kiếm user, chi tiết user và trạng thái rate limit.
// Xác thực bằng access token qua oauth2 nếu được cấu hình.

package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/thep200/github-ranking/cfg"
	"github.com/thep200/github-ranking/internal/metrics"
	"github.com/thep200/github-ranking/pkg/log"
	"golang.org/x/oauth2"
)

const (
	endpointSearchUsers = "search_users"
	endpointGetUser     = "get_user"
	endpointRateLimit   = "rate_limit"
)

// pacer giới hạn tốc độ gửi request, nil thì không giới hạn
type pacer interface {
	Wait(ctx context.Context) error
}

type Caller struct {
	Logger  log.Logger
	baseURL string
	client  *http.Client
	pacer   pacer
}

func NewCaller(logger log.Logger, config *cfg.Config, p pacer) *Caller {
	ctx := context.Background()
	if config.GithubApi.AccessToken == "" {
		logger.Warn(ctx, "GITHUB_TOKEN is not set, using unauthenticated API access with a much lower quota")
	}

	return &Caller{
		Logger:  logger,
		baseURL: strings.TrimRight(config.GithubApi.BaseUrl, "/"),
		client:  newHTTPClient(config.GithubApi.AccessToken, config.GithubApi.Timeout),
		pacer:   p,
	}
}

func newHTTPClient(token string, timeout time.Duration) *http.Client {
	if token == "" {
		return &http.Client{Timeout: timeout}
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	client := oauth2.NewClient(context.Background(), src)
	client.Timeout = timeout
	return client
}

// SearchUsers gọi /search/users; query đã gồm location/followers, type:user được thêm ở đây.
func (c *Caller) SearchUsers(ctx context.Context, query, sort string, page, perPage int) (*SearchUsersResponse, error) {
	params := url.Values{}
	params.Set("q", strings.TrimSpace(query+" type:user"))
	if sort != "" {
		params.Set("sort", sort)
		params.Set("order", "desc")
	}
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))

	out := &SearchUsersResponse{}
	if err := c.get(ctx, endpointSearchUsers, "/search/users", params, out); err != nil {
		return nil, err
	}
	c.Logger.Debug(ctx, "Search [%s] page %d: %d items of %d total", query, page, len(out.Items), out.TotalCount)
	return out, nil
}

func (c *Caller) GetUser(ctx context.Context, login string) (*UserResponse, error) {
	out := &UserResponse{}
	if err := c.get(ctx, endpointGetUser, "/users/"+url.PathEscape(login), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// RateLimit không bị pacer giới hạn và không tính vào quota của GitHub
func (c *Caller) RateLimit(ctx context.Context) (*RateLimitResponse, error) {
	out := &RateLimitResponse{}
	if err := c.do(ctx, endpointRateLimit, "/rate_limit", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Caller) get(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			return err
		}
	}
	return c.do(ctx, endpoint, path, params, out)
}

func (c *Caller) do(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	fullUrl := c.baseURL + path
	if len(params) > 0 {
		fullUrl += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullUrl, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	metrics.APIRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
		c.Logger.Debug(ctx, "Rate limit remaining: %s", remaining)
	}

	if resp.StatusCode != http.StatusOK {
		return newResponseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

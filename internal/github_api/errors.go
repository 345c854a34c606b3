package githubapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// APIError là phản hồi khác 200 từ GitHub
type APIError struct {
	StatusCode int
	Message    string
	Header     http.Header
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api: %d %s", e.StatusCode, e.Message)
}

// RateLimitError là giới hạn chính; Reset bằng zero khi header không đọc được.
type RateLimitError struct {
	*APIError
	Reset time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github api rate limit exceeded, reset at %s: %s",
		e.Reset.Format(time.RFC3339), e.Message)
}

func (e *RateLimitError) Unwrap() error { return e.APIError }

// SecondaryRateLimitError là giới hạn chống lạm dụng, không được thử lại
type SecondaryRateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *SecondaryRateLimitError) Error() string {
	return fmt.Sprintf("github api secondary rate limit (retry after %v): %s", e.RetryAfter, e.Message)
}

func (e *SecondaryRateLimitError) Unwrap() error { return e.APIError }

func newResponseError(resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    resp.Status,
		Header:     resp.Header,
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		apiErr.Message = body.Message
	}

	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return apiErr
	}

	msg := strings.ToLower(apiErr.Message)
	retryAfter := resp.Header.Get("Retry-After")
	if strings.Contains(msg, "secondary rate limit") || retryAfter != "" {
		secs, _ := strconv.Atoi(retryAfter)
		return &SecondaryRateLimitError{APIError: apiErr, RetryAfter: time.Duration(secs) * time.Second}
	}

	if resp.Header.Get("X-RateLimit-Remaining") == "0" || strings.Contains(msg, "rate limit") {
		rlErr := &RateLimitError{APIError: apiErr}
		if reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
			rlErr.Reset = time.Unix(reset, 0)
		}
		return rlErr
	}
	return apiErr
}

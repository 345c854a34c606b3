// Package metrics chứa các chỉ số Prometheus của pipeline và server xếp hạng.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "github_ranking"

// Registry riêng để push gateway chỉ nhận các chỉ số của ứng dụng.
var Registry = prometheus.NewRegistry()

var (
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "GitHub API requests by endpoint and status code",
		},
		[]string{"endpoint", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "GitHub API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	RetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Retry decisions taken by the request executor",
		},
		[]string{"decision"}, // backoff / wait_reset / fatal / exhausted
	)

	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "User cache lookups by result",
		},
		[]string{"result"}, // hit / miss / stale
	)

	DedupeRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dedupe_records",
			Help:      "Record counts from the last deduplication pass",
		},
		[]string{"kind"}, // total / duplicates / organizations / unique
	)

	Developers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "developers",
			Help:      "Developers written to the last artifact by type",
		},
		[]string{"type"},
	)

	EnrichFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrich_failures_total",
			Help:      "User detail lookups dropped after retries",
		},
	)

	RateLimitRemaining = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rate_limit_remaining",
			Help:      "Remaining core API quota at the last check",
		},
	)

	RunDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last pipeline run",
		},
	)

	LastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful artifact write",
		},
	)

	RankingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_requests_total",
			Help:      "Ranking API requests by type and outcome",
		},
		[]string{"type", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		APIRequestsTotal,
		APIRequestDuration,
		RetriesTotal,
		CacheLookupsTotal,
		DedupeRecords,
		Developers,
		EnrichFailuresTotal,
		RateLimitRemaining,
		RunDuration,
		LastSuccess,
		RankingRequestsTotal,
		collectors.NewGoCollector(),
	)
}

// Push gửi toàn bộ chỉ số lên Pushgateway khi kết thúc một lần chạy.
func Push(ctx context.Context, gatewayURL, job string) error {
	if gatewayURL == "" {
		return nil
	}
	if err := push.New(gatewayURL, job).Gatherer(Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}

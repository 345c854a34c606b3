package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPush_EmptyURLIsNoop(t *testing.T) {
	assert.NoError(t, Push(context.Background(), "", "job"))
}

func TestPush_SendsRegistry(t *testing.T) {
	CacheLookupsTotal.WithLabelValues("hit").Inc()

	var body string
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, Push(context.Background(), srv.URL, "ranking_test"))
	assert.Equal(t, "/metrics/job/ranking_test", path)
	assert.NotEmpty(t, body)
}

func TestPush_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := Push(context.Background(), srv.URL, "ranking_test")
	assert.Error(t, err)
}

func TestRegistry_ContainsAppMetrics(t *testing.T) {
	Developers.WithLabelValues("code").Set(3)

	expected := `
# HELP github_ranking_developers Developers written to the last artifact by type
# TYPE github_ranking_developers gauge
github_ranking_developers{type="code"} 3
`
	err := testutil.GatherAndCompare(Registry, strings.NewReader(expected), "github_ranking_developers")
	assert.NoError(t, err)
}

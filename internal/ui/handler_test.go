package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/github-ranking/cfg"
	"github.com/thep200/github-ranking/internal/artifact"
	"github.com/thep200/github-ranking/internal/model"
	"github.com/thep200/github-ranking/internal/ranking"
	"github.com/thep200/github-ranking/pkg/log"
)

type fakeProfiles struct {
	rows []model.Profile
}

func (f *fakeProfiles) List(ctx context.Context, search string, offset, limit int) ([]model.Profile, int64, error) {
	var out []model.Profile
	for _, p := range f.rows {
		if search == "" || strings.Contains(p.Login, search) {
			out = append(out, p)
		}
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	return out[offset:min(offset+limit, len(out))], total, nil
}

func (f *fakeProfiles) FindByLogin(ctx context.Context, login string) (*model.Profile, error) {
	for _, p := range f.rows {
		if p.Login == login {
			return &p, nil
		}
	}
	return nil, model.ErrProfileNotFound
}

func newTestServer(t *testing.T, profiles profileStore) (*httptest.Server, *cfg.Config) {
	t.Helper()
	loader, _ := cfg.NewMockLoader()
	config, err := loader.Load()
	require.NoError(t, err)
	config.Artifact.Path = filepath.Join(t.TempDir(), "data", "github-ranking.json")

	logger := log.NewNopLogger()
	rankingLoader := ranking.NewLoader(logger, "http://placeholder", config.Filter.MarkdownAuthors)
	server, err := NewServer(logger, config, NewHandler(logger, config, rankingLoader, profiles), 0)
	require.NoError(t, err)

	srv := httptest.NewServer(server.Router())
	t.Cleanup(srv.Close)
	rankingLoader.BaseURL = srv.URL
	return srv, config
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestRanking_ServesFromArtifact(t *testing.T) {
	srv, config := newTestServer(t, nil)
	at := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, artifact.Write(config.Artifact.Path, at, []model.Developer{
		{Login: "a", Followers: 10, Type: model.KindCode},
		{Login: "ruanyf", Followers: 90, Type: model.KindMarkdown},
		{Login: "b", Followers: 20, Type: model.KindCode},
	}))

	var code model.Ranking
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/ranking?type=code", &code))
	assert.Equal(t, "2025-02-01T00:00:00.000Z", code.UpdateTime)
	require.Len(t, code.Developers, 2)
	assert.Equal(t, "b", code.Developers[0].Login)

	var markdown model.Ranking
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/ranking?type=markdown", &markdown))
	require.Len(t, markdown.Developers, 1)
	assert.Equal(t, "ruanyf", markdown.Developers[0].Login)

	var all model.Ranking
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/ranking?type=bogus", &all))
	assert.Len(t, all.Developers, 3)
}

func TestRanking_MissingArtifactIsEmpty(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var got model.Ranking
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/ranking", &got))
	assert.Empty(t, got.Developers)
	assert.NotEmpty(t, got.UpdateTime)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+ranking.DataPath, nil))
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/healthz", nil))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProfiles(t *testing.T) {
	profiles := &fakeProfiles{rows: []model.Profile{
		{Login: "alice", Followers: 30, Kind: "code"},
		{Login: "bob", Followers: 20, Kind: "code"},
		{Login: "alina", Followers: 10, Kind: "markdown"},
	}}
	srv, _ := newTestServer(t, profiles)

	var page struct {
		Profiles   []Profile `json:"profiles"`
		Pagination struct {
			TotalCount int64 `json:"totalCount"`
			TotalPages int64 `json:"totalPages"`
		} `json:"pagination"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/profiles?search=ali&pageSize=1", &page))
	require.Len(t, page.Profiles, 1)
	assert.Equal(t, "alice", page.Profiles[0].Login)
	assert.Equal(t, int64(2), page.Pagination.TotalCount)
	assert.Equal(t, int64(2), page.Pagination.TotalPages)

	var one Profile
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/profiles/bob", &one))
	assert.Equal(t, 20, one.Followers)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/profiles/nobody", nil))
}

func TestProfiles_NotRegisteredWithoutStore(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/profiles", nil))
}

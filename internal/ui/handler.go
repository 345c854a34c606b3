package ui

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thep200/github-ranking/cfg"
	"github.com/thep200/github-ranking/internal/metrics"
	"github.com/thep200/github-ranking/internal/ranking"
	"github.com/thep200/github-ranking/pkg/log"
)

type Handler struct {
	Logger       log.Logger
	Config       *cfg.Config
	Loader       *ranking.Loader
	artifactPath string
	profiles     profileStore
}

// NewHandler: profiles nil thì không đăng ký /api/profiles
func NewHandler(logger log.Logger, config *cfg.Config, loader *ranking.Loader, profiles profileStore) *Handler {
	return &Handler{
		Logger:       logger,
		Config:       config,
		Loader:       loader,
		artifactPath: config.Artifact.Path,
		profiles:     profiles,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.healthz)
	r.Get(ranking.DataPath, h.serveArtifact)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/ranking", h.getRanking)
		if h.profiles != nil {
			r.Get("/profiles", h.getProfiles)
			r.Get("/profiles/{login}", h.getProfile)
		}
	})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.Logger, http.StatusOK, map[string]string{"status": "ok"})
}

// getRanking: ?type=all|code|markdown, giá trị khác coi như all
func (h *Handler) getRanking(w http.ResponseWriter, r *http.Request) {
	kind := ranking.ParseKind(r.URL.Query().Get("type"))
	result := h.Loader.Load(r.Context(), kind)

	outcome := "ok"
	if len(result.Developers) == 0 {
		outcome = "empty"
	}
	metrics.RankingRequestsTotal.WithLabelValues(string(kind), outcome).Inc()

	writeJSON(w, r, h.Logger, http.StatusOK, result)
}

func (h *Handler) serveArtifact(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(h.artifactPath); err != nil {
		h.Logger.Warn(r.Context(), "Artifact %s is not available: %v", h.artifactPath, err)
		http.Error(w, "Ranking data not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, h.artifactPath)
}

func writeJSON(w http.ResponseWriter, r *http.Request, logger log.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error(r.Context(), "Failed to encode JSON response: %v", err)
	}
}

package scheduler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	crawlinfo "github.com/thep200/github-ranking/internal/crawl_info"
	"github.com/thep200/github-ranking/internal/metrics"
)

// Status là trạng thái của scheduler cho trang quản trị
type Status struct {
	Spec      string          `json:"spec"`
	IsRunning bool            `json:"is_running"`
	StartTime time.Time       `json:"start_time,omitempty"`
	Duration  string          `json:"duration,omitempty"`
	NextRun   time.Time       `json:"next_run,omitempty"`
	LastRun   *crawlinfo.Info `json:"last_run,omitempty"`
}

func (s *Scheduler) Status() Status {
	s.mu.RLock()
	status := Status{
		Spec:      s.spec,
		IsRunning: s.running || s.pending,
	}
	if s.running {
		status.StartTime = s.startedAt
		status.Duration = time.Since(s.startedAt).Round(time.Second).String()
	}
	s.mu.RUnlock()

	if s.entryID != 0 {
		status.NextRun = s.cron.Entry(s.entryID).Next
	}
	if last, ok := s.History.Last(); ok {
		status.LastRun = &last
	}
	return status
}

// Handler: GET /api/runs, GET /api/runs/status, POST /api/runs/trigger, GET /metrics
func (s *Scheduler) Handler() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Route("/api/runs", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, s.History.Runs())
		})
		r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, s.Status())
		})
		r.Post("/trigger", func(w http.ResponseWriter, req *http.Request) {
			if !s.Trigger() {
				writeJSON(w, http.StatusConflict, map[string]string{"message": "A run is already in progress"})
				return
			}
			writeJSON(w, http.StatusAccepted, map[string]string{"message": "Run started"})
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

package ui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/thep200/github-ranking/cfg"
	"github.com/thep200/github-ranking/pkg/log"
)

// Server phục vụ API xếp hạng, file artifact và metrics
type Server struct {
	Logger  log.Logger
	Config  *cfg.Config
	Handler *Handler
	server  *http.Server
	port    int
}

func NewServer(logger log.Logger, config *cfg.Config, handler *Handler, port int) (*Server, error) {
	if handler == nil {
		return nil, fmt.Errorf("ui server needs a handler")
	}
	return &Server{
		Logger:  logger,
		Config:  config,
		Handler: handler,
		port:    port,
	}, nil
}

func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(requestLogger(s.Logger))
	router.Use(chimiddleware.Recoverer)

	s.Handler.RegisterRoutes(router)
	return router
}

// Start chặn tới khi server dừng; Stop làm Start trả nil.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.Logger.Info(context.Background(), "Starting ranking server on port %d", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "Shutting down ranking server")
		return s.server.Shutdown(ctx)
	}
	return nil
}

func requestLogger(logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug(r.Context(), "%s %s %d %dB %v request_id=%s",
				r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start).Round(time.Microsecond),
				chimiddleware.GetReqID(r.Context()))
		})
	}
}

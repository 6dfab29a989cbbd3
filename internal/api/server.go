package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"statbasket/app"
	"statbasket/internal"
	"statbasket/internal/config"
	"statbasket/ports"
)

// maxBodyBytes bounds request bodies independently of MAX_SAMPLE_SIZE.
const maxBodyBytes = 64 << 20

// Server exposes the statistics engines over HTTP
type Server struct {
	router  *chi.Mux
	cfg     *config.Config
	baskets *app.BasketService
	scorer  ports.CriticalScorer
	metrics *Metrics
	logger  *internal.Logger
}

// NewServer wires routes and middleware.
func NewServer(cfg *config.Config, baskets *app.BasketService, scorer ports.CriticalScorer, logger *internal.Logger) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		cfg:     cfg,
		baskets: baskets,
		scorer:  scorer,
		metrics: NewMetrics(),
		logger:  logger.Named("API"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server's metric collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(s.recoverer)
	s.router.Use(s.metrics.Instrument)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/critical", s.handleCritical)
		r.Get("/pvalue", s.handlePValue)
		r.Post("/interval", s.handleInterval)
		r.Post("/hypothesis", s.handleHypothesis)
		r.Post("/describe", s.handleDescribe)
	})

	if s.cfg.Server.MetricsEnabled {
		s.router.Handle("/metrics", s.metrics.Handler())
	}
	if s.cfg.Server.ProfilingEnabled {
		s.router.Mount("/debug", middleware.Profiler())
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Server.Port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting statbasket API on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("%s %s -> %d (%d bytes, %s) req=%s", r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
			time.Since(start), middleware.GetReqID(r.Context()))
	})
}

// recoverer turns panics into JSON 500 responses.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				s.writeError(w, fmt.Errorf("internal error: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Package web serves the egg calculator over HTTP: a JSON API for
// calculations, settings, location and the timer, a websocket stream of the
// running timer, and Prometheus metrics.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/engine"
	"github.com/hammamikhairi/ottoegg/internal/logger"
	"github.com/hammamikhairi/ottoegg/internal/metrics"
	"github.com/hammamikhairi/ottoegg/internal/notify"
)

const shutdownTimeout = 5 * time.Second

// Option configures the server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.http.Addr = addr
	}
}

// WithTimeouts sets the read and write timeouts.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		s.http.ReadTimeout = read
		s.http.WriteTimeout = write
	}
}

// WithMetrics exposes m on /metrics.
func WithMetrics(m *metrics.Registry) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithHub serves the timer stream on /ws/timer.
func WithHub(h *Hub) Option {
	return func(s *Server) {
		s.hub = h
	}
}

// WithRecorder exposes recent notifications on /api/v1/notifications.
func WithRecorder(r *notify.Recorder) Option {
	return func(s *Server) {
		s.notes = r
	}
}

// Server is the HTTP front end.
type Server struct {
	engine  *engine.Engine
	timer   domain.TimerController
	metrics *metrics.Registry
	hub     *Hub
	notes   *notify.Recorder
	log     *logger.Logger

	http *http.Server
}

// New creates a server. Call Serve to start it.
func New(eng *engine.Engine, timer domain.TimerController, log *logger.Logger, opts ...Option) *Server {
	s := &Server{
		engine: eng,
		timer:  timer,
		log:    log,
		http:   &http.Server{Addr: ":8080"},
	}
	for _, o := range opts {
		o(s)
	}
	s.http.Handler = s.Handler()
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLog(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Get("/metrics", s.handleMetrics)
	}
	if s.hub != nil {
		r.Get("/ws/timer", s.hub.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/presets", s.handlePresets)
		r.Get("/languages", s.handleLanguages)
		r.Post("/calculate", s.handleCalculate)
		r.Get("/estimate", s.handleEstimate)
		r.Get("/atmosphere", s.handleAtmosphere)
		r.Get("/alarm.wav", s.handleAlarmSound)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.handleGetSettings)
			r.Delete("/", s.handleResetSettings)
			r.Put("/{key}", s.handleSetSetting)
		})

		r.Route("/location", func(r chi.Router) {
			r.Get("/", s.handleGetLocation)
			r.Post("/", s.handleDetectLocation)
			r.Put("/pressure", s.handleSetPressure)
			r.Put("/boiling-point", s.handleSetBoilingPoint)
		})

		r.Route("/timer", func(r chi.Router) {
			r.Get("/", s.handleGetTimer)
			r.Post("/start", s.handleStartTimer)
			r.Post("/pause", s.timerAction(s.timer.Pause))
			r.Post("/resume", s.timerAction(s.timer.Resume))
			r.Post("/dismiss", s.timerAction(s.timer.Dismiss))
			r.Post("/stop", s.handleStopTimer)
		})

		if s.notes != nil {
			r.Get("/notifications", s.handleNotifications)
		}
	})
	return r
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", s.http.Addr)
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutCtx); err != nil {
		return err
	}
	s.log.Info("http server stopped")
	return nil
}

// requestLog logs one line per request through the application logger.
func requestLog(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("%s %s -> %d (%s, req %s)", r.Method, r.URL.Path, ww.Status(),
				time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
		})
	}
}

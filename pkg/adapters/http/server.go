package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aretw0/grouplog/internal/logging"
	"github.com/aretw0/grouplog/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MaxBodyBytes bounds a webhook request body.
const MaxBodyBytes = 1 << 20

// EventParser verifies a webhook request and decodes its events.
type EventParser interface {
	Parse(r *http.Request) ([]domain.Event, error)
}

// Dispatcher handles decoded events.
type Dispatcher interface {
	DispatchAll(ctx context.Context, events []domain.Event) error
}

// Server serves the webhook callback plus health and metrics endpoints.
type Server struct {
	parser     EventParser
	dispatcher Dispatcher
	gatherer   prometheus.Gatherer
	logger     *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer exposes the given registry on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler creates the HTTP handler for the bot.
func NewHandler(parser EventParser, dispatcher Dispatcher, opts ...Option) http.Handler {
	s := &Server{
		parser:     parser,
		dispatcher: dispatcher,
		gatherer:   prometheus.DefaultGatherer,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/callback", s.Callback)
	r.Get("/health", s.GetHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// Callback handles the POST /callback webhook request.
func (s *Server) Callback(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	events, err := s.parser.Parse(r)
	if err != nil {
		s.logger.Warn("Rejected webhook",
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := s.dispatcher.DispatchAll(r.Context(), events); err != nil {
		s.logger.Error("Webhook dispatch failed",
			"request_id", middleware.GetReqID(r.Context()),
			"events", len(events),
			"err", err,
		)
		// Non-2xx lets the platform redeliver.
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.logger.Debug("Callback response write failed", "err", err)
	}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		s.logger.Debug("Health response encode failed", "err", err)
	}
}

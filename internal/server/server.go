// Package server exposes the screener over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/ExplosionScreener/internal/config"
	"github.com/Alias1177/ExplosionScreener/internal/metrics"
	"github.com/Alias1177/ExplosionScreener/internal/scoring"
	"github.com/Alias1177/ExplosionScreener/internal/screener"
	"github.com/Alias1177/ExplosionScreener/models"
)

// Screener is the set of pipeline operations served over HTTP
type Screener interface {
	Candidates(ctx context.Context, kind scoring.Kind) ([]models.Candidate, error)
	NewListings(ctx context.Context) ([]string, error)
	TopGainers(ctx context.Context) ([]models.TickerSnapshot, error)
	Analyze(ctx context.Context, symbol string) (models.Candidate, error)
}

// Server routes API requests to the screener
type Server struct {
	screener Screener
	limiter  *RateLimiter
	logger   zerolog.Logger
}

// New creates a server. The per-client limiter is taken from cfg.
func New(s Screener, cfg *config.Config) *Server {
	return &Server{
		screener: s,
		limiter:  NewRateLimiter(cfg.HTTPRateLimit, cfg.HTTPBurst),
		logger:   log.With().Str("component", "server").Logger(),
	}
}

// Handler builds the router with its middleware chain
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(metrics.InstrumentHandler)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.limiter.Handler)
	api.HandleFunc("/top-gainers", s.handleTopGainers).Methods(http.MethodGet)
	api.HandleFunc("/explosion-candidates", s.handleCandidates(scoring.KindExplosion)).Methods(http.MethodGet)
	api.HandleFunc("/pre-explosion-signals", s.handleCandidates(scoring.KindPreExplosion)).Methods(http.MethodGet)
	api.HandleFunc("/new-listings", s.handleNewListings).Methods(http.MethodGet)
	api.HandleFunc("/analysis/{symbol}", s.handleAnalysis).Methods(http.MethodGet)

	// Router middleware does not run for unmatched requests
	r.NotFoundHandler = metrics.InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	}))
	r.MethodNotAllowedHandler = metrics.InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}))

	return s.logRequests(r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTopGainers(w http.ResponseWriter, r *http.Request) {
	gainers, err := s.screener.TopGainers(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gainers)
}

func (s *Server) handleCandidates(kind scoring.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidates, err := s.screener.Candidates(r.Context(), kind)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, candidateViews(kind, candidates))
	}
}

func (s *Server) handleNewListings(w http.ResponseWriter, r *http.Request) {
	symbols, err := s.screener.NewListings(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	listings := make([]listingView, 0, len(symbols))
	for _, symbol := range symbols {
		listings = append(listings, listingView{Symbol: symbol})
	}
	writeJSON(w, http.StatusOK, listings)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	candidate, err := s.screener.Analyze(r.Context(), symbol)
	if errors.Is(err, screener.ErrSymbolNotFound) {
		writeError(w, http.StatusNotFound, "symbol not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCandidateView(scoring.KindAnalysis, candidate))
}

// internalError logs the cause and returns the generic 500 body
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("Handled request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

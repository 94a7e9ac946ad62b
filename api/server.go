// Package api exposes the scratch-card product over HTTP: account
// endpoints, the play lifecycle and the category catalog.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"raspadinha/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Server is the HTTP API server.
type Server struct {
	users service.UserService
	plays service.PlayService
}

// NewServer creates a new API server.
func NewServer(users service.UserService, plays service.PlayService) *Server {
	return &Server{users: users, plays: plays}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/categories", s.handleListCategories)

		r.Post("/users", s.handleCreateUser)
		r.Get("/users/{userID}/balance", s.handleGetBalance)
		r.Post("/users/{userID}/deposit", s.handleDeposit)

		r.Post("/plays", s.handlePurchase)
		r.Post("/plays/{playID}/reveal", s.handleReveal)
		r.Post("/plays/{playID}/complete", s.handleComplete)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// requestLogger logs one line per request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
		}).Debug("Handled request")
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
		},
	})
}

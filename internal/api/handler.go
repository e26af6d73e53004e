// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	custom_errors "github-sparks/internal/errors"
	"github-sparks/internal/model"
)

// Searcher resolves ranked repositories for a topic.
type Searcher interface {
	SearchRepos(ctx context.Context, topic string, allowStale bool) ([]model.RankedRepository, error)
}

// Handler is the container for API dependencies.
type Handler struct {
	searcher Searcher
	trending []string
	logger   *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
// metricsHandler is mounted at /metrics when non-nil.
func NewRouter(searcher Searcher, trending []string, metricsHandler http.Handler, logger *slog.Logger) http.Handler {
	h := &Handler{
		searcher: searcher,
		trending: trending,
		logger:   logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Get("/sparks", h.getSparks)
		r.Get("/topics/trending", h.getTrendingTopics)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getSparks returns the ranked repositories for a topic.
// GET /v1/sparks?topic=T&stale=true
func (h *Handler) getSparks(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if strings.TrimSpace(topic) == "" {
		respondWithError(w, http.StatusBadRequest, custom_errors.ErrEmptyTopic.Error())
		return
	}

	allowStale := false
	if s := r.URL.Query().Get("stale"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'stale' parameter. Must be a boolean.")
			return
		}
		allowStale = v
	}

	repos, err := h.searcher.SearchRepos(r.Context(), topic, allowStale)
	if err != nil {
		var upstreamErr *custom_errors.UpstreamError
		if errors.As(err, &upstreamErr) {
			respondWithError(w, http.StatusBadGateway, upstreamErr.Error())
			return
		}
		h.logger.Error("Failed to search repositories", "topic", topic, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"topic":   topic,
		"count":   len(repos),
		"results": repos,
	})
}

// getTrendingTopics lists the topics kept warm by the service.
// GET /v1/topics/trending
func (h *Handler) getTrendingTopics(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string][]string{"topics": h.trending})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Package api serves the latest stored snapshot over HTTP
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/myusername/tennis-stats-scraper/internal/store"
	"github.com/myusername/tennis-stats-scraper/pkg/models"
)

// Handler serves snapshot reads
type Handler struct {
	store  store.Store
	logger *zap.SugaredLogger
}

// NewHandler creates a Handler reading from s
func NewHandler(s store.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: s, logger: logger.Sugar()}
}

// Router returns the HTTP routes
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats", h.GetStats)
		r.Get("/stats/{key}", h.GetPlayerStats)
		r.Get("/choices", h.GetChoices)
		r.Get("/digest", h.GetDigest)
	})
	return r
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statsResponse struct {
	CycleID   string          `json:"cycle_id"`
	FetchedAt time.Time       `json:"fetched_at"`
	Skipped   int             `json:"skipped"`
	Stats     models.StatsMap `json:"stats"`
}

// GetStats returns the whole stats map of the latest cycle
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.latest(w, r)
	if !ok {
		return
	}
	h.jsonResponse(w, http.StatusOK, statsResponse{
		CycleID:   snapshot.CycleID,
		FetchedAt: snapshot.FetchedAt,
		Skipped:   snapshot.Skipped,
		Stats:     snapshot.Stats,
	})
}

// GetPlayerStats returns the stats of one "name (rank)" key
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	// chi matches on the escaped path, and keys carry spaces and parentheses
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid player key")
		return
	}
	snapshot, ok := h.latest(w, r)
	if !ok {
		return
	}
	stats, found := snapshot.Stats[key]
	if !found {
		h.errorResponse(w, http.StatusNotFound, "player not found")
		return
	}
	h.jsonResponse(w, http.StatusOK, stats)
}

// GetChoices returns the player choice list of the latest cycle
func (h *Handler) GetChoices(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.latest(w, r)
	if !ok {
		return
	}
	choices := snapshot.Choices
	if choices == nil {
		choices = []string{}
	}
	h.jsonResponse(w, http.StatusOK, choices)
}

// GetDigest returns the digest text of the latest cycle
func (h *Handler) GetDigest(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.latest(w, r)
	if !ok {
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]string{"digest": snapshot.Digest})
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) (*models.Snapshot, bool) {
	snapshot, err := h.store.Latest(r.Context())
	if errors.Is(err, store.ErrNoSnapshot) {
		h.errorResponse(w, http.StatusNotFound, "no data yet")
		return nil, false
	}
	if err != nil {
		h.logger.Errorw("Failed to load snapshot", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "failed to load snapshot")
		return nil, false
	}
	return snapshot, true
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warnw("Failed to write response", "error", err)
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

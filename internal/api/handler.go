package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/punchamoorthee/favoritemovies/internal/models"
	"github.com/punchamoorthee/favoritemovies/internal/service"
	"github.com/punchamoorthee/favoritemovies/internal/store"
)

// SessionHeader carries the handle returned by a successful login.
const SessionHeader = "X-Session-Handle"

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movies_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "movies_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "endpoint"})
)

// EventLister reads the favorite audit log.
type EventLister interface {
	FavoriteEvents(ctx context.Context, userID int64, limit uint64) ([]models.FavoriteEvent, error)
}

type Handler struct {
	auth      *service.AuthSequencer
	favorites *service.FavoriteService
	sessions  store.SessionRepository
	events    EventLister
	logger    *zap.Logger
}

// NewHandler wires the HTTP surface. events may be nil when no database is
// configured.
func NewHandler(auth *service.AuthSequencer, favorites *service.FavoriteService, sessions store.SessionRepository, events EventLister, logger *zap.Logger) *Handler {
	return &Handler{
		auth:      auth,
		favorites: favorites,
		sessions:  sessions,
		events:    events,
		logger:    logger,
	}
}

// Routes registers every endpoint on r.
func (h *Handler) Routes(r *mux.Router) {
	r.Use(instrument)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthCheckHandler).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/session", h.LoginHandler).Methods(http.MethodPost)
	v1.HandleFunc("/session", h.LogoutHandler).Methods(http.MethodDelete)
	v1.HandleFunc("/movies/{id}/favorite", h.GetFavoriteHandler).Methods(http.MethodGet)
	v1.HandleFunc("/movies/{id}/favorite", h.MarkFavoriteHandler).Methods(http.MethodPut)
	v1.HandleFunc("/movies/{id}/favorite", h.UnmarkFavoriteHandler).Methods(http.MethodDelete)
	v1.HandleFunc("/favorites/events", h.FavoriteEventsHandler).Methods(http.MethodGet)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// instrument labels metrics with the route template so that movie ids do
// not explode the series count.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tmpl
			}
		}

		timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(r.Method, endpoint))
		defer timer.ObserveDuration()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		httpRequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(sw.status)).Inc()
	})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	if payload == nil {
		w.WriteHeader(code)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

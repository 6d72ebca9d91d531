package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/punchamoorthee/favoritemovies/internal/domain"
	"github.com/punchamoorthee/favoritemovies/internal/models"
	"github.com/punchamoorthee/favoritemovies/internal/presenter"
	"github.com/punchamoorthee/favoritemovies/internal/service"
	"github.com/punchamoorthee/favoritemovies/internal/store"
)

const (
	defaultEventLimit = 20
	maxEventLimit     = 100
	maxLoginBody      = 1 << 20
)

var errMissingHandle = errors.New("missing session handle")

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LoginHandler runs the handshake and hands out a session handle.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxLoginBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	view := presenter.NewRecorder()
	res := h.auth.Begin(r.Context(), view, req.Username, req.Password)
	if res.State != domain.StateAuthenticated {
		failure := models.LoginFailure{
			State:   string(res.State),
			Reason:  "unknown",
			Message: view.Message(),
		}
		var stepErr *domain.StepError
		if errors.As(res.Err, &stepErr) {
			failure.Reason = stepErr.Reason
			failure.Step = string(stepErr.Step)
			failure.StatusCode = stepErr.StatusCode
		}
		respondWithJSON(w, loginStatus(res.Err), failure)
		return
	}

	handle := uuid.New()
	if err := h.sessions.SaveSession(r.Context(), handle, res.Session); err != nil {
		h.logger.Error("session save failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Could not store session")
		return
	}

	respondWithJSON(w, http.StatusCreated, models.LoginResponse{
		Handle:   handle.String(),
		UserID:   res.Session.UserID,
		State:    string(res.State),
		Message:  service.LoginSucceeded,
		Navigate: view.Navigated(),
	})
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	handle, err := parseHandle(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Missing or malformed "+SessionHeader+" header")
		return
	}
	if err := h.sessions.DeleteSession(r.Context(), handle); err != nil {
		h.logger.Error("session delete failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Could not delete session")
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// GetFavoriteHandler reports whether the movie is favorited and which
// detail view control is visible.
func (h *Handler) GetFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	movieID, ok := parseMovieID(w, r)
	if !ok {
		return
	}

	view := presenter.NewRecorder()
	favorited, err := h.favorites.Refresh(r.Context(), view, sess, movieID)
	resp := models.FavoriteResponse{
		MovieID:  movieID,
		Controls: view.Controls(),
		Message:  view.Message(),
	}
	if err != nil {
		respondWithJSON(w, upstreamStatus(err), resp)
		return
	}
	resp.Favorite = &favorited
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) MarkFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	h.setFavorite(w, r, true)
}

func (h *Handler) UnmarkFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	h.setFavorite(w, r, false)
}

func (h *Handler) setFavorite(w http.ResponseWriter, r *http.Request, favorite bool) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	movieID, ok := parseMovieID(w, r)
	if !ok {
		return
	}

	view := presenter.NewRecorder()
	res, err := h.favorites.Set(r.Context(), view, sess, movieID, favorite)
	resp := models.FavoriteResponse{
		MovieID:    movieID,
		StatusCode: res.StatusCode,
		Applied:    &res.Applied,
		Controls:   view.Controls(),
		Message:    view.Message(),
	}
	if err != nil {
		respondWithJSON(w, upstreamStatus(err), resp)
		return
	}
	resp.Favorite = &favorite
	respondWithJSON(w, http.StatusOK, resp)
}

// FavoriteEventsHandler lists the caller's audited favorite toggles.
func (h *Handler) FavoriteEventsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.events == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Favorite audit log is not configured")
		return
	}

	limit := uint64(defaultEventLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n == 0 || n > maxEventLimit {
			respondWithError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	events, err := h.events.FavoriteEvents(r.Context(), sess.UserID, limit)
	if err != nil {
		h.logger.Error("favorite events query failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if events == nil {
		events = []models.FavoriteEvent{}
	}
	respondWithJSON(w, http.StatusOK, events)
}

// session resolves the caller's handle. It writes the error response itself
// and reports false when the request cannot continue.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (domain.Session, bool) {
	handle, err := parseHandle(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Missing or malformed "+SessionHeader+" header")
		return domain.Session{}, false
	}

	sess, err := h.sessions.GetSession(r.Context(), handle)
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		respondWithError(w, http.StatusUnauthorized, "Unknown session")
		return domain.Session{}, false
	case err != nil:
		h.logger.Error("session lookup failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return domain.Session{}, false
	}
	return sess, true
}

func parseHandle(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(SessionHeader)
	if raw == "" {
		return uuid.Nil, errMissingHandle
	}
	return uuid.Parse(raw)
}

func parseMovieID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "Movie id must be a positive integer")
		return 0, false
	}
	return id, true
}

// loginStatus maps a failed handshake to an HTTP status.
func loginStatus(err error) int {
	switch domain.Kind(err) {
	case domain.ErrValidation:
		return http.StatusBadRequest
	case domain.ErrTransport:
		return http.StatusBadGateway
	default:
		return http.StatusUnauthorized
	}
}

// upstreamStatus maps a favorite protocol failure to an HTTP status.
func upstreamStatus(err error) int {
	if errors.Is(err, domain.ErrValidation) {
		return http.StatusUnauthorized
	}
	return http.StatusBadGateway
}

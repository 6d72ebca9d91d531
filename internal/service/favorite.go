package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/punchamoorthee/favoritemovies/internal/domain"
	"github.com/punchamoorthee/favoritemovies/internal/models"
	"github.com/punchamoorthee/favoritemovies/internal/presenter"
)

const (
	favoritesLoadFailed  = "Could not load favorites."
	favoriteUpdateFailed = "Could not update favorite."
	favoritesPage        = 1
)

var favoriteTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "movies_favorite_toggles_total",
	Help: "Favorite toggles by requested value and outcome",
}, []string{"favorite", "outcome"})

// Auditor records favorite toggle attempts.
type Auditor interface {
	RecordFavorite(ctx context.Context, ev models.FavoriteEvent) error
}

// SetResult is the server's verdict on a favorite toggle.
type SetResult struct {
	StatusCode int
	Applied    bool
}

// FavoriteService queries and mutates one movie's favorite status for an
// authenticated session.
type FavoriteService struct {
	api    MovieAPI
	audit  Auditor
	logger *zap.Logger
	now    func() time.Time
}

// NewFavoriteService returns a service; audit may be nil.
func NewFavoriteService(api MovieAPI, audit Auditor, logger *zap.Logger) *FavoriteService {
	return &FavoriteService{api: api, audit: audit, logger: logger, now: time.Now}
}

// Status reports whether movieID is on the first page of the user's
// favorites. Later pages are never consulted, so a favorite beyond page one
// reads as not favorited.
func (s *FavoriteService) Status(ctx context.Context, sess domain.Session, movieID int64) (bool, error) {
	if !sess.Authenticated() {
		return false, domain.ErrNotAuthenticated
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "favorites.status")
	defer span.End()
	span.SetAttributes(attribute.Int64("movies.movie_id", movieID))

	movies, _, err := s.api.FavoriteMovies(ctx, sess.UserID, sess.SessionID, favoritesPage)
	if err != nil {
		span.SetStatus(codes.Error, "favorite movies")
		return false, err
	}
	for _, m := range movies {
		if m.ID == movieID {
			return true, nil
		}
	}
	return false, nil
}

// Refresh queries the status and shows the matching detail view controls.
func (s *FavoriteService) Refresh(ctx context.Context, view presenter.Presenter, sess domain.Session, movieID int64) (bool, error) {
	favorited, err := s.Status(ctx, sess, movieID)
	if err != nil {
		s.logger.Warn("favorite status failed", zap.Int64("movie_id", movieID), zap.Error(err))
		view.ShowMessage(favoritesLoadFailed)
		return false, err
	}
	presenter.ShowFavorited(view, favorited)
	return favorited, nil
}

// Set asks the server to add or remove movieID. The controls only change
// once the server confirmed with an accepted status code; any other outcome
// leaves them as they are and shows a notice.
func (s *FavoriteService) Set(ctx context.Context, view presenter.Presenter, sess domain.Session, movieID int64, favorite bool) (SetResult, error) {
	if !sess.Authenticated() {
		return SetResult{}, domain.ErrNotAuthenticated
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "favorites.set")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("movies.movie_id", movieID),
		attribute.Bool("movies.favorite", favorite),
	)

	code, _, err := s.api.MarkFavorite(ctx, sess.UserID, sess.SessionID, movieID, favorite)
	res := SetResult{StatusCode: code}
	if err == nil {
		if accepted(favorite, code) {
			res.Applied = true
		} else {
			err = fmt.Errorf("%w: unexpected status_code %d", domain.ErrProtocol, code)
		}
	}
	s.record(ctx, sess, movieID, favorite, res)

	if err != nil {
		favoriteTogglesTotal.WithLabelValues(fmt.Sprint(favorite), "failed").Inc()
		span.SetStatus(codes.Error, "favorite toggle")
		s.logger.Warn("favorite toggle failed",
			zap.Int64("movie_id", movieID),
			zap.Bool("favorite", favorite),
			zap.Int("status_code", code),
			zap.Error(err),
		)
		view.ShowMessage(favoriteUpdateFailed)
		return res, err
	}

	favoriteTogglesTotal.WithLabelValues(fmt.Sprint(favorite), "applied").Inc()
	presenter.ShowFavorited(view, favorite)
	return res, nil
}

func accepted(favorite bool, code int) bool {
	if favorite {
		return code == domain.StatusSuccess || code == domain.StatusAlreadyUpdated
	}
	return code == domain.StatusDeleted
}

func (s *FavoriteService) record(ctx context.Context, sess domain.Session, movieID int64, favorite bool, res SetResult) {
	if s.audit == nil {
		return
	}
	ev := models.FavoriteEvent{
		UserID:     sess.UserID,
		MovieID:    movieID,
		Favorite:   favorite,
		StatusCode: res.StatusCode,
		Applied:    res.Applied,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.audit.RecordFavorite(ctx, ev); err != nil {
		s.logger.Error("favorite audit failed", zap.Int64("movie_id", movieID), zap.Error(err))
	}
}

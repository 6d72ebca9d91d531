package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/punchamoorthee/favoritemovies/internal/domain"
	"github.com/punchamoorthee/favoritemovies/internal/presenter"
)

const tracerName = "github.com/punchamoorthee/favoritemovies/internal/service"

// LoginSucceeded is shown once the handshake is complete. The status line is
// cleared again just before navigating away from the login screen.
const LoginSucceeded = "Login Successful!"

var loginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "movies_login_attempts_total",
	Help: "Login handshakes by terminal outcome",
}, []string{"result"})

// MovieAPI is the subset of the movie API used by the protocols.
// *tmdb.Client implements it.
type MovieAPI interface {
	RequestToken(ctx context.Context) (string, int, error)
	ValidateWithLogin(ctx context.Context, username, password, token string) (bool, int, error)
	CreateSession(ctx context.Context, token string) (string, int, error)
	Account(ctx context.Context, sessionID string) (int64, int, error)
	FavoriteMovies(ctx context.Context, userID int64, sessionID string, page int) ([]domain.Movie, int, error)
	MarkFavorite(ctx context.Context, userID int64, sessionID string, movieID int64, favorite bool) (int, int, error)
}

// LoginResult is the terminal outcome of one handshake.
type LoginResult struct {
	State   domain.AuthState
	Session domain.Session
	// States lists every state entered, in order.
	States []domain.AuthState
	Err    error
}

func (r *LoginResult) enter(s domain.AuthState) {
	r.State = s
	r.States = append(r.States, s)
}

type loginStep struct {
	pending domain.AuthState
	run     func(ctx context.Context, a *attempt) error
}

type attempt struct {
	username string
	password string
	session  *domain.Session
}

// AuthSequencer runs the four-step login handshake.
type AuthSequencer struct {
	api    MovieAPI
	strict bool
	logger *zap.Logger
}

// NewAuthSequencer returns a sequencer. With strict set, a validation
// response carrying success=false fails the handshake; otherwise any boolean
// success value is accepted.
func NewAuthSequencer(api MovieAPI, strict bool, logger *zap.Logger) *AuthSequencer {
	return &AuthSequencer{api: api, strict: strict, logger: logger}
}

// Begin drives the handshake to AUTHENTICATED or FAILED. Steps run strictly
// one after another; the first failure ends the run and leaves the session
// fields of later steps unset.
func (s *AuthSequencer) Begin(ctx context.Context, view presenter.Presenter, username, password string) LoginResult {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "auth.login")
	defer span.End()

	res := LoginResult{}
	res.enter(domain.StateStart)

	var err error
	switch {
	case username == "":
		err = &domain.StepError{Step: domain.StepValidateInput, Reason: domain.ReasonEmptyUsername, Err: domain.ErrEmptyUsername}
	case password == "":
		err = &domain.StepError{Step: domain.StepValidateInput, Reason: domain.ReasonEmptyPassword, Err: domain.ErrEmptyPassword}
	}

	if err == nil {
		a := &attempt{username: username, password: password, session: &res.Session}
		for _, step := range s.steps() {
			res.enter(step.pending)
			if err = step.run(ctx, a); err != nil {
				break
			}
		}
	}

	if err != nil {
		res.enter(domain.StateFailed)
		res.Err = err
		reason := failureReason(err)
		loginAttemptsTotal.WithLabelValues(reason).Inc()
		span.SetStatus(codes.Error, reason)
		s.logger.Warn("login failed", zap.String("reason", reason), zap.Error(err))
		view.ShowMessage(LoginMessage(err))
		return res
	}

	res.enter(domain.StateAuthenticated)
	loginAttemptsTotal.WithLabelValues("authenticated").Inc()
	span.SetAttributes(attribute.Int64("movies.user_id", res.Session.UserID))
	s.logger.Info("login succeeded", zap.Int64("user_id", res.Session.UserID))
	view.ShowMessage(LoginSucceeded)
	view.ShowMessage("")
	view.NavigateToAuthenticatedScreen()
	return res
}

func (s *AuthSequencer) steps() []loginStep {
	return []loginStep{
		{domain.StateRequestTokenPending, s.requestToken},
		{domain.StateTokenValidationPending, s.validateLogin},
		{domain.StateSessionPending, s.createSession},
		{domain.StateUserIDPending, s.fetchAccount},
	}
}

func (s *AuthSequencer) requestToken(ctx context.Context, a *attempt) error {
	token, status, err := s.api.RequestToken(ctx)
	if err != nil {
		return &domain.StepError{Step: domain.StepRequestToken, Reason: domain.ReasonRequestTokenError, StatusCode: status, Err: err}
	}
	a.session.RequestToken = token
	return nil
}

func (s *AuthSequencer) validateLogin(ctx context.Context, a *attempt) error {
	ok, status, err := s.api.ValidateWithLogin(ctx, a.username, a.password, a.session.RequestToken)
	if err == nil && !ok && s.strict {
		err = fmt.Errorf("%w: login rejected", domain.ErrProtocol)
	}
	if err != nil {
		return &domain.StepError{Step: domain.StepValidateLogin, Reason: domain.ReasonLoginError, StatusCode: status, Err: err}
	}
	return nil
}

func (s *AuthSequencer) createSession(ctx context.Context, a *attempt) error {
	sessionID, status, err := s.api.CreateSession(ctx, a.session.RequestToken)
	if err != nil {
		return &domain.StepError{Step: domain.StepCreateSession, Reason: domain.ReasonSessionError, StatusCode: status, Err: err}
	}
	a.session.SessionID = sessionID
	return nil
}

func (s *AuthSequencer) fetchAccount(ctx context.Context, a *attempt) error {
	userID, status, err := s.api.Account(ctx, a.session.SessionID)
	if err == nil && userID <= 0 {
		err = fmt.Errorf("%w: account id %d", domain.ErrDecode, userID)
	}
	if err != nil {
		return &domain.StepError{Step: domain.StepFetchAccount, Reason: domain.ReasonAccountError, StatusCode: status, Err: err}
	}
	a.session.UserID = userID
	return nil
}

func failureReason(err error) string {
	var stepErr *domain.StepError
	if errors.As(err, &stepErr) {
		return stepErr.Reason
	}
	return "unknown"
}

// LoginMessage is the status line shown for a failed handshake.
func LoginMessage(err error) string {
	var stepErr *domain.StepError
	if !errors.As(err, &stepErr) {
		return "Login Failed."
	}
	transport := errors.Is(err, domain.ErrTransport)

	switch stepErr.Step {
	case domain.StepValidateInput:
		if stepErr.Reason == domain.ReasonEmptyUsername {
			return "Username Empty."
		}
		return "Password Empty."
	case domain.StepRequestToken:
		if transport {
			return "Login Failed. (Request Token)."
		}
		return "Error parsing request token"
	case domain.StepValidateLogin:
		if transport {
			return "Login Failed. (loginWithToken)."
		}
		return fmt.Sprintf("Login Failed. Status Code %d", stepErr.StatusCode)
	case domain.StepCreateSession:
		if transport {
			return "Login Failed. (getSessionID)."
		}
		return "Login Failed."
	case domain.StepFetchAccount:
		return "Login Failed. (Could not retrieve user ID)"
	}
	return "Login Failed."
}

package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/punchamoorthee/favoritemovies/internal/domain"
	"github.com/punchamoorthee/favoritemovies/internal/models"
)

const tracerName = "github.com/punchamoorthee/favoritemovies/internal/tmdb"

var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movies_api_requests_total",
		Help: "Outbound movie API requests, labeled by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "movies_api_request_duration_seconds",
		Help:    "Latency distribution of outbound movie API requests",
		Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"endpoint"})
)

// Endpoint labels.
const (
	EndpointRequestToken   = "request_token"
	EndpointValidateLogin  = "validate_login"
	EndpointCreateSession  = "create_session"
	EndpointAccount        = "account"
	EndpointFavoriteMovies = "favorite_movies"
	EndpointMarkFavorite   = "mark_favorite"
)

// Doer sends a single request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is the raw outcome of one exchange.
type Response struct {
	Body       []byte
	StatusCode int
}

// Client talks to the movie API. Every call is single-shot; nothing is
// retried or cached.
type Client struct {
	baseURL string
	creds   domain.Credentials
	http    Doer
	tracer  trace.Tracer
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a client for baseURL, which must end with a slash.
func NewClient(baseURL string, creds domain.Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		creds:   creds,
		http:    &http.Client{Timeout: 10 * time.Second},
		tracer:  otel.Tracer(tracerName),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestToken issues a fresh request token.
func (c *Client) RequestToken(ctx context.Context) (string, int, error) {
	resp, err := c.do(ctx, EndpointRequestToken, http.MethodGet, "authentication/token/new", nil, nil)
	if err != nil {
		return "", 0, err
	}
	token, err := DecodeRequestToken(resp.Body)
	c.observe(EndpointRequestToken, err)
	return token, resp.StatusCode, err
}

// ValidateWithLogin authorizes token with the user's credentials and
// returns the reported success flag.
func (c *Client) ValidateWithLogin(ctx context.Context, username, password, token string) (bool, int, error) {
	params := url.Values{
		"username":      {username},
		"password":      {password},
		"request_token": {token},
	}
	resp, err := c.do(ctx, EndpointValidateLogin, http.MethodGet, "authentication/token/validate_with_login", params, nil)
	if err != nil {
		return false, 0, err
	}
	ok, err := DecodeValidateLogin(resp.Body)
	c.observe(EndpointValidateLogin, err)
	return ok, resp.StatusCode, err
}

// CreateSession exchanges a validated token for a session id.
func (c *Client) CreateSession(ctx context.Context, token string) (string, int, error) {
	params := url.Values{"request_token": {token}}
	resp, err := c.do(ctx, EndpointCreateSession, http.MethodGet, "authentication/session/new", params, nil)
	if err != nil {
		return "", 0, err
	}
	sessionID, err := DecodeSession(resp.Body)
	c.observe(EndpointCreateSession, err)
	return sessionID, resp.StatusCode, err
}

// Account returns the user id owning sessionID.
func (c *Client) Account(ctx context.Context, sessionID string) (int64, int, error) {
	params := url.Values{"session_id": {sessionID}}
	resp, err := c.do(ctx, EndpointAccount, http.MethodGet, "account", params, nil)
	if err != nil {
		return 0, 0, err
	}
	userID, err := DecodeAccount(resp.Body)
	c.observe(EndpointAccount, err)
	return userID, resp.StatusCode, err
}

// FavoriteMovies fetches one page of the user's favorite movies.
func (c *Client) FavoriteMovies(ctx context.Context, userID int64, sessionID string, page int) ([]domain.Movie, int, error) {
	params := url.Values{
		"session_id": {sessionID},
		"page":       {strconv.Itoa(page)},
	}
	path := fmt.Sprintf("account/%d/favorite/movies", userID)
	resp, err := c.do(ctx, EndpointFavoriteMovies, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, 0, err
	}
	movies, err := DecodeFavoriteMovies(resp.Body)
	c.observe(EndpointFavoriteMovies, err)
	return movies, resp.StatusCode, err
}

// MarkFavorite adds or removes movieID from the user's favorites and
// returns the movie API status_code of the response.
func (c *Client) MarkFavorite(ctx context.Context, userID int64, sessionID string, movieID int64, favorite bool) (int, int, error) {
	params := url.Values{"session_id": {sessionID}}
	path := fmt.Sprintf("account/%d/favorite", userID)
	body := models.FavoriteRequest{MediaType: "movie", MediaID: movieID, Favorite: favorite}
	resp, err := c.do(ctx, EndpointMarkFavorite, http.MethodPost, path, params, body)
	if err != nil {
		return 0, 0, err
	}
	code, err := DecodeStatus(resp.Body)
	c.observe(EndpointMarkFavorite, err)
	return code, resp.StatusCode, err
}

// do performs one exchange. Only transport failures are returned as errors;
// non-2xx responses are handed to the decoder like any other body.
func (c *Client) do(ctx context.Context, endpoint, method, path string, params url.Values, body any) (Response, error) {
	ctx, span := c.tracer.Start(ctx, "tmdb."+endpoint, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	timer := prometheus.NewTimer(apiRequestDuration.WithLabelValues(endpoint))
	defer timer.ObserveDuration()

	resp, err := c.exchange(ctx, method, path, params, body)
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("movies.endpoint", endpoint),
	)
	if err != nil {
		apiRequestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		c.logger.Warn("movie api request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return Response{}, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return resp, nil
}

func (c *Client) exchange(ctx context.Context, method, path string, params url.Values, body any) (Response, error) {
	query := url.Values{"api_key": {c.creds.APIKey}}
	for k, vs := range params {
		query[k] = vs
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("%w: encode body: %v", domain.ErrTransport, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query.Encode(), reader)
	if err != nil {
		return Response{}, fmt.Errorf("%w: build request: %v", domain.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("%w: read body: %v", domain.ErrTransport, err)
	}
	return Response{Body: data, StatusCode: resp.StatusCode}, nil
}

func (c *Client) observe(endpoint string, err error) {
	outcome := "ok"
	if errors.Is(err, domain.ErrDecode) {
		outcome = "decode_error"
	}
	apiRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

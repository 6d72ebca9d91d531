package domain

// Credentials is the static part of every movie API call.
// It is built once from configuration and never mutated.
type Credentials struct {
	APIKey string
}

// Session is the result of the login handshake.
// A zero field means the corresponding step has not completed.
// SessionID is only set after RequestToken was validated and UserID only
// after SessionID was issued.
type Session struct {
	RequestToken string `json:"request_token"`
	SessionID    string `json:"session_id"`
	UserID       int64  `json:"user_id"`
}

// Authenticated reports whether account-scoped calls may use the session.
func (s Session) Authenticated() bool {
	return s.SessionID != "" && s.UserID != 0
}

// Movie is supplied by the caller; only ID takes part in favorite checks.
type Movie struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path,omitempty"`
}

// AuthState is a position in the login state machine.
type AuthState string

const (
	StateStart                  AuthState = "START"
	StateRequestTokenPending    AuthState = "REQUEST_TOKEN_PENDING"
	StateTokenValidationPending AuthState = "TOKEN_VALIDATION_PENDING"
	StateSessionPending         AuthState = "SESSION_PENDING"
	StateUserIDPending          AuthState = "USER_ID_PENDING"
	StateAuthenticated          AuthState = "AUTHENTICATED"
	StateFailed                 AuthState = "FAILED"
)

// Terminal reports whether no further transition is possible.
func (s AuthState) Terminal() bool {
	return s == StateAuthenticated || s == StateFailed
}

// Control identifies a toggle on the movie detail view.
type Control string

const (
	ControlFavorite   Control = "favorite"
	ControlUnfavorite Control = "unfavorite"
)

// Movie API status codes returned by the favorite endpoint.
const (
	StatusSuccess        = 1
	StatusAlreadyUpdated = 12
	StatusDeleted        = 13
)

package models

import "time"

// FavoriteRequest is the JSON body of the movie API favorite mutation.
type FavoriteRequest struct {
	MediaType string `json:"media_type"`
	MediaID   int64  `json:"media_id"`
	Favorite  bool   `json:"favorite"`
}

// LoginRequest is the payload from the client.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned once the handshake reached AUTHENTICATED.
type LoginResponse struct {
	Handle   string `json:"handle"`
	UserID   int64  `json:"user_id"`
	State    string `json:"state"`
	Message  string `json:"message"`
	Navigate bool   `json:"navigate"`
}

// LoginFailure is returned when the handshake ended in FAILED.
type LoginFailure struct {
	State      string `json:"state"`
	Reason     string `json:"reason"`
	Step       string `json:"step,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message"`
}

// FavoriteResponse describes the detail view after a favorite query or toggle.
type FavoriteResponse struct {
	MovieID    int64           `json:"movie_id"`
	Favorite   *bool           `json:"favorite,omitempty"`
	StatusCode int             `json:"status_code,omitempty"`
	Applied    *bool           `json:"applied,omitempty"`
	Controls   map[string]bool `json:"controls"`
	Message    string          `json:"message,omitempty"`
}

// FavoriteEvent is one audited favorite toggle attempt.
type FavoriteEvent struct {
	UserID     int64     `json:"user_id"`
	MovieID    int64     `json:"movie_id"`
	Favorite   bool      `json:"favorite"`
	StatusCode int       `json:"status_code"`
	Applied    bool      `json:"applied"`
	CreatedAt  time.Time `json:"created_at"`
}

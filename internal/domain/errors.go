package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by the login handshake or the favorite
// protocol matches exactly one of them with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrTransport  = errors.New("transport error")
	ErrDecode     = errors.New("decode error")
	ErrProtocol   = errors.New("protocol error")
)

var (
	ErrEmptyUsername    = fmt.Errorf("%w: empty username", ErrValidation)
	ErrEmptyPassword    = fmt.Errorf("%w: empty password", ErrValidation)
	ErrNotAuthenticated = fmt.Errorf("%w: session is not authenticated", ErrValidation)
)

// Step names a stage of the login handshake.
type Step string

const (
	StepValidateInput Step = "validate_input"
	StepRequestToken  Step = "request_token"
	StepValidateLogin Step = "validate_login"
	StepCreateSession Step = "create_session"
	StepFetchAccount  Step = "fetch_account"
)

// Failure reasons reported to callers of the login handshake.
const (
	ReasonEmptyUsername     = "empty-username"
	ReasonEmptyPassword     = "empty-password"
	ReasonRequestTokenError = "request-token-error"
	ReasonLoginError        = "login-error"
	ReasonSessionError      = "session-error"
	ReasonAccountError      = "account-error"
)

// StepError is the terminal failure of one login step.
type StepError struct {
	Step       Step
	Reason     string
	StatusCode int
	Err        error
}

func (e *StepError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%s, status %d): %v", e.Reason, e.Step, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Reason, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Kind returns the error kind of err, or nil if it has none.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrTransport, ErrDecode, ErrProtocol} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

package model

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy shared by every layer. Concrete errors below wrap one of
// these sentinels so callers can branch with errors.Is.
var (
	ErrNetworkFailure  = errors.New("network failure")
	ErrServerRejected  = errors.New("server rejected request")
	ErrDeserialization = errors.New("deserialization error")
	ErrForbidden       = errors.New("forbidden")
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrSelfAward       = errors.New("you cannot award badges to yourself")
	ErrInvalidInput    = errors.New("invalid input")
)

// Validation errors. All of them match ErrInvalidInput.
var (
	ErrInvalidSession      = fmt.Errorf("%w: session missing", ErrInvalidInput)
	ErrSessionIDEmpty      = fmt.Errorf("%w: session id must not be empty", ErrInvalidInput)
	ErrInvalidRole         = fmt.Errorf("%w: role must be user or admin", ErrInvalidInput)
	ErrUsernameEmpty       = fmt.Errorf("%w: username must not be empty", ErrInvalidInput)
	ErrPasswordEmpty       = fmt.Errorf("%w: password must not be empty", ErrInvalidInput)
	ErrBadgeNameEmpty      = fmt.Errorf("%w: badge name must not be empty", ErrInvalidInput)
	ErrBadgeNameTooLong    = fmt.Errorf("%w: badge name must not exceed %d characters", ErrInvalidInput, MaxBadgeNameLength)
	ErrBadgeDescEmpty      = fmt.Errorf("%w: badge description must not be empty", ErrInvalidInput)
	ErrBadgeIDEmpty        = fmt.Errorf("%w: badge id must not be empty", ErrInvalidInput)
	ErrUserIDEmpty         = fmt.Errorf("%w: user id must not be empty", ErrInvalidInput)
	ErrInvalidTheme        = fmt.Errorf("%w: theme must be light or dark", ErrInvalidInput)
	ErrIconFilenameInvalid = fmt.Errorf("%w: icon filename must not contain path separators", ErrInvalidInput)
)

// NetworkError reports a request that could not be sent or whose response
// could not be received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is matches ErrNetworkFailure.
func (e *NetworkError) Is(target error) bool { return target == ErrNetworkFailure }

// RejectedError reports an HTTP exchange that completed but was refused:
// {success:false}, {error:...} or a non-2xx status.
type RejectedError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if msg == "" {
		msg = "request failed"
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Is matches ErrServerRejected.
func (e *RejectedError) Is(target error) bool { return target == ErrServerRejected }

// IsNotFound returns true for 404 rejections.
func (e *RejectedError) IsNotFound() bool { return e.StatusCode == http.StatusNotFound }

// IsUnauthorized returns true for 401 rejections.
func (e *RejectedError) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }

// DecodeError reports a persisted value or wire payload that failed to parse.
type DecodeError struct {
	Source string // e.g. "storage:currentUser", "realtime", "GET /badges"
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is matches ErrDeserialization.
func (e *DecodeError) Is(target error) bool { return target == ErrDeserialization }

// UserMessage renders err the way it should be shown to a person: the server's
// own message for rejections, a fixed sentence otherwise.
func UserMessage(err error) string {
	var rej *RejectedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rej) && rej.Message != "":
		return rej.Message
	case errors.Is(err, ErrSelfAward):
		return ErrSelfAward.Error()
	case errors.Is(err, ErrNotLoggedIn):
		return "You need to be logged in to do that"
	case errors.Is(err, ErrForbidden):
		return "Administrator access required"
	case errors.Is(err, ErrNetworkFailure):
		return "Could not reach the server. Please try again."
	case errors.Is(err, ErrDeserialization):
		return "The server sent a response that could not be read"
	default:
		return err.Error()
	}
}

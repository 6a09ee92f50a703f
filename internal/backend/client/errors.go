package client

import (
	"fmt"

	"telecare/internal/errors"
)

// Sentinel errors the session manager branches on.
var (
	ErrNoSession          = errors.New("client: no active session")
	ErrInvalidCredentials = errors.New("client: invalid credentials")
	ErrUserAlreadyExists  = errors.New("client: email already registered")
	ErrProfileNotFound    = errors.New("client: profile not found")
	ErrProfileExists      = errors.New("client: profile already exists")
	ErrAccessDenied       = errors.New("client: access denied")
	ErrSessionExpired     = errors.New("client: session expired")
)

// APIError is a non-sentinel backend failure, preserving the envelope fields
// for logging.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("backend: %s (%d %s): %s", e.Message, e.StatusCode, e.Code, e.Details)
	}
	return fmt.Sprintf("backend: %s (%d %s)", e.Message, e.StatusCode, e.Code)
}

// mapAPIError converts a backend error envelope into the sentinel the manager
// understands, falling back to APIError for everything else.
func mapAPIError(statusCode int, code, message, details string) error {
	switch code {
	case "INVALID_CREDENTIALS":
		return ErrInvalidCredentials
	case "USER_ALREADY_EXISTS":
		return ErrUserAlreadyExists
	case "PROFILE_NOT_FOUND":
		return ErrProfileNotFound
	case "PROFILE_ALREADY_EXISTS":
		return ErrProfileExists
	case "ACCESS_DENIED", "FORBIDDEN":
		return ErrAccessDenied
	case "REFRESH_TOKEN_INVALID":
		return ErrSessionExpired
	}

	return &APIError{StatusCode: statusCode, Code: code, Message: message, Details: details}
}

// Package client is the boundary to the backend consumed by the session
// manager: an auth API (identity + tokens) and a profile API (the profiles
// table), plus the HTTP implementation speaking the reference REST surface.
package client

import (
	"time"

	"github.com/google/uuid"
)

// User is the backend identity record.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session is an issued token pair bound to a user.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Profile is a row of the profiles table, keyed by the owning user id.
type Profile struct {
	UserID        uuid.UUID `json:"id"`
	FullName      string    `json:"full_name"`
	UserType      string    `json:"user_type"`
	ContactNumber string    `json:"contact_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProfileAttributes is the payload for creating a profile row.
type ProfileAttributes struct {
	FullName      string `json:"full_name"`
	UserType      string `json:"user_type"`
	ContactNumber string `json:"contact_number"`
}

// ProfileChanges is a partial update. Nil fields are left untouched.
type ProfileChanges struct {
	FullName      *string `json:"full_name,omitempty"`
	UserType      *string `json:"user_type,omitempty"`
	ContactNumber *string `json:"contact_number,omitempty"`
}

// SignUpResult carries the created identity and, when the backend confirms
// accounts immediately, the session issued alongside it. Session is nil when
// the account still needs confirmation.
type SignUpResult struct {
	User    User     `json:"user"`
	Session *Session `json:"session,omitempty"`
}

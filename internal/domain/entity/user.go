// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity minted by the auth provider at sign-up. It carries
// only what the provider owns; role and contact data live on the Profile.
type User struct {
	ID        uuid.UUID // The unique identifier for the user, shared with the profile row.
	Email     string    // The user's login identifier.
	CreatedAt time.Time // Timestamp of when this identity was created.
	UpdatedAt time.Time // Timestamp of the last modification to this identity.
}

// Profile is the application-owned record extending a User with role and
// contact data. It is one-to-one with User, keyed by the user's id, and is
// created by an explicit insert after sign-up rather than by the backend.
// A user without a profile row is a valid, recoverable state.
type Profile struct {
	UserID        uuid.UUID // Primary key, equal to the owning User's ID.
	FullName      string    // The user's display name.
	UserType      UserType  // The user's role: patient, doctor or admin.
	ContactNumber string    // The user's contact phone number.
	CreatedAt     time.Time // Timestamp of when the profile row was inserted.
	UpdatedAt     time.Time // Timestamp of the last profile edit.
}

// Authentication represents a single email/password credential record.
type Authentication struct {
	ID           uuid.UUID // The unique ID for this credential record itself.
	UserID       uuid.UUID // Links this credential to the User it belongs to.
	Email        string    // The login email, unique across credentials.
	PasswordHash string    // The bcrypt-hashed password.
	CreatedAt    time.Time // Timestamp of when this credential was created.
}

// RefreshToken represents a long-lived, authorized user session on the
// backend. It is used to obtain a new access token without credentials.
type RefreshToken struct {
	ID        uuid.UUID // The unique ID for this refresh token record.
	UserID    uuid.UUID // Links this session to the User it belongs to.
	TokenHash string    // SHA-256 hash of the raw refresh token.
	ExpiresAt time.Time // When this refresh token becomes invalid.
	CreatedAt time.Time // When this session was created.
}

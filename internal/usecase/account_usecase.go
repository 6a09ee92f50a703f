// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"telecare/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to create a new identity.
type RegisterInput struct {
	Email    string
	Password string
}

// LoginInput defines the data required to sign in with a password.
type LoginInput struct {
	Email    string
	Password string
}

// RefreshInput carries the raw refresh token to exchange for a new session.
type RefreshInput struct {
	RefreshToken string
}

// LogoutInput carries the raw refresh token of the session to terminate.
type LogoutInput struct {
	RefreshToken string
}

// --- Output DTOs ---

// RegisterOutput returns the newly minted identity. Session is nil when the
// deployment requires confirmation before the first sign-in; callers must
// treat that as a registered-but-signed-out outcome.
type RegisterOutput struct {
	User    *entity.User
	Session *entity.Session
}

// LoginOutput returns the established session after a successful sign-in.
type LoginOutput struct {
	Session *entity.Session
}

// RefreshOutput returns the renewed session. The refresh token is unchanged.
type RefreshOutput struct {
	Session *entity.Session
}

// AccountUsecase defines the interface for identity and session operations.
// This is the contract that the delivery layer (API handlers) depends on.
type AccountUsecase interface {
	// Register creates a new identity from an email and password.
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// Login verifies credentials and establishes a session.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// RefreshToken exchanges a valid refresh token for a new access token.
	RefreshToken(ctx context.Context, input *RefreshInput) (*RefreshOutput, error)

	// Logout terminates the session identified by the refresh token.
	Logout(ctx context.Context, input *LogoutInput) error

	// CurrentUser returns the identity record for an authenticated user.
	CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// DeleteAccount removes the identity and everything keyed to it. It is
	// the compensating action when profile creation fails after sign-up.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"telecare/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for authentication persistence.
// This allows the application layer to handle specific outcomes without depending on database-specific errors.
var (
	// ErrAuthNotFound is returned when a credential record is not found.
	ErrAuthNotFound = errors.New("authentication record not found")
	// ErrRefreshTokenNotFound is returned when a refresh token is not found.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	// ErrRefreshTokenExpired is returned when a refresh token exists but has expired.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// AuthRepository defines the standard operations for credential persistence.
type AuthRepository interface {
	// CreateAuthentication persists a new email/password credential.
	CreateAuthentication(ctx context.Context, auth *entity.Authentication) error

	// FindAuthenticationByEmail retrieves a credential by its login email.
	FindAuthenticationByEmail(ctx context.Context, email string) (*entity.Authentication, error)

	// DeleteAuthenticationsByUserID removes all credentials for a user.
	DeleteAuthenticationsByUserID(ctx context.Context, userID uuid.UUID) error
}

// RefreshTokenRepository defines the standard operations for session persistence.
type RefreshTokenRepository interface {
	// CreateRefreshToken persists a new refresh token, representing a user session.
	CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error

	// FindRefreshTokenByHash retrieves a refresh token record by its securely stored hash.
	FindRefreshTokenByHash(ctx context.Context, hash string) (*entity.RefreshToken, error)

	// DeleteRefreshTokenByHash deletes a refresh token by its hash, effectively ending a session.
	DeleteRefreshTokenByHash(ctx context.Context, hash string) error

	// DeleteRefreshTokensByUserID removes all refresh tokens for a user.
	DeleteRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteExpiredRefreshTokens removes all expired refresh tokens.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

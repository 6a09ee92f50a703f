package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims carried by the JWT tokens.
type Claims struct {
	UserID   uuid.UUID
	UserType string // Role from the profile at issue time; empty when no profile exists yet.
	Type     string // "access" or "refresh".
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateTokens creates a new access token and refresh token for a given user.
	GenerateTokens(userID uuid.UUID, userType string) (accessToken string, refreshToken string, err error)

	// ValidateAccessToken checks the validity of an access token string.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// ValidateRefreshToken checks the validity of a refresh token string.
	ValidateRefreshToken(tokenString string) (*Claims, error)

	// HashToken returns the hash under which a raw refresh token is stored.
	HashToken(token string) string

	// GetAccessTokenDuration returns the configured lifetime for access tokens.
	GetAccessTokenDuration() time.Duration

	// GetRefreshTokenDuration returns the configured lifetime for refresh tokens.
	GetRefreshTokenDuration() time.Duration
}

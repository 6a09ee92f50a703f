// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"telecare/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrProfileNotFound is returned when no profile row exists for a user.
// A missing profile is an expected, recoverable state: the row is inserted
// explicitly after sign-up, not by the backend.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository defines the standard operations for profile persistence.
type ProfileRepository interface {
	// FindByUserID retrieves the profile row keyed by the user's id.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)

	// Create inserts a new profile row for a user.
	Create(ctx context.Context, profile *entity.Profile) error

	// Update modifies an existing profile row.
	Update(ctx context.Context, profile *entity.Profile) error

	// DeleteByUserID removes the profile row for a user.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

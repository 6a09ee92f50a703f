package usecase

import (
	"context"

	"telecare/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateProfileInput defines the data required to insert the profile row
// extending an identity with role and contact data.
type CreateProfileInput struct {
	UserID        uuid.UUID
	FullName      string
	UserType      string
	ContactNumber string
}

// UpdateProfileInput defines a partial profile edit. Nil fields are left
// untouched.
type UpdateProfileInput struct {
	UserID        uuid.UUID
	FullName      *string
	UserType      *string
	ContactNumber *string
}

// ProfileUsecase defines the interface for profile-related business operations.
type ProfileUsecase interface {
	// GetProfile retrieves the profile row for a user. A missing row is
	// reported as a not-found error, which callers treat as a valid state.
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)

	// CreateProfile inserts the profile row for a user.
	CreateProfile(ctx context.Context, input *CreateProfileInput) (*entity.Profile, error)

	// UpdateProfile applies a partial edit to an existing profile row.
	UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.Profile, error)
}

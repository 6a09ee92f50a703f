package handler

import (
	"log/slog"
	"net/http"
	"time"

	"telecare/internal/delivery/http/middleware"
	"telecare/internal/delivery/http/response"
	"telecare/internal/domain/entity"
	"telecare/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ProfileHandler holds dependencies for profile handlers.
type ProfileHandler struct {
	uc     usecase.ProfileUsecase
	logger *slog.Logger
}

// NewProfileHandler is the constructor for ProfileHandler, injected by Fx.
func NewProfileHandler(uc usecase.ProfileUsecase, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		uc:     uc,
		logger: logger,
	}
}

type createProfileRequest struct {
	FullName      string `json:"full_name" validate:"required"`
	UserType      string `json:"user_type" validate:"required"`
	ContactNumber string `json:"contact_number"`
}

type updateProfileRequest struct {
	FullName      *string `json:"full_name"`
	UserType      *string `json:"user_type"`
	ContactNumber *string `json:"contact_number"`
}

// profilePayload is the profile shape returned to clients.
type profilePayload struct {
	ID            uuid.UUID `json:"id"`
	FullName      string    `json:"full_name"`
	UserType      string    `json:"user_type"`
	ContactNumber string    `json:"contact_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toProfilePayload(profile *entity.Profile) profilePayload {
	return profilePayload{
		ID:            profile.UserID,
		FullName:      profile.FullName,
		UserType:      profile.UserType.String(),
		ContactNumber: profile.ContactNumber,
		CreatedAt:     profile.CreatedAt,
		UpdatedAt:     profile.UpdatedAt,
	}
}

// GetProfile returns the authenticated user's profile row. A missing row is
// reported as 404 and clients treat it as a valid onboarding state.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	profile, err := h.uc.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toProfilePayload(profile), "Profile retrieved successfully")
}

// GetProfileByID returns any user's profile row. Reserved for admin accounts
// via the role middleware on its route.
func (h *ProfileHandler) GetProfileByID(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user ID")
	}

	profile, err := h.uc.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toProfilePayload(profile), "Profile retrieved successfully")
}

// CreateProfile inserts the authenticated user's profile row.
func (h *ProfileHandler) CreateProfile(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req createProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid profile input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "full_name and user_type are required")
	}

	profile, err := h.uc.CreateProfile(c.Request().Context(), &usecase.CreateProfileInput{
		UserID:        userID,
		FullName:      req.FullName,
		UserType:      req.UserType,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toProfilePayload(profile), "Profile created successfully")
}

// UpdateProfile applies a partial edit to the authenticated user's profile row.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid profile input")
	}

	profile, err := h.uc.UpdateProfile(c.Request().Context(), &usecase.UpdateProfileInput{
		UserID:        userID,
		FullName:      req.FullName,
		UserType:      req.UserType,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toProfilePayload(profile), "Profile updated successfully")
}

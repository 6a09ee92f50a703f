package impl

import (
	"context"
	"log/slog"

	deliverycontext "telecare/internal/delivery/context"
	"telecare/internal/domain/entity"
	domainerrors "telecare/internal/domain/errors"
	"telecare/internal/domain/repository"
	"telecare/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// profileService implements the ProfileUsecase interface.
type profileService struct {
	txManager   repository.TransactionManager
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	logger      *slog.Logger
}

// ProfileServiceParams holds dependencies for profileService, injected by Fx.
type ProfileServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	UserRepo    repository.UserRepository
	ProfileRepo repository.ProfileRepository
	Logger      *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		txManager:   params.TxManager,
		userRepo:    params.UserRepo,
		profileRepo: params.ProfileRepo,
		logger:      params.Logger,
	}
}

func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProfile retrieves the profile row for a user. The missing-row case is
// surfaced as ErrProfileNotFound; for a freshly registered account that is
// an expected outcome, not a failure.
func (srv *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	profile, err := srv.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, errors.Wrap(domainerrors.ErrProfileNotFound, "no profile row for user")
		}

		return nil, errors.Wrap(err, "failed to load profile")
	}

	return profile, nil
}

// CreateProfile inserts the profile row for a user. The row is keyed by the
// user's id, so a second insert for the same user is rejected.
func (srv *profileService) CreateProfile(ctx context.Context, input *usecase.CreateProfileInput) (*entity.Profile, error) {
	srv.log(ctx).Info("Creating profile", slog.Any("userID", input.UserID), slog.String("userType", input.UserType))

	userType := entity.UserType(input.UserType)
	if !userType.IsValid() {
		srv.log(ctx).Warn("Rejected profile with unknown user type", slog.Any("userID", input.UserID), slog.String("userType", input.UserType))

		return nil, errors.Wrap(domainerrors.ErrInvalidUserType, "unknown user type")
	}
	if input.FullName == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "full name is required")
	}

	profile := &entity.Profile{
		UserID:        input.UserID,
		FullName:      input.FullName,
		UserType:      userType,
		ContactNumber: input.ContactNumber,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		// The identity must exist before the row extending it.
		if _, findErr := repoFactory.UserRepo().FindByID(ctx, input.UserID); findErr != nil {
			return errors.Wrap(findErr, "failed to find user for profile")
		}

		if createErr := repoFactory.ProfileRepo().Create(ctx, profile); createErr != nil {
			return errors.Wrap(createErr, "failed to create profile")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute profile creation transaction", slog.Any("userID", input.UserID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute profile creation transaction")
	}

	srv.log(ctx).Debug("Profile created", slog.Any("userID", input.UserID))

	return profile, nil
}

// UpdateProfile applies a partial edit to an existing profile row and
// returns the updated row.
func (srv *profileService) UpdateProfile(ctx context.Context, input *usecase.UpdateProfileInput) (*entity.Profile, error) {
	srv.log(ctx).Info("Updating profile", slog.Any("userID", input.UserID))

	var updated *entity.Profile
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		profileRepo := repoFactory.ProfileRepo()

		profile, findErr := profileRepo.FindByUserID(ctx, input.UserID)
		if findErr != nil {
			return errors.Wrap(findErr, "failed to load profile for update")
		}

		if input.FullName != nil {
			profile.FullName = *input.FullName
		}
		if input.UserType != nil {
			userType := entity.UserType(*input.UserType)
			if !userType.IsValid() {
				return errors.Wrap(domainerrors.ErrInvalidUserType, "unknown user type")
			}
			profile.UserType = userType
		}
		if input.ContactNumber != nil {
			profile.ContactNumber = *input.ContactNumber
		}

		if updateErr := profileRepo.Update(ctx, profile); updateErr != nil {
			return errors.Wrap(updateErr, "failed to update profile")
		}

		updated = profile

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute profile update transaction", slog.Any("userID", input.UserID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute profile update transaction")
	}

	srv.log(ctx).Debug("Profile updated", slog.Any("userID", input.UserID))

	return updated, nil
}

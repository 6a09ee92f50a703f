package postgres

import (
	"context"

	"telecare/internal/domain/entity"
	domainerrors "telecare/internal/domain/errors"
	"telecare/internal/domain/repository"
	"telecare/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// profileRepository implements the repository.ProfileRepository interface using GORM.
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository is the constructor for profileRepository.
func NewProfileRepository(db *gorm.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

// FindByUserID retrieves the profile row keyed by the user's id.
func (repo *profileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	var profileM model.ProfileModel
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profileM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProfileNotFound
		}

		return nil, errors.Wrap(err, "failed to find profile by user id")
	}

	return toProfileDomain(&profileM), nil
}

// Create inserts a new profile row for a user.
func (repo *profileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	profileM := fromProfileDomain(profile)

	if err := repo.db.WithContext(ctx).Create(profileM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrProfileAlreadyExists.WrapMessage("profile already exists for user")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("no user for profile")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required profile fields")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create profile")
	}

	profile.CreatedAt = profileM.CreatedAt
	profile.UpdatedAt = profileM.UpdatedAt

	return nil
}

// Update modifies an existing profile row.
func (repo *profileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	profileM := fromProfileDomain(profile)

	result := repo.db.WithContext(ctx).
		Model(&model.ProfileModel{}).
		Where("user_id = ?", profile.UserID).
		Updates(map[string]any{
			"full_name":      profileM.FullName,
			"user_type":      profileM.UserType,
			"contact_number": profileM.ContactNumber,
		})
	if result.Error != nil {
		if isNotNullConstraintViolation(result.Error) {
			return domainerrors.ErrProfileUpdateFailed.WrapMessage("missing required profile fields")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update profile")
	}
	if result.RowsAffected == 0 {
		return repository.ErrProfileNotFound
	}

	return nil
}

// DeleteByUserID removes the profile row for a user.
func (repo *profileRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.ProfileModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete profile")
	}

	return nil
}

func toProfileDomain(data *model.ProfileModel) *entity.Profile {
	if data == nil {
		return nil
	}

	return &entity.Profile{
		UserID:        data.UserID,
		FullName:      data.FullName,
		UserType:      entity.UserType(data.UserType),
		ContactNumber: data.ContactNumber,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

func fromProfileDomain(data *entity.Profile) *model.ProfileModel {
	if data == nil {
		return nil
	}

	return &model.ProfileModel{
		UserID:        data.UserID,
		FullName:      data.FullName,
		UserType:      data.UserType.String(),
		ContactNumber: data.ContactNumber,
	}
}

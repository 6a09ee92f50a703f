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

// authRepository implements the repository.AuthRepository interface using GORM.
type authRepository struct {
	db *gorm.DB
}

// NewAuthRepository is the constructor for authRepository.
func NewAuthRepository(db *gorm.DB) repository.AuthRepository {
	return &authRepository{db: db}
}

// CreateAuthentication persists a new email/password credential.
func (repo *authRepository) CreateAuthentication(ctx context.Context, auth *entity.Authentication) error {
	authM := fromAuthDomain(auth)

	if err := repo.db.WithContext(ctx).Create(authM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already registered")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("no user for credential")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create authentication")
	}

	auth.ID = authM.ID
	auth.CreatedAt = authM.CreatedAt

	return nil
}

// FindAuthenticationByEmail retrieves a credential by its login email.
func (repo *authRepository) FindAuthenticationByEmail(ctx context.Context, email string) (*entity.Authentication, error) {
	var authM model.AuthenticationModel
	if err := repo.db.WithContext(ctx).
		Where("email = ?", email).
		First(&authM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAuthNotFound
		}

		return nil, errors.Wrap(err, "failed to find authentication by email")
	}

	return toAuthDomain(&authM), nil
}

// DeleteAuthenticationsByUserID removes all credentials for a user.
func (repo *authRepository) DeleteAuthenticationsByUserID(ctx context.Context, userID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.AuthenticationModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete authentications")
	}

	return nil
}

func toAuthDomain(data *model.AuthenticationModel) *entity.Authentication {
	if data == nil {
		return nil
	}

	return &entity.Authentication{
		ID:           data.ID,
		UserID:       data.UserID,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		CreatedAt:    data.CreatedAt,
	}
}

func fromAuthDomain(data *entity.Authentication) *model.AuthenticationModel {
	if data == nil {
		return nil
	}

	return &model.AuthenticationModel{
		ID:           data.ID,
		UserID:       data.UserID,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
	}
}

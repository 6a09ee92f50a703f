package impl

import (
	"context"
	"testing"

	"telecare/internal/domain/entity"
	domainerrors "telecare/internal/domain/errors"
	"telecare/internal/domain/repository"
	mockRepo "telecare/internal/mocks/repository"
	"telecare/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type profileServiceFixtures struct {
	service     usecase.ProfileUsecase
	txManager   *mockRepo.MockTransactionManager
	userRepo    *mockRepo.MockUserRepository
	profileRepo *mockRepo.MockProfileRepository
}

func createTestProfileService(t *testing.T) profileServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	profileRepo := mockRepo.NewMockProfileRepository(t)

	service := NewProfileService(ProfileServiceParams{
		TxManager:   txManager,
		UserRepo:    userRepo,
		ProfileRepo: profileRepo,
		Logger:      newDiscardLogger(),
	})

	return profileServiceFixtures{
		service:     service,
		txManager:   txManager,
		userRepo:    userRepo,
		profileRepo: profileRepo,
	}
}

func TestProfileService_GetProfile_Success(t *testing.T) {
	fx := createTestProfileService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.profileRepo.EXPECT().
		FindByUserID(ctx, userID).
		Return(&entity.Profile{UserID: userID, FullName: "Jane Doe", UserType: entity.UserTypePatient}, nil)

	profile, err := fx.service.GetProfile(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", profile.FullName)
	assert.Equal(t, entity.UserTypePatient, profile.UserType)
}

func TestProfileService_GetProfile_MissingRow(t *testing.T) {
	fx := createTestProfileService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.profileRepo.EXPECT().
		FindByUserID(ctx, userID).
		Return(nil, repository.ErrProfileNotFound)

	profile, err := fx.service.GetProfile(ctx, userID)

	require.Error(t, err)
	assert.Nil(t, profile)
	assert.True(t, errors.Is(err, domainerrors.ErrProfileNotFound))
}

func TestProfileService_CreateProfile_Success(t *testing.T) {
	fx := createTestProfileService(t)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.CreateProfileInput{
		UserID:        userID,
		FullName:      "Jane Doe",
		UserType:      "patient",
		ContactNumber: "+15550100",
	}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)
			mockProfileRepo := mockRepo.NewMockProfileRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockFactory.EXPECT().ProfileRepo().Return(mockProfileRepo)

			mockUserRepo.EXPECT().
				FindByID(ctx, userID).
				Return(&entity.User{ID: userID}, nil)
			mockProfileRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.Profile")).
				Return(nil)

			return fn(mockFactory)
		})

	profile, err := fx.service.CreateProfile(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, userID, profile.UserID)
	assert.Equal(t, entity.UserTypePatient, profile.UserType)
	assert.Equal(t, "+15550100", profile.ContactNumber)
}

func TestProfileService_CreateProfile_UnknownUserType(t *testing.T) {
	fx := createTestProfileService(t)

	profile, err := fx.service.CreateProfile(context.Background(), &usecase.CreateProfileInput{
		UserID:   uuid.New(),
		FullName: "Jane Doe",
		UserType: "superuser",
	})

	require.Error(t, err)
	assert.Nil(t, profile)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidUserType))
}

func TestProfileService_CreateProfile_EmptyFullName(t *testing.T) {
	fx := createTestProfileService(t)

	profile, err := fx.service.CreateProfile(context.Background(), &usecase.CreateProfileInput{
		UserID:   uuid.New(),
		UserType: "doctor",
	})

	require.Error(t, err)
	assert.Nil(t, profile)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestProfileService_CreateProfile_DuplicateRow(t *testing.T) {
	fx := createTestProfileService(t)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.CreateProfileInput{
		UserID:   userID,
		FullName: "Jane Doe",
		UserType: "patient",
	}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)
			mockProfileRepo := mockRepo.NewMockProfileRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockFactory.EXPECT().ProfileRepo().Return(mockProfileRepo)

			mockUserRepo.EXPECT().
				FindByID(ctx, userID).
				Return(&entity.User{ID: userID}, nil)
			mockProfileRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.Profile")).
				Return(domainerrors.ErrProfileAlreadyExists)

			return fn(mockFactory)
		})

	profile, err := fx.service.CreateProfile(ctx, input)

	require.Error(t, err)
	assert.Nil(t, profile)
	assert.True(t, errors.Is(err, domainerrors.ErrProfileAlreadyExists))
}

func TestProfileService_UpdateProfile_PartialEdit(t *testing.T) {
	fx := createTestProfileService(t)

	ctx := context.Background()
	userID := uuid.New()
	newName := "Jane Smith"
	input := &usecase.UpdateProfileInput{
		UserID:   userID,
		FullName: &newName,
	}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockProfileRepo := mockRepo.NewMockProfileRepository(t)

			mockFactory.EXPECT().ProfileRepo().Return(mockProfileRepo)

			mockProfileRepo.EXPECT().
				FindByUserID(ctx, userID).
				Return(&entity.Profile{
					UserID:        userID,
					FullName:      "Jane Doe",
					UserType:      entity.UserTypePatient,
					ContactNumber: "+15550100",
				}, nil)
			mockProfileRepo.EXPECT().
				Update(ctx, mock.AnythingOfType("*entity.Profile")).
				Run(func(ctx context.Context, profile *entity.Profile) {
					assert.Equal(t, "Jane Smith", profile.FullName)
					assert.Equal(t, entity.UserTypePatient, profile.UserType)
					assert.Equal(t, "+15550100", profile.ContactNumber)
				}).
				Return(nil)

			return fn(mockFactory)
		})

	updated, err := fx.service.UpdateProfile(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", updated.FullName)
	assert.Equal(t, "+15550100", updated.ContactNumber, "untouched fields keep their values")
}

func TestProfileService_UpdateProfile_MissingRow(t *testing.T) {
	fx := createTestProfileService(t)

	ctx := context.Background()
	userID := uuid.New()
	newName := "Jane Smith"

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockProfileRepo := mockRepo.NewMockProfileRepository(t)

			mockFactory.EXPECT().ProfileRepo().Return(mockProfileRepo)

			mockProfileRepo.EXPECT().
				FindByUserID(ctx, userID).
				Return(nil, repository.ErrProfileNotFound)

			return fn(mockFactory)
		})

	updated, err := fx.service.UpdateProfile(ctx, &usecase.UpdateProfileInput{
		UserID:   userID,
		FullName: &newName,
	})

	require.Error(t, err)
	assert.Nil(t, updated)
	assert.True(t, errors.Is(err, repository.ErrProfileNotFound))
}

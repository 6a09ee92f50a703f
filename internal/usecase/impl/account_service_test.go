package impl

import (
	"context"
	"testing"
	"time"

	"telecare/internal/domain/entity"
	domainerrors "telecare/internal/domain/errors"
	"telecare/internal/domain/repository"
	mockRepo "telecare/internal/mocks/repository"
	mockSvc "telecare/internal/mocks/service"
	"telecare/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// accountServiceFixtures holds all test dependencies for account service tests.
type accountServiceFixtures struct {
	service          usecase.AccountUsecase
	txManager        *mockRepo.MockTransactionManager
	userRepo         *mockRepo.MockUserRepository
	authRepo         *mockRepo.MockAuthRepository
	profileRepo      *mockRepo.MockProfileRepository
	refreshTokenRepo *mockRepo.MockRefreshTokenRepository
	hasher           *mockSvc.MockPasswordHasher
	tokenService     *mockSvc.MockTokenService
}

func createTestAccountService(t *testing.T, autoConfirm bool) accountServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	authRepo := mockRepo.NewMockAuthRepository(t)
	profileRepo := mockRepo.NewMockProfileRepository(t)
	refreshTokenRepo := mockRepo.NewMockRefreshTokenRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)

	service := NewAccountService(AccountServiceParams{
		TxManager:        txManager,
		UserRepo:         userRepo,
		AuthRepo:         authRepo,
		ProfileRepo:      profileRepo,
		RefreshTokenRepo: refreshTokenRepo,
		Hasher:           hasher,
		TokenService:     tokenService,
		Config:           newTestConfig(autoConfirm),
		Logger:           newDiscardLogger(),
	})

	return accountServiceFixtures{
		service:          service,
		txManager:        txManager,
		userRepo:         userRepo,
		authRepo:         authRepo,
		profileRepo:      profileRepo,
		refreshTokenRepo: refreshTokenRepo,
		hasher:           hasher,
		tokenService:     tokenService,
	}
}

func TestAccountService_Register_AutoConfirmIssuesSession(t *testing.T) {
	fx := createTestAccountService(t, true)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Email:    "jane.doe@example.com",
		Password: "Password123!",
	}

	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)

			mockAuthRepo.EXPECT().
				FindAuthenticationByEmail(ctx, input.Email).
				Return(nil, repository.ErrAuthNotFound)

			mockUserRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.User")).
				Run(func(ctx context.Context, user *entity.User) {
					user.ID = uuid.New()
				}).
				Return(nil)

			mockAuthRepo.EXPECT().
				CreateAuthentication(ctx, mock.AnythingOfType("*entity.Authentication")).
				Return(nil)

			return fn(mockFactory)
		})

	fx.tokenService.EXPECT().
		GenerateTokens(mock.AnythingOfType("uuid.UUID"), "").
		Return("access_token", "refresh_token", nil)
	fx.tokenService.EXPECT().HashToken("refresh_token").Return("refresh_hash")
	fx.tokenService.EXPECT().GetRefreshTokenDuration().Return(168 * time.Hour)
	fx.tokenService.EXPECT().GetAccessTokenDuration().Return(15 * time.Minute)

	fx.refreshTokenRepo.EXPECT().
		CreateRefreshToken(ctx, mock.AnythingOfType("*entity.RefreshToken")).
		Return(nil)

	output, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, input.Email, output.User.Email)
	require.NotNil(t, output.Session)
	assert.Equal(t, "access_token", output.Session.AccessToken)
	assert.Equal(t, "refresh_token", output.Session.RefreshToken)
}

func TestAccountService_Register_WithoutAutoConfirmReturnsNoSession(t *testing.T) {
	fx := createTestAccountService(t, false)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Email:    "jane.doe@example.com",
		Password: "Password123!",
	}

	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)

			mockAuthRepo.EXPECT().
				FindAuthenticationByEmail(ctx, input.Email).
				Return(nil, repository.ErrAuthNotFound)

			mockUserRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.User")).
				Run(func(ctx context.Context, user *entity.User) {
					user.ID = uuid.New()
				}).
				Return(nil)

			mockAuthRepo.EXPECT().
				CreateAuthentication(ctx, mock.AnythingOfType("*entity.Authentication")).
				Return(nil)

			return fn(mockFactory)
		})

	output, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.NotNil(t, output.User)
	assert.Nil(t, output.Session)
}

func TestAccountService_Register_ShortPassword(t *testing.T) {
	fx := createTestAccountService(t, true)

	output, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Email:    "jane.doe@example.com",
		Password: "abc",
	})

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestAccountService_Register_EmailAlreadyRegistered(t *testing.T) {
	fx := createTestAccountService(t, true)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Email:    "jane.doe@example.com",
		Password: "Password123!",
	}

	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)

			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)
			mockFactory.EXPECT().UserRepo().Return(mockRepo.NewMockUserRepository(t)).Maybe()

			mockAuthRepo.EXPECT().
				FindAuthenticationByEmail(ctx, input.Email).
				Return(&entity.Authentication{UserID: uuid.New()}, nil)

			return fn(mockFactory)
		})

	output, err := fx.service.Register(ctx, input)

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
}

func TestAccountService_Login_Success(t *testing.T) {
	fx := createTestAccountService(t, true)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.LoginInput{
		Email:    "jane.doe@example.com",
		Password: "Password123!",
	}

	fx.authRepo.EXPECT().
		FindAuthenticationByEmail(ctx, input.Email).
		Return(&entity.Authentication{UserID: userID, Email: input.Email, PasswordHash: "hashed"}, nil)
	fx.hasher.EXPECT().Check(input.Password, "hashed").Return(true)
	fx.userRepo.EXPECT().
		FindByID(ctx, userID).
		Return(&entity.User{ID: userID, Email: input.Email}, nil)
	fx.profileRepo.EXPECT().
		FindByUserID(ctx, userID).
		Return(&entity.Profile{UserID: userID, FullName: "Jane Doe", UserType: entity.UserTypeDoctor}, nil)

	fx.tokenService.EXPECT().
		GenerateTokens(userID, "doctor").
		Return("access_token", "refresh_token", nil)
	fx.tokenService.EXPECT().HashToken("refresh_token").Return("refresh_hash")
	fx.tokenService.EXPECT().GetRefreshTokenDuration().Return(168 * time.Hour)
	fx.tokenService.EXPECT().GetAccessTokenDuration().Return(15 * time.Minute)

	fx.refreshTokenRepo.EXPECT().
		CreateRefreshToken(ctx, mock.AnythingOfType("*entity.RefreshToken")).
		Run(func(ctx context.Context, token *entity.RefreshToken) {
			assert.Equal(t, userID, token.UserID)
			assert.Equal(t, "refresh_hash", token.TokenHash)
		}).
		Return(nil)

	output, err := fx.service.Login(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, output)
	require.NotNil(t, output.Session)
	assert.Equal(t, "access_token", output.Session.AccessToken)
	assert.Equal(t, userID, output.Session.User.ID)
}

func TestAccountService_Login_NoProfileSignsInWithEmptyRole(t *testing.T) {
	fx := createTestAccountService(t, true)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.LoginInput{
		Email:    "fresh@example.com",
		Password: "Password123!",
	}

	fx.authRepo.EXPECT().
		FindAuthenticationByEmail(ctx, input.Email).
		Return(&entity.Authentication{UserID: userID, Email: input.Email, PasswordHash: "hashed"}, nil)
	fx.hasher.EXPECT().Check(input.Password, "hashed").Return(true)
	fx.userRepo.EXPECT().
		FindByID(ctx, userID).
		Return(&entity.User{ID: userID, Email: input.Email}, nil)
	fx.profileRepo.EXPECT().
		FindByUserID(ctx, userID).
		Return(nil, repository.ErrProfileNotFound)

	fx.tokenService.EXPECT().
		GenerateTokens(userID, "").
		Return("access_token", "refresh_token", nil)
	fx.tokenService.EXPECT().HashToken("refresh_token").Return("refresh_hash")
	fx.tokenService.EXPECT().GetRefreshTokenDuration().Return(168 * time.Hour)
	fx.tokenService.EXPECT().GetAccessTokenDuration().Return(15 * time.Minute)

	fx.refreshTokenRepo.EXPECT().
		CreateRefreshToken(ctx, mock.AnythingOfType("*entity.RefreshToken")).
		Return(nil)

	output, err := fx.service.Login(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, output.Session)
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	fx := createTestAccountService(t, true)

	ctx := context.Background()
	input := &usecase.LoginInput{
		Email:    "jane.doe@example.com",
		Password: "wrong",
	}

	fx.authRepo.EXPECT().
		FindAuthenticationByEmail(ctx, input.Email).
		Return(&entity.Authentication{UserID: uuid.New(), PasswordHash: "hashed"}, nil)
	fx.hasher.EXPECT().Check(input.Password, "hashed").Return(false)

	output, err := fx.service.Login(ctx, input)

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAccountService_Login_UnknownEmail(t *testing.T) {
	fx := createTestAccountService(t, true)

	ctx := context.Background()
	input := &usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "Password123!",
	}

	fx.authRepo.EXPECT().
		FindAuthenticationByEmail(ctx, input.Email).
		Return(nil, repository.ErrAuthNotFound)

	output, err := fx.service.Login(ctx, input)

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAccountService_RefreshToken_Success(t *testing.T) {
	fx := createTestAccountService(t, true)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.RefreshInput{RefreshToken: "stored_refresh"}

	fx.tokenService.EXPECT().
		ValidateRefreshToken(input.RefreshToken).
		Return(newTestClaims(userID), nil)
	fx.tokenService.EXPECT().HashToken(input.RefreshToken).Return("stored_hash")
	fx.refreshTokenRepo.EXPECT().
		FindRefreshTokenByHash(ctx, "stored_hash").
		Return(&entity.RefreshToken{UserID: userID, TokenHash: "stored_hash"}, nil)
	fx.userRepo.EXPECT().
		FindByID(ctx, userID).
		Return(&entity.User{ID: userID, Email: "jane.doe@example.com"}, nil)
	fx.profileRepo.EXPECT().
		FindByUserID(ctx, userID).
		Return(&entity.Profile{UserID: userID, UserType: entity.UserTypePatient}, nil)
	fx.tokenService.EXPECT().
		GenerateTokens(userID, "patient").
		Return("new_access", "discarded_refresh", nil)
	fx.tokenService.EXPECT().GetAccessTokenDuration().Return(15 * time.Minute)

	output, err := fx.service.RefreshToken(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, output.Session)
	assert.Equal(t, "new_access", output.Session.AccessToken)
	assert.Equal(t, input.RefreshToken, output.Session.RefreshToken, "refresh token must remain unchanged")
}

func TestAccountService_RefreshToken_NotStored(t *testing.T) {
	fx := createTestAccountService(t, true)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.RefreshInput{RefreshToken: "revoked_refresh"}

	fx.tokenService.EXPECT().
		ValidateRefreshToken(input.RefreshToken).
		Return(newTestClaims(userID), nil)
	fx.tokenService.EXPECT().HashToken(input.RefreshToken).Return("revoked_hash")
	fx.refreshTokenRepo.EXPECT().
		FindRefreshTokenByHash(ctx, "revoked_hash").
		Return(nil, repository.ErrRefreshTokenNotFound)

	output, err := fx.service.RefreshToken(ctx, input)

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAccountService_Logout_Success(t *testing.T) {
	fx := createTestAccountService(t, true)

	ctx := context.Background()
	input := &usecase.LogoutInput{RefreshToken: "stored_refresh"}

	fx.tokenService.EXPECT().
		ValidateRefreshToken(input.RefreshToken).
		Return(newTestClaims(uuid.New()), nil)
	fx.tokenService.EXPECT().HashToken(input.RefreshToken).Return("stored_hash")
	fx.refreshTokenRepo.EXPECT().
		DeleteRefreshTokenByHash(ctx, "stored_hash").
		Return(nil)

	err := fx.service.Logout(ctx, input)

	require.NoError(t, err)
}

func TestAccountService_Logout_UnknownSessionIsSuccess(t *testing.T) {
	fx := createTestAccountService(t, true)

	ctx := context.Background()
	input := &usecase.LogoutInput{RefreshToken: "gone_refresh"}

	fx.tokenService.EXPECT().
		ValidateRefreshToken(input.RefreshToken).
		Return(newTestClaims(uuid.New()), nil)
	fx.tokenService.EXPECT().HashToken(input.RefreshToken).Return("gone_hash")
	fx.refreshTokenRepo.EXPECT().
		DeleteRefreshTokenByHash(ctx, "gone_hash").
		Return(repository.ErrRefreshTokenNotFound)

	err := fx.service.Logout(ctx, input)

	require.NoError(t, err)
}

func TestAccountService_DeleteAccount_RemovesEverything(t *testing.T) {
	fx := createTestAccountService(t, true)

	ctx := context.Background()
	userID := uuid.New()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)
			mockProfileRepo := mockRepo.NewMockProfileRepository(t)
			mockRefreshRepo := mockRepo.NewMockRefreshTokenRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)
			mockFactory.EXPECT().ProfileRepo().Return(mockProfileRepo)
			mockFactory.EXPECT().RefreshTokenRepo().Return(mockRefreshRepo)

			mockRefreshRepo.EXPECT().DeleteRefreshTokensByUserID(ctx, userID).Return(nil)
			mockProfileRepo.EXPECT().DeleteByUserID(ctx, userID).Return(nil)
			mockAuthRepo.EXPECT().DeleteAuthenticationsByUserID(ctx, userID).Return(nil)
			mockUserRepo.EXPECT().Delete(ctx, userID).Return(nil)

			return fn(mockFactory)
		})

	err := fx.service.DeleteAccount(ctx, userID)

	require.NoError(t, err)
}

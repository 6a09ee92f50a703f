// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	"telecare/config"
	deliverycontext "telecare/internal/delivery/context"
	"telecare/internal/domain/entity"
	domainerrors "telecare/internal/domain/errors"
	"telecare/internal/domain/repository"
	"telecare/internal/domain/service"
	"telecare/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const minPasswordLength = 6

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager        repository.TransactionManager
	userRepo         repository.UserRepository
	authRepo         repository.AuthRepository
	profileRepo      repository.ProfileRepository
	refreshTokenRepo repository.RefreshTokenRepository
	hasher           service.PasswordHasher
	tokenService     service.TokenService
	autoConfirm      bool
	logger           *slog.Logger
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	UserRepo         repository.UserRepository
	AuthRepo         repository.AuthRepository
	ProfileRepo      repository.ProfileRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	Hasher           service.PasswordHasher
	TokenService     service.TokenService
	Config           *config.Config
	Logger           *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	autoConfirm := false
	if params.Config != nil && params.Config.Auth != nil {
		autoConfirm = params.Config.Auth.AutoConfirm
	}

	return &accountService{
		txManager:        params.TxManager,
		userRepo:         params.UserRepo,
		authRepo:         params.AuthRepo,
		profileRepo:      params.ProfileRepo,
		refreshTokenRepo: params.RefreshTokenRepo,
		hasher:           params.Hasher,
		tokenService:     params.TokenService,
		autoConfirm:      autoConfirm,
		logger:           params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register mints a new identity and its email credential in one transaction.
// When auto-confirm is enabled a session is established immediately;
// otherwise the caller gets the identity back without tokens and must sign
// in once the account is confirmed.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	if len(input.Password) < minPasswordLength {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("email", input.Email))

		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "password does not meet length requirements")
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	newUser := &entity.User{Email: input.Email}
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		authRepo := repoFactory.AuthRepo()

		if _, findErr := authRepo.FindAuthenticationByEmail(ctx, input.Email); findErr == nil {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already registered")
		} else if !errors.Is(findErr, repository.ErrAuthNotFound) {
			return errors.Wrap(findErr, "failed to find authentication")
		}

		if createErr := userRepo.Create(ctx, newUser); createErr != nil {
			return errors.Wrap(createErr, "failed to create user during registration")
		}

		newAuth := &entity.Authentication{
			UserID:       newUser.ID,
			Email:        input.Email,
			PasswordHash: hashedPassword,
		}

		if createErr := authRepo.CreateAuthentication(ctx, newAuth); createErr != nil {
			return errors.Wrap(createErr, "failed to create authentication during registration")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	output := &usecase.RegisterOutput{User: newUser}

	if srv.autoConfirm {
		session, sessionErr := srv.establishSession(ctx, newUser, "")
		if sessionErr != nil {
			srv.log(ctx).Error("Failed to establish session after registration", slog.Any("userID", newUser.ID), slog.Any("error", sessionErr))

			return nil, errors.Wrap(sessionErr, "failed to establish session after registration")
		}
		output.Session = session
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", newUser.ID), slog.Bool("sessionIssued", output.Session != nil))

	return output, nil
}

// Login verifies the email credential and establishes a session.
func (srv *accountService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	authRecord, err := srv.authRepo.FindAuthenticationByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAuthNotFound) {
			srv.log(ctx).Warn("Login failed", slog.String("email", input.Email))

			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		return nil, errors.Wrap(err, "failed to find authentication")
	}

	// Check password outside any transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, authRecord.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	loggedInUser, err := srv.userRepo.FindByID(ctx, authRecord.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user for login")
	}

	// The role claim comes from the profile row when one exists. A user
	// without a profile signs in with an empty role claim.
	userType := ""
	profile, err := srv.profileRepo.FindByUserID(ctx, loggedInUser.ID)
	switch {
	case err == nil:
		userType = profile.UserType.String()
	case errors.Is(err, repository.ErrProfileNotFound):
		// Expected for accounts that have not completed onboarding.
	default:
		return nil, errors.Wrap(err, "failed to load profile for login")
	}

	session, err := srv.establishSession(ctx, loggedInUser, userType)
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to establish session during login")
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", loggedInUser.ID))

	return &usecase.LoginOutput{Session: session}, nil
}

// RefreshToken issues a new access token against a stored refresh token.
// The refresh token itself is left unchanged.
func (srv *accountService) RefreshToken(ctx context.Context, input *usecase.RefreshInput) (*usecase.RefreshOutput, error) {
	srv.log(ctx).Debug("Attempting to refresh access token")

	claims, err := srv.tokenService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "invalid refresh token")
	}

	tokenHash := srv.tokenService.HashToken(input.RefreshToken)
	if _, err := srv.refreshTokenRepo.FindRefreshTokenByHash(ctx, tokenHash); err != nil {
		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "refresh token not found or expired")
	}

	user, err := srv.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user for token refresh")
	}

	userType := ""
	if profile, profileErr := srv.profileRepo.FindByUserID(ctx, user.ID); profileErr == nil {
		userType = profile.UserType.String()
	}

	accessToken, _, err := srv.tokenService.GenerateTokens(user.ID, userType)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate new access token")
	}

	return &usecase.RefreshOutput{
		Session: &entity.Session{
			AccessToken:  accessToken,
			RefreshToken: input.RefreshToken,
			ExpiresAt:    time.Now().Add(srv.tokenService.GetAccessTokenDuration()),
			User:         *user,
		},
	}, nil
}

// Logout deletes the stored refresh token, ending the session. An already
// terminated session is not an error.
func (srv *accountService) Logout(ctx context.Context, input *usecase.LogoutInput) error {
	srv.log(ctx).Info("Attempting to log out")

	if _, err := srv.tokenService.ValidateRefreshToken(input.RefreshToken); err != nil {
		// Even with an invalid token, proceed to delete whatever is stored.
		srv.log(ctx).Warn("Logout with invalid token", slog.Any("error", err))
	}

	tokenHash := srv.tokenService.HashToken(input.RefreshToken)

	if err := srv.refreshTokenRepo.DeleteRefreshTokenByHash(ctx, tokenHash); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			srv.log(ctx).Debug("Logout for unknown session, treating as success")

			return nil
		}
		srv.log(ctx).Error("Failed to delete refresh token", slog.Any("error", err))

		return errors.Wrap(err, "failed to delete refresh token")
	}
	srv.log(ctx).Info("Successfully logged out")

	return nil
}

// CurrentUser returns the identity record for an authenticated user.
func (srv *accountService) CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load current user")
	}

	return user, nil
}

// DeleteAccount removes the identity and everything keyed to it in one
// transaction. It backs the compensating cleanup a client performs when
// profile creation fails right after sign-up.
func (srv *accountService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	srv.log(ctx).Info("Deleting account", slog.Any("userID", userID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.RefreshTokenRepo().DeleteRefreshTokensByUserID(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to delete refresh tokens")
		}
		if err := repoFactory.ProfileRepo().DeleteByUserID(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to delete profile")
		}
		if err := repoFactory.AuthRepo().DeleteAuthenticationsByUserID(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to delete authentications")
		}
		if err := repoFactory.UserRepo().Delete(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to delete user")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute account deletion transaction", slog.Any("userID", userID), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute account deletion transaction")
	}

	srv.log(ctx).Info("Account deleted", slog.Any("userID", userID))

	return nil
}

// establishSession generates a token pair, stores the hashed refresh token
// and assembles the session handed back to the client.
func (srv *accountService) establishSession(ctx context.Context, user *entity.User, userType string) (*entity.Session, error) {
	accessToken, refreshTokenString, err := srv.tokenService.GenerateTokens(user.ID, userType)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	newRefreshToken := &entity.RefreshToken{
		UserID:    user.ID,
		TokenHash: srv.tokenService.HashToken(refreshTokenString),
		ExpiresAt: time.Now().Add(srv.tokenService.GetRefreshTokenDuration()),
	}

	if err := srv.refreshTokenRepo.CreateRefreshToken(ctx, newRefreshToken); err != nil {
		return nil, errors.Wrap(err, "failed to store refresh token")
	}

	return &entity.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		ExpiresAt:    time.Now().Add(srv.tokenService.GetAccessTokenDuration()),
		User:         *user,
	}, nil
}

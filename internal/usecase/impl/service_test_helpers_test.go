package impl

import (
	"io"
	"log/slog"

	"telecare/config"
	"telecare/internal/domain/service"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClaims(userID uuid.UUID) *service.Claims {
	return &service.Claims{
		UserID: userID,
		Type:   "refresh",
	}
}

func newTestConfig(autoConfirm bool) *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:  12,
			AutoConfirm: autoConfirm,
		},
	}
}

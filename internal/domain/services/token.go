package services

import (
	"context"

	"glossa/internal/domain/models"
)

// TokenService negotiates ephemeral realtime credentials for new
// sessions.
type TokenService interface {
	Mint(ctx context.Context, sessionID, language string, durationMinutes int) (*models.SessionGrant, error)
}

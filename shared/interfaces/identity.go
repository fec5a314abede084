package interfaces

import (
	"context"

	"butterfly-story/shared/models"
)

// Signer is the proof-of-possession capability of the identity provider.
// It may block for as long as the user keeps the signing prompt open;
// implementations should honour ctx cancellation.
type Signer func(ctx context.Context, message string) (signature string, err error)

// TokenVerifier проверяет токен провайдера идентичности и возвращает claims.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, tokenString string) (*models.Claims, error)
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"butterfly-story/shared/interfaces"
	"butterfly-story/shared/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PlayerContextKey - ключ gin-контекста с адресом игрока.
const PlayerContextKey = "player"

// PlayerFromContext возвращает адрес игрока, установленный middleware.
func PlayerFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(PlayerContextKey)
	if !ok {
		return "", false
	}
	player, ok := v.(string)
	return player, ok && player != ""
}

// RequirePlayer пропускает запрос только с валидным Bearer токеном игрока.
func RequirePlayer(verifier interfaces.TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return playerAuth(verifier, logger, true)
}

// OptionalPlayer устанавливает игрока, если токен передан, и не требует его.
// Невалидный токен всё равно отклоняется.
func OptionalPlayer(verifier interfaces.TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return playerAuth(verifier, logger, false)
}

func playerAuth(verifier interfaces.TokenVerifier, logger *zap.Logger, required bool) gin.HandlerFunc {
	log := logger.Named("PlayerAuth")
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				log.Warn("Authorization header missing", zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Code: models.ErrCodeUnauthorized, Message: "Missing token"})
				return
			}
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Malformed Authorization header", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Code: models.ErrCodeUnauthorized, Message: "Malformed token header"})
			return
		}

		claims, err := verifier.VerifyToken(c.Request.Context(), parts[1])
		if err != nil {
			resp := models.ErrorResponse{Code: models.ErrCodeTokenInvalid, Message: "Token is invalid or malformed"}
			if errors.Is(err, models.ErrTokenExpired) {
				resp = models.ErrorResponse{Code: models.ErrCodeTokenExpired, Message: "Token has expired"}
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp)
			return
		}

		c.Set(PlayerContextKey, claims.Player)
		c.Next()
	}
}

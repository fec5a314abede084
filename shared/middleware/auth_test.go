package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"butterfly-story/shared/middleware"
	"butterfly-story/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubVerifier map[string]error

func (s stubVerifier) VerifyToken(_ context.Context, token string) (*models.Claims, error) {
	if err, ok := s[token]; ok {
		return nil, err
	}
	return &models.Claims{Player: "0x" + token}, nil
}

func newRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", handler, func(c *gin.Context) {
		player, _ := middleware.PlayerFromContext(c)
		c.String(http.StatusOK, player)
	})
	return r
}

func do(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequirePlayer(t *testing.T) {
	verifier := stubVerifier{"expired": models.ErrTokenExpired, "bad": models.ErrTokenInvalid}
	r := newRouter(middleware.RequirePlayer(verifier, zap.NewNop()))

	w := do(r, "Bearer abc")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0xabc", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Token abc").Code)

	w = do(r, "Bearer expired")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrCodeTokenExpired)

	w = do(r, "Bearer bad")
	assert.Contains(t, w.Body.String(), models.ErrCodeTokenInvalid)
}

func TestOptionalPlayer(t *testing.T) {
	r := newRouter(middleware.OptionalPlayer(stubVerifier{"bad": models.ErrTokenInvalid}, zap.NewNop()))

	w := do(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	assert.Equal(t, "0xabc", do(r, "Bearer abc").Body.String())
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer bad").Code)
}

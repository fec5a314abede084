package handler

import (
	"context"
	"net/http"
	"strings"

	"butterfly-story/internal/reveal"
	"butterfly-story/internal/service"
	"butterfly-story/shared/interfaces"
	"butterfly-story/shared/middleware"
	"butterfly-story/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ChoiceHandler обслуживает HTTP API ленты развилок.
type ChoiceHandler struct {
	service  service.ChoiceService
	verifier interfaces.TokenVerifier
	manager  *ConnectionManager
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewChoiceHandler создает обработчик. manager может быть nil, тогда /ws отключен.
func NewChoiceHandler(svc service.ChoiceService, verifier interfaces.TokenVerifier, manager *ConnectionManager, logger *zap.Logger) *ChoiceHandler {
	return &ChoiceHandler{
		service:  svc,
		verifier: verifier,
		manager:  manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin уже проверяет CORS на уровне роутера.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.Named("ChoiceHandler"),
	}
}

// RegisterRoutes регистрирует маршруты API.
func (h *ChoiceHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", h.health)

	requirePlayer := middleware.RequirePlayer(h.verifier, h.logger)
	optionalPlayer := middleware.OptionalPlayer(h.verifier, h.logger)

	api := router.Group("/api/v1")
	{
		api.GET("/choices", h.listChoices)
		api.GET("/choices/mine", requirePlayer, h.listMyChoices)
		api.GET("/choices/:id", h.getChoice)
		api.POST("/choices", requirePlayer, h.submitChoice)
		api.POST("/choices/:id/compute", h.computeChoice)
		api.GET("/reveal/context", requirePlayer, h.revealContext)
		api.POST("/choices/:id/reveal", requirePlayer, h.revealChoice)
		api.GET("/story", h.story)
		api.GET("/stats", requirePlayer, h.stats)
		if h.manager != nil {
			api.GET("/ws", optionalPlayer, h.serveWS)
		}
	}
}

func (h *ChoiceHandler) health(c *gin.Context) {
	available, err := h.service.Available(c.Request.Context())
	if err != nil || !available {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "storeAvailable": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "storeAvailable": true})
}

func (h *ChoiceHandler) listChoices(c *gin.Context) {
	list, err := h.service.ListChoices(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"choices": list})
}

func (h *ChoiceHandler) listMyChoices(c *gin.Context) {
	player, _ := middleware.PlayerFromContext(c)
	list, err := h.service.ListPlayerChoices(c.Request.Context(), player)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"choices": list})
}

func (h *ChoiceHandler) getChoice(c *gin.Context) {
	choice, err := h.service.GetChoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, choice)
}

func (h *ChoiceHandler) submitChoice(c *gin.Context) {
	var input models.SubmitChoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("Invalid submit request body", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request body"})
		return
	}
	player, _ := middleware.PlayerFromContext(c)

	choice, err := h.service.SubmitChoice(c.Request.Context(), player, input)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusCreated, choice)
}

type computeRequest struct {
	Operation string `json:"operation" binding:"required"`
}

func (h *ChoiceHandler) computeChoice(c *gin.Context) {
	var req computeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "operation is required"})
		return
	}
	id := c.Param("id")
	token, err := h.service.ComputeChoice(c.Request.Context(), id, req.Operation)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"choiceId": id, "operation": req.Operation, "encryptedWeight": token})
}

type revealContextResponse struct {
	Context   models.RevealContext `json:"context"`
	Challenge string               `json:"challenge"`
	Digest    string               `json:"digest"`
}

func (h *ChoiceHandler) revealContext(c *gin.Context) {
	rc := h.service.NewRevealContext(c.Request.Context())
	challenge := reveal.BuildChallenge(rc)
	c.JSON(http.StatusOK, revealContextResponse{
		Context:   rc,
		Challenge: challenge,
		Digest:    reveal.ChallengeDigest(challenge),
	})
}

type revealRequest struct {
	Context   models.RevealContext `json:"context"`
	Signature string               `json:"signature"`
}

type revealResponse struct {
	ChoiceID string   `json:"choiceId"`
	Revealed bool     `json:"revealed"`
	Weight   *float64 `json:"weight,omitempty"`
}

func (h *ChoiceHandler) revealChoice(c *gin.Context) {
	var req revealRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Context.PublicKey == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "context and signature are required"})
		return
	}
	id := c.Param("id")

	// Подпись уже получена клиентом: подписант лишь возвращает её.
	signature := strings.TrimSpace(req.Signature)
	signer := func(context.Context, string) (string, error) {
		if signature == "" {
			return "", models.ErrProofRejected
		}
		return signature, nil
	}

	value, ok, err := h.service.RevealChoice(c.Request.Context(), id, req.Context, signer)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	resp := revealResponse{ChoiceID: id, Revealed: ok}
	if ok {
		resp.Weight = &value
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChoiceHandler) story(c *gin.Context) {
	n, err := h.service.Story(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *ChoiceHandler) stats(c *gin.Context) {
	player, _ := middleware.PlayerFromContext(c)
	stats, err := h.service.PlayerStats(c.Request.Context(), player)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ChoiceHandler) serveWS(c *gin.Context) {
	player, _ := middleware.PlayerFromContext(c)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}
	client := NewClient(uuid.NewString(), player, conn)
	log := h.logger.With(zap.String("clientID", client.ID))
	log.Info("WebSocket connection established", zap.String("player", player))

	h.manager.RegisterClient(client)
	go client.writePump(log)
	go client.readPump(h.manager, log)
}

package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"butterfly-story/internal/fhe"
	"butterfly-story/internal/handler"
	"butterfly-story/internal/repository"
	"butterfly-story/internal/service"
	"butterfly-story/shared/authutils"
	"butterfly-story/shared/database"
	"butterfly-story/shared/models"
	"butterfly-story/shared/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const jwtSecret = "handler-test-secret"

type testEnv struct {
	router  *gin.Engine
	store   *database.MemoryDataStore
	manager *handler.ConnectionManager
	token   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	store := database.NewMemoryDataStore("0xC0FFEE")
	manager := handler.NewConnectionManager(logger)
	t.Cleanup(manager.Close)

	svc := service.NewChoiceService(service.Deps{
		Store:     repository.NewChoiceRepository(store, logger),
		Cipher:    fhe.NewCodec(),
		Publisher: manager,
		Clock:     utils.SystemClock{},
		Rand:      utils.NewLockedRand(1),
		ChainID:   31337,
		Logger:    logger,
	})
	verifier, err := authutils.NewJWTVerifier(jwtSecret, logger)
	require.NoError(t, err)

	router := gin.New()
	handler.NewChoiceHandler(svc, verifier, manager, logger).RegisterRoutes(router)

	token, err := authutils.IssueToken(jwtSecret, "0xPlayer", time.Hour)
	require.NoError(t, err)
	return &testEnv{router: router, store: store, manager: manager, token: token}
}

func (e *testEnv) do(method, path, body string, auth bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) submit(t *testing.T, body string) models.Choice {
	t.Helper()
	w := e.do(http.MethodPost, "/api/v1/choices", body, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c models.Choice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	return c
}

func TestSubmitAndRead(t *testing.T) {
	env := newTestEnv(t)

	created := env.submit(t, `{"chapter":2,"description":"Follow the stranger","weight":42.5}`)
	assert.Equal(t, "0xPlayer", created.Player)
	assert.Equal(t, "FHE-NDIuNQ==", created.EncryptedWeight)
	assert.GreaterOrEqual(t, created.ButterflyEffect, models.MinEffect)
	assert.LessOrEqual(t, created.ButterflyEffect, models.MaxEffect)

	w := env.do(http.MethodGet, "/api/v1/choices", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Choices []models.Choice `json:"choices"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Choices, 1)
	assert.Equal(t, created.ID, list.Choices[0].ID)

	w = env.do(http.MethodGet, "/api/v1/choices/"+created.ID, "", false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/v1/choices/mine", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.ID)

	w = env.do(http.MethodGet, "/api/v1/story", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	var story models.Narrative
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &story))
	assert.Equal(t, []string{"Chapter 1: The Village", "Chapter 3: Sky Temple"}, story.Path)

	w = env.do(http.MethodGet, "/api/v1/stats", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.PlayerStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.ChoicesMade)
	assert.Equal(t, 2, stats.Chapters)
}

func TestSubmitErrors(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/v1/choices", `{"description":"x","weight":1}`, false).Code)

	w := env.do(http.MethodPost, "/api/v1/choices", `{"description":"","weight":1}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrCodeValidation)

	w = env.do(http.MethodPost, "/api/v1/choices", `{"chapter":9,"description":"x","weight":1}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/v1/choices", `not json`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrCodeBadRequest)

	w = env.do(http.MethodGet, "/api/v1/choices/nope", "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompute(t *testing.T) {
	env := newTestEnv(t)
	created := env.submit(t, `{"description":"x","weight":10}`)

	w := env.do(http.MethodPost, "/api/v1/choices/"+created.ID+"/compute", `{"operation":"double"}`, false)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		EncryptedWeight string `json:"encryptedWeight"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, fhe.Encode(20), resp.EncryptedWeight)

	// Сохранённая развилка не меняется.
	w = env.do(http.MethodGet, "/api/v1/choices/"+created.ID, "", false)
	assert.Contains(t, w.Body.String(), created.EncryptedWeight)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/v1/choices/"+created.ID+"/compute", `{}`, false).Code)
}

func TestRevealFlow(t *testing.T) {
	env := newTestEnv(t)
	created := env.submit(t, `{"description":"x","weight":7.25}`)

	w := env.do(http.MethodGet, "/api/v1/reveal/context", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var rcResp struct {
		Context   models.RevealContext `json:"context"`
		Challenge string               `json:"challenge"`
		Digest    string               `json:"digest"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rcResp))
	assert.Equal(t, "0xC0FFEE", rcResp.Context.ContractAddress)
	assert.True(t, strings.HasPrefix(rcResp.Challenge, "publickey:0x"))
	assert.True(t, strings.HasPrefix(rcResp.Digest, "0x"))

	rcJSON, err := json.Marshal(rcResp.Context)
	require.NoError(t, err)

	w = env.do(http.MethodPost, "/api/v1/choices/"+created.ID+"/reveal", `{"context":`+string(rcJSON)+`,"signature":"0xsig"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"choiceId":"`+created.ID+`","revealed":true,"weight":7.25}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/v1/choices/"+created.ID+"/reveal", `{"context":`+string(rcJSON)+`,"signature":""}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"choiceId":"`+created.ID+`","revealed":false}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/v1/choices/"+created.ID+"/reveal", `{}`, true).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/v1/choices/"+created.ID+"/reveal", `{}`, false).Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", "", false).Code)

	env.store.SetAvailable(false)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodGet, "/health", "", false).Code)

	w := env.do(http.MethodPost, "/api/v1/choices", `{"description":"x","weight":1}`, true)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrCodeUnavailable)
}

func TestWebSocketReceivesChoiceEvents(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.manager.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	created := env.submit(t, `{"chapter":3,"description":"Enter the caves","weight":3}`)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event models.ChoiceEvent
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, models.EventTypeChoiceSubmitted, event.Type)
	assert.Equal(t, created.ID, event.ChoiceID)
	assert.Equal(t, 3, event.Chapter)
	assert.NotContains(t, string(msg), created.EncryptedWeight)
}

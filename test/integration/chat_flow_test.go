package integration

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http/httptest"
	"os"
	"testing"

	"product-advisor-be/internal/bootstrap"
	"product-advisor-be/internal/config"
	"product-advisor-be/internal/constant"
	"product-advisor-be/internal/dto"
	"product-advisor-be/internal/server"
	"product-advisor-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestChatFlow exercises the full HTTP stack against a live database and
// embedding provider. It only runs with a configured environment.
func TestChatFlow(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}
	if os.Getenv("DB_CONNECTION_STRING") == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	container := bootstrap.NewContainer(db, cfg)
	srv := server.New(cfg, container)
	app := srv.GetApp()

	sessionId := "it-" + uuid.NewString()

	sendMessage := func(message string) *dto.ChatResponse {
		body, _ := json.Marshal(dto.ChatRequest{
			SessionId: sessionId,
			Message:   message,
			Source:    "web",
		})
		req := httptest.NewRequest("POST", "/api/chat/v1/message", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)

		var envelope struct {
			Data dto.ChatResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
		return &envelope.Data
	}

	t.Run("main menu opens the funnel", func(t *testing.T) {
		res := sendMessage(constant.SentinelMainMenu)
		assert.Equal(t, constant.ActionAskQuestion, res.Action)
		assert.NotEmpty(t, res.Buttons)
	})

	t.Run("validation rejects empty message", func(t *testing.T) {
		body, _ := json.Marshal(dto.ChatRequest{SessionId: sessionId})
		req := httptest.NewRequest("POST", "/api/chat/v1/message", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("health endpoint reports counts", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/health/v1", nil)
		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})
}

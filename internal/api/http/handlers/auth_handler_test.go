package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicflow/civicflow/internal/api/dto"
	"github.com/civicflow/civicflow/internal/config"
	"github.com/civicflow/civicflow/internal/domain"
	"github.com/civicflow/civicflow/internal/repository/memory"
	"github.com/civicflow/civicflow/internal/service"
)

func newAuthApp() *fiber.App {
	cfg := config.Config{
		App: config.AppConfig{BaseURL: "http://localhost:8080"},
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			JWTIssuer:               "civicflow",
			JWTAudience:             "civicflow",
			AccessTokenTTLHours:     2,
			VerificationTTLMinutes:  10,
			PasswordResetTTLMinutes: 30,
			BcryptCost:              bcrypt.MinCost,
		},
	}
	svc := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:         memory.NewUserRepository(),
		VerificationRepo: memory.NewEmailVerificationRepository(),
		ResetRepo:        memory.NewPasswordResetRepository(),
	})
	handler := NewAuthHandler(svc)

	app := fiber.New()
	app.Post("/auth/register", handler.Register)
	app.Post("/auth/login", handler.Login)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeAuthResponse(t *testing.T, resp *http.Response) dto.AuthResponse {
	t.Helper()
	defer resp.Body.Close()

	var body dto.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRegisterEndpointReturnsTokenAndUser(t *testing.T) {
	app := newAuthApp()

	resp := postJSON(t, app, "/auth/register", dto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeAuthResponse(t, resp)
	assert.Equal(t, "Registration successful", body.Message)
	assert.NotEmpty(t, body.Token)
	assert.True(t, body.ExpiresAt.After(time.Now()))
	assert.Equal(t, "alice@example.com", body.User.Email)
	assert.Equal(t, domain.RoleCitizen, body.User.Role)
}

func TestLoginEndpointReturnsTokenAndUser(t *testing.T) {
	app := newAuthApp()

	resp := postJSON(t, app, "/auth/register", dto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, app, "/auth/login", dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeAuthResponse(t, resp)
	assert.Empty(t, body.Message)
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "alice@example.com", body.User.Email)
}

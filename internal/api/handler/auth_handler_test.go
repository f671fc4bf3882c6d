package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"loanbook/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandlerGenerateBearerToken(t *testing.T) {
	secret := "test-secret"
	cfg := config.Config{}
	cfg.Server.Auth.JWTSecret = secret
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := NewAuthHandler(cfg, logger)

	t.Run("issues signed bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"username":"collector"}`))
		rec := httptest.NewRecorder()

		handler.GenerateBearerToken(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.True(t, strings.HasPrefix(resp["token"], "Bearer "), "token should carry the Bearer prefix")

		raw := strings.TrimPrefix(resp["token"], "Bearer ")
		parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		require.NoError(t, err)
		assert.True(t, parsed.Valid)

		claims, ok := parsed.Claims.(jwt.MapClaims)
		require.True(t, ok)
		assert.Equal(t, "collector", claims["username"])
		assert.NotNil(t, claims["exp"])
	})

	t.Run("rejects missing username", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		handler.GenerateBearerToken(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp map[string]map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Contains(t, resp["error"]["message"], "username is required")
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{username`))
		rec := httptest.NewRecorder()

		handler.GenerateBearerToken(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

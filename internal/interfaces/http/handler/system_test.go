package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/billing/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Health(t *testing.T) {
	ok := HealthCheck{Name: "database", Check: func(context.Context) error { return nil }}
	down := HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("dial tcp: refused") }}

	t.Run("all healthy", func(t *testing.T) {
		h := NewSystemHandler("Billing API", "1.0.0", ok)
		w := serve(t, http.MethodGet, "/health", "/health", h.Health)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Success bool           `json:"success"`
			Data    HealthResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "healthy", resp.Data.Status)
		assert.Equal(t, "healthy", resp.Data.Checks["database"])
	})

	t.Run("failing dependency", func(t *testing.T) {
		h := NewSystemHandler("Billing API", "1.0.0", ok, down)
		w := serve(t, http.MethodGet, "/health", "/health", h.Health)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeUnavailable, resp.Error.Code)
		assert.Contains(t, resp.Error.Details, "redis")
		assert.NotContains(t, resp.Error.Details, "database")
		assert.NotContains(t, w.Body.String(), "refused")
	})
}

func TestSystemHandler_Info(t *testing.T) {
	h := NewSystemHandler("Billing API", "2.1.0")
	w := serve(t, http.MethodGet, "/system/info", "/system/info", h.GetSystemInfo)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data SystemInfoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Billing API", resp.Data.Name)
	assert.Equal(t, "2.1.0", resp.Data.Version)
	assert.NotEmpty(t, resp.Data.GoVersion)
}

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler("Billing API", "1.0.0")
	w := serve(t, http.MethodGet, "/ping", "/ping", h.Ping)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

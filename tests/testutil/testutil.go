// Package testutil provides common test utilities for the billing backend:
// a migrated in-memory database and helpers for exercising the JSON API.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/billing/backend/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewSQLiteDatabase opens a migrated in-memory SQLite database. A single
// connection keeps every query on the same in-memory database.
func NewSQLiteDatabase(t *testing.T) *persistence.Database {
	t.Helper()

	db, err := persistence.Open(sqlite.Open(":memory:"), nil)
	require.NoError(t, err, "Failed to open SQLite database")

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(), "Failed to migrate")
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Envelope is the decoded API response
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Meta    *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
	Summary json.RawMessage `json:"summary"`
	Error   *struct {
		Code       string         `json:"code"`
		Message    string         `json:"message"`
		StatusCode int            `json:"status_code"`
		Details    map[string]any `json:"details"`
	} `json:"error"`
}

// DoJSON sends a request with an optional JSON body and bearer token
func DoJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// DecodeEnvelope parses the response body as an API envelope
func DecodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "Failed to parse response: %s", rec.Body.String())
	return env
}

// DecodeData parses the envelope's data field into T
func DecodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	env := DecodeEnvelope(t, rec)
	require.True(t, env.Success, "Expected success response, got %s", rec.Body.String())

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), "Failed to parse data")
	return out
}

// AssertErrorResponse checks status, error code and that the envelope
// repeats the HTTP status
func AssertErrorResponse(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) Envelope {
	t.Helper()

	env := DecodeEnvelope(t, rec)
	assert.Equal(t, status, rec.Code, "Unexpected status code: %s", rec.Body.String())
	assert.False(t, env.Success, "Expected success to be false")
	if assert.NotNil(t, env.Error, "Expected error object in response") {
		assert.Equal(t, code, env.Error.Code, "Unexpected error code")
		assert.Equal(t, status, env.Error.StatusCode, "status_code must match the HTTP status")
	}
	return env
}

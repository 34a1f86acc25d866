package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/auth"
	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/billing/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

type envelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code       string `json:"code"`
		StatusCode int    `json:"status_code"`
		RequestID  string `json:"request_id"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func newAuthRouter(authn Authenticator, handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(logger.RequestID(), JWTAuth(authn, zap.NewNop()))
	chain := append(handlers, func(c *gin.Context) {
		id, _ := GetJWTUserID(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id":     id.String(),
			"ctx_user_id": logger.UserID(c.Request.Context()),
			"admin":       IsAdmin(c),
		})
	})
	router.GET("/protected", chain...)
	return router
}

func TestJWTAuth(t *testing.T) {
	userID := uuid.New()
	claims := &auth.Claims{UserID: userID.String(), Role: "user"}

	t.Run("valid token sets user in context", func(t *testing.T) {
		authn := new(mockAuthenticator)
		authn.On("Authenticate", mock.Anything, "good-token").Return(claims, nil)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, "Bearer good-token")
		rec := httptest.NewRecorder()
		newAuthRouter(authn).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, userID.String(), body["user_id"])
		assert.Equal(t, userID.String(), body["ctx_user_id"])
		assert.Equal(t, false, body["admin"])
		authn.AssertExpectations(t)
	})

	t.Run("missing header", func(t *testing.T) {
		authn := new(mockAuthenticator)

		rec := httptest.NewRecorder()
		newAuthRouter(authn).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.False(t, env.Success)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
		assert.Equal(t, http.StatusUnauthorized, env.Error.StatusCode)
		assert.NotEmpty(t, env.Error.RequestID)
		authn.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("non bearer scheme", func(t *testing.T) {
		authn := new(mockAuthenticator)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		newAuthRouter(authn).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		authn := new(mockAuthenticator)
		authn.On("Authenticate", mock.Anything, "old").
			Return(nil, shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked"))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, "Bearer old")
		rec := httptest.NewRecorder()
		newAuthRouter(authn).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_REVOKED", decodeEnvelope(t, rec).Error.Code)
	})

	t.Run("infrastructure failure is a 500", func(t *testing.T) {
		authn := new(mockAuthenticator)
		authn.On("Authenticate", mock.Anything, "tok").Return(nil, errors.New("redis: connection refused"))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, "Bearer tok")
		rec := httptest.NewRecorder()
		newAuthRouter(authn).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "INTERNAL_ERROR", decodeEnvelope(t, rec).Error.Code)
		assert.NotContains(t, rec.Body.String(), "redis")
	})
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		role   string
		status int
	}{
		{"admin", http.StatusOK},
		{"user", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			authn := new(mockAuthenticator)
			authn.On("Authenticate", mock.Anything, "tok").
				Return(&auth.Claims{UserID: uuid.NewString(), Role: tt.role}, nil)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set(AuthHeaderKey, "Bearer tok")
			rec := httptest.NewRecorder()
			newAuthRouter(authn, RequireAdmin()).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", decodeEnvelope(t, rec).Error.Code)
			}
		})
	}
}

func TestBodyLimit(t *testing.T) {
	newRouter := func(limit int64) *gin.Engine {
		router := gin.New()
		router.Use(logger.RequestID(), BodyLimit(limit))
		router.POST("/upload", func(c *gin.Context) {
			buf := make([]byte, 200)
			if _, err := c.Request.Body.Read(buf); err != nil {
				c.String(http.StatusBadRequest, "read failed")
				return
			}
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	t.Run("within limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newRouter(1024).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("small body")))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("declared length over limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(bytes.Repeat([]byte("x"), 200)))
		rec := httptest.NewRecorder()
		newRouter(100).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "REQUEST_TOO_LARGE", env.Error.Code)
		assert.Equal(t, http.StatusRequestEntityTooLarge, env.Error.StatusCode)
	})

	t.Run("streamed body is cut off", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", 100)))
		req.ContentLength = -1
		rec := httptest.NewRecorder()
		newRouter(50).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCORSWithConfig(t *testing.T) {
	cfg := CORSConfigFrom(config.HTTPConfig{CORSAllowOrigins: []string{"https://app.example.com"}})
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	})
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	router := gin.New()
	router.Use(RateLimit(limiter))
	router.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.True(t, limiter.Allow("another-client"))
}

func TestSecure(t *testing.T) {
	router := gin.New()
	router.Use(Secure())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

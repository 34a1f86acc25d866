package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/interfaces/http/dto"
	"github.com/billing/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, method, path, route string, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.Handle(method, route, h)
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped conflict", fmt.Errorf("save: %w", shared.ErrConcurrentModification), http.StatusConflict, "CONCURRENT_MODIFICATION"},
		{"lifecycle rule", shared.NewDomainError("INVOICE_NOT_EDITABLE", "Paid invoices cannot be edited"), http.StatusUnprocessableEntity, "INVOICE_NOT_EDITABLE"},
		{"invalid prefix", shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100"), http.StatusBadRequest, "INVALID_TAX_RATE"},
		{"bad credentials", shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password"), http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"plain error", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := serve(t, http.MethodGet, "/x", "/x", func(c *gin.Context) {
				h.HandleError(c, tt.err)
			})

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantStatus, resp.Error.StatusCode)
		})
	}
}

func TestBaseHandler_HandleError_HidesInternalMessage(t *testing.T) {
	h := &BaseHandler{}
	w := serve(t, http.MethodGet, "/x", "/x", func(c *gin.Context) {
		h.HandleError(c, errors.New("pq: password authentication failed"))
	})

	assert.NotContains(t, w.Body.String(), "password authentication")
}

func TestBaseHandler_HandleError_KeepsDetails(t *testing.T) {
	h := &BaseHandler{}
	err := shared.NewDomainError("CUSTOMER_INACTIVE", "Customer is inactive").WithDetail("customer_id", "abc")
	w := serve(t, http.MethodGet, "/x", "/x", func(c *gin.Context) {
		h.HandleError(c, err)
	})

	resp := decodeError(t, w)
	assert.Equal(t, "abc", resp.Error.Details["customer_id"])
}

func TestBaseHandler_BindError(t *testing.T) {
	middleware.SetupValidator()

	type body struct {
		Name string `json:"name" binding:"required"`
	}

	h := &BaseHandler{}
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var b body
		if err := c.ShouldBindJSON(&b); err != nil {
			h.BindError(c, err)
			return
		}
		h.Success(c, b)
	})

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "name")
}

func TestBaseHandler_ParseUUIDParam(t *testing.T) {
	h := &BaseHandler{}
	handle := func(c *gin.Context) {
		id, ok := h.parseUUIDParam(c, "id", "Customer")
		if !ok {
			return
		}
		h.Success(c, id.String())
	}

	t.Run("invalid id is not found", func(t *testing.T) {
		w := serve(t, http.MethodGet, "/customers/not-a-uuid", "/customers/:id", handle)
		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "Customer not found", resp.Error.Message)
	})

	t.Run("valid id", func(t *testing.T) {
		id := uuid.New()
		w := serve(t, http.MethodGet, "/customers/"+id.String(), "/customers/:id", handle)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), id.String())
	})
}

func TestBaseHandler_CurrentUserID(t *testing.T) {
	h := &BaseHandler{}
	w := serve(t, http.MethodGet, "/x", "/x", func(c *gin.Context) {
		if _, ok := h.currentUserID(c); !ok {
			return
		}
		h.Success(c, nil)
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBaseHandler_SuccessWithSummary(t *testing.T) {
	h := &BaseHandler{}
	w := serve(t, http.MethodGet, "/x", "/x", func(c *gin.Context) {
		h.SuccessWithSummary(c, []string{"a", "b"}, 45, 2, 20, map[string]any{"count": 45})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.NotNil(t, resp.Summary)
}

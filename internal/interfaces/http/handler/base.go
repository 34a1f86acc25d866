package handler

import (
	"net/http"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/logger"
	"github.com/billing/backend/internal/interfaces/http/dto"
	"github.com/billing/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMessage sends a success response with a message
func (h *BaseHandler) SuccessWithMessage(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, dto.NewMessageResponse(data, message))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// SuccessWithSummary sends a page of results with meta and a summary over
// the whole filter
func (h *BaseHandler) SuccessWithSummary(c *gin.Context, data any, total int64, page, pageSize int, summary any) {
	resp := dto.NewSuccessResponseWithMeta(data, total, page, pageSize)
	resp.Summary = summary
	c.JSON(http.StatusOK, resp)
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, dto.NewMessageResponse(data, message))
}

// Error sends an error response; the HTTP status follows the error code
func (h *BaseHandler) Error(c *gin.Context, code, message string, details map[string]any) {
	resp := dto.NewDetailedErrorResponse(code, message, details, logger.GetRequestID(c.Request.Context()))
	c.JSON(resp.Error.StatusCode, resp)
}

// BadRequest sends a 400 validation error without details
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeValidation, message, nil)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeNotFound, message, nil)
}

// BindError sends a 400 validation error for a failed ShouldBind call
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	h.Error(c, dto.ErrCodeValidation, "Request validation failed", dto.ValidationDetails(err))
}

// HandleError converts domain errors to HTTP responses. Anything that is not
// a domain error is logged and reported as a generic internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if de, ok := shared.IsDomainError(err); ok {
		if dto.GetHTTPStatus(de.Code) >= http.StatusInternalServerError {
			logger.FromContext(c.Request.Context()).Error("Request failed",
				zap.String("code", de.Code), zap.Error(err))
		}
		h.Error(c, de.Code, de.Message, de.Details)
		return
	}

	_ = c.Error(err)
	logger.FromContext(c.Request.Context()).Error("Unhandled error",
		zap.String("path", c.FullPath()), zap.Error(err), zap.Stack("stacktrace"))
	h.Error(c, dto.ErrCodeInternal, "An unexpected error occurred", nil)
}

// parseUUIDParam reads a UUID path parameter, answering 404 when it is not
// a valid UUID (no such resource can exist)
func (h *BaseHandler) parseUUIDParam(c *gin.Context, name, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.NotFound(c, resource+" not found")
		return uuid.Nil, false
	}
	return id, true
}

// currentUserID returns the authenticated user's ID or answers 401
func (h *BaseHandler) currentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetJWTUserID(c)
	if !ok {
		h.Error(c, dto.ErrCodeUnauthorized, "Authentication credentials were not provided", nil)
		return uuid.Nil, false
	}
	return id, true
}

package dto

import "github.com/billing/backend/internal/domain/shared"

// Response represents the API envelope
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
	Summary any        `json:"summary,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code       string         `json:"code" example:"NOT_FOUND"`
	Message    string         `json:"message" example:"Resource not found"`
	StatusCode int            `json:"status_code" example:"404"`
	Details    map[string]any `json:"details,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewMeta computes page metadata
func NewMeta(total int64, page, pageSize int) *Meta {
	p := shared.NewPaginated[struct{}](nil, total, page, pageSize)
	return &Meta{
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewMessageResponse creates a success response carrying a message
func NewMessageResponse(data any, message string) Response {
	return Response{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// NewSuccessResponseWithMeta creates a success response with pagination meta
func NewSuccessResponseWithMeta(data any, total int64, page, pageSize int) Response {
	return Response{
		Success: true,
		Data:    data,
		Meta:    NewMeta(total, page, pageSize),
	}
}

// NewErrorResponse creates an error response. The status code is derived
// from the error code.
func NewErrorResponse(code, message string) Response {
	return NewDetailedErrorResponse(code, message, nil, "")
}

// NewDetailedErrorResponse creates an error response with details and the
// request id
func NewDetailedErrorResponse(code, message string, details map[string]any, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:       code,
			Message:    message,
			StatusCode: GetHTTPStatus(code),
			Details:    details,
			RequestID:  requestID,
		},
	}
}

package handler

import (
	"errors"
	"io"
	"net/http"

	settingsapp "github.com/billing/backend/internal/application/settings"
	"github.com/gin-gonic/gin"
)

// logoFormField is the multipart field carrying the logo
const logoFormField = "logo"

// SettingsHandler handles company settings endpoints
type SettingsHandler struct {
	BaseHandler
	settingsService *settingsapp.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *settingsapp.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// Get godoc
// @ID           getSettings
// @Summary      Company settings
// @Tags         settings
// @Produce      json
// @Success      200 {object} APIResponse[settingsapp.SettingsResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	current, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, current)
}

// Public godoc
// @ID           getPublicSettings
// @Summary      Public company details
// @Description  Company identity, tax label and logo URL; no authentication required
// @Tags         settings
// @Produce      json
// @Success      200 {object} APIResponse[settingsapp.PublicSettingsResponse]
// @Router       /settings/public [get]
func (h *SettingsHandler) Public(c *gin.Context) {
	public, err := h.settingsService.Public(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, public)
}

// Update godoc
// @ID           updateSettings
// @Summary      Replace company settings
// @Description  Admin only
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request body settingsapp.UpdateSettingsRequest true "Settings"
// @Success      200 {object} APIResponse[settingsapp.SettingsResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req settingsapp.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	updated, err := h.settingsService.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMessage(c, updated, "Settings updated successfully")
}

// Patch godoc
// @ID           patchSettings
// @Summary      Update some company settings
// @Description  Admin only; only the fields present are changed
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request body settingsapp.PatchSettingsRequest true "Settings"
// @Success      200 {object} APIResponse[settingsapp.SettingsResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /settings [patch]
func (h *SettingsHandler) Patch(c *gin.Context) {
	var req settingsapp.PatchSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	updated, err := h.settingsService.Patch(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMessage(c, updated, "Settings updated successfully")
}

// UploadLogo godoc
// @ID           uploadLogo
// @Summary      Upload the company logo
// @Description  Admin only; PNG, JPEG or SVG up to 2MB, stored in object storage
// @Tags         settings
// @Accept       multipart/form-data
// @Produce      json
// @Param        logo formData file true "Logo image"
// @Success      200 {object} APIResponse[settingsapp.SettingsResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /settings/logo [post]
func (h *SettingsHandler) UploadLogo(c *gin.Context) {
	fh, err := c.FormFile(logoFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.Error(c, "INVALID_LOGO", "Logo file is too large", nil)
			return
		}
		h.Error(c, "VALIDATION_ERROR", "Logo file is required",
			map[string]any{logoFormField: "This field is required"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	updated, err := h.settingsService.UploadLogo(c.Request.Context(), settingsapp.LogoUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMessage(c, updated, "Logo uploaded successfully")
}

package handler

// =====================
// Auth Request DTOs
// =====================

// RegisterRequest represents the request body for account registration
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email,max=254" example:"owner@example.com"`
	Password        string `json:"password" binding:"required,min=8,max=128" example:"Secret123"`
	PasswordConfirm string `json:"password_confirm" binding:"required" example:"Secret123"`
	FullName        string `json:"full_name" binding:"max=255" example:"Asha Rao"`
	PhoneNumber     string `json:"phone_number" binding:"max=17" example:"+919876543210"`
	Role            string `json:"role" binding:"omitempty,oneof=admin user" example:"user"`
}

// LoginRequest represents the request body for user login. Role restricts
// the login to accounts holding that role.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"owner@example.com"`
	Password string `json:"password" binding:"required,max=128" example:"Secret123"`
	Role     string `json:"role" binding:"omitempty,oneof=admin user"`
}

// RefreshTokenRequest represents the request body for token refresh and logout
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest represents the request body for password change
type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password" binding:"required"`
	NewPassword        string `json:"new_password" binding:"required,min=8,max=128"`
	NewPasswordConfirm string `json:"new_password_confirm" binding:"required"`
}

// UpdateProfileRequest represents the editable profile fields
type UpdateProfileRequest struct {
	FullName    *string `json:"full_name" binding:"omitempty,max=255"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=17"`
}

// UserListQuery is the query string of the user list
type UserListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
}

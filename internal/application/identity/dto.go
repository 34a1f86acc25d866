package identity

import (
	"time"

	"github.com/billing/backend/internal/domain/identity"
	"github.com/billing/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
)

// RegisterInput contains the fields needed to create an account
type RegisterInput struct {
	Email           string
	Password        string
	PasswordConfirm string
	FullName        string
	PhoneNumber     string
	Role            string
}

// LoginInput contains login credentials. Role, when set, restricts the login
// to accounts holding that role.
type LoginInput struct {
	Email    string
	Password string
	Role     string
}

// ChangePasswordInput contains the old and new password
type ChangePasswordInput struct {
	OldPassword        string
	NewPassword        string
	NewPasswordConfirm string
}

// UpdateProfileInput contains the editable profile fields. Nil leaves a
// field unchanged.
type UpdateProfileInput struct {
	FullName    *string
	PhoneNumber *string
}

// Caller identifies the authenticated user making a request
type Caller struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	PhoneNumber string     `json:"phone_number"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	DateJoined  time.Time  `json:"date_joined"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

// AuthResult pairs a user with freshly issued tokens
type AuthResult struct {
	User   UserResponse    `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// ToUserResponse converts a domain user into its public view
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		DateJoined:  u.DateJoined,
		LastLogin:   u.LastLogin,
	}
}

// ToUserResponses converts a slice of users
func ToUserResponses(users []*identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return out
}

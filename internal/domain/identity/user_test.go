package identity

import (
	"testing"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates active user with normalized email", func(t *testing.T) {
		user, err := NewUser("  Owner@Example.COM ", "Password123", "")

		require.NoError(t, err)
		assert.Equal(t, "owner@example.com", user.Email)
		assert.Equal(t, RoleUser, user.Role)
		assert.True(t, user.IsActive)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "Password123", user.PasswordHash)
		assert.Equal(t, 1, user.Version)
		assert.Equal(t, user.CreatedAt, user.DateJoined)
	})

	t.Run("accepts admin role", func(t *testing.T) {
		user, err := NewUser("admin@example.com", "Password123", RoleAdmin)

		require.NoError(t, err)
		assert.True(t, user.IsAdmin())
	})

	tests := []struct {
		name     string
		email    string
		password string
		role     Role
		code     string
	}{
		{"empty email", "", "Password123", RoleUser, "INVALID_EMAIL"},
		{"malformed email", "not-an-email", "Password123", RoleUser, "INVALID_EMAIL"},
		{"short password", "a@example.com", "Pass1", RoleUser, "INVALID_PASSWORD"},
		{"password without digit", "a@example.com", "Passwordonly", RoleUser, "INVALID_PASSWORD"},
		{"unknown role", "a@example.com", "Password123", Role("owner"), "INVALID_ROLE"},
	}
	for _, tt := range tests {
		t.Run("fails with "+tt.name, func(t *testing.T) {
			_, err := NewUser(tt.email, tt.password, tt.role)

			de, ok := shared.IsDomainError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestUser_ChangePassword(t *testing.T) {
	user, err := NewUser("user@example.com", "Password123", RoleUser)
	require.NoError(t, err)

	t.Run("rejects wrong old password", func(t *testing.T) {
		err := user.ChangePassword("Wrong1234", "NewPassword1")
		assert.Error(t, err)
		assert.True(t, user.VerifyPassword("Password123"))
	})

	t.Run("rejects weak new password", func(t *testing.T) {
		err := user.ChangePassword("Password123", "short")
		assert.Error(t, err)
	})

	t.Run("changes password", func(t *testing.T) {
		err := user.ChangePassword("Password123", "NewPassword1")
		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("NewPassword1"))
		assert.False(t, user.VerifyPassword("Password123"))
	})
}

func TestUser_UpdateProfile(t *testing.T) {
	user, err := NewUser("user@example.com", "Password123", RoleUser)
	require.NoError(t, err)

	require.NoError(t, user.UpdateProfile(" Jane Doe ", "+91 98765 43210"))
	assert.Equal(t, "Jane Doe", user.FullName)
	assert.Equal(t, "Jane Doe", user.DisplayName())

	assert.Error(t, user.UpdateProfile("Jane", "call me"))
}

func TestUser_RecordLoginAndDeactivate(t *testing.T) {
	user, err := NewUser("user@example.com", "Password123", RoleUser)
	require.NoError(t, err)
	assert.Nil(t, user.LastLogin)
	assert.Equal(t, "user@example.com", user.DisplayName())

	user.RecordLogin()
	assert.NotNil(t, user.LastLogin)

	user.Deactivate()
	assert.False(t, user.IsActive)
}

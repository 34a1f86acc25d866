package persistence

import (
	"context"
	"testing"

	"github.com/billing/backend/internal/domain/identity"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, repo *GormUserRepository, email string) *identity.User {
	t.Helper()
	user, err := identity.NewUser(email, "Password123", identity.RoleUser)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestGormUserRepository(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t)
	repo := NewGormUserRepository(db.DB)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_ = createUser(t, repo, "admin@example.com")
	user := createUser(t, repo, "clerk@example.com")

	found, err := repo.FindByEmail(ctx, " CLERK@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	exists, err := repo.ExistsByEmail(ctx, "Admin@Example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	found.RecordLogin()
	found.Deactivate()
	require.NoError(t, repo.Update(ctx, found))
	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
	assert.NotNil(t, reloaded.LastLogin)

	users, total, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10, Search: "clerk"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "clerk@example.com", users[0].Email)
}

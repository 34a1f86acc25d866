package auth_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/billing/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_Revoke(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.Revoke(ctx, "jti-1", time.Hour))

	revoked, err := blacklist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_ExpiredEntries(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.Revoke(ctx, "jti-short", time.Millisecond))
	require.NoError(t, blacklist.Revoke(ctx, "jti-expired", -time.Second))
	time.Sleep(10 * time.Millisecond)

	for _, jti := range []string{"jti-short", "jti-expired"} {
		revoked, err := blacklist.IsRevoked(ctx, jti)
		require.NoError(t, err)
		assert.False(t, revoked, jti)
	}
}

func TestInMemoryTokenBlacklist_RevokeUser(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()
	issuedBefore := time.Now().Add(-time.Hour)

	revoked, err := blacklist.IsUserRevoked(ctx, "user-1", issuedBefore)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, blacklist.RevokeUser(ctx, "user-1", time.Hour))

	revoked, err = blacklist.IsUserRevoked(ctx, "user-1", issuedBefore)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsUserRevoked(ctx, "user-1", time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = blacklist.IsUserRevoked(ctx, "user-2", issuedBefore)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_ManyTokens(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	for i := range 10 {
		require.NoError(t, blacklist.Revoke(ctx, fmt.Sprintf("jti-%d", i), time.Hour))
	}
	for i := range 10 {
		revoked, err := blacklist.IsRevoked(ctx, fmt.Sprintf("jti-%d", i))
		require.NoError(t, err)
		assert.True(t, revoked)
	}
}

func TestTokenBlacklist_Implementations(t *testing.T) {
	var _ auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	var _ auth.TokenBlacklist = (*auth.RedisTokenBlacklist)(nil)
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDenylist(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewMemoryDenylist()
	d.now = func() time.Time { return now }

	require.NoError(t, d.Revoke(ctx, "a", now.Add(time.Hour)))
	require.NoError(t, d.Revoke(ctx, "stale", now.Add(-time.Minute)))

	revoked, err := d.Revoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = d.Revoked(ctx, "stale")
	assert.False(t, revoked, "an already expired token is not stored")
	revoked, _ = d.Revoked(ctx, "unknown")
	assert.False(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, _ = d.Revoked(ctx, "a")
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "b", now.Add(time.Hour)))
	assert.Len(t, d.revoked, 1, "expired entries are swept on write")
}

func TestRedisDenylistUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisDenylist(ctx, "127.0.0.1:1")
	assert.Error(t, err)
}

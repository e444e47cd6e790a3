package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault-backend/internal/storage/memory"
)

func TestMemoryManagerCreateResolve(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager(0)
	userID := uuid.New()

	token, err := m.Create(ctx, userID)
	require.NoError(t, err)
	// 32 random bytes, hex-encoded.
	assert.Len(t, token, 64)

	resolved, ok := m.Resolve(ctx, token)
	require.True(t, ok)
	assert.Equal(t, userID, resolved)
}

func TestMemoryManagerTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager(0)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := m.Create(ctx, uuid.New())
		require.NoError(t, err)
		require.False(t, seen[token])
		seen[token] = true
	}
}

func TestMemoryManagerUnknownToken(t *testing.T) {
	m := NewMemoryManager(0)

	_, ok := m.Resolve(context.Background(), "no-such-token")
	assert.False(t, ok)

	_, ok = m.Resolve(context.Background(), "")
	assert.False(t, ok)
}

// After Destroy, the token stays dead even if presented again.
func TestMemoryManagerDestroyRevokes(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager(0)

	token, err := m.Create(ctx, uuid.New())
	require.NoError(t, err)

	require.NoError(t, m.Destroy(ctx, token))

	for i := 0; i < 3; i++ {
		_, ok := m.Resolve(ctx, token)
		assert.False(t, ok)
	}

	// Destroying an unknown token is a no-op.
	require.NoError(t, m.Destroy(ctx, token))
}

func TestMemoryManagerTTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager(time.Hour)

	now := time.Now()
	m.now = func() time.Time { return now }

	token, err := m.Create(ctx, uuid.New())
	require.NoError(t, err)

	_, ok := m.Resolve(ctx, token)
	require.True(t, ok)

	m.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, ok = m.Resolve(ctx, token)
	assert.False(t, ok)

	// Expiry removed the entry, not just hid it.
	m.now = func() time.Time { return now }
	_, ok = m.Resolve(ctx, token)
	assert.False(t, ok)
}

func TestStoreManagerRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewStoreManager(memory.New(), 0)
	userID := uuid.New()

	token, err := m.Create(ctx, userID)
	require.NoError(t, err)

	resolved, ok := m.Resolve(ctx, token)
	require.True(t, ok)
	assert.Equal(t, userID, resolved)

	require.NoError(t, m.Destroy(ctx, token))
	_, ok = m.Resolve(ctx, token)
	assert.False(t, ok)
}

func TestStoreManagerTTL(t *testing.T) {
	ctx := context.Background()
	m := NewStoreManager(memory.New(), time.Hour)

	now := time.Now()
	m.now = func() time.Time { return now }

	token, err := m.Create(ctx, uuid.New())
	require.NoError(t, err)

	m.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, ok := m.Resolve(ctx, token)
	assert.False(t, ok)
}

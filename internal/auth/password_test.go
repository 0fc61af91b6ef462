package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(MinBcryptCost)
	require.NoError(t, err)
	return h
}

func TestHashAndVerifyPassword(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	digest, err := h.Hash(ctx, "Password123!")
	require.NoError(t, err)
	assert.NotEqual(t, "Password123!", digest)

	assert.True(t, h.Verify(ctx, "Password123!", digest))
	assert.False(t, h.Verify(ctx, "password123!", digest))
}

func TestHashIsSalted(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	first, err := h.Hash(ctx, "pw123")
	require.NoError(t, err)
	second, err := h.Hash(ctx, "pw123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify(ctx, "pw123", first))
	assert.True(t, h.Verify(ctx, "pw123", second))
}

func TestVerifyRejectsMalformedDigest(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	for _, digest := range []string{"", "invalid-hash-format", "$2a$10$short", "pw123"} {
		assert.False(t, h.Verify(ctx, "pw123", digest), digest)
	}
}

func TestVerifyAbsentAlwaysFails(t *testing.T) {
	h := newTestHasher(t)
	assert.False(t, h.VerifyAbsent(context.Background(), "anything"))
}

func TestNewHasherRejectsCostOutOfRange(t *testing.T) {
	for _, cost := range []int{0, bcrypt.MinCost, MinBcryptCost - 1, bcrypt.MaxCost + 1} {
		_, err := NewHasher(cost)
		assert.True(t, errors.Is(err, ErrInvalidCost), "cost %d", cost)
	}
}

func TestHashHonoursCancelledContext(t *testing.T) {
	h := newTestHasher(t)

	// Exhaust the pool so Acquire has to wait on the context.
	size := 0
	for h.sem.TryAcquire(1) {
		size++
	}
	defer h.sem.Release(int64(size))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "pw123")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, h.Verify(ctx, "pw123", h.dummy))
}

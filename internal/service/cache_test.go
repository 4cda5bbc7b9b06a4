package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemorySettledCache_AddAndContains(t *testing.T) {
	ctx := context.Background()
	cache := NewMemorySettledCache(10, time.Hour)

	assert.False(t, cache.Contains(ctx, "l1"))
	cache.Add(ctx, "l1")
	assert.True(t, cache.Contains(ctx, "l1"))
	assert.False(t, cache.Contains(ctx, "l2"))
}

func TestMemorySettledCache_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemorySettledCache(10, 10*time.Millisecond)

	cache.Add(ctx, "l1")
	assert.True(t, cache.Contains(ctx, "l1"))

	time.Sleep(30 * time.Millisecond)
	assert.False(t, cache.Contains(ctx, "l1"))
}

func TestMemorySettledCache_BoundedSize(t *testing.T) {
	ctx := context.Background()
	cache := NewMemorySettledCache(3, time.Hour)

	cache.Add(ctx, "l1")
	cache.Add(ctx, "l2")
	cache.Add(ctx, "l3")
	cache.Add(ctx, "l4")

	assert.Equal(t, 3, cache.Len())
	assert.True(t, cache.Contains(ctx, "l4"))
}

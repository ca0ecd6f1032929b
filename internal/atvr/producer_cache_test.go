package atvr

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProducerCache_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryProducerCache(time.Minute)
	c.now = func() time.Time { return now }

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, []string{"Kaldi"}))
	names, ok, _ := c.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, []string{"Kaldi"}, names)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx)
	assert.False(t, ok)
}

func TestMemoryProducerCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryProducerCache(0)
	require.NoError(t, c.Set(ctx, nil))

	names, ok, _ := c.Get(ctx)
	assert.True(t, ok)
	assert.Empty(t, names)

	require.NoError(t, c.Invalidate(ctx))
	_, ok, _ = c.Get(ctx)
	assert.False(t, ok)
}

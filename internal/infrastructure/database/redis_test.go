package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetNX(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedis(mr.Addr(), "", 0)
	t.Cleanup(func() { c.Close() })
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	v, created, err := SetNX(ctx, c.Client, "subject:+971501234567", "first", 0)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "first", v)

	v, created, err = SetNX(ctx, c.Client, "subject:+971501234567", "second", 0)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "first", v, "the first writer keeps the key")
}

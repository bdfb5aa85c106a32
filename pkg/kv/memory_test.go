package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, found, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, m.Set(ctx, "k", "v1"))
	v, found, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v1", v)

	require.NoError(t, m.Set(ctx, "k", "v2"))
	v, _, _ = m.Get(ctx, "k")
	assert.Equal(t, "v2", v, "set overwrites")

	require.NoError(t, m.Set(ctx, "empty", ""))
	v, found, err = m.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, found, "empty value is still present")
	assert.Empty(t, v)
}

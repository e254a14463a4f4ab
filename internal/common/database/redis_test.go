package database

import (
	"context"
	"testing"

	"loan-approval/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisClient_PurgeStaleVerdicts(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx))
	require.NoError(t, mr.Set("loan:verdict:current:aaa", "1"))
	require.NoError(t, mr.Set("loan:verdict:current:bbb", "0"))
	require.NoError(t, mr.Set("loan:verdict:previous:aaa", "1"))
	require.NoError(t, mr.Set("loan:verdict:older:ccc", "0"))
	require.NoError(t, mr.Set("session:42", "x"))

	removed, err := client.PurgeStaleVerdicts(ctx, "loan:verdict", "current")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	assert.True(t, mr.Exists("loan:verdict:current:aaa"))
	assert.True(t, mr.Exists("loan:verdict:current:bbb"))
	assert.False(t, mr.Exists("loan:verdict:previous:aaa"))
	assert.False(t, mr.Exists("loan:verdict:older:ccc"))
	assert.True(t, mr.Exists("session:42"))
}

func TestRedisClient_PurgeStaleVerdictsEmpty(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	removed, err := client.PurgeStaleVerdicts(context.Background(), "loan:verdict", "current")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}

package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockKeyIsPrefixed(t *testing.T) {
	assert.Equal(t, "lock:slot:7:1700000000", lockKey("slot:7:1700000000"))
}

func TestLock_UnreachableServerReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	l := NewRedisLockWithClient(client)
	defer l.Close()

	acquired, err := l.Lock(context.Background(), "slot:1:1", "owner-a", time.Second)
	require.Error(t, err)
	assert.False(t, acquired)
	assert.Contains(t, err.Error(), "lock.RedisLock.Lock")

	err = l.Unlock(context.Background(), "slot:1:1", "owner-a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock.RedisLock.Unlock")
}

func TestLock_ExclusiveUntilUnlocked(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}

	ctx := context.Background()
	l, err := NewRedisLock(ctx, addr)
	require.NoError(t, err)
	defer l.Close()

	key := "slot:test:" + time.Now().Format("150405.000000")

	ok, err := l.Lock(ctx, key, "owner-a", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Lock(ctx, key, "owner-b", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must not acquire")

	require.NoError(t, l.Unlock(ctx, key, "owner-a"))

	ok, err = l.Lock(ctx, key, "owner-b", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, l.Unlock(ctx, key, "owner-b"))
}

// Истёкшая блокировка первого владельца не должна снимать блокировку следующего
func TestUnlock_ExpiredOwnerKeepsNextHolder(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}

	ctx := context.Background()
	l, err := NewRedisLock(ctx, addr)
	require.NoError(t, err)
	defer l.Close()

	key := "slot:expire:" + time.Now().Format("150405.000000")

	ok, err := l.Lock(ctx, key, "slow-saga", 100*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(200 * time.Millisecond)

	ok, err = l.Lock(ctx, key, "next-saga", 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	err = l.Unlock(ctx, key, "slow-saga")
	assert.ErrorIs(t, err, ErrNotHeld)

	ok, err = l.Lock(ctx, key, "third-saga", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "next holder still owns the slot")

	require.NoError(t, l.Unlock(ctx, key, "next-saga"))
}

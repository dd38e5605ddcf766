package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("mysql://localhost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}

func TestNew_ValidURL(t *testing.T) {
	r, err := New("redis://localhost:6379/2")
	require.NoError(t, err)
	assert.NoError(t, r.Close())
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), "redis://127.0.0.1:1/0", 200*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func TestRandomToken(t *testing.T) {
	a, b := randomToken(), randomToken()
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := New("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	r, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0", time.Second)
	require.NoError(t, err)
	assert.NoError(t, r.Ping(context.Background()))
	assert.NoError(t, r.Close())
}

func TestGetSet(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	_, err := Get[entry](ctx, r, "dashboard:a")
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, Set(ctx, r, "dashboard:a", entry{Name: "Music", Count: 2}, time.Minute))
	got, err := Get[entry](ctx, r, "dashboard:a")
	require.NoError(t, err)
	assert.Equal(t, entry{Name: "Music", Count: 2}, got)
	assert.Equal(t, time.Minute, mr.TTL("dashboard:a"))

	mr.FastForward(time.Minute)
	_, err = Get[entry](ctx, r, "dashboard:a")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestGet_CorruptValue(t *testing.T) {
	r, mr := newTestRedis(t)
	require.NoError(t, mr.Set("dashboard:bad", "{not json"))

	_, err := Get[entry](context.Background(), r, "dashboard:bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
	assert.Contains(t, err.Error(), "cache unmarshal")
}

func TestDelPattern(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()
	for i := 0; i < 250; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("dashboard:%d", i), "{}"))
	}
	require.NoError(t, mr.Set("other:1", "{}"))

	n, err := DelPattern(ctx, r, "dashboard:*")
	require.NoError(t, err)
	assert.Equal(t, 250, n)
	assert.Equal(t, []string{"other:1"}, mr.Keys())

	n, err = DelPattern(ctx, r, "dashboard:*")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTryLock(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	unlock, err := TryLock(ctx, r, "lock:reload", time.Minute)
	require.NoError(t, err)

	held, err := IsLocked(ctx, r, "lock:reload")
	require.NoError(t, err)
	assert.True(t, held)
	assert.Equal(t, time.Minute, mr.TTL("lock:reload"))

	_, err = TryLock(ctx, r, "lock:reload", time.Minute)
	require.ErrorIs(t, err, ErrLocked)

	unlock()
	held, err = IsLocked(ctx, r, "lock:reload")
	require.NoError(t, err)
	assert.False(t, held)
}

func TestTryLock_UnlockLeavesForeignHolder(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	unlock, err := TryLock(ctx, r, "lock:reload", time.Minute)
	require.NoError(t, err)

	// Our lock expired and another replica took it.
	mr.FastForward(time.Minute)
	require.NoError(t, mr.Set("lock:reload", "someone-else"))

	unlock()
	got, err := mr.Get("lock:reload")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestIsLocked_Unreachable(t *testing.T) {
	r, mr := newTestRedis(t)
	mr.Close()

	_, err := IsLocked(context.Background(), r, "lock:reload")
	assert.Error(t, err)
}

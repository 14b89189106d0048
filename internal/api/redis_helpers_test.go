package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLockClient struct {
	values  map[string]string
	setErr  error
	evalled []string
}

func (f *fakeLockClient) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	if f.setErr != nil {
		return redis.NewBoolResult(false, f.setErr)
	}
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeLockClient) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	f.evalled = append(f.evalled, keys[0])
	if f.values[keys[0]] == args[0] {
		delete(f.values, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestRedisLocker(t *testing.T) {
	client := &fakeLockClient{values: map[string]string{}}
	locker := NewRedisLocker(client)
	ctx := context.Background()
	key := exportLockKey("r1")
	assert.Equal(t, "export_lock:r1", key)

	release, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, key, time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	release()
	assert.Equal(t, []string{key}, client.evalled)
	assert.NotContains(t, client.values, key)

	_, err = locker.Acquire(ctx, key, time.Minute)
	assert.NoError(t, err)
}

func TestRedisLockerReleaseKeepsForeignLock(t *testing.T) {
	client := &fakeLockClient{values: map[string]string{}}
	locker := NewRedisLocker(client)
	key := exportLockKey("r1")

	release, err := locker.Acquire(context.Background(), key, time.Minute)
	require.NoError(t, err)
	// 锁过期后被其他请求重新获取
	client.values[key] = "someone-else"
	release()
	assert.Equal(t, "someone-else", client.values[key])
}

func TestRedisLockerError(t *testing.T) {
	client := &fakeLockClient{values: map[string]string{}, setErr: errors.New("connection refused")}
	_, err := NewRedisLocker(client).Acquire(context.Background(), "k", time.Minute)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrLocked))
}

package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLocked 表示同一份文档的同格式导出正在进行。
var ErrLocked = errors.New("export already in progress")

// Locker 提供按键互斥，release 只会释放自己持有的锁。
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

type redisLockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// 仅当值仍是自己的 token 时才删除，避免误删过期后被他人重新获取的锁。
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

// RedisLocker 基于 SET NX 的简单互斥锁。
type RedisLocker struct {
	client redisLockClient
}

func NewRedisLocker(client redisLockClient) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %q: %w", key, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		// 请求上下文可能已取消，释放使用独立的短超时
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = l.client.Eval(releaseCtx, releaseScript, []string{key}, token).Err()
	}, nil
}

// exportLockKey 按简历加锁，不区分格式：同一份简历同时只允许一个导出。
func exportLockKey(resumeID string) string {
	return fmt.Sprintf("export_lock:%s", resumeID)
}

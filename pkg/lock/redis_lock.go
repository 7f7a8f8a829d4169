package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisLock 基于 redislock 的分布式锁，TryLock 重复调用即续期
type RedisLock struct {
	client *redislock.Client
	key    string
	ttl    time.Duration

	mu   sync.Mutex
	lock *redislock.Lock
}

// NewRedisLock 创建 redis 分布式锁
func NewRedisLock(rdb redis.UniversalClient, key string, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLock{
		client: redislock.New(rdb),
		key:    key,
		ttl:    ttl,
	}
}

func (l *RedisLock) TryLock(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lock != nil {
		err := l.lock.Refresh(ctx, l.ttl, nil)
		if err == nil {
			return true, nil
		}
		// 续期失败说明锁已过期或被他人持有
		l.lock = nil
		if errors.Is(err, redislock.ErrNotObtained) {
			return false, nil
		}
		return false, err
	}

	lk, err := l.client.Obtain(ctx, l.key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	l.lock = lk
	return true, nil
}

func (l *RedisLock) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lock == nil {
		return nil
	}
	err := l.lock.Release(ctx)
	l.lock = nil
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}

func (l *RedisLock) IsLocked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lock != nil
}

func (l *RedisLock) GetLockKey() string {
	return l.key
}

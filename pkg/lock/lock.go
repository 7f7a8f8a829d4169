package lock

import (
	"context"
)

// DistributedLock 分布式锁接口
type DistributedLock interface {
	// TryLock 尝试获取锁，不阻塞；已持有时续期
	TryLock(ctx context.Context) (bool, error)

	// Unlock 释放锁
	Unlock(ctx context.Context) error

	// IsLocked 检查锁是否被当前实例持有
	IsLocked() bool

	// GetLockKey 获取锁的键
	GetLockKey() string
}

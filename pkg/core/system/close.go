package system

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	closes []func(ctx context.Context)
	mu     sync.Mutex
)

// RegisterClose 注册退出时的清理函数，按注册的逆序执行
func RegisterClose(f func(ctx context.Context)) {
	mu.Lock()
	defer mu.Unlock()

	closes = append(closes, f)
}

// WaitSignal 阻塞到收到退出信号
func WaitSignal() os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(ch)
	return <-ch
}

// Shutdown 依次执行清理函数
func Shutdown(ctx context.Context) {
	mu.Lock()
	fs := make([]func(ctx context.Context), len(closes))
	copy(fs, closes)
	closes = nil
	mu.Unlock()

	for i := len(fs) - 1; i >= 0; i-- {
		fs[i](ctx)
	}
}

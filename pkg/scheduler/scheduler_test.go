package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, cfg *SchedulerConfig) *Scheduler {
	t.Helper()
	s := NewScheduler(cfg)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestIntervalTaskRunsRepeatedly(t *testing.T) {
	s := newTestScheduler(t, nil)

	var runs atomic.Int32
	task := NewIntervalTask("interval", time.Now(), 10*time.Millisecond, TaskExecuteModeLocal, time.Second,
		func(ctx context.Context) error {
			runs.Add(1)
			return nil
		})
	require.NoError(t, s.AddTask(task))

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestIntervalTaskNeverOverlapsItself(t *testing.T) {
	s := newTestScheduler(t, nil)

	var (
		inFlight   atomic.Int32
		maxSeen    atomic.Int32
		executions atomic.Int32
	)
	// 执行耗时远大于间隔
	task := NewIntervalTask("slow", time.Now(), time.Millisecond, TaskExecuteModeLocal, time.Second,
		func(ctx context.Context) error {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				cur := maxSeen.Load()
				if n <= cur || maxSeen.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(30 * time.Millisecond)
			executions.Add(1)
			return nil
		})
	require.NoError(t, s.AddTask(task))

	require.Eventually(t, func() bool { return executions.Load() >= 3 }, 3*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), maxSeen.Load())
}

func TestFailedIntervalTaskKeepsRunning(t *testing.T) {
	s := newTestScheduler(t, nil)

	var runs atomic.Int32
	task := NewIntervalTask("failing", time.Now(), 5*time.Millisecond, TaskExecuteModeLocal, time.Second,
		func(ctx context.Context) error {
			if runs.Add(1) == 1 {
				panic("boom")
			}
			return assert.AnError
		})
	require.NoError(t, s.AddTask(task))

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, s.GetStats().FailedTasks, int64(2))
}

func TestRemoveTaskStopsFutureRuns(t *testing.T) {
	s := newTestScheduler(t, nil)

	var runs atomic.Int32
	task := NewIntervalTask("removable", time.Now(), 5*time.Millisecond, TaskExecuteModeLocal, time.Second,
		func(ctx context.Context) error {
			runs.Add(1)
			return nil
		})
	require.NoError(t, s.AddTask(task))
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, time.Millisecond)

	require.True(t, s.RemoveTask(task.GetID()))
	time.Sleep(20 * time.Millisecond)
	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestStopWaitsForInFlightTask(t *testing.T) {
	s := NewScheduler(nil)
	require.NoError(t, s.Start())

	started := make(chan struct{})
	var finished atomic.Bool
	var once sync.Once
	task := NewIntervalTask("inflight", time.Now(), time.Hour, TaskExecuteModeLocal, time.Second,
		func(ctx context.Context) error {
			once.Do(func() { close(started) })
			time.Sleep(50 * time.Millisecond)
			// 停止调度器不应取消正在执行的任务
			if ctx.Err() == nil {
				finished.Store(true)
			}
			return nil
		})
	require.NoError(t, s.AddTask(task))

	<-started
	require.NoError(t, s.Stop())
	assert.True(t, finished.Load())
	assert.Error(t, s.AddTask(task))
}

type fakeLeaderLock struct {
	held atomic.Bool
}

func (f *fakeLeaderLock) TryLock(ctx context.Context) (bool, error) { return f.held.Load(), nil }
func (f *fakeLeaderLock) Unlock(ctx context.Context) error           { return nil }
func (f *fakeLeaderLock) IsLocked() bool                             { return f.held.Load() }
func (f *fakeLeaderLock) GetLockKey() string                         { return "test" }

func TestDistributedTaskRequiresLeadership(t *testing.T) {
	leader := &fakeLeaderLock{}
	s := newTestScheduler(t, &SchedulerConfig{CheckInterval: 10 * time.Millisecond, LeaderLock: leader})

	var runs atomic.Int32
	task := NewIntervalTask("distributed", time.Now(), 5*time.Millisecond, TaskExecuteModeDistributed, time.Second,
		func(ctx context.Context) error {
			runs.Add(1)
			return nil
		})
	require.NoError(t, s.AddTask(task))

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
	assert.False(t, s.IsLeader())

	leader.held.Store(true)
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, s.IsLeader())
}

func TestCronTaskParsesSecondsField(t *testing.T) {
	task, err := NewCronTask("cron", "*/5 * * * * *", TaskExecuteModeLocal, time.Second, func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 5, 0, time.UTC), task.UpdateNextTime(now))

	_, err = NewCronTask("bad", "not a cron", TaskExecuteModeLocal, time.Second, nil)
	assert.Error(t, err)
}

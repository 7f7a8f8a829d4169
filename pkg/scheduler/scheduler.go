package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"monicore/pkg/core/logger"
	"monicore/pkg/lock"
)

// Scheduler 任务调度器
//
// 同一个任务弹出堆后在工作协程中执行，执行结束才重新入堆，因此任务不会与自身并发。
// 未配置 LeaderLock 时本节点始终是领导者，分布式任务也在本地执行。
type Scheduler struct {
	nodeID        string
	leaderLock    lock.DistributedLock
	checkInterval time.Duration
	maxWorkers    int

	isRunning atomic.Bool
	isLeader  atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	taskHeap *TaskHeap

	// 正在执行的任务，RemoveTask 需要能取消它们的下一次调度
	runningMu sync.Mutex
	running   map[string]Task

	workerSemaphore chan struct{}

	timer   *time.Timer
	timerMu sync.Mutex

	log *logger.Log

	stats *SchedulerStats
}

// SchedulerStats 调度器统计信息
type SchedulerStats struct {
	mu               sync.RWMutex
	TotalTasks       int64     `json:"total_tasks"`
	CompletedTasks   int64     `json:"completed_tasks"`
	FailedTasks      int64     `json:"failed_tasks"`
	DistributedTasks int64     `json:"distributed_tasks"`
	LocalTasks       int64     `json:"local_tasks"`
	LeaderElections  int64     `json:"leader_elections"`
	LastExecuteTime  time.Time `json:"last_execute_time"`
}

// SchedulerConfig 调度器配置
type SchedulerConfig struct {
	NodeID        string
	CheckInterval time.Duration
	MaxWorkers    int
	// LeaderLock 可选，多副本部署时用于选主
	LeaderLock lock.DistributedLock
}

// DefaultSchedulerConfig 默认调度器配置
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		NodeID:        fmt.Sprintf("scheduler-%d", time.Now().UnixNano()),
		CheckInterval: 5 * time.Second,
		MaxWorkers:    10,
	}
}

// NewScheduler 创建新的调度器
func NewScheduler(config *SchedulerConfig) *Scheduler {
	if config == nil {
		config = DefaultSchedulerConfig()
	}
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 10
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		nodeID:          config.NodeID,
		leaderLock:      config.LeaderLock,
		checkInterval:   config.CheckInterval,
		maxWorkers:      config.MaxWorkers,
		ctx:             ctx,
		cancel:          cancel,
		taskHeap:        NewTaskHeap(),
		running:         make(map[string]Task),
		workerSemaphore: make(chan struct{}, config.MaxWorkers),
		log:             logger.GetLogger().WithEntryName("Scheduler"),
		stats:           &SchedulerStats{},
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	if !s.isRunning.CompareAndSwap(false, true) {
		return fmt.Errorf("调度器已经在运行")
	}

	s.log.Infof("启动调度器，节点ID: %s", s.nodeID)

	if s.leaderLock == nil {
		s.isLeader.Store(true)
	} else {
		s.tryBecomeLeader()
		s.wg.Add(1)
		go s.leaderLoop()
	}

	s.resetTimer()
	return nil
}

// Stop 停止调度器：不再发起新的执行，等待正在执行的任务结束
func (s *Scheduler) Stop() error {
	if !s.isRunning.CompareAndSwap(true, false) {
		return nil
	}

	s.log.Info("停止调度器")
	s.stopTimer()
	s.cancel()
	s.wg.Wait()

	if s.leaderLock != nil && s.leaderLock.IsLocked() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.leaderLock.Unlock(ctx); err != nil {
			s.log.WithErr(err).Error("释放领导者锁失败")
		}
	}

	s.log.Info("调度器已停止")
	return nil
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task Task) error {
	if !s.isRunning.Load() {
		return fmt.Errorf("调度器未运行")
	}

	s.taskHeap.SafePush(task)
	s.stats.incr(&s.stats.TotalTasks)

	s.log.Infof("添加任务: %s [%s]", task.GetName(), task.GetID())
	s.resetTimer()
	return nil
}

// RemoveTask 移除任务；任务正在执行时本次执行照常结束，但不会再被调度
func (s *Scheduler) RemoveTask(taskID string) bool {
	s.runningMu.Lock()
	removed := s.taskHeap.SafeRemove(taskID)
	if task, ok := s.running[taskID]; ok {
		task.SetStatus(TaskStatusCanceled)
		removed = true
	}
	s.runningMu.Unlock()

	if removed {
		s.log.Infof("移除任务: %s", taskID)
		s.resetTimer()
	}
	return removed
}

// ListTasks 列出堆中等待的任务
func (s *Scheduler) ListTasks() []Task {
	return s.taskHeap.SafeList()
}

// GetStats 获取统计信息副本
func (s *Scheduler) GetStats() SchedulerStats {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	return SchedulerStats{
		TotalTasks:       s.stats.TotalTasks,
		CompletedTasks:   s.stats.CompletedTasks,
		FailedTasks:      s.stats.FailedTasks,
		DistributedTasks: s.stats.DistributedTasks,
		LocalTasks:       s.stats.LocalTasks,
		LeaderElections:  s.stats.LeaderElections,
		LastExecuteTime:  s.stats.LastExecuteTime,
	}
}

// IsLeader 检查是否为领导者
func (s *Scheduler) IsLeader() bool {
	return s.isLeader.Load()
}

func (s *Scheduler) leaderLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.tryBecomeLeader()
		}
	}
}

func (s *Scheduler) tryBecomeLeader() {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	locked, err := s.leaderLock.TryLock(ctx)
	if err != nil {
		s.log.WithErr(err).Error("尝试获取领导者锁失败")
		locked = false
	}

	if locked && !s.isLeader.Load() {
		s.log.Info("成为领导者")
		s.isLeader.Store(true)
		s.stats.incr(&s.stats.LeaderElections)
	} else if !locked && s.isLeader.Load() {
		s.log.Info("失去领导者身份")
		s.isLeader.Store(false)
	}
}

func (s *Scheduler) resetTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.isRunning.Load() {
		return
	}

	nextTime := s.taskHeap.GetNextExecuteTime()
	if nextTime == nil {
		return
	}

	waitDuration := time.Until(*nextTime)
	if waitDuration < 0 {
		waitDuration = 0
	}
	s.timer = time.AfterFunc(waitDuration, s.onTimerFired)
}

func (s *Scheduler) stopTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) onTimerFired() {
	if !s.isRunning.Load() {
		return
	}

	readyTasks := s.taskHeap.PopReadyTasks(time.Now())
	for _, task := range readyTasks {
		s.executeTask(task)
	}
	// 执行中的任务在 runTask 结束后重新入堆并重置定时器
	s.resetTimer()
}

func (s *Scheduler) executeTask(task Task) {
	if task.GetExecuteMode() == TaskExecuteModeDistributed && !s.isLeader.Load() {
		// 非领导者跳过本轮；一次性任务只在触发时的领导者上执行
		if task.GetType() == TaskTypeOnce {
			task.SetStatus(TaskStatusCanceled)
			return
		}
		s.requeue(task, time.Now())
		return
	}

	select {
	case s.workerSemaphore <- struct{}{}:
		if task.GetExecuteMode() == TaskExecuteModeDistributed {
			s.stats.incr(&s.stats.DistributedTasks)
		} else {
			s.stats.incr(&s.stats.LocalTasks)
		}

		s.runningMu.Lock()
		s.running[task.GetID()] = task
		s.runningMu.Unlock()

		s.wg.Add(1)
		go func(t Task) {
			defer s.wg.Done()
			defer func() { <-s.workerSemaphore }()
			s.runTask(t)
		}(task)
	default:
		s.log.Warnf("工作者池已满，任务重新调度: %s", task.GetID())
		s.requeue(task, time.Now().Add(time.Second))
	}
}

func (s *Scheduler) runTask(task Task) {
	start := time.Now()
	s.log.Debugf("开始执行任务: %s [%s]", task.GetName(), task.GetID())

	// 停止调度器不打断正在执行的任务，只受任务自身超时约束
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), task.GetTimeout())
	err := s.safeExecute(ctx, task)
	cancel()

	s.stats.setLastExecuteTime(start)
	if err != nil {
		s.log.WithErr(err).Errorf("任务执行失败: %s [%s], 耗时: %v", task.GetName(), task.GetID(), time.Since(start))
		s.stats.incr(&s.stats.FailedTasks)
	} else {
		s.log.Debugf("任务执行成功: %s [%s], 耗时: %v", task.GetName(), task.GetID(), time.Since(start))
		s.stats.incr(&s.stats.CompletedTasks)
	}

	// 持锁入堆，保证与 RemoveTask 互斥
	s.runningMu.Lock()
	delete(s.running, task.GetID())
	s.requeue(task, time.Now())
	s.runningMu.Unlock()
}

func (s *Scheduler) safeExecute(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("任务 panic: %v", r)
			task.SetStatus(TaskStatusFailed)
		}
	}()
	return task.Execute(ctx)
}

// requeue 计算下次执行时间并重新入堆，已完成或已取消的任务丢弃
func (s *Scheduler) requeue(task Task, now time.Time) {
	if task.IsCompleted() || !s.isRunning.Load() {
		return
	}
	if task.GetType() == TaskTypeOnce && task.GetStatus() == TaskStatusFailed {
		return
	}
	nextTime := task.UpdateNextTime(now)
	if nextTime.IsZero() {
		return
	}
	task.SetStatus(TaskStatusWaiting)
	s.taskHeap.SafePush(task)
	s.resetTimer()
}

func (s *SchedulerStats) incr(field *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*field++
}

func (s *SchedulerStats) setLastExecuteTime(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastExecuteTime = t
}

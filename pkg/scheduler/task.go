package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// TaskType 任务类型
type TaskType int

const (
	// TaskTypeOnce 一次性任务
	TaskTypeOnce TaskType = iota
	// TaskTypeInterval 固定间隔任务
	TaskTypeInterval
	// TaskTypeCron 基于Cron表达式的任务
	TaskTypeCron
)

// TaskStatus 任务状态
type TaskStatus int

const (
	TaskStatusWaiting TaskStatus = iota
	TaskStatusRunning
	TaskStatusCompleted
	TaskStatusFailed
	TaskStatusCanceled
)

// TaskExecuteMode 任务执行模式
type TaskExecuteMode int

const (
	// TaskExecuteModeDistributed 分布式执行，只有持有领导者锁的节点执行
	TaskExecuteModeDistributed TaskExecuteMode = iota
	// TaskExecuteModeLocal 本地执行
	TaskExecuteModeLocal
)

// TaskFunc 任务执行函数
type TaskFunc func(ctx context.Context) error

// Task 任务接口
type Task interface {
	GetID() string
	GetName() string
	GetType() TaskType
	GetExecuteMode() TaskExecuteMode
	GetNextTime() time.Time
	GetTimeout() time.Duration

	// Execute 执行任务
	Execute(ctx context.Context) error

	// UpdateNextTime 根据本次完成时间计算下次执行时间
	UpdateNextTime(currentTime time.Time) time.Time

	CanExecute(currentTime time.Time) bool
	IsCompleted() bool
	GetStatus() TaskStatus
	SetStatus(status TaskStatus)
}

// BaseTask 基础任务实现
type BaseTask struct {
	ID          string
	Name        string
	Type        TaskType
	ExecuteMode TaskExecuteMode
	Timeout     time.Duration
	Func        TaskFunc
	CreateTime  time.Time

	mu       sync.RWMutex
	status   TaskStatus
	nextTime time.Time
}

func newBaseTask(name string, typ TaskType, mode TaskExecuteMode, next time.Time, timeout time.Duration, fn TaskFunc) *BaseTask {
	return &BaseTask{
		ID:          uuid.New().String(),
		Name:        name,
		Type:        typ,
		ExecuteMode: mode,
		Timeout:     timeout,
		Func:        fn,
		CreateTime:  time.Now(),
		status:      TaskStatusWaiting,
		nextTime:    next,
	}
}

func (t *BaseTask) GetID() string {
	return t.ID
}

func (t *BaseTask) GetName() string {
	return t.Name
}

func (t *BaseTask) GetType() TaskType {
	return t.Type
}

func (t *BaseTask) GetExecuteMode() TaskExecuteMode {
	return t.ExecuteMode
}

func (t *BaseTask) GetNextTime() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nextTime
}

func (t *BaseTask) setNextTime(next time.Time) time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextTime = next
	return next
}

// GetTimeout 未配置时默认 30 秒
func (t *BaseTask) GetTimeout() time.Duration {
	if t.Timeout <= 0 {
		return 30 * time.Second
	}
	return t.Timeout
}

func (t *BaseTask) Execute(ctx context.Context) error {
	if t.Func == nil {
		return nil
	}

	t.SetStatus(TaskStatusRunning)
	err := t.Func(ctx)

	// 运行期间被取消的任务保持取消状态
	if t.GetStatus() == TaskStatusCanceled {
		return err
	}
	switch {
	case err != nil:
		t.SetStatus(TaskStatusFailed)
	case t.Type == TaskTypeOnce:
		t.SetStatus(TaskStatusCompleted)
	default:
		t.SetStatus(TaskStatusWaiting)
	}

	return err
}

func (t *BaseTask) CanExecute(currentTime time.Time) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status == TaskStatusWaiting && !currentTime.Before(t.nextTime)
}

func (t *BaseTask) IsCompleted() bool {
	status := t.GetStatus()
	return status == TaskStatusCompleted || status == TaskStatusCanceled
}

func (t *BaseTask) GetStatus() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

func (t *BaseTask) SetStatus(status TaskStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
}

// OnceTask 一次性任务
type OnceTask struct {
	*BaseTask
}

// NewOnceTask 创建一次性任务
func NewOnceTask(name string, executeTime time.Time, executeMode TaskExecuteMode, timeout time.Duration, fn TaskFunc) *OnceTask {
	return &OnceTask{
		BaseTask: newBaseTask(name, TaskTypeOnce, executeMode, executeTime, timeout, fn),
	}
}

// UpdateNextTime 一次性任务不更新
func (t *OnceTask) UpdateNextTime(currentTime time.Time) time.Time {
	return t.GetNextTime()
}

// IntervalTask 固定间隔任务，间隔从上一次执行结束开始计算
type IntervalTask struct {
	*BaseTask
	Interval time.Duration
}

// NewIntervalTask 创建固定间隔任务
func NewIntervalTask(name string, startTime time.Time, interval time.Duration, executeMode TaskExecuteMode, timeout time.Duration, fn TaskFunc) *IntervalTask {
	return &IntervalTask{
		BaseTask: newBaseTask(name, TaskTypeInterval, executeMode, startTime, timeout, fn),
		Interval: interval,
	}
}

func (t *IntervalTask) UpdateNextTime(currentTime time.Time) time.Time {
	return t.setNextTime(currentTime.Add(t.Interval))
}

// CronTask 基于Cron表达式的任务，表达式带秒字段
type CronTask struct {
	*BaseTask
	CronExpr string
	schedule cron.Schedule
}

// NewCronTask 创建Cron任务
func NewCronTask(name string, cronExpr string, executeMode TaskExecuteMode, timeout time.Duration, fn TaskFunc) (*CronTask, error) {
	parser := cron.NewParser(
		cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)

	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil, err
	}

	return &CronTask{
		BaseTask: newBaseTask(name, TaskTypeCron, executeMode, schedule.Next(time.Now()), timeout, fn),
		CronExpr: cronExpr,
		schedule: schedule,
	}, nil
}

func (t *CronTask) UpdateNextTime(currentTime time.Time) time.Time {
	return t.setNextTime(t.schedule.Next(currentTime))
}

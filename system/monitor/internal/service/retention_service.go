package service

import (
	"context"
	"time"

	"monicore/pkg/core/logger"
	"monicore/pkg/scheduler"
)

// RetentionCron 每天 03:30 清理
const RetentionCron = "0 30 3 * * *"

// HistoryCleaner 支持按时间清理历史的存储
type HistoryCleaner interface {
	DeleteHistoryBefore(ctx context.Context, before time.Time) (int64, error)
}

// RetentionService 告警历史保留策略
type RetentionService struct {
	store HistoryCleaner
	days  int
	clock func() time.Time
	log   *logger.Log
}

func NewRetentionService(store HistoryCleaner, days int, log *logger.Log) *RetentionService {
	if days <= 0 {
		days = 30
	}
	return &RetentionService{
		store: store,
		days:  days,
		clock: time.Now,
		log:   log.WithEntryName("RetentionService"),
	}
}

// Cleanup 删除超出保留天数的历史
func (s *RetentionService) Cleanup(ctx context.Context) error {
	before := s.clock().AddDate(0, 0, -s.days)
	n, err := s.store.DeleteHistoryBefore(ctx, before)
	if err != nil {
		s.log.WithErr(err).Error("清理告警历史失败")
		return err
	}
	s.log.WithField("removed", n).WithField("before", before).Info("清理告警历史完成")
	return nil
}

// Register 以分布式模式注册定时清理，多副本时只有持有锁的节点执行
func (s *RetentionService) Register(sched *scheduler.Scheduler) (string, error) {
	task, err := scheduler.NewCronTask("alert-history-retention", RetentionCron,
		scheduler.TaskExecuteModeDistributed, 5*time.Minute, s.Cleanup)
	if err != nil {
		return "", err
	}
	if err := sched.AddTask(task); err != nil {
		return "", err
	}
	return task.GetID(), nil
}

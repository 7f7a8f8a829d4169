// Package collector 周期性采集系统状态并写入仪表盘
package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"monicore/pkg/monitoring/instrument"
	"monicore/pkg/monitoring/models"
	"monicore/pkg/scheduler"

	"go.uber.org/zap"
)

// DefaultInterval 默认采集间隔
const DefaultInterval = 30 * time.Second

// SystemStatsProvider 系统状态来源
type SystemStatsProvider interface {
	Sample(ctx context.Context) (*models.SystemStats, error)
}

// Config 采集调度配置
type Config struct {
	Interval time.Duration
	Logger   *zap.Logger
}

// CollectionScheduler 把 SystemStats 的每一项写入对应的 Gauge
type CollectionScheduler struct {
	config   Config
	logger   *zap.Logger
	provider SystemStatsProvider
	sched    *scheduler.Scheduler
	gauges   []statGauge

	mu      sync.Mutex
	stopped bool
	taskID  string
}

type statGauge struct {
	gauge *instrument.Gauge
	value func(s *models.SystemStats) float64
}

// NewCollectionScheduler sched 为 nil 时只能手动调用 CollectOnce
func NewCollectionScheduler(config Config, rec instrument.Recorder, provider SystemStatsProvider, sched *scheduler.Scheduler) *CollectionScheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	g := func(name string, value func(s *models.SystemStats) float64) statGauge {
		return statGauge{gauge: instrument.NewGauge(rec, name), value: value}
	}
	return &CollectionScheduler{
		config:   config,
		logger:   config.Logger,
		provider: provider,
		sched:    sched,
		gauges: []statGauge{
			g(models.MetricSystemCPUUsage, func(s *models.SystemStats) float64 { return s.CPUPercent }),
			g(models.MetricSystemMemoryUsage, func(s *models.SystemStats) float64 { return s.MemoryBytes }),
			g(models.MetricSystemMemoryPercent, func(s *models.SystemStats) float64 { return s.MemoryPercent }),
			g(models.MetricSystemDiskUsage, func(s *models.SystemStats) float64 { return s.DiskPercent }),
			g(models.MetricProcessGoroutines, func(s *models.SystemStats) float64 { return s.Goroutines }),
			g(models.MetricDBConnectionsActive, func(s *models.SystemStats) float64 { return s.ActiveDBConnections }),
			g(models.MetricDBConnectionsIdle, func(s *models.SystemStats) float64 { return s.IdleDBConnections }),
			g(models.MetricDBConnectionsOpen, func(s *models.SystemStats) float64 { return s.OpenDBConnections }),
			g(models.MetricDBWaitCount, func(s *models.SystemStats) float64 { return s.DBWaitCount }),
			g(models.MetricCacheHitRate, func(s *models.SystemStats) float64 { return s.CacheHitRate }),
			g(models.MetricCacheMissRate, func(s *models.SystemStats) float64 { return s.CacheMissRate }),
			g(models.MetricCacheConnectionsTotal, func(s *models.SystemStats) float64 { return s.CacheTotalConnections }),
			g(models.MetricCacheConnectionsIdle, func(s *models.SystemStats) float64 { return s.CacheIdleConnections }),
		},
	}
}

// Start 注册本地周期任务，首次采集立即执行
func (c *CollectionScheduler) Start() error {
	if c.sched == nil {
		return fmt.Errorf("scheduler not provided")
	}
	task := scheduler.NewIntervalTask("system-stats-collector", time.Now(), c.config.Interval,
		scheduler.TaskExecuteModeLocal, c.config.Interval,
		func(ctx context.Context) error {
			c.CollectOnce(ctx)
			return nil
		})
	if err := c.sched.AddTask(task); err != nil {
		return err
	}
	c.taskID = task.GetID()
	c.logger.Info("启动系统指标采集器", zap.Duration("interval", c.config.Interval))
	return nil
}

// Stop 移除周期任务，并等待正在进行的采集结束
func (c *CollectionScheduler) Stop() {
	if c.sched != nil && c.taskID != "" {
		c.sched.RemoveTask(c.taskID)
	}
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
	c.logger.Info("系统指标采集器已停止")
}

// CollectOnce 采集一次。失败和 panic 只记录日志，上一次未结束时跳过
func (c *CollectionScheduler) CollectOnce(ctx context.Context) {
	if !c.mu.TryLock() {
		c.logger.Warn("上一次采集尚未结束，跳过本次")
		return
	}
	defer c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("采集系统指标时发生panic", zap.Any("panic", r))
		}
	}()

	if c.stopped || c.provider == nil {
		return
	}
	stats, err := c.provider.Sample(ctx)
	if err != nil {
		c.logger.Error("采集系统指标失败", zap.Error(err))
		return
	}
	if stats == nil {
		return
	}
	for _, sg := range c.gauges {
		sg.gauge.Set(sg.value(stats), nil)
	}
	c.logger.Debug("系统指标采集成功",
		zap.Float64("cpu_percent", stats.CPUPercent),
		zap.Float64("memory_bytes", stats.MemoryBytes))
}

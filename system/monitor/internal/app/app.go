package app

import (
	"context"
	"time"

	errorc "monicore/pkg/core/err"
	"monicore/pkg/core/logger"
	"monicore/pkg/monitoring"
	"monicore/pkg/monitoring/alerting"
	"monicore/pkg/scheduler"
	"monicore/system/monitor/internal/service"

	"github.com/go-redis/cache/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Deps 监控组件应用层依赖
type Deps struct {
	Monitor *monitoring.Monitor
	// Store 与 Monitor 使用的是同一个告警存储
	Store         alerting.AlertStore
	Cache         *cache.Cache
	CacheTTL      time.Duration
	RetentionDays int
	Scheduler     *scheduler.Scheduler
}

// App 监控组件应用层
type App struct {
	Monitor            *monitoring.Monitor
	PerformanceService *service.PerformanceService
	RetentionService   *service.RetentionService
	RuntimeRegistry    *prometheus.Registry

	sched           *scheduler.Scheduler
	retentionTaskID string
	log             *logger.Log
	err             *errorc.ErrorBuilder
}

// NewApp 创建监控组件应用层实例
func NewApp(deps Deps) *App {
	log := logger.GetLogger().WithEntryName("MonitorApp")

	runtimeReg := prometheus.NewRegistry()
	runtimeReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &App{
		Monitor:            deps.Monitor,
		PerformanceService: service.NewPerformanceService(deps.Monitor.Aggregator(), deps.Cache, deps.CacheTTL, log),
		RuntimeRegistry:    runtimeReg,
		sched:              deps.Scheduler,
		log:                log,
		err:                errorc.NewErrorBuilder("MonitorApp"),
	}
	if cleaner, ok := deps.Store.(service.HistoryCleaner); ok {
		a.RetentionService = service.NewRetentionService(cleaner, deps.RetentionDays, log)
	}
	return a
}

// Start 启动监控核心，并注册历史清理任务
func (a *App) Start(ctx context.Context) error {
	if err := a.Monitor.Start(ctx); err != nil {
		return a.err.New("启动监控系统失败", err).Unavailable()
	}
	if a.sched != nil && a.RetentionService != nil {
		id, err := a.RetentionService.Register(a.sched)
		if err != nil {
			a.log.WithErr(err).Warn("注册告警历史清理任务失败")
		} else {
			a.retentionTaskID = id
		}
	}
	return nil
}

// Stop 停止周期任务
func (a *App) Stop() {
	if a.sched != nil && a.retentionTaskID != "" {
		a.sched.RemoveTask(a.retentionTaskID)
	}
	a.Monitor.Stop()
}

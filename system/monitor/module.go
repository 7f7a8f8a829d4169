package monitor

import (
	"context"
	"database/sql"

	"monicore/base"
	"monicore/pkg/core/logger"
	"monicore/pkg/monitoring"
	"monicore/pkg/monitoring/alerting"
	"monicore/pkg/monitoring/collector"
	internalapp "monicore/system/monitor/internal/app"
	"monicore/system/monitor/internal/dao"
	"monicore/system/monitor/internal/service"

	"go.uber.org/zap"
)

// Module 监控告警组件模块
type Module struct {
	internalApp *internalapp.App
	Monitor     *monitoring.Monitor
}

// NewModule 由全局组件创建监控模块。未配置数据库时告警保存在内存中
func NewModule(zapLogger *zap.Logger) *Module {
	log := logger.GetLogger().WithEntryName("MonitorModule")
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	cfg := base.Configures.Config.Monitor.WithDefaults()

	var (
		store alerting.AlertStore
		sqlDB *sql.DB
	)
	if base.DB != nil {
		store = service.NewAlertStoreService(dao.NewAlertDao(base.DB, log), dao.NewHistoryDao(base.DB, log), log)
		if db, err := base.DB.DB(); err == nil {
			sqlDB = db
		}
	} else {
		log.Warn("未配置数据库，告警定义与历史只保存在内存中")
		store = alerting.NewMemoryStore()
	}
	statsProvider := service.NewStatsProvider(
		collector.NewProcessStatsProvider("/", zapLogger.Named("process")),
		sqlDB, base.RDB, base.Cache, log,
	)

	mon := monitoring.New(monitoring.Config{MonitorConfig: cfg, Logger: zapLogger}, store, statsProvider, base.Scheduler)

	app := internalapp.NewApp(internalapp.Deps{
		Monitor:       mon,
		Store:         store,
		Cache:         base.Cache,
		CacheTTL:      cfg.PerformanceCacheTTL,
		RetentionDays: cfg.HistoryRetentionDays,
		Scheduler:     base.Scheduler,
	})

	return &Module{
		internalApp: app,
		Monitor:     mon,
	}
}

// Start 启动采集、告警评估和历史清理
func (m *Module) Start(ctx context.Context) error {
	return m.internalApp.Start(ctx)
}

func (m *Module) Stop() {
	m.internalApp.Stop()
}

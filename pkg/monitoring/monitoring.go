// Package monitoring 组装指标注册表、导出器、性能汇总、告警和采集组件
package monitoring

import (
	"context"
	"fmt"

	"monicore/pkg/core/config"
	"monicore/pkg/monitoring/alerting"
	"monicore/pkg/monitoring/collector"
	"monicore/pkg/monitoring/exporter"
	"monicore/pkg/monitoring/notifier"
	"monicore/pkg/monitoring/performance"
	"monicore/pkg/monitoring/storage"
	"monicore/pkg/scheduler"

	"go.uber.org/zap"
)

// Config 监控系统配置
type Config struct {
	config.MonitorConfig
	Logger *zap.Logger
}

// Monitor 监控系统实例
type Monitor struct {
	config Config
	logger *zap.Logger

	registry     *storage.Registry
	exporter     *exporter.PrometheusExporter
	aggregator   *performance.Aggregator
	dispatcher   *notifier.Dispatcher
	alertMgr     *alerting.Manager
	collection   *collector.CollectionScheduler
	apiCollector *collector.APICollector
}

// New 创建监控系统。store 为 nil 时使用内存存储
func New(cfg Config, store alerting.AlertStore, provider collector.SystemStatsProvider, sched *scheduler.Scheduler) *Monitor {
	cfg.MonitorConfig = cfg.MonitorConfig.WithDefaults()
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if store == nil {
		store = alerting.NewMemoryStore()
	}

	registry := storage.NewRegistry(storage.WithSeriesCap(cfg.SeriesCap))
	dispatcher := notifier.NewDispatcher(cfg.Logger.Named("notifier"))

	return &Monitor{
		config:     cfg,
		logger:     cfg.Logger,
		registry:   registry,
		exporter:   exporter.NewPrometheusExporter(registry),
		aggregator: performance.NewAggregator(registry),
		dispatcher: dispatcher,
		alertMgr: alerting.NewManager(alerting.Config{
			EvaluateInterval: cfg.EvaluateInterval,
			DispatchTimeout:  cfg.DispatchTimeout,
			Logger:           cfg.Logger.Named("alerting"),
		}, registry, store, dispatcher, sched),
		collection: collector.NewCollectionScheduler(collector.Config{
			Interval: cfg.CollectInterval,
			Logger:   cfg.Logger.Named("collector"),
		}, registry, provider, sched),
		apiCollector: collector.NewAPICollector(registry, cfg.Logger.Named("api")),
	}
}

// Start 启动告警评估和系统指标采集
func (m *Monitor) Start(ctx context.Context) error {
	if err := m.alertMgr.Start(ctx); err != nil {
		return fmt.Errorf("启动告警管理器失败: %w", err)
	}
	if err := m.collection.Start(); err != nil {
		m.alertMgr.Stop()
		return fmt.Errorf("启动指标采集器失败: %w", err)
	}
	m.logger.Info("监控系统已启动",
		zap.Duration("collect_interval", m.config.CollectInterval),
		zap.Duration("evaluate_interval", m.config.EvaluateInterval),
		zap.Int("series_cap", m.config.SeriesCap))
	return nil
}

// Stop 停止周期任务并等待已发出的告警通知
func (m *Monitor) Stop() {
	m.collection.Stop()
	m.alertMgr.Stop()
	m.logger.Info("监控系统已停止")
}

func (m *Monitor) Registry() *storage.Registry { return m.registry }
func (m *Monitor) Exporter() *exporter.PrometheusExporter { return m.exporter }
func (m *Monitor) Aggregator() *performance.Aggregator { return m.aggregator }
func (m *Monitor) AlertManager() *alerting.Manager { return m.alertMgr }
func (m *Monitor) Dispatcher() *notifier.Dispatcher { return m.dispatcher }
func (m *Monitor) APICollector() *collector.APICollector { return m.apiCollector }
func (m *Monitor) Collection() *collector.CollectionScheduler { return m.collection }

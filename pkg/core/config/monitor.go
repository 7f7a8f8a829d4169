package config

import "time"

// MonitorConfig 监控告警核心配置
type MonitorConfig struct {
	CollectInterval      time.Duration `yaml:"collect-interval"`
	EvaluateInterval     time.Duration `yaml:"evaluate-interval"`
	DispatchTimeout      time.Duration `yaml:"dispatch-timeout"`
	SeriesCap            int           `yaml:"series-cap"`
	PerformanceCacheTTL  time.Duration `yaml:"performance-cache-ttl"`
	HistoryRetentionDays int           `yaml:"history-retention-days"`
	// LeaderLock 多副本部署时用 redis 锁选出唯一执行分布式任务的节点
	LeaderLock bool `yaml:"leader-lock"`
}

// WithDefaults 补齐未配置的项
func (m MonitorConfig) WithDefaults() MonitorConfig {
	if m.CollectInterval <= 0 {
		m.CollectInterval = 30 * time.Second
	}
	if m.EvaluateInterval <= 0 {
		m.EvaluateInterval = 30 * time.Second
	}
	if m.DispatchTimeout <= 0 {
		m.DispatchTimeout = 10 * time.Second
	}
	if m.SeriesCap <= 0 {
		m.SeriesCap = 1000
	}
	// 负数表示关闭缓存
	if m.PerformanceCacheTTL == 0 {
		m.PerformanceCacheTTL = 5 * time.Second
	}
	if m.HistoryRetentionDays <= 0 {
		m.HistoryRetentionDays = 30
	}
	return m
}

// Package models 定义监控告警核心使用的数据模型
package models

import (
	"time"
)

// MetricKind 指标类型
type MetricKind string

const (
	// KindCounter 计数器，每个点是一次增量
	KindCounter MetricKind = "counter"
	// KindGauge 仪表盘，最新的点即当前值
	KindGauge MetricKind = "gauge"
	// KindHistogram 直方图，每次观测一个点，不分桶
	KindHistogram MetricKind = "histogram"
	// KindSummary 摘要，每次观测一个点
	KindSummary MetricKind = "summary"
)

// Valid 是否为已知类型
func (k MetricKind) Valid() bool {
	switch k {
	case KindCounter, KindGauge, KindHistogram, KindSummary:
		return true
	}
	return false
}

// MetricPoint 一次观测，写入注册表后不再修改
type MetricPoint struct {
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Kind      MetricKind        `json:"kind"`
}

// Label 返回标签值，不存在时为空串
func (p MetricPoint) Label(key string) string {
	if p.Labels == nil {
		return ""
	}
	return p.Labels[key]
}

// 请求路径上的指标
const (
	MetricHTTPRequestsTotal   = "http_requests_total"
	MetricHTTPRequestDuration = "http_request_duration_seconds"
)

// 采集任务写入的指标
const (
	MetricSystemCPUUsage      = "system_cpu_usage_percent"
	MetricSystemMemoryUsage   = "system_memory_usage_bytes"
	MetricSystemMemoryPercent = "system_memory_usage_percent"
	MetricSystemDiskUsage     = "system_disk_usage_percent"
	MetricProcessGoroutines   = "process_goroutines"

	MetricDBConnectionsActive = "database_connections_active"
	MetricDBConnectionsIdle   = "database_connections_idle"
	MetricDBConnectionsOpen   = "database_connections_open"
	MetricDBWaitCount         = "database_wait_count"

	MetricCacheHitRate          = "cache_hit_rate"
	MetricCacheMissRate         = "cache_miss_rate"
	MetricCacheConnectionsTotal = "cache_connections_total"
	MetricCacheConnectionsIdle  = "cache_connections_idle"
)

// 标签键
const (
	LabelTenantID   = "tenant_id"
	LabelStatusCode = "status_code"
	LabelMethod     = "method"
	LabelPath       = "path"
)

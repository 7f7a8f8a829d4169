package models

import "time"

// ResponseTimeMetrics 响应时间（毫秒）
type ResponseTimeMetrics struct {
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type ThroughputMetrics struct {
	RequestsPerSecond float64 `json:"requestsPerSecond"`
	RequestsPerMinute float64 `json:"requestsPerMinute"`
}

// ErrorRateMetrics Rate 为 0~1 的比例
type ErrorRateMetrics struct {
	Rate  float64 `json:"rate"`
	Count int64   `json:"count"`
	Total int64   `json:"total"`
}

type SystemHealthMetrics struct {
	CPUUsage      float64 `json:"cpuUsage"`
	MemoryUsage   float64 `json:"memoryUsage"`
	MemoryPercent float64 `json:"memoryPercent"`
	DiskUsage     float64 `json:"diskUsage"`
	Goroutines    float64 `json:"goroutines"`
}

type DatabaseMetrics struct {
	ActiveConnections float64 `json:"activeConnections"`
	IdleConnections   float64 `json:"idleConnections"`
	OpenConnections   float64 `json:"openConnections"`
	WaitCount         float64 `json:"waitCount"`
}

type CacheMetrics struct {
	HitRate          float64 `json:"hitRate"`
	MissRate         float64 `json:"missRate"`
	TotalConnections float64 `json:"totalConnections"`
	IdleConnections  float64 `json:"idleConnections"`
}

// PerformanceMetrics 性能汇总
type PerformanceMetrics struct {
	ResponseTime    ResponseTimeMetrics `json:"responseTime"`
	Throughput      ThroughputMetrics   `json:"throughput"`
	ErrorRate       ErrorRateMetrics    `json:"errorRate"`
	SystemHealth    SystemHealthMetrics `json:"systemHealth"`
	DatabaseMetrics DatabaseMetrics     `json:"databaseMetrics"`
	CacheMetrics    CacheMetrics        `json:"cacheMetrics"`
	TenantID        string              `json:"tenantId,omitempty"`
	WindowHours     float64             `json:"windowHours"`
	GeneratedAt     time.Time           `json:"generatedAt"`
}

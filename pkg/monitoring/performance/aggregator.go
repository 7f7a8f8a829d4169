// Package performance 从注册表汇总请求与系统的性能指标
package performance

import (
	"math"
	"sort"
	"strconv"
	"time"

	errorc "monicore/pkg/core/err"
	"monicore/pkg/monitoring/models"
)

var errBuilder = errorc.NewErrorBuilder("PerformanceAggregator")

// Source 汇总的数据来源
type Source interface {
	Query(name string) []models.MetricPoint
	Latest(name string) (models.MetricPoint, bool)
}

type Option func(*Aggregator)

func WithClock(clock func() time.Time) Option {
	return func(a *Aggregator) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// Aggregator 只读，不保存状态
type Aggregator struct {
	source Source
	clock  func() time.Time
}

func NewAggregator(source Source, opts ...Option) *Aggregator {
	a := &Aggregator{source: source, clock: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summarize 汇总指定租户在窗口内的性能。tenantID 为空表示全部租户
func (a *Aggregator) Summarize(tenantID string, windowHours float64) (*models.PerformanceMetrics, error) {
	if math.IsNaN(windowHours) || math.IsInf(windowHours, 0) || windowHours < 0 {
		return nil, errBuilder.New("时间窗口必须是非负数", nil).ValidWithCtx()
	}
	now := a.clock()

	out := &models.PerformanceMetrics{
		TenantID:    tenantID,
		WindowHours: windowHours,
		GeneratedAt: now,
	}
	out.ResponseTime = a.responseTime(tenantID)

	requests := a.windowedRequests(tenantID, now, windowHours)
	out.Throughput = throughput(len(requests), windowHours)
	out.ErrorRate = errorRate(requests)

	out.SystemHealth = models.SystemHealthMetrics{
		CPUUsage:      a.latest(models.MetricSystemCPUUsage),
		MemoryUsage:   a.latest(models.MetricSystemMemoryUsage),
		MemoryPercent: a.latest(models.MetricSystemMemoryPercent),
		DiskUsage:     a.latest(models.MetricSystemDiskUsage),
		Goroutines:    a.latest(models.MetricProcessGoroutines),
	}
	out.DatabaseMetrics = models.DatabaseMetrics{
		ActiveConnections: a.latest(models.MetricDBConnectionsActive),
		IdleConnections:   a.latest(models.MetricDBConnectionsIdle),
		OpenConnections:   a.latest(models.MetricDBConnectionsOpen),
		WaitCount:         a.latest(models.MetricDBWaitCount),
	}
	out.CacheMetrics = models.CacheMetrics{
		HitRate:          a.latest(models.MetricCacheHitRate),
		MissRate:         a.latest(models.MetricCacheMissRate),
		TotalConnections: a.latest(models.MetricCacheConnectionsTotal),
		IdleConnections:  a.latest(models.MetricCacheConnectionsIdle),
	}
	return out, nil
}

// responseTime 使用整条保留序列，不按窗口过滤
func (a *Aggregator) responseTime(tenantID string) models.ResponseTimeMetrics {
	points := a.source.Query(models.MetricHTTPRequestDuration)
	values := make([]float64, 0, len(points))
	for _, p := range points {
		if !matchTenant(p, tenantID) {
			continue
		}
		ms := p.Value * 1000
		if math.IsNaN(ms) || math.IsInf(ms, 0) {
			continue
		}
		values = append(values, ms)
	}
	if len(values) == 0 {
		return models.ResponseTimeMetrics{}
	}
	sort.Float64s(values)

	var sum float64
	for _, v := range values {
		sum += v
	}
	return models.ResponseTimeMetrics{
		Avg: finite(sum / float64(len(values))),
		P50: Percentile(values, 50),
		P95: Percentile(values, 95),
		P99: Percentile(values, 99),
	}
}

func (a *Aggregator) windowedRequests(tenantID string, now time.Time, windowHours float64) []models.MetricPoint {
	since := now.Add(-time.Duration(windowHours * float64(time.Hour)))
	points := a.source.Query(models.MetricHTTPRequestsTotal)
	out := make([]models.MetricPoint, 0, len(points))
	for _, p := range points {
		if !p.Timestamp.After(since) || !matchTenant(p, tenantID) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (a *Aggregator) latest(name string) float64 {
	p, ok := a.source.Latest(name)
	if !ok {
		return 0
	}
	return finite(p.Value)
}

func throughput(count int, windowHours float64) models.ThroughputMetrics {
	if windowHours <= 0 || count == 0 {
		return models.ThroughputMetrics{}
	}
	return models.ThroughputMetrics{
		RequestsPerSecond: finite(float64(count) / (windowHours * 3600)),
		RequestsPerMinute: finite(float64(count) / (windowHours * 60)),
	}
}

func errorRate(requests []models.MetricPoint) models.ErrorRateMetrics {
	total := int64(len(requests))
	if total == 0 {
		return models.ErrorRateMetrics{}
	}
	var errs int64
	for _, p := range requests {
		code, err := strconv.Atoi(p.Label(models.LabelStatusCode))
		if err == nil && code >= 400 {
			errs++
		}
	}
	return models.ErrorRateMetrics{
		Rate:  float64(errs) / float64(total),
		Count: errs,
		Total: total,
	}
}

func matchTenant(p models.MetricPoint, tenantID string) bool {
	return tenantID == "" || p.Label(models.LabelTenantID) == tenantID
}

// Percentile 最近秩百分位，sorted 须为升序。索引 ceil(n*p/100)-1，截断到 [0, n-1]
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Ceil(float64(n)*p/100)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return finite(sorted[idx])
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

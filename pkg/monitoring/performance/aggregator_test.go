package performance

import (
	"math"
	"reflect"
	"testing"
	"time"

	errorc "monicore/pkg/core/err"
	"monicore/pkg/monitoring/models"
	"monicore/pkg/monitoring/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestAggregator() (*storage.Registry, *Aggregator) {
	reg := storage.NewRegistry()
	return reg, NewAggregator(reg, WithClock(func() time.Time { return now }))
}

func request(ts time.Time, tenant, status string) models.MetricPoint {
	return models.MetricPoint{
		Name:      models.MetricHTTPRequestsTotal,
		Value:     1,
		Kind:      models.KindCounter,
		Timestamp: ts,
		Labels:    map[string]string{models.LabelTenantID: tenant, models.LabelStatusCode: status},
	}
}

func duration(seconds float64, tenant string) models.MetricPoint {
	return models.MetricPoint{
		Name:      models.MetricHTTPRequestDuration,
		Value:     seconds,
		Kind:      models.KindHistogram,
		Timestamp: now,
		Labels:    map[string]string{models.LabelTenantID: tenant},
	}
}

func TestPercentile(t *testing.T) {
	samples := []float64{100, 200, 300, 400}
	assert.Equal(t, 200.0, Percentile(samples, 50))
	assert.Equal(t, 400.0, Percentile(samples, 95))
	assert.Equal(t, 400.0, Percentile(samples, 99))
	assert.Equal(t, 100.0, Percentile(samples, 0))
	assert.Equal(t, 0.0, Percentile(nil, 50))
}

func TestSummarize_EmptyRegistry(t *testing.T) {
	_, agg := newTestAggregator()
	got, err := agg.Summarize("", 24)
	require.NoError(t, err)

	assert.Equal(t, models.ResponseTimeMetrics{}, got.ResponseTime)
	assert.Equal(t, models.ThroughputMetrics{}, got.Throughput)
	assert.Equal(t, models.ErrorRateMetrics{}, got.ErrorRate)
	assert.Equal(t, models.SystemHealthMetrics{}, got.SystemHealth)
	assertFinite(t, got)
}

func TestSummarize_ZeroWindow(t *testing.T) {
	reg, agg := newTestAggregator()
	reg.Record(request(now.Add(-time.Minute), "a", "200"))

	got, err := agg.Summarize("", 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Throughput.RequestsPerSecond)
	assert.Equal(t, int64(0), got.ErrorRate.Total)
	assertFinite(t, got)
}

func TestSummarize_InvalidWindow(t *testing.T) {
	_, agg := newTestAggregator()
	for _, hours := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := agg.Summarize("", hours)
		require.Error(t, err)
		assert.True(t, errorc.IsValid(err))
	}
}

func TestSummarize_ResponseTime(t *testing.T) {
	reg, agg := newTestAggregator()
	for _, s := range []float64{0.1, 0.2, 0.3, 0.4} {
		reg.Record(duration(s, "a"))
	}

	got, err := agg.Summarize("", 1)
	require.NoError(t, err)
	assert.InDelta(t, 250, got.ResponseTime.Avg, 1e-9)
	assert.InDelta(t, 200, got.ResponseTime.P50, 1e-9)
	assert.InDelta(t, 400, got.ResponseTime.P99, 1e-9)
}

func TestSummarize_ThroughputAndErrors(t *testing.T) {
	reg, agg := newTestAggregator()
	reg.Record(request(now.Add(-2*time.Hour), "a", "500"))
	reg.Record(request(now.Add(-30*time.Minute), "a", "200"))
	reg.Record(request(now.Add(-20*time.Minute), "a", "404"))
	reg.Record(request(now.Add(-10*time.Minute), "a", "oops"))

	got, err := agg.Summarize("", 1)
	require.NoError(t, err)
	assert.InDelta(t, 3.0/3600, got.Throughput.RequestsPerSecond, 1e-12)
	assert.InDelta(t, 3.0/60, got.Throughput.RequestsPerMinute, 1e-12)
	assert.Equal(t, int64(1), got.ErrorRate.Count)
	assert.Equal(t, int64(3), got.ErrorRate.Total)
	assert.InDelta(t, 1.0/3, got.ErrorRate.Rate, 1e-12)
}

func TestSummarize_TenantIsolation(t *testing.T) {
	reg, agg := newTestAggregator()
	reg.Record(request(now.Add(-time.Minute), "tenantA", "200"))
	reg.Record(request(now.Add(-time.Minute), "tenantB", "500"))
	reg.Record(duration(0.1, "tenantA"))
	reg.Record(duration(0.9, "tenantB"))

	got, err := agg.Summarize("tenantA", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ErrorRate.Total)
	assert.Equal(t, int64(0), got.ErrorRate.Count)
	assert.InDelta(t, 100, got.ResponseTime.P99, 1e-9)
	assert.Equal(t, "tenantA", got.TenantID)
}

func TestSummarize_LatestGauges(t *testing.T) {
	reg, agg := newTestAggregator()
	reg.Record(models.MetricPoint{Name: models.MetricSystemCPUUsage, Value: 5, Kind: models.KindGauge})
	reg.Record(models.MetricPoint{Name: models.MetricSystemCPUUsage, Value: 3, Kind: models.KindGauge})
	reg.Record(models.MetricPoint{Name: models.MetricDBConnectionsActive, Value: 7, Kind: models.KindGauge})
	reg.Record(models.MetricPoint{Name: models.MetricCacheHitRate, Value: math.NaN(), Kind: models.KindGauge})

	got, err := agg.Summarize("", 24)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.SystemHealth.CPUUsage)
	assert.Equal(t, 7.0, got.DatabaseMetrics.ActiveConnections)
	assert.Equal(t, 0.0, got.CacheMetrics.HitRate)
	assertFinite(t, got)
}

// assertFinite 遍历所有 float64 字段
func assertFinite(t *testing.T, m *models.PerformanceMetrics) {
	t.Helper()
	var walk func(v reflect.Value)
	walk = func(v reflect.Value) {
		switch v.Kind() {
		case reflect.Struct:
			for i := 0; i < v.NumField(); i++ {
				if v.Type().Field(i).IsExported() {
					walk(v.Field(i))
				}
			}
		case reflect.Float64:
			f := v.Float()
			assert.False(t, math.IsNaN(f) || math.IsInf(f, 0))
		}
	}
	walk(reflect.ValueOf(*m))
}

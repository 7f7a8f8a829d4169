package collector

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"monicore/pkg/core/fiber_handle"
	"monicore/pkg/monitoring/models"
	"monicore/pkg/monitoring/storage"
	"monicore/pkg/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerFunc func(ctx context.Context) (*models.SystemStats, error)

func (f providerFunc) Sample(ctx context.Context) (*models.SystemStats, error) { return f(ctx) }

func TestCollectOnce_WritesGauges(t *testing.T) {
	reg := storage.NewRegistry()
	c := NewCollectionScheduler(Config{}, reg, providerFunc(func(ctx context.Context) (*models.SystemStats, error) {
		return &models.SystemStats{CPUPercent: 12.5, MemoryBytes: 1024, ActiveDBConnections: 3, CacheHitRate: 0.9}, nil
	}), nil)

	c.CollectOnce(context.Background())

	cases := map[string]float64{
		models.MetricSystemCPUUsage:      12.5,
		models.MetricSystemMemoryUsage:   1024,
		models.MetricDBConnectionsActive: 3,
		models.MetricCacheHitRate:        0.9,
		models.MetricSystemDiskUsage:     0,
	}
	for name, want := range cases {
		p, ok := reg.Latest(name)
		require.True(t, ok, name)
		assert.Equal(t, want, p.Value, name)
		assert.Equal(t, models.KindGauge, p.Kind)
	}
}

func TestCollectOnce_SwallowsErrorsAndPanics(t *testing.T) {
	reg := storage.NewRegistry()
	var calls atomic.Int32
	c := NewCollectionScheduler(Config{}, reg, providerFunc(func(ctx context.Context) (*models.SystemStats, error) {
		switch calls.Add(1) {
		case 1:
			return nil, errors.New("unavailable")
		case 2:
			panic("broken provider")
		default:
			return &models.SystemStats{CPUPercent: 1}, nil
		}
	}), nil)

	ctx := context.Background()
	c.CollectOnce(ctx)
	assert.Empty(t, reg.Names())
	assert.NotPanics(t, func() { c.CollectOnce(ctx) })
	c.CollectOnce(ctx)

	p, ok := reg.Latest(models.MetricSystemCPUUsage)
	require.True(t, ok)
	assert.Equal(t, 1.0, p.Value)
}

func TestStart_RunsOnScheduler(t *testing.T) {
	sched := scheduler.NewScheduler(&scheduler.SchedulerConfig{NodeID: "test", CheckInterval: 10 * time.Millisecond})
	require.NoError(t, sched.Start())
	defer sched.Stop()

	reg := storage.NewRegistry()
	var calls atomic.Int32
	c := NewCollectionScheduler(Config{Interval: 20 * time.Millisecond}, reg, providerFunc(func(ctx context.Context) (*models.SystemStats, error) {
		n := calls.Add(1)
		if n == 1 {
			return nil, errors.New("first sample fails")
		}
		return &models.SystemStats{Goroutines: float64(n)}, nil
	}), sched)
	require.NoError(t, c.Start())

	require.Eventually(t, func() bool { return reg.Len(models.MetricProcessGoroutines) >= 2 }, 2*time.Second, 10*time.Millisecond)
	c.Stop()
}

func TestStop_WaitsForRunningCollection(t *testing.T) {
	sched := scheduler.NewScheduler(&scheduler.SchedulerConfig{NodeID: "test", CheckInterval: 10 * time.Millisecond})
	require.NoError(t, sched.Start())
	defer sched.Stop()

	reg := storage.NewRegistry()
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	c := NewCollectionScheduler(Config{Interval: 20 * time.Millisecond}, reg, providerFunc(func(ctx context.Context) (*models.SystemStats, error) {
		once.Do(func() { close(entered) })
		<-release
		return &models.SystemStats{CPUPercent: 42}, nil
	}), sched)
	require.NoError(t, c.Start())

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("collection never ran")
	}

	stopped := make(chan struct{})
	go func() {
		c.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
		t.Fatal("Stop returned while a collection was still running")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the collection finished")
	}
	p, ok := reg.Latest(models.MetricSystemCPUUsage)
	require.True(t, ok)
	assert.Equal(t, 42.0, p.Value)

	n := reg.Len(models.MetricSystemCPUUsage)
	c.CollectOnce(context.Background())
	assert.Equal(t, n, reg.Len(models.MetricSystemCPUUsage))
}

func TestStart_RequiresScheduler(t *testing.T) {
	c := NewCollectionScheduler(Config{}, storage.NewRegistry(), nil, nil)
	assert.Error(t, c.Start())
}

func TestAPICollector_RecordAPICall(t *testing.T) {
	reg := storage.NewRegistry()
	c := NewAPICollector(reg, nil)

	c.RecordAPICall(&fiber_handle.APICallMetrics{
		Method:     "GET",
		Path:       "/orders/:id",
		StatusCode: 503,
		Duration:   250 * time.Millisecond,
		TenantID:   "t1",
	})
	c.RecordAPICall(nil)

	reqs := reg.Query(models.MetricHTTPRequestsTotal)
	require.Len(t, reqs, 1)
	assert.Equal(t, 1.0, reqs[0].Value)
	assert.Equal(t, models.KindCounter, reqs[0].Kind)
	assert.Equal(t, map[string]string{
		models.LabelMethod:     "GET",
		models.LabelPath:       "/orders/:id",
		models.LabelStatusCode: "503",
		models.LabelTenantID:   "t1",
	}, reqs[0].Labels)

	durations := reg.Query(models.MetricHTTPRequestDuration)
	require.Len(t, durations, 1)
	assert.InDelta(t, 0.25, durations[0].Value, 1e-9)
	assert.Equal(t, models.KindHistogram, durations[0].Kind)
}

func TestProcessStatsProvider_Sample(t *testing.T) {
	p := NewProcessStatsProvider(t.TempDir(), nil)
	stats, err := p.Sample(context.Background())
	require.NoError(t, err)
	assert.Greater(t, stats.Goroutines, 0.0)
	assert.Greater(t, stats.MemoryBytes, 0.0)
}

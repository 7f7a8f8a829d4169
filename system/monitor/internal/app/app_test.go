package app

import (
	"context"
	"testing"
	"time"

	"monicore/pkg/monitoring"
	"monicore/pkg/monitoring/alerting"
	"monicore/pkg/monitoring/models"
	"monicore/pkg/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticStats struct{}

func (staticStats) Sample(ctx context.Context) (*models.SystemStats, error) {
	return &models.SystemStats{CPUPercent: 10}, nil
}

func TestApp_StartRegistersTasks(t *testing.T) {
	sched := scheduler.NewScheduler(scheduler.DefaultSchedulerConfig())
	require.NoError(t, sched.Start())
	defer sched.Stop()

	store := alerting.NewMemoryStore()
	mon := monitoring.New(monitoring.Config{}, store, staticStats{}, sched)
	a := NewApp(Deps{Monitor: mon, Store: store, RetentionDays: 7, Scheduler: sched})
	require.NotNil(t, a.RetentionService)

	require.NoError(t, a.Start(context.Background()))
	names := map[string]bool{}
	for _, task := range sched.ListTasks() {
		names[task.GetName()] = true
	}
	assert.True(t, names["alert-history-retention"])

	a.Stop()
	for _, task := range sched.ListTasks() {
		assert.NotEqual(t, "alert-history-retention", task.GetName())
	}
}

func TestApp_TenantScopedAlerts(t *testing.T) {
	store := alerting.NewMemoryStore()
	mon := monitoring.New(monitoring.Config{}, store, nil, nil)
	a := NewApp(Deps{Monitor: mon, Store: store})
	ctx := context.Background()

	alert := &models.Alert{
		Name:       "延迟过高",
		Severity:   models.SeverityMedium,
		Conditions: []models.AlertCondition{{Metric: "http_request_duration_seconds", Operator: models.OpGreater, Threshold: 1, Duration: 5}},
		IsActive:   true,
		TenantID:   "other",
	}
	created, err := a.CreateAlert(ctx, "t1", alert)
	require.NoError(t, err)
	assert.Equal(t, "t1", created.TenantID)

	_, err = a.GetAlert(ctx, "t2", created.ID)
	assert.Error(t, err)

	moved := "t2"
	_, err = a.UpdateAlert(ctx, "t1", created.ID, models.AlertUpdate{TenantID: &moved})
	assert.Error(t, err)

	name := "延迟告警"
	updated, err := a.UpdateAlert(ctx, "t1", created.ID, models.AlertUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "延迟告警", updated.Name)

	mon.Registry().Record(models.MetricPoint{
		Name: "http_request_duration_seconds", Value: 3, Kind: models.KindHistogram, Timestamp: time.Now(),
	})
	mon.AlertManager().Tick(ctx)
	assert.Len(t, a.ActiveAlerts(ctx, "t1"), 1)
	assert.Empty(t, a.ActiveAlerts(ctx, "t2"))
	assert.Len(t, a.ActiveAlerts(ctx, ""), 1)
}

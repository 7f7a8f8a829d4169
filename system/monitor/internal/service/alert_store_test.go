package service

import (
	"testing"

	"monicore/pkg/core/model/common"
	"monicore/pkg/monitoring/models"
	"monicore/system/monitor/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestUpdateColumns(t *testing.T) {
	name := "磁盘告警"
	sev := models.SeverityCritical
	active := false
	conds := []models.AlertCondition{{Metric: "system_disk_usage", Operator: models.OpGreater, Threshold: 90}}

	cols := UpdateColumns(models.AlertUpdate{Name: &name, Severity: &sev, IsActive: &active, Conditions: &conds})

	assert.Len(t, cols, 4)
	assert.Equal(t, "磁盘告警", cols["name"])
	assert.Equal(t, "critical", cols["severity"])
	assert.Equal(t, false, cols["is_active"])
	assert.Equal(t, common.JSONList[models.AlertCondition](conds), cols["conditions"])
	assert.NotContains(t, cols, "description")
	assert.NotContains(t, cols, "tenant_id")
}

func TestUpdateColumns_Empty(t *testing.T) {
	assert.Empty(t, UpdateColumns(models.AlertUpdate{}))
}

func TestMonitorAlert_RoundTrip(t *testing.T) {
	alert := &models.Alert{
		ID:          "a-1",
		Name:        "CPU",
		Description: "cpu high",
		Severity:    models.SeverityHigh,
		Conditions:  []models.AlertCondition{{Metric: "system_cpu_usage", Operator: models.OpGreaterEqual, Threshold: 80, Duration: 5}},
		Actions:     []models.AlertAction{{Type: models.ActionEmail, Target: "ops@example.com"}},
		IsActive:    true,
		TenantID:    "t1",
	}

	row := model.FromAlert(alert)
	assert.Equal(t, "a-1", row.ID)
	assert.Equal(t, "high", row.Severity)

	back := row.ToAlert()
	assert.Equal(t, alert, back)

	// 转换结果不与数据库行共享切片
	back.Conditions[0].Threshold = 1
	assert.Equal(t, 80.0, row.Conditions[0].Threshold)
}

func TestMonitorAlertHistory_ToEvent(t *testing.T) {
	h := &model.MonitorAlertHistory{AlertID: "a-1", Action: "resolved", Severity: "low", Message: "ok"}
	e := h.ToEvent()
	assert.Equal(t, models.HistoryResolved, e.Action)
	assert.Equal(t, models.SeverityLow, e.Severity)
	assert.Equal(t, "a-1", e.AlertID)
}

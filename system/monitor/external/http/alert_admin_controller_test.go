package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"monicore/pkg/monitoring/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func cpuAlertBody(tenant string) map[string]interface{} {
	return map[string]interface{}{
		"name":     "CPU过高",
		"severity": "high",
		"tenantId": tenant,
		"conditions": []map[string]interface{}{
			{"metric": "system_cpu_usage", "operator": ">", "threshold": 80, "duration": 5},
		},
		"actions": []map[string]interface{}{
			{"type": "webhook", "target": "http://example.invalid/hook"},
		},
	}
}

func TestAlertAdmin_RequiresToken(t *testing.T) {
	env := newTestEnv(t)
	status, _ := env.do(t, http.MethodGet, "/admin/monitor/alerts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAlertAdmin_MissingPermission(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, "", "admin:monitor:alert:read")
	status, _ := env.do(t, http.MethodPost, "/admin/monitor/alerts", tok, cpuAlertBody(""))
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAlertAdmin_CRUD(t *testing.T) {
	env := newTestEnv(t)
	tok := env.superToken(t)

	status, body := env.do(t, http.MethodPost, "/admin/monitor/alerts", tok, cpuAlertBody(""))
	require.Equal(t, http.StatusOK, status, string(body))
	id := gjson.GetBytes(body, "data.id").String()
	require.NotEmpty(t, id)
	assert.True(t, gjson.GetBytes(body, "data.isActive").Bool())

	status, body = env.do(t, http.MethodGet, "/admin/monitor/alerts/"+id, tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "CPU过高", gjson.GetBytes(body, "data.name").String())

	status, body = env.do(t, http.MethodPut, "/admin/monitor/alerts/"+id, tok, map[string]interface{}{"severity": "critical"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "critical", gjson.GetBytes(body, "data.severity").String())
	assert.Equal(t, "CPU过高", gjson.GetBytes(body, "data.name").String())

	status, body = env.do(t, http.MethodGet, "/admin/monitor/alerts", tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), gjson.GetBytes(body, "data.total").Int())

	status, _ = env.do(t, http.MethodDelete, "/admin/monitor/alerts/"+id, tok, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodGet, "/admin/monitor/alerts/"+id, tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAlertAdmin_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	tok := env.superToken(t)

	cases := map[string]func(b map[string]interface{}){
		"缺少名称":  func(b map[string]interface{}) { delete(b, "name") },
		"未知级别":  func(b map[string]interface{}) { b["severity"] = "urgent" },
		"没有条件":  func(b map[string]interface{}) { b["conditions"] = []map[string]interface{}{} },
		"未知运算符": func(b map[string]interface{}) {
			b["conditions"] = []map[string]interface{}{{"metric": "x", "operator": "~", "threshold": 1}}
		},
		"负持续时间": func(b map[string]interface{}) {
			b["conditions"] = []map[string]interface{}{{"metric": "x", "operator": ">", "threshold": 1, "duration": -1}}
		},
		"未知通知类型": func(b map[string]interface{}) {
			b["actions"] = []map[string]interface{}{{"type": "pager", "target": "x"}}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			b := cpuAlertBody("")
			mutate(b)
			status, body := env.do(t, http.MethodPost, "/admin/monitor/alerts", tok, b)
			assert.Equal(t, http.StatusBadRequest, status, string(body))
		})
	}

	alerts, err := env.app.Monitor.AlertManager().ListAlerts(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAlertAdmin_EmptyUpdateRejected(t *testing.T) {
	env := newTestEnv(t)
	tok := env.superToken(t)
	_, body := env.do(t, http.MethodPost, "/admin/monitor/alerts", tok, cpuAlertBody(""))
	id := gjson.GetBytes(body, "data.id").String()

	status, _ := env.do(t, http.MethodPut, "/admin/monitor/alerts/"+id, tok, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAlertAdmin_UpdateUnknown(t *testing.T) {
	env := newTestEnv(t)
	status, _ := env.do(t, http.MethodPut, "/admin/monitor/alerts/nope", env.superToken(t), map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAlertAdmin_TenantScope(t *testing.T) {
	env := newTestEnv(t)
	super := env.superToken(t)
	_, body := env.do(t, http.MethodPost, "/admin/monitor/alerts", super, cpuAlertBody("t2"))
	otherID := gjson.GetBytes(body, "data.id").String()

	tenantTok := env.token(t, "t1",
		"admin:monitor:alert:create", "admin:monitor:alert:read", "admin:monitor:alert:update", "admin:monitor:alert:delete")

	// 绑定租户的管理员创建时强制归属本租户
	status, body := env.do(t, http.MethodPost, "/admin/monitor/alerts", tenantTok, cpuAlertBody("t2"))
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "t1", gjson.GetBytes(body, "data.tenantId").String())

	status, _ = env.do(t, http.MethodGet, "/admin/monitor/alerts/"+otherID, tenantTok, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(t, http.MethodDelete, "/admin/monitor/alerts/"+otherID, tenantTok, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.do(t, http.MethodGet, "/admin/monitor/alerts?tenantId=t2", tenantTok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), gjson.GetBytes(body, "data.total").Int())
	assert.Equal(t, "t1", gjson.GetBytes(body, "data.list.0.tenantId").String())

	status, body = env.do(t, http.MethodGet, "/admin/monitor/alerts", super, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), gjson.GetBytes(body, "data.total").Int())
}

func TestAlertAdmin_ActiveAndHistory(t *testing.T) {
	env := newTestEnv(t)
	tok := env.superToken(t)
	_, body := env.do(t, http.MethodPost, "/admin/monitor/alerts", tok, cpuAlertBody(""))
	id := gjson.GetBytes(body, "data.id").String()

	env.app.Monitor.Registry().Record(models.MetricPoint{
		Name: "system_cpu_usage", Value: 95, Kind: models.KindGauge, Timestamp: time.Now(),
	})
	env.app.Monitor.AlertManager().Tick(context.Background())

	status, body := env.do(t, http.MethodGet, "/admin/monitor/alerts/active", tok, nil)
	require.Equal(t, http.StatusOK, status)
	active := gjson.GetBytes(body, "data").Array()
	require.Len(t, active, 1)
	assert.Equal(t, id, active[0].Get("alertId").String())
	assert.Equal(t, "high", active[0].Get("severity").String())

	env.app.Monitor.Registry().Record(models.MetricPoint{
		Name: "system_cpu_usage", Value: 10, Kind: models.KindGauge, Timestamp: time.Now(),
	})
	env.app.Monitor.AlertManager().Tick(context.Background())

	status, body = env.do(t, http.MethodGet, "/admin/monitor/alerts/active", tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, gjson.GetBytes(body, "data").Array())

	status, body = env.do(t, http.MethodGet, "/admin/monitor/alerts/"+id+"/history?pageNum=1&size=10", tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), gjson.GetBytes(body, "data.total").Int())
	assert.Equal(t, string(models.HistoryResolved), gjson.GetBytes(body, "data.list.0.action").String())
	assert.Equal(t, string(models.HistoryTriggered), gjson.GetBytes(body, "data.list.1.action").String())
}

func TestAlertAdmin_HistoryHugePageNumber(t *testing.T) {
	env := newTestEnv(t)
	tok := env.superToken(t)
	_, body := env.do(t, http.MethodPost, "/admin/monitor/alerts", tok, cpuAlertBody(""))
	id := gjson.GetBytes(body, "data.id").String()

	env.app.Monitor.Registry().Record(models.MetricPoint{
		Name: "system_cpu_usage", Value: 95, Kind: models.KindGauge, Timestamp: time.Now(),
	})
	env.app.Monitor.AlertManager().Tick(context.Background())

	status, body := env.do(t, http.MethodGet,
		"/admin/monitor/alerts/"+id+"/history?pageNum=9223372036854775807&size=9223372036854775807", tok, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, int64(1), gjson.GetBytes(body, "data.total").Int())
	assert.Empty(t, gjson.GetBytes(body, "data.list").Array())
}

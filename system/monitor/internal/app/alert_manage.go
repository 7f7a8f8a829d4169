package app

import (
	"context"

	"monicore/pkg/monitoring/models"
	"monicore/system/monitor/api/dto"
)

// 以下方法的 tenant 为管理员绑定的租户，为空表示不限租户

// CreateAlert 绑定租户的管理员只能创建本租户的告警
func (a *App) CreateAlert(ctx context.Context, tenant string, alert *models.Alert) (*models.Alert, error) {
	if tenant != "" {
		alert.TenantID = tenant
	}
	return a.Monitor.AlertManager().CreateAlert(ctx, alert)
}

func (a *App) GetAlert(ctx context.Context, tenant, id string) (*models.Alert, error) {
	alert, err := a.Monitor.AlertManager().GetAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant != "" && alert.TenantID != tenant {
		return nil, a.err.NotFound("告警不存在: " + id)
	}
	return alert, nil
}

// ListAlerts tenant 不为空时忽略查询参数里的租户
func (a *App) ListAlerts(ctx context.Context, tenant, queryTenant string) ([]*models.Alert, error) {
	if tenant != "" {
		queryTenant = tenant
	}
	return a.Monitor.AlertManager().ListAlerts(ctx, queryTenant)
}

func (a *App) UpdateAlert(ctx context.Context, tenant, id string, update models.AlertUpdate) (*models.Alert, error) {
	if _, err := a.GetAlert(ctx, tenant, id); err != nil {
		return nil, err
	}
	if tenant != "" && update.TenantID != nil && *update.TenantID != tenant {
		return nil, a.err.New("不能把告警转移到其他租户", nil).Forbidden()
	}
	return a.Monitor.AlertManager().UpdateAlert(ctx, id, update)
}

func (a *App) DeleteAlert(ctx context.Context, tenant, id string) error {
	if _, err := a.GetAlert(ctx, tenant, id); err != nil {
		return err
	}
	return a.Monitor.AlertManager().DeleteAlert(ctx, id)
}

// ActiveAlerts 正在触发的告警，附带定义里的名称和级别
func (a *App) ActiveAlerts(ctx context.Context, tenant string) []*dto.ActiveAlertResp {
	mgr := a.Monitor.AlertManager()
	states := mgr.ActiveAlerts()
	out := make([]*dto.ActiveAlertResp, 0, len(states))
	for _, s := range states {
		alert, err := mgr.GetAlert(ctx, s.AlertID)
		if err != nil {
			a.log.WithErr(err).WithAlertID(s.AlertID).Warn("查询触发中的告警定义失败")
			continue
		}
		if tenant != "" && alert.TenantID != tenant {
			continue
		}
		out = append(out, &dto.ActiveAlertResp{
			AlertID:     s.AlertID,
			Name:        alert.Name,
			Severity:    alert.Severity,
			TenantID:    alert.TenantID,
			TriggeredAt: s.TriggeredAt,
		})
	}
	return out
}

func (a *App) History(ctx context.Context, tenant, id string, pageNum, size int) ([]*models.AlertHistoryEvent, int64, error) {
	if _, err := a.GetAlert(ctx, tenant, id); err != nil {
		return nil, 0, err
	}
	return a.Monitor.AlertManager().History(ctx, id, pageNum, size)
}

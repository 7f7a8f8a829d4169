package service

import (
	"context"
	"time"

	errorc "monicore/pkg/core/err"
	"monicore/pkg/core/logger"
	"monicore/pkg/core/model/common"
	"monicore/pkg/core/mvc"
	"monicore/pkg/monitoring/models"
	"monicore/system/monitor/internal/dao"
	"monicore/system/monitor/internal/model"
)

// AlertStoreService 基于 gorm 的告警定义与历史存储
type AlertStoreService struct {
	*mvc.BaseService[model.MonitorAlert]
	AlertDao   *dao.AlertDao
	HistoryDao *dao.HistoryDao
	log        *logger.Log
	err        *errorc.ErrorBuilder
}

// NewAlertStoreService 创建告警存储服务
func NewAlertStoreService(alertDao *dao.AlertDao, historyDao *dao.HistoryDao, log *logger.Log) *AlertStoreService {
	return &AlertStoreService{
		BaseService: mvc.NewBaseService[model.MonitorAlert](alertDao),
		AlertDao:    alertDao,
		HistoryDao:  historyDao,
		log:         log.WithEntryName("AlertStoreService"),
		err:         errorc.NewErrorBuilder("AlertStoreService"),
	}
}

func (s *AlertStoreService) LoadActiveAlerts(ctx context.Context) ([]*models.Alert, error) {
	rows, err := s.AlertDao.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return toAlerts(rows), nil
}

func (s *AlertStoreService) Find(ctx context.Context, id string) (*models.Alert, error) {
	row, err := s.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	return row.ToAlert(), nil
}

func (s *AlertStoreService) Insert(ctx context.Context, alert *models.Alert) error {
	return s.Create(ctx, model.FromAlert(alert))
}

func (s *AlertStoreService) Update(ctx context.Context, id string, update models.AlertUpdate) error {
	columns := UpdateColumns(update)
	if len(columns) == 0 {
		return s.err.New("没有需要更新的字段", nil).ValidWithCtx()
	}
	_, err := s.AlertDao.UpdateColumnsById(ctx, id, columns)
	return err
}

func (s *AlertStoreService) Delete(ctx context.Context, id string) error {
	return s.DeleteById(ctx, id)
}

func (s *AlertStoreService) AppendHistory(ctx context.Context, event *models.AlertHistoryEvent) error {
	return s.HistoryDao.Create(ctx, &model.MonitorAlertHistory{
		AlertID:   event.AlertID,
		Action:    string(event.Action),
		Severity:  string(event.Severity),
		Message:   event.Message,
		Timestamp: event.Timestamp,
	})
}

// List tenantID 为空时返回全部定义
func (s *AlertStoreService) List(ctx context.Context, tenantID string) ([]*models.Alert, error) {
	rows, err := s.AlertDao.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return toAlerts(rows), nil
}

// ListHistory 最新的在前
func (s *AlertStoreService) ListHistory(ctx context.Context, alertID string, pageNum, size int) ([]*models.AlertHistoryEvent, int64, error) {
	conditions := map[string]interface{}{}
	if alertID != "" {
		conditions["alert_id"] = alertID
	}
	page := &mvc.Page{PageNum: pageNum, Size: size, Sort: "occurred_at desc, id desc"}
	rows, total, err := s.HistoryDao.FindPageByMap(ctx, page, conditions)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*models.AlertHistoryEvent, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToEvent())
	}
	return out, total, nil
}

// DeleteHistoryBefore 物理删除早于 before 的历史
func (s *AlertStoreService) DeleteHistoryBefore(ctx context.Context, before time.Time) (int64, error) {
	return s.HistoryDao.DeleteBefore(ctx, before)
}

// UpdateColumns 把部分更新转换为列名到值的映射
func UpdateColumns(update models.AlertUpdate) map[string]interface{} {
	columns := make(map[string]interface{})
	if update.Name != nil {
		columns["name"] = *update.Name
	}
	if update.Description != nil {
		columns["description"] = *update.Description
	}
	if update.Severity != nil {
		columns["severity"] = string(*update.Severity)
	}
	if update.Conditions != nil {
		columns["conditions"] = common.JSONList[models.AlertCondition](*update.Conditions)
	}
	if update.Actions != nil {
		columns["actions"] = common.JSONList[models.AlertAction](*update.Actions)
	}
	if update.IsActive != nil {
		columns["is_active"] = *update.IsActive
	}
	if update.TenantID != nil {
		columns["tenant_id"] = *update.TenantID
	}
	return columns
}

func toAlerts(rows []*model.MonitorAlert) []*models.Alert {
	out := make([]*models.Alert, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToAlert())
	}
	return out
}

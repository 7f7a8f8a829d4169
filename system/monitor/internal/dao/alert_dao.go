package dao

import (
	"context"

	errorc "monicore/pkg/core/err"
	"monicore/pkg/core/logger"
	"monicore/pkg/core/mvc"
	"monicore/system/monitor/internal/model"

	"gorm.io/gorm"
)

// AlertDao 告警定义数据访问层
type AlertDao struct {
	mvc.IBaseDao[model.MonitorAlert]
	log *logger.Log
	err *errorc.ErrorBuilder
	DB  *gorm.DB
}

// NewAlertDao 创建告警定义 DAO 实例
func NewAlertDao(db *gorm.DB, log *logger.Log) *AlertDao {
	return &AlertDao{
		IBaseDao: mvc.NewGormDao[model.MonitorAlert](db),
		log:      log.WithEntryName("AlertDao"),
		err:      errorc.NewErrorBuilder("AlertDao"),
		DB:       db,
	}
}

// ListActive 查询所有启用的告警
func (d *AlertDao) ListActive(ctx context.Context) ([]*model.MonitorAlert, error) {
	var results []*model.MonitorAlert
	err := d.DB.WithContext(ctx).Where("is_active = ?", true).Find(&results).Error
	if err != nil {
		return nil, d.err.New("查询启用的告警失败", err).DB()
	}
	return results, nil
}

// ListByTenant tenantID 为空时查询全部
func (d *AlertDao) ListByTenant(ctx context.Context, tenantID string) ([]*model.MonitorAlert, error) {
	var results []*model.MonitorAlert
	db := d.DB.WithContext(ctx)
	if tenantID != "" {
		db = db.Where("tenant_id = ?", tenantID)
	}
	if err := db.Order("created_at asc").Find(&results).Error; err != nil {
		return nil, d.err.New("查询告警列表失败", err).DB()
	}
	return results, nil
}

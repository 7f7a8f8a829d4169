package dao

import (
	"context"
	"time"

	errorc "monicore/pkg/core/err"
	"monicore/pkg/core/logger"
	"monicore/pkg/core/mvc"
	"monicore/system/monitor/internal/model"

	"gorm.io/gorm"
)

// HistoryDao 告警历史数据访问层
type HistoryDao struct {
	mvc.IBaseDao[model.MonitorAlertHistory]
	log *logger.Log
	err *errorc.ErrorBuilder
	DB  *gorm.DB
}

func NewHistoryDao(db *gorm.DB, log *logger.Log) *HistoryDao {
	return &HistoryDao{
		IBaseDao: mvc.NewGormDao[model.MonitorAlertHistory](db),
		log:      log.WithEntryName("HistoryDao"),
		err:      errorc.NewErrorBuilder("HistoryDao"),
		DB:       db,
	}
}

// DeleteBefore 删除早于 before 的记录
func (d *HistoryDao) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	return d.DeleteWhere(ctx, "occurred_at < ?", before)
}

package monitor

import (
	"monicore/pkg/core/logger"
	"monicore/system/monitor/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate 自动执行监控组件的数据库迁移
func AutoMigrate(db *gorm.DB, log *logger.Log) error {
	log.Info("开始迁移监控组件表...")

	if err := db.AutoMigrate(
		&model.MonitorAlert{},
		&model.MonitorAlertHistory{},
	); err != nil {
		log.WithErr(err).Error("监控组件表迁移失败")
		return err
	}

	log.Info("监控组件表迁移完成")
	return nil
}

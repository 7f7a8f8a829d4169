package model

import (
	"time"

	"monicore/pkg/monitoring/models"
)

// MonitorAlertHistory 告警触发与恢复记录，只追加
type MonitorAlertHistory struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	AlertID   string    `gorm:"type:varchar(64);not null;index;comment:告警ID" json:"alertId" comment:"告警ID"`
	Action    string    `gorm:"type:varchar(16);not null;comment:事件类型" json:"action" comment:"事件类型"`
	Severity  string    `gorm:"type:varchar(16);comment:告警级别" json:"severity" comment:"告警级别"`
	Message   string    `gorm:"type:varchar(500);comment:消息" json:"message" comment:"消息"`
	Timestamp time.Time `gorm:"column:occurred_at;not null;index;comment:发生时间" json:"timestamp" comment:"发生时间"`
}

// TableName 设置表名
func (MonitorAlertHistory) TableName() string {
	return "monitor_alert_history"
}

func (h *MonitorAlertHistory) ToEvent() *models.AlertHistoryEvent {
	return &models.AlertHistoryEvent{
		AlertID:   h.AlertID,
		Action:    models.HistoryAction(h.Action),
		Severity:  models.Severity(h.Severity),
		Message:   h.Message,
		Timestamp: h.Timestamp,
	}
}

package model

import (
	"monicore/pkg/core/model/common"
	"monicore/pkg/monitoring/models"
)

// MonitorAlert 告警定义
type MonitorAlert struct {
	common.ModelString
	Name        string                                 `gorm:"type:varchar(128);not null;comment:告警名称" json:"name" comment:"告警名称"`
	Description string                                 `gorm:"type:varchar(500);comment:描述" json:"description" comment:"描述"`
	Severity    string                                 `gorm:"type:varchar(16);not null;comment:告警级别" json:"severity" comment:"告警级别"`
	Conditions  common.JSONList[models.AlertCondition] `gorm:"type:text;comment:告警条件" json:"conditions" comment:"告警条件"`
	Actions     common.JSONList[models.AlertAction]    `gorm:"type:text;comment:通知动作" json:"actions" comment:"通知动作"`
	IsActive    bool                                   `gorm:"not null;index;comment:是否启用" json:"isActive" comment:"是否启用"`
	TenantID    string                                 `gorm:"type:varchar(64);index;comment:租户ID" json:"tenantId" comment:"租户ID"`
}

// TableName 设置表名
func (MonitorAlert) TableName() string {
	return "monitor_alerts"
}

// ToAlert 转换为告警核心使用的模型
func (m *MonitorAlert) ToAlert() *models.Alert {
	return &models.Alert{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Severity:    models.Severity(m.Severity),
		Conditions:  append([]models.AlertCondition(nil), m.Conditions...),
		Actions:     append([]models.AlertAction(nil), m.Actions...),
		IsActive:    m.IsActive,
		TenantID:    m.TenantID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromAlert 由告警核心模型构造
func FromAlert(a *models.Alert) *MonitorAlert {
	m := &MonitorAlert{
		Name:        a.Name,
		Description: a.Description,
		Severity:    string(a.Severity),
		Conditions:  common.JSONList[models.AlertCondition](a.Conditions),
		Actions:     common.JSONList[models.AlertAction](a.Actions),
		IsActive:    a.IsActive,
		TenantID:    a.TenantID,
	}
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	return m
}

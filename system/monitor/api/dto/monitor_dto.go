package dto

import (
	"time"

	"monicore/pkg/monitoring/models"
)

// ActiveAlertResp 正在触发的告警
type ActiveAlertResp struct {
	AlertID     string          `json:"alertId"`
	Name        string          `json:"name"`
	Severity    models.Severity `json:"severity"`
	TenantID    string          `json:"tenantId,omitempty"`
	TriggeredAt time.Time       `json:"triggeredAt"`
}

package dto

import (
	"monicore/pkg/monitoring/models"
)

// ConditionReq 告警条件
type ConditionReq struct {
	Metric    string  `json:"metric" validate:"required,metric_name" comment:"指标"`
	Operator  string  `json:"operator" validate:"required,oneof=> < >= <= == !=" comment:"比较运算符"`
	Threshold float64 `json:"threshold" comment:"阈值"`
	Duration  int     `json:"duration" validate:"gte=0" comment:"持续分钟数"`
}

// ActionReq 通知动作
type ActionReq struct {
	Type     string `json:"type" validate:"required,oneof=email webhook slack sms" comment:"通知类型"`
	Target   string `json:"target" validate:"required,max=500" comment:"通知目标"`
	Template string `json:"template" validate:"max=2000" comment:"消息模板"`
}

// CreateAlertReq 创建告警
type CreateAlertReq struct {
	Name        string         `json:"name" validate:"required,max=128" comment:"告警名称"`
	Description string         `json:"description" validate:"max=500" comment:"描述"`
	Severity    string         `json:"severity" validate:"required,oneof=low medium high critical" comment:"告警级别"`
	Conditions  []ConditionReq `json:"conditions" validate:"required,min=1,dive" comment:"告警条件"`
	Actions     []ActionReq    `json:"actions" validate:"dive" comment:"通知动作"`
	// IsActive 不传时默认启用
	IsActive *bool  `json:"isActive" comment:"是否启用"`
	TenantID string `json:"tenantId" validate:"max=64" comment:"租户ID"`
}

// UpdateAlertReq 部分更新，未传的字段保持不变
type UpdateAlertReq struct {
	Name        *string         `json:"name" validate:"omitempty,min=1,max=128" comment:"告警名称"`
	Description *string         `json:"description" validate:"omitempty,max=500" comment:"描述"`
	Severity    *string         `json:"severity" validate:"omitempty,oneof=low medium high critical" comment:"告警级别"`
	Conditions  *[]ConditionReq `json:"conditions" validate:"omitempty,min=1,dive" comment:"告警条件"`
	Actions     *[]ActionReq    `json:"actions" validate:"omitempty,dive" comment:"通知动作"`
	IsActive    *bool           `json:"isActive" comment:"是否启用"`
	TenantID    *string         `json:"tenantId" validate:"omitempty,max=64" comment:"租户ID"`
}

// ToAlert 转换为告警定义
func (r *CreateAlertReq) ToAlert() *models.Alert {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &models.Alert{
		Name:        r.Name,
		Description: r.Description,
		Severity:    models.Severity(r.Severity),
		Conditions:  toConditions(r.Conditions),
		Actions:     toActions(r.Actions),
		IsActive:    active,
		TenantID:    r.TenantID,
	}
}

// ToUpdate 转换为部分更新
func (r *UpdateAlertReq) ToUpdate() models.AlertUpdate {
	u := models.AlertUpdate{
		Name:        r.Name,
		Description: r.Description,
		IsActive:    r.IsActive,
		TenantID:    r.TenantID,
	}
	if r.Severity != nil {
		s := models.Severity(*r.Severity)
		u.Severity = &s
	}
	if r.Conditions != nil {
		c := toConditions(*r.Conditions)
		u.Conditions = &c
	}
	if r.Actions != nil {
		a := toActions(*r.Actions)
		u.Actions = &a
	}
	return u
}

func toConditions(in []ConditionReq) []models.AlertCondition {
	out := make([]models.AlertCondition, 0, len(in))
	for _, c := range in {
		out = append(out, models.AlertCondition{
			Metric:    c.Metric,
			Operator:  models.Operator(c.Operator),
			Threshold: c.Threshold,
			Duration:  c.Duration,
		})
	}
	return out
}

func toActions(in []ActionReq) []models.AlertAction {
	out := make([]models.AlertAction, 0, len(in))
	for _, a := range in {
		out = append(out, models.AlertAction{
			Type:     models.ActionType(a.Type),
			Target:   a.Target,
			Template: a.Template,
		})
	}
	return out
}

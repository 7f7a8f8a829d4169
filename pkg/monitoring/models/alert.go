package models

import (
	"time"
)

// Severity 告警级别
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Operator 比较运算符
type Operator string

const (
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
)

func (o Operator) Valid() bool {
	switch o {
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual, OpEqual, OpNotEqual:
		return true
	}
	return false
}

// Compare 计算 value <op> threshold，未知运算符恒为 false
func (o Operator) Compare(value, threshold float64) bool {
	switch o {
	case OpGreater:
		return value > threshold
	case OpLess:
		return value < threshold
	case OpGreaterEqual:
		return value >= threshold
	case OpLessEqual:
		return value <= threshold
	case OpEqual:
		return value == threshold
	case OpNotEqual:
		return value != threshold
	}
	return false
}

// ActionType 通知动作类型
type ActionType string

const (
	ActionEmail   ActionType = "email"
	ActionWebhook ActionType = "webhook"
	ActionSlack   ActionType = "slack"
	ActionSMS     ActionType = "sms"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionEmail, ActionWebhook, ActionSlack, ActionSMS:
		return true
	}
	return false
}

// AlertCondition 告警条件，Duration 单位为分钟
type AlertCondition struct {
	Metric    string   `json:"metric"`
	Operator  Operator `json:"operator"`
	Threshold float64  `json:"threshold"`
	Duration  int      `json:"duration"`
}

// AlertAction 触发时执行的通知动作
type AlertAction struct {
	Type     ActionType `json:"type"`
	Target   string     `json:"target"`
	Template string     `json:"template,omitempty"`
}

// Alert 告警定义。IsActive 是管理开关，与"是否正在触发"无关
type Alert struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Severity    Severity         `json:"severity"`
	Conditions  []AlertCondition `json:"conditions"`
	Actions     []AlertAction    `json:"actions"`
	IsActive    bool             `json:"isActive"`
	TenantID    string           `json:"tenantId,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Clone 深拷贝，条件和动作切片不与原对象共享
func (a *Alert) Clone() *Alert {
	if a == nil {
		return nil
	}
	c := *a
	c.Conditions = append([]AlertCondition(nil), a.Conditions...)
	c.Actions = append([]AlertAction(nil), a.Actions...)
	return &c
}

// AlertUpdate 部分更新，nil 字段保持不变
type AlertUpdate struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Severity    *Severity         `json:"severity,omitempty"`
	Conditions  *[]AlertCondition `json:"conditions,omitempty"`
	Actions     *[]AlertAction    `json:"actions,omitempty"`
	IsActive    *bool             `json:"isActive,omitempty"`
	TenantID    *string           `json:"tenantId,omitempty"`
}

// Empty 没有任何字段需要更新
func (u AlertUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Severity == nil && u.Conditions == nil &&
		u.Actions == nil && u.IsActive == nil && u.TenantID == nil
}

// Apply 把更新写到 alert 上
func (u AlertUpdate) Apply(alert *Alert) {
	if u.Name != nil {
		alert.Name = *u.Name
	}
	if u.Description != nil {
		alert.Description = *u.Description
	}
	if u.Severity != nil {
		alert.Severity = *u.Severity
	}
	if u.Conditions != nil {
		alert.Conditions = append([]AlertCondition(nil), (*u.Conditions)...)
	}
	if u.Actions != nil {
		alert.Actions = append([]AlertAction(nil), (*u.Actions)...)
	}
	if u.IsActive != nil {
		alert.IsActive = *u.IsActive
	}
	if u.TenantID != nil {
		alert.TenantID = *u.TenantID
	}
}

// ActiveAlertState 正在触发的告警，只存在于内存
type ActiveAlertState struct {
	AlertID     string    `json:"alertId"`
	TriggeredAt time.Time `json:"triggeredAt"`
}

// HistoryAction 告警历史事件类型
type HistoryAction string

const (
	HistoryTriggered HistoryAction = "triggered"
	HistoryResolved  HistoryAction = "resolved"
)

// AlertHistoryEvent 一次触发或恢复
type AlertHistoryEvent struct {
	AlertID   string        `json:"alertId"`
	Action    HistoryAction `json:"action"`
	Severity  Severity      `json:"severity"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

// Package alerting 提供告警定义管理和评估功能
package alerting

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	errorc "monicore/pkg/core/err"
	"monicore/pkg/monitoring/models"
	"monicore/pkg/scheduler"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errBuilder = errorc.NewErrorBuilder("AlertManager")

const (
	defaultEvaluateInterval = 30 * time.Second
	defaultDispatchTimeout  = 10 * time.Second
	dispatchGrace           = time.Second
)

// MetricSource 评估条件时读取的指标来源
type MetricSource interface {
	Query(name string) []models.MetricPoint
}

// AlertStore 告警定义与历史的持久化
type AlertStore interface {
	LoadActiveAlerts(ctx context.Context) ([]*models.Alert, error)
	Find(ctx context.Context, id string) (*models.Alert, error)
	Insert(ctx context.Context, alert *models.Alert) error
	Update(ctx context.Context, id string, update models.AlertUpdate) error
	Delete(ctx context.Context, id string) error
	AppendHistory(ctx context.Context, event *models.AlertHistoryEvent) error
}

// AlertLister 可选，支持列出全部告警定义的存储
type AlertLister interface {
	List(ctx context.Context, tenantID string) ([]*models.Alert, error)
}

// HistoryReader 可选，支持分页查询历史的存储
type HistoryReader interface {
	ListHistory(ctx context.Context, alertID string, pageNum, size int) ([]*models.AlertHistoryEvent, int64, error)
}

// Notifier 按动作类型发送通知
type Notifier interface {
	Dispatch(ctx context.Context, action models.AlertAction, alert *models.Alert) error
}

// Config 告警管理器配置
type Config struct {
	EvaluateInterval time.Duration
	// DispatchTimeout 单个通知动作的超时
	DispatchTimeout time.Duration
	Logger          *zap.Logger
	Clock           func() time.Time
}

// Manager 告警管理器
type Manager struct {
	config   Config
	source   MetricSource
	store    AlertStore
	notifier Notifier
	sched    *scheduler.Scheduler
	logger   *zap.Logger

	alerts   map[string]*models.Alert
	active   map[string]*models.ActiveAlertState
	alertsMu sync.RWMutex

	tickMu     sync.Mutex
	stopped    bool
	dispatchWg sync.WaitGroup
	taskID     string

	// adminMu 串行化增删改，保证内存与存储一致
	adminMu sync.Mutex
}

// NewManager 创建告警管理器，sched 为 nil 时只能手动调用 Tick
func NewManager(config Config, source MetricSource, store AlertStore, notifier Notifier, sched *scheduler.Scheduler) *Manager {
	if config.EvaluateInterval <= 0 {
		config.EvaluateInterval = defaultEvaluateInterval
	}
	if config.DispatchTimeout <= 0 {
		config.DispatchTimeout = defaultDispatchTimeout
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	return &Manager{
		config:   config,
		source:   source,
		store:    store,
		notifier: notifier,
		sched:    sched,
		logger:   config.Logger,
		alerts:   make(map[string]*models.Alert),
		active:   make(map[string]*models.ActiveAlertState),
	}
}

// Start 加载启用的告警并注册评估任务
func (m *Manager) Start(ctx context.Context) error {
	alerts, err := m.store.LoadActiveAlerts(ctx)
	if err != nil {
		return errBuilder.New("加载告警定义失败", err)
	}

	m.alertsMu.Lock()
	for _, a := range alerts {
		if a == nil || a.ID == "" {
			continue
		}
		m.alerts[a.ID] = a.Clone()
	}
	count := len(m.alerts)
	m.alertsMu.Unlock()
	m.logger.Info("告警定义加载完成", zap.Int("count", count))

	if m.sched == nil {
		return nil
	}
	interval := m.config.EvaluateInterval
	task := scheduler.NewIntervalTask("alert-evaluate", time.Now().Add(interval), interval,
		scheduler.TaskExecuteModeLocal, interval+m.config.DispatchTimeout+dispatchGrace,
		func(ctx context.Context) error {
			m.Tick(ctx)
			return nil
		})
	if err := m.sched.AddTask(task); err != nil {
		return errBuilder.New("注册告警评估任务失败", err)
	}
	m.taskID = task.GetID()
	m.logger.Info("告警管理器已启动", zap.Duration("interval", interval))
	return nil
}

// Stop 不再评估，等待正在执行的一轮评估结束，再等待已发出的通知结束
func (m *Manager) Stop() {
	if m.sched != nil && m.taskID != "" {
		m.sched.RemoveTask(m.taskID)
	}
	m.tickMu.Lock()
	m.stopped = true
	m.tickMu.Unlock()
	m.dispatchWg.Wait()
	m.logger.Info("告警管理器已停止")
}

// Tick 执行一轮评估。上一轮未结束时直接跳过
func (m *Manager) Tick(ctx context.Context) {
	if !m.tickMu.TryLock() {
		m.logger.Warn("上一轮告警评估尚未结束，跳过本轮")
		return
	}
	defer m.tickMu.Unlock()
	if m.stopped {
		return
	}

	now := m.config.Clock()

	m.alertsMu.RLock()
	alerts := make([]*models.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		alerts = append(alerts, a.Clone())
	}
	m.alertsMu.RUnlock()

	var batch sync.WaitGroup
	for _, alert := range alerts {
		matched := alert.IsActive && m.evaluateAt(alert.Conditions, now)
		firing := m.isFiring(alert.ID)

		switch {
		case matched && !firing:
			m.trigger(ctx, alert, now, &batch)
		case !matched && firing:
			m.resolve(ctx, alert, now)
		}
	}
	m.waitDispatch(&batch)
}

func (m *Manager) waitDispatch(batch *sync.WaitGroup) {
	done := make(chan struct{})
	go func() {
		batch.Wait()
		close(done)
	}()

	timer := time.NewTimer(m.config.DispatchTimeout + dispatchGrace)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		m.logger.Warn("等待告警通知超时，继续下一轮评估")
	}
}

func (m *Manager) isFiring(id string) bool {
	m.alertsMu.RLock()
	defer m.alertsMu.RUnlock()
	_, ok := m.active[id]
	return ok
}

// Evaluate 用当前时间评估一组条件
func (m *Manager) Evaluate(conditions []models.AlertCondition) bool {
	return m.evaluateAt(conditions, m.config.Clock())
}

// evaluateAt 条件之间是或的关系，窗口内没有数据的条件视为不满足，duration 为 0 时窗口为空
func (m *Manager) evaluateAt(conditions []models.AlertCondition, now time.Time) bool {
	for _, c := range conditions {
		if m.conditionMatched(c, now) {
			return true
		}
	}
	return false
}

func (m *Manager) conditionMatched(c models.AlertCondition, now time.Time) bool {
	if c.Duration <= 0 {
		return false
	}
	points := m.source.Query(c.Metric)
	if len(points) == 0 {
		return false
	}

	since := now.Add(-time.Duration(c.Duration) * time.Minute)
	var sum float64
	var n int
	for _, p := range points {
		if p.Timestamp.After(since) {
			sum += p.Value
			n++
		}
	}
	if n == 0 {
		return false
	}
	return c.Operator.Compare(sum/float64(n), c.Threshold)
}

func (m *Manager) trigger(ctx context.Context, alert *models.Alert, now time.Time, batch *sync.WaitGroup) {
	m.alertsMu.Lock()
	if _, ok := m.alerts[alert.ID]; !ok {
		m.alertsMu.Unlock()
		return
	}
	if _, ok := m.active[alert.ID]; ok {
		m.alertsMu.Unlock()
		return
	}
	m.active[alert.ID] = &models.ActiveAlertState{AlertID: alert.ID, TriggeredAt: now}
	m.alertsMu.Unlock()

	m.logger.Info("触发告警", zap.String("id", alert.ID), zap.String("name", alert.Name),
		zap.String("severity", string(alert.Severity)))
	m.appendHistory(ctx, alert, models.HistoryTriggered, now)

	if m.notifier == nil {
		return
	}
	for _, action := range alert.Actions {
		batch.Add(1)
		m.dispatchWg.Add(1)
		go func(action models.AlertAction) {
			defer batch.Done()
			defer m.dispatchWg.Done()
			m.dispatch(ctx, action, alert)
		}(action)
	}
}

// dispatch 单个动作独立超时，失败和 panic 只记录日志
func (m *Manager) dispatch(ctx context.Context, action models.AlertAction, alert *models.Alert) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("发送告警通知时发生panic", zap.String("id", alert.ID),
				zap.String("type", string(action.Type)), zap.Any("panic", r))
		}
	}()

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.config.DispatchTimeout)
	defer cancel()
	if err := m.notifier.Dispatch(dctx, action, alert); err != nil {
		m.logger.Error("发送告警通知失败", zap.String("id", alert.ID),
			zap.String("type", string(action.Type)), zap.String("target", action.Target), zap.Error(err))
		return
	}
	m.logger.Debug("告警通知已发送", zap.String("id", alert.ID), zap.String("type", string(action.Type)))
}

func (m *Manager) resolve(ctx context.Context, alert *models.Alert, now time.Time) {
	m.alertsMu.Lock()
	_, ok := m.active[alert.ID]
	delete(m.active, alert.ID)
	m.alertsMu.Unlock()
	if !ok {
		return
	}

	m.logger.Info("告警已恢复", zap.String("id", alert.ID), zap.String("name", alert.Name))
	m.appendHistory(ctx, alert, models.HistoryResolved, now)
}

func (m *Manager) appendHistory(ctx context.Context, alert *models.Alert, action models.HistoryAction, now time.Time) {
	event := &models.AlertHistoryEvent{
		AlertID:   alert.ID,
		Action:    action,
		Severity:  alert.Severity,
		Message:   historyMessage(alert, action),
		Timestamp: now,
	}
	if err := m.store.AppendHistory(ctx, event); err != nil {
		m.logger.Error("写入告警历史失败", zap.String("id", alert.ID),
			zap.String("action", string(action)), zap.Error(err))
	}
}

func historyMessage(alert *models.Alert, action models.HistoryAction) string {
	if action == models.HistoryTriggered {
		return fmt.Sprintf("告警[%s]已触发", alert.Name)
	}
	return fmt.Sprintf("告警[%s]已恢复", alert.Name)
}

// CreateAlert 先写存储再更新内存
func (m *Manager) CreateAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	if err := Validate(alert); err != nil {
		return nil, err
	}
	m.adminMu.Lock()
	defer m.adminMu.Unlock()

	a := alert.Clone()
	a.ID = uuid.New().String()
	now := m.config.Clock()
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := m.store.Insert(ctx, a); err != nil {
		return nil, err
	}

	m.alertsMu.Lock()
	m.alerts[a.ID] = a.Clone()
	m.alertsMu.Unlock()
	m.logger.Info("创建告警", zap.String("id", a.ID), zap.String("name", a.Name))
	return a, nil
}

// UpdateAlert 部分更新。内存里没有但更新后处于启用状态的告警从存储重新加载
func (m *Manager) UpdateAlert(ctx context.Context, id string, update models.AlertUpdate) (*models.Alert, error) {
	if update.Empty() {
		return nil, errBuilder.New("没有需要更新的字段", nil).ValidWithCtx()
	}
	m.adminMu.Lock()
	defer m.adminMu.Unlock()

	m.alertsMu.RLock()
	current, loaded := m.alerts[id]
	if loaded {
		current = current.Clone()
	}
	m.alertsMu.RUnlock()

	if loaded {
		update.Apply(current)
		if err := Validate(current); err != nil {
			return nil, err
		}
	}

	if err := m.store.Update(ctx, id, update); err != nil {
		return nil, err
	}

	if loaded {
		current.UpdatedAt = m.config.Clock()
		m.alertsMu.Lock()
		if _, still := m.alerts[id]; still {
			m.alerts[id] = current.Clone()
		}
		m.alertsMu.Unlock()
		m.logger.Info("更新告警", zap.String("id", id))
		return current, nil
	}

	fresh, err := m.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if fresh.IsActive {
		m.alertsMu.Lock()
		m.alerts[id] = fresh.Clone()
		m.alertsMu.Unlock()
	}
	m.logger.Info("更新告警", zap.String("id", id))
	return fresh, nil
}

// DeleteAlert 删除定义，同时清除触发状态
func (m *Manager) DeleteAlert(ctx context.Context, id string) error {
	m.adminMu.Lock()
	defer m.adminMu.Unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}

	m.alertsMu.Lock()
	delete(m.alerts, id)
	delete(m.active, id)
	m.alertsMu.Unlock()
	m.logger.Info("删除告警", zap.String("id", id))
	return nil
}

// GetAlert 优先取内存，没有时查存储
func (m *Manager) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	m.alertsMu.RLock()
	a, ok := m.alerts[id]
	m.alertsMu.RUnlock()
	if ok {
		return a.Clone(), nil
	}
	return m.store.Find(ctx, id)
}

// ListAlerts 存储支持时列出全部定义，否则列出内存中的定义
func (m *Manager) ListAlerts(ctx context.Context, tenantID string) ([]*models.Alert, error) {
	if lister, ok := m.store.(AlertLister); ok {
		return lister.List(ctx, tenantID)
	}

	m.alertsMu.RLock()
	out := make([]*models.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		if tenantID == "" || a.TenantID == tenantID {
			out = append(out, a.Clone())
		}
	}
	m.alertsMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ActiveAlerts 正在触发的告警，按触发时间排序
func (m *Manager) ActiveAlerts() []models.ActiveAlertState {
	m.alertsMu.RLock()
	out := make([]models.ActiveAlertState, 0, len(m.active))
	for _, s := range m.active {
		out = append(out, *s)
	}
	m.alertsMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].TriggeredAt.Before(out[j].TriggeredAt) })
	return out
}

// History 分页查询告警历史
func (m *Manager) History(ctx context.Context, alertID string, pageNum, size int) ([]*models.AlertHistoryEvent, int64, error) {
	reader, ok := m.store.(HistoryReader)
	if !ok {
		return nil, 0, errBuilder.New("当前存储不支持查询告警历史", nil).Unavailable()
	}
	return reader.ListHistory(ctx, alertID, pageNum, size)
}

// Validate 校验告警定义
func Validate(alert *models.Alert) error {
	if alert == nil {
		return errBuilder.New("告警不能为空", nil).ValidWithCtx()
	}
	if alert.Name == "" {
		return errBuilder.New("告警名称不能为空", nil).ValidWithCtx()
	}
	if !alert.Severity.Valid() {
		return errBuilder.New(fmt.Sprintf("未知的告警级别: %s", alert.Severity), nil).ValidWithCtx()
	}
	if len(alert.Conditions) == 0 {
		return errBuilder.New("至少需要一个告警条件", nil).ValidWithCtx()
	}
	for _, c := range alert.Conditions {
		if c.Metric == "" {
			return errBuilder.New("告警条件缺少指标名称", nil).ValidWithCtx()
		}
		if !c.Operator.Valid() {
			return errBuilder.New(fmt.Sprintf("未知的比较运算符: %s", c.Operator), nil).ValidWithCtx()
		}
		if c.Duration < 0 {
			return errBuilder.New("持续时间不能为负数", nil).ValidWithCtx()
		}
	}
	for _, a := range alert.Actions {
		if !a.Type.Valid() {
			return errBuilder.New(fmt.Sprintf("未知的通知类型: %s", a.Type), nil).ValidWithCtx()
		}
	}
	return nil
}

// Package notifier 按动作类型分发告警通知
package notifier

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	errorc "monicore/pkg/core/err"
	"monicore/pkg/monitoring/models"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var errBuilder = errorc.NewErrorBuilder("Notifier")

// DefaultTemplate 动作没有配置模板时使用
const DefaultTemplate = "[{{severity}}] {{name}}: {{description}}"

// Message 渲染后的通知内容
type Message struct {
	Type    models.ActionType
	Target  string
	Subject string
	Body    string
	AlertID string
}

// Sender 某一类通知的发送方式
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SenderFunc 适配普通函数
type SenderFunc func(ctx context.Context, msg *Message) error

func (f SenderFunc) Send(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

// Statistics 通知统计信息
type Statistics struct {
	TotalSent    int64 `json:"totalSent"`
	TotalSuccess int64 `json:"totalSuccess"`
	TotalFailed  int64 `json:"totalFailed"`
	LastSentAt   int64 `json:"lastSentAt"`
}

// Dispatcher 实现 alerting.Notifier
type Dispatcher struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	senders map[models.ActionType]Sender

	sent, success, failed, lastSentAt atomic.Int64
}

// NewDispatcher 四种类型默认都只记录日志
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		logger:  logger,
		senders: make(map[models.ActionType]Sender),
	}
	for _, typ := range []models.ActionType{models.ActionEmail, models.ActionWebhook, models.ActionSlack, models.ActionSMS} {
		d.senders[typ] = NewLogSender(logger)
	}
	return d
}

// Register 替换某一类型的发送方式
func (d *Dispatcher) Register(typ models.ActionType, sender Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders[typ] = sender
}

// Dispatch 渲染模板并交给对应类型的 Sender
func (d *Dispatcher) Dispatch(ctx context.Context, action models.AlertAction, alert *models.Alert) error {
	d.mu.RLock()
	sender, ok := d.senders[action.Type]
	d.mu.RUnlock()
	if !ok {
		return errBuilder.New(fmt.Sprintf("不支持的通知类型: %s", action.Type), nil).ValidWithCtx()
	}

	body, err := Render(action.Template, alert)
	if err != nil {
		d.record(false)
		return err
	}
	msg := &Message{
		Type:    action.Type,
		Target:  action.Target,
		Subject: fmt.Sprintf("[%s] %s", strings.ToUpper(string(alert.Severity)), alert.Name),
		Body:    body,
		AlertID: alert.ID,
	}

	if err := sender.Send(ctx, msg); err != nil {
		d.record(false)
		return errBuilder.New(fmt.Sprintf("发送%s通知失败", action.Type), err).Third()
	}
	d.record(true)
	return nil
}

func (d *Dispatcher) record(ok bool) {
	d.sent.Add(1)
	if ok {
		d.success.Add(1)
	} else {
		d.failed.Add(1)
	}
	d.lastSentAt.Store(time.Now().Unix())
}

// Statistics 返回统计快照
func (d *Dispatcher) Statistics() Statistics {
	return Statistics{
		TotalSent:    d.sent.Load(),
		TotalSuccess: d.success.Load(),
		TotalFailed:  d.failed.Load(),
		LastSentAt:   d.lastSentAt.Load(),
	}
}

var placeholder = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// Render 把 {{path}} 替换为告警 JSON 中对应路径的值，路径不存在时替换为空串
func Render(tmpl string, alert *models.Alert) (string, error) {
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	data, err := jsoniter.Marshal(alert)
	if err != nil {
		return "", errBuilder.New("序列化告警失败", err)
	}
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		path := placeholder.FindStringSubmatch(m)[1]
		return gjson.GetBytes(data, path).String()
	}), nil
}

// LogSender 只把通知写入日志
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("告警通知",
		zap.String("type", string(msg.Type)),
		zap.String("target", msg.Target),
		zap.String("alert_id", msg.AlertID),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body))
	return nil
}

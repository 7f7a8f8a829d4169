package collector

import (
	"strconv"

	"monicore/pkg/core/fiber_handle"
	"monicore/pkg/monitoring/instrument"
	"monicore/pkg/monitoring/models"

	"go.uber.org/zap"
)

// APICollector 把每次 HTTP 调用记为一次请求计数和一次耗时观测
type APICollector struct {
	logger   *zap.Logger
	requests *instrument.Counter
	duration *instrument.Histogram
}

var _ fiber_handle.MonitorClient = (*APICollector)(nil)

// NewAPICollector 创建请求指标收集器
func NewAPICollector(rec instrument.Recorder, logger *zap.Logger) *APICollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APICollector{
		logger:   logger,
		requests: instrument.NewCounter(rec, models.MetricHTTPRequestsTotal),
		duration: instrument.NewHistogram(rec, models.MetricHTTPRequestDuration),
	}
}

// RecordAPICall 耗时以秒为单位写入
func (c *APICollector) RecordAPICall(call *fiber_handle.APICallMetrics) {
	if call == nil {
		return
	}
	labels := map[string]string{
		models.LabelMethod:     call.Method,
		models.LabelPath:       call.Path,
		models.LabelStatusCode: strconv.Itoa(call.StatusCode),
	}
	if call.TenantID != "" {
		labels[models.LabelTenantID] = call.TenantID
	}

	c.requests.Inc(labels)
	c.duration.Observe(call.Duration.Seconds(), labels)

	c.logger.Debug("API指标记录成功",
		zap.String("path", call.Path),
		zap.String("method", call.Method),
		zap.Int("status_code", call.StatusCode),
		zap.Duration("duration", call.Duration))
}

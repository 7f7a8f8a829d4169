// Package fiber_handle 提供 Fiber 框架的中间件处理器
//
// 请求指标中间件用法：
//
//	app.Use(fiber_handle.NewAPIMonitorWithFilters(fiber_handle.MonitorConfig{
//		Client: apiCollector,
//	}, fiber_handle.SkipMethods("OPTIONS"), fiber_handle.SkipHealthCheck))
package fiber_handle

import (
	"errors"
	"strings"
	"time"

	"monicore/pkg/core/consts"
	errorc "monicore/pkg/core/err"
	"monicore/pkg/core/util"

	"github.com/gofiber/fiber/v2"
)

// APICallMetrics 一次 HTTP 调用的观测结果
type APICallMetrics struct {
	Timestamp  time.Time
	Method     string
	Path       string
	StatusCode int
	Duration   time.Duration
	TenantID   string
	TraceID    string
}

// MonitorClient 请求指标接收方
type MonitorClient interface {
	RecordAPICall(apiMetrics *APICallMetrics)
}

// MonitorConfig 监控配置
type MonitorConfig struct {
	Client MonitorClient
}

// FilterFunc 返回 false 时跳过该请求
type FilterFunc func(c *fiber.Ctx) bool

// NewAPIMonitor 创建 API 监控中间件
func NewAPIMonitor(config MonitorConfig) fiber.Handler {
	return NewAPIMonitorWithFilters(config)
}

// NewAPIMonitorWithFilters 创建带过滤器列表的 API 监控中间件
func NewAPIMonitorWithFilters(config MonitorConfig, filters ...FilterFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if config.Client == nil {
			return c.Next()
		}

		for _, filter := range filters {
			if !filter(c) {
				return c.Next()
			}
		}

		startTime := time.Now()
		err := c.Next()
		recordAPIMetrics(config, c, startTime, err)
		return err
	}
}

func recordAPIMetrics(config MonitorConfig, c *fiber.Ctx, startTime time.Time, handlerErr error) {
	// 使用路由模板作为 path，避免 /alerts/:id 这类路径撑爆标签
	path := c.Route().Path
	if path == "" || path == "/" {
		path = c.Path()
	}

	apiMetrics := &APICallMetrics{
		Timestamp:  startTime,
		Method:     c.Method(),
		Path:       path,
		StatusCode: statusOf(c, handlerErr),
		Duration:   time.Since(startTime),
		TenantID:   util.TenantID(c),
	}
	if traceID, ok := c.Locals(consts.TraceKey).(string); ok {
		apiMetrics.TraceID = traceID
	}

	config.Client.RecordAPICall(apiMetrics)
}

// statusOf 错误处理器在中间件返回后才写响应，这里按错误推算最终状态码
func statusOf(c *fiber.Ctx, handlerErr error) int {
	if handlerErr == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(handlerErr, &fe) {
		return fe.Code
	}
	return errorc.ParseError(handlerErr).ErrorCode.HTTPStatus()
}

// SkipHealthCheck 跳过健康检查端点
func SkipHealthCheck(c *fiber.Ctx) bool {
	return !strings.HasPrefix(strings.ToLower(c.Path()), "/health")
}

// SkipPaths 跳过指定前缀的路径
func SkipPaths(prefixes ...string) FilterFunc {
	return func(c *fiber.Ctx) bool {
		for _, prefix := range prefixes {
			if strings.HasPrefix(c.Path(), prefix) {
				return false
			}
		}
		return true
	}
}

// OnlyPathStartWith 仅监控指定前缀
func OnlyPathStartWith(paths ...string) FilterFunc {
	return func(c *fiber.Ctx) bool {
		for _, path := range paths {
			if strings.HasPrefix(c.Path(), path) {
				return true
			}
		}
		return false
	}
}

// SkipMethods 跳过指定HTTP方法
func SkipMethods(methods ...string) FilterFunc {
	skipMap := make(map[string]bool)
	for _, method := range methods {
		skipMap[strings.ToUpper(method)] = true
	}

	return func(c *fiber.Ctx) bool {
		return !skipMap[c.Method()]
	}
}


package http

import (
	"math"
	"strconv"

	errorc "monicore/pkg/core/err"
	"monicore/pkg/core/logger"
	"monicore/pkg/core/result"
	"monicore/pkg/core/util"
	"monicore/pkg/monitoring/exporter"
	internalapp "monicore/system/monitor/internal/app"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// DefaultWindowHours /performance 未传 hours 时的统计窗口
const DefaultWindowHours = 24

// MonitorController 指标与性能汇总接口
type MonitorController struct {
	app     *internalapp.App
	runtime fasthttp.RequestHandler
	err     *errorc.ErrorBuilder
	log     *logger.Log
}

// NewMonitorController 创建监控控制器
func NewMonitorController(app *internalapp.App) *MonitorController {
	return &MonitorController{
		app:     app,
		runtime: fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(app.RuntimeRegistry, promhttp.HandlerOpts{})),
		err:     errorc.NewErrorBuilder("MonitorController"),
		log:     logger.GetLogger().WithEntryName("MonitorController"),
	}
}

// RegisterRoutes 注册路由
func (c *MonitorController) RegisterRoutes(root fiber.Router) {
	root.Get("/metrics", c.Metrics)
	root.Get("/metrics/runtime", c.RuntimeMetrics)
	root.Get("/performance", c.Performance)
}

// Metrics Prometheus 文本格式导出
func (c *MonitorController) Metrics(ctx *fiber.Ctx) error {
	ctx.Set(fiber.HeaderContentType, exporter.ContentType)
	return ctx.Status(fiber.StatusOK).SendString(c.app.Monitor.Exporter().Export())
}

// RuntimeMetrics Go 运行时与进程指标
func (c *MonitorController) RuntimeMetrics(ctx *fiber.Ctx) error {
	c.runtime(ctx.Context())
	return nil
}

// Performance 性能汇总
func (c *MonitorController) Performance(ctx *fiber.Ctx) error {
	hours := float64(DefaultWindowHours)
	if raw := ctx.Query("hours"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return c.err.New("hours 必须是非负数", err).ValidWithCtx().WithTraceID(util.Context(ctx)).ToLog(c.log.GetLogger())
		}
		hours = v
	}
	tenantID := ctx.Query("tenantId")

	metrics, err := c.app.PerformanceService.Summarize(util.Context(ctx), tenantID, hours)
	if err != nil {
		return err
	}
	return result.InternalOK(ctx, metrics)
}

package start

import (
	"fmt"
	"time"

	"monicore/pkg/core/fiber_handle"
	"monicore/pkg/core/logger"
	"monicore/pkg/core/tracer"
	"monicore/pkg/core/util"

	"github.com/gofiber/fiber/v2"
	recover2 "github.com/gofiber/fiber/v2/middleware/recover"
	jsoniter "github.com/json-iterator/go"
)

// GetApp 创建带通用中间件的 fiber 应用，/health 在这里注册
func GetApp(appName, version string) *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName:      appName,
			BodyLimit:    10 * 1024 * 1024,
			ErrorHandler: fiber_handle.ErrHandler,
			JSONEncoder:  jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
			JSONDecoder:  jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		})
	app.Use(fiber_handle.Cors())
	app.Use(recover2.New(recover2.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			logger.GetLogger().WithTrace(util.Context(c)).WithField("path", c.Path()).
				Error(fmt.Sprintf("请求处理崩溃: %+v", e))
		},
	}))
	app.Use(fiber_handle.HealthCheck(fiber_handle.HealthCheckConfig{
		Path:      "/health",
		Version:   version,
		StartedAt: time.Now(),
	}))
	app.Use(fiber_handle.NewApiTracer(fiber_handle.TracerConfig{
		Tracer:  tracer.NewSimpleTracer(),
		AppName: appName,
	}))
	return app
}

// UseMonitor 请求指标中间件，跳过健康检查和指标接口自身
func UseMonitor(client fiber_handle.MonitorClient) fiber.Handler {
	return fiber_handle.NewAPIMonitorWithFilters(fiber_handle.MonitorConfig{
		Client: client,
	}, fiber_handle.SkipHealthCheck, fiber_handle.SkipPaths("/metrics"), fiber_handle.SkipMethods("OPTIONS"))
}

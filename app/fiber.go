package app

import (
	"monicore/pkg/core/start"

	"github.com/gofiber/fiber/v2"
)

// GetApp 创建 fiber 应用，并挂上请求指标中间件
func GetApp(a *App, appName, version string) *fiber.App {
	f := start.GetApp(appName, version)
	if a != nil && a.MonitorModule != nil {
		f.Use(start.UseMonitor(a.MonitorModule.Monitor.APICollector()))
	}
	return f
}

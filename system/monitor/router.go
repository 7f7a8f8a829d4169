package monitor

import (
	"monicore/base"
	controller "monicore/system/monitor/external/http"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes 注册监控组件的所有 HTTP 路由
func RegisterRoutes(m *Module, root, admin fiber.Router) {
	// /metrics、/metrics/runtime、/performance 不鉴权
	monitorController := controller.NewMonitorController(m.internalApp)
	monitorController.RegisterRoutes(root)

	alertController := controller.NewAlertAdminController(m.internalApp, base.AdminAuth)
	alertController.RegisterRoutes(admin)
}

package router

import (
	"monicore/app"
	"monicore/base"
	"monicore/pkg/core/logger"
	"monicore/system/monitor"

	"github.com/gofiber/fiber/v2"
)

// Register 集中注册所有 HTTP 路由，只做分组与路由绑定
func Register(a *app.App, f *fiber.App) {
	f.Use(logger.NewApiLogger(logger.Config{Logger: base.Logger, SkipPrefixes: []string{"/admin"}}))

	// 后台管理路由分组
	admin := f.Group("/admin", logger.NewAdminLogger(logger.AdminConfig{Logger: base.Logger}))

	// /metrics、/performance 挂在根路径
	monitor.RegisterRoutes(a.MonitorModule, f, admin)
}

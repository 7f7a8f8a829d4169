package app

import (
	"monicore/system/monitor"

	"go.uber.org/zap"
)

// App 应用组合根，持有各组件模块
type App struct {
	MonitorModule *monitor.Module
}

// NewApp 创建应用组合根，依赖 base 中的全局组件已初始化
func NewApp(zapLogger *zap.Logger) *App {
	return &App{
		MonitorModule: monitor.NewModule(zapLogger),
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"monicore/app"
	"monicore/base"
	"monicore/pkg/core/start"
	"monicore/pkg/core/system"
	"monicore/pkg/db"
	"monicore/pkg/scheduler"
	"monicore/router"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	env, filename := getBaseInfo()

	file, err := os.ReadFile(filename)
	if err != nil {
		panic(fmt.Sprintf("读取配置文件失败,因为：%v", err))
	}

	configures := start.NewConfigures(file, env)
	base.Configures = configures
	base.Logger = configures.Logger
	base.ENV = env
	base.AdminAuth = configures.AdminAuth

	zapLogger, err := createZapLogger(env)
	if err != nil {
		configures.Logger.Panic(fmt.Sprintf("创建 zap logger 失败: %v", err))
	}
	system.RegisterClose(func(ctx context.Context) { _ = zapLogger.Sync() })

	base.DB = configures.EnableDB()
	if base.DB != nil {
		if err := db.AutoMigrate(base.DB); err != nil {
			configures.Logger.Panic(fmt.Sprintf("数据库迁移失败: %v", err))
		}
		system.RegisterClose(func(ctx context.Context) {
			if sqlDB, err := base.DB.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
	}

	base.RDB = configures.EnableRedis()
	if base.RDB != nil {
		system.RegisterClose(func(ctx context.Context) { _ = base.RDB.Close() })
	}
	base.Cache = configures.EnableCache(base.RDB)

	schedCfg := scheduler.DefaultSchedulerConfig()
	schedCfg.LeaderLock = configures.EnableLeaderLock(base.RDB)
	base.Scheduler = scheduler.NewScheduler(schedCfg)
	if err := base.Scheduler.Start(); err != nil {
		configures.Logger.Panic(fmt.Sprintf("启动调度器失败: %v", err))
	}
	system.RegisterClose(func(ctx context.Context) {
		if err := base.Scheduler.Stop(); err != nil {
			base.Logger.WithErr(err).Error("停止调度器失败")
		}
	})

	// 创建应用组合根
	appRoot := app.NewApp(zapLogger)
	if err := appRoot.MonitorModule.Start(context.Background()); err != nil {
		configures.Logger.Panic(fmt.Sprintf("启动监控组件失败: %v", err))
	}
	system.RegisterClose(func(ctx context.Context) { appRoot.MonitorModule.Stop() })

	cfg := configures.Config
	fiberApp := app.GetApp(appRoot, cfg.AppName, cfg.Version)
	router.Register(appRoot, fiberApp)
	system.RegisterClose(func(ctx context.Context) {
		if err := fiberApp.ShutdownWithContext(ctx); err != nil {
			base.Logger.WithErr(err).Error("关闭 HTTP 服务失败")
		}
	})

	go func() {
		if err := fiberApp.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			base.Logger.WithErr(err).Error("HTTP 服务退出")
		}
	}()
	base.Logger.WithField("port", cfg.Port).Info("服务已启动")

	sig := system.WaitSignal()
	base.Logger.WithField("signal", sig.String()).Info("收到退出信号，开始关闭")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	system.Shutdown(ctx)
}

func getBaseInfo() (string, string) {
	env := flag.String("env", "dev", "环境配置 (dev, prod, test等)")
	configFile := flag.String("config", "", "配置文件路径，默认为 ./resources/{env}.yaml")
	flag.Parse()

	if *configFile != "" {
		return *env, *configFile
	}
	getwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("获取当前文件位置失败,因为：%v", err))
	}
	return *env, getwd + "/resources/" + *env + ".yaml"
}

// createZapLogger 监控核心使用的 zap logger
func createZapLogger(env string) (*zap.Logger, error) {
	var config zap.Config

	if env == "prod" {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	} else {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return config.Build()
}

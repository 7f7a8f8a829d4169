package base

import (
	"monicore/pkg/core/logger"
	"monicore/pkg/core/security"
	"monicore/pkg/core/start"
	"monicore/pkg/scheduler"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 以下组件在 main 中初始化，DB 和 RDB 未配置时为 nil
var (
	Configures *start.Configures
	Logger     *logger.Log
	ENV        string
	AdminAuth  *security.AdminAuth
	DB         *gorm.DB
	RDB        *redis.Client
	Cache      *cache.Cache
	Scheduler  *scheduler.Scheduler
)

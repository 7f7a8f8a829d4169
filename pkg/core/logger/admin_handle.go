package logger

import (
	"time"

	"monicore/pkg/core/consts"
	errorc "monicore/pkg/core/err"

	"github.com/gofiber/fiber/v2"
)

type AdminConfig struct {
	Logger *Log
}

// NewAdminLogger 管理端请求日志，额外记录操作人和请求体
func NewAdminLogger(config AdminConfig) fiber.Handler {
	log := config.Logger.WithEntryName("ADMIN")

	return func(c *fiber.Ctx) (err error) {
		start := time.Now()
		err = c.Next()

		cLog := log.WithField("status", c.Response().StatusCode()).
			WithField("latency", time.Since(start).Round(time.Millisecond)).
			WithField("method", c.Method()).
			WithField("path", c.OriginalURL()).
			WithField("user_id", c.Locals("user_id")).
			WithField("account", c.Locals("account")).
			WithField("TraceId", c.Locals(consts.TraceKey))

		if c.Method() != fiber.MethodGet {
			cLog = cLog.WithField("req", string(c.Request().Body()))
		}

		if err != nil {
			errc := errorc.ParseError(err)
			errc.ToLog(log.WithTrace(c.UserContext()).GetLogger())
			cLog = cLog.WithField("Err", errc.RootCause())
		}

		cLog.Info("管理请求处理完毕")
		return err
	}
}
